package rules

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
)

// OutcomeKind is the result class of a single tick.
type OutcomeKind string

const (
	// Continued means the head moved without eating or colliding.
	Continued OutcomeKind = "continued"
	// Grew means the head landed on food and the body grew by one.
	Grew OutcomeKind = "grew"
	// GameOver means the move collided and was undone.
	GameOver OutcomeKind = "game-over"
)

// Outcome is what a tick did. Food is the food cell after the tick, nil
// when none could be placed. Cause is set for GameOver, and for Grew when
// the snake filled the board.
type Outcome struct {
	Kind  OutcomeKind
	Cause EndCause
	Food  *Point
}

// Terminal reports whether the outcome ends the run.
func (o Outcome) Terminal() bool {
	return o.Kind == GameOver || o.Cause != CauseNone
}

// Tick advances the body one step on the grid and resolves collisions and
// growth. The wall check runs first, then self collision, then food.
// Collisions roll the body back to the cells it held before the tick.
func Tick(body *Body, food *Point, g Grid, rng *rand.Rand) Outcome {
	if err := body.Advance(g); err != nil {
		log.WithFields(log.Fields{
			"Head":      body.Head(),
			"Direction": body.Direction(),
		}).Debug("wall collision")
		return Outcome{Kind: GameOver, Cause: CauseOf(err), Food: food}
	}

	if err := checkForSelfCollision(body); err != nil {
		log.WithFields(log.Fields{
			"Head":   body.Head(),
			"Length": body.Len(),
		}).Debug("self collision")
		body.Restore()
		return Outcome{Kind: GameOver, Cause: CauseOf(err), Food: food}
	}

	if food == nil || !body.Head().Equal(*food) {
		return Outcome{Kind: Continued, Food: food}
	}

	previous := body.Previous()
	body.Grow(previous[len(previous)-1])
	log.WithFields(log.Fields{
		"Food":   *food,
		"Length": body.Len(),
	}).Debug("snake ate")

	next, err := PlaceFood(g, body.Cells(), rng)
	if err != nil {
		return Outcome{Kind: Grew, Cause: CauseOf(err)}
	}
	return Outcome{Kind: Grew, Food: &next}
}

// checkForSelfCollision compares the new head against every non-head cell
// the body held before the move, which makes running into the cell the tail
// is just leaving fatal, and against the body after the follow step.
func checkForSelfCollision(body *Body) error {
	previous := body.Previous()
	if len(previous) > 1 && containsPoint(previous[1:], body.Head()) {
		return ErrSelfCollision
	}
	if body.SelfCollides() {
		return ErrSelfCollision
	}
	return nil
}
