package rules

import (
	"errors"
	"math/rand"
)

// ErrExhausted is returned when every cell of the board is occupied and no
// food can be placed.
var ErrExhausted = errors.New("rules: no unoccupied cell left for food")

// PlaceFood picks a uniformly random cell that is not in occupied. It fails
// with ErrExhausted instead of sampling forever when the board is full.
func PlaceFood(g Grid, occupied []Point, rng *rand.Rand) (Point, error) {
	taken := getUniqOccupiedPoints(g, occupied)
	if len(taken) >= g.Area() {
		return Point{}, ErrExhausted
	}

	for {
		p := Point{X: rng.Intn(g.Width), Y: rng.Intn(g.Height)}
		if _, ok := taken[p]; !ok {
			return p, nil
		}
	}
}

func getUniqOccupiedPoints(g Grid, occupied []Point) map[Point]struct{} {
	taken := make(map[Point]struct{}, len(occupied))
	for _, p := range occupied {
		if g.Contains(p) {
			taken[p] = struct{}{}
		}
	}
	return taken
}
