package rules

import "errors"

// EndCause explains why a run stopped.
type EndCause string

const (
	// CauseNone is used while the run is still going.
	CauseNone EndCause = ""
	// CauseWallCollision is when the snake runs off a walled board
	CauseWallCollision EndCause = "wall-collision"
	// CauseSelfCollision is when the head runs into the snake's own body
	CauseSelfCollision EndCause = "snake-self-collision"
	// CauseBoardFull is when the snake covers the whole board and no food
	// can be placed. This is the winning end of a run.
	CauseBoardFull EndCause = "board-full"
)

// ErrSelfCollision is reported when the head lands on another segment.
var ErrSelfCollision = errors.New("rules: self collision")

// Won reports whether the cause is the winning one.
func (c EndCause) Won() bool {
	return c == CauseBoardFull
}

// CauseOf maps a rules error to the cause it ends a run with.
func CauseOf(err error) EndCause {
	switch err {
	case nil:
		return CauseNone
	case ErrWallCollision:
		return CauseWallCollision
	case ErrSelfCollision:
		return CauseSelfCollision
	case ErrExhausted:
		return CauseBoardFull
	}
	return CauseNone
}
