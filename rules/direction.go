package rules

import "fmt"

// Direction is one of the four headings a snake can travel in.
type Direction string

const (
	// Up moves towards y = 0.
	Up Direction = "up"
	// Down moves towards y = height-1.
	Down Direction = "down"
	// Left moves towards x = 0.
	Left Direction = "left"
	// Right moves towards x = width-1.
	Right Direction = "right"
)

// Directions lists every valid direction.
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the x and y offset of a single step.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// ParseDirection converts a move string ("up", "down", ...) to a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("rules: invalid direction %q", s)
	}
	return d, nil
}
