package rules

import (
	"errors"
	"fmt"
	"math"
)

// BorderPolicy decides what happens when the head leaves the board.
type BorderPolicy string

const (
	// Wrap re-enters the board on the opposite edge.
	Wrap BorderPolicy = "wrap"
	// Wall makes leaving the board fatal.
	Wall BorderPolicy = "wall"
)

// Toggle returns the other policy.
func (bp BorderPolicy) Toggle() BorderPolicy {
	if bp == Wall {
		return Wrap
	}
	return Wall
}

// ParseBorderPolicy converts "wrap" or "wall" to a BorderPolicy.
func ParseBorderPolicy(s string) (BorderPolicy, error) {
	switch BorderPolicy(s) {
	case Wrap, Wall:
		return BorderPolicy(s), nil
	}
	return "", fmt.Errorf("rules: invalid border policy %q", s)
}

var (
	// ErrWallCollision is returned when a point lies outside a walled grid.
	ErrWallCollision = errors.New("rules: wall collision")
	// ErrInvalidGrid is returned when a grid has no cells.
	ErrInvalidGrid = errors.New("rules: grid must be at least 1x1")
)

// Grid is the fixed size board the snake lives on.
type Grid struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Policy BorderPolicy `json:"policy"`
}

// Validate checks the grid has a usable size and policy.
func (g Grid) Validate() error {
	if g.Width < 1 || g.Height < 1 {
		return ErrInvalidGrid
	}
	if _, err := ParseBorderPolicy(string(g.Policy)); err != nil {
		return err
	}
	return nil
}

// Area is the number of cells on the board.
func (g Grid) Area() int {
	return g.Width * g.Height
}

// Contains reports whether p lies on the board.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Normalize maps p onto the board. Under Wrap every point maps to a cell;
// under Wall points off the board return ErrWallCollision.
func (g Grid) Normalize(p Point) (Point, error) {
	if g.Policy == Wall {
		if !g.Contains(p) {
			return p, ErrWallCollision
		}
		return p, nil
	}
	return Point{X: mod(p.X, g.Width), Y: mod(p.Y, g.Height)}, nil
}

// Neighbor returns the normalized cell one step from p. ok is false when the
// step crosses a wall.
func (g Grid) Neighbor(p Point, d Direction) (Point, bool) {
	n, err := g.Normalize(p.Move(d))
	return n, err == nil
}

// Center is the starting cell of a fresh snake.
func (g Grid) Center() Point {
	c := Point{
		X: int(math.Round(float64(g.Width) * 0.5)),
		Y: int(math.Round(float64(g.Height) * 0.5)),
	}
	// Round can land on the far edge of odd sized 1-wide boards.
	if c.X >= g.Width {
		c.X = g.Width - 1
	}
	if c.Y >= g.Height {
		c.Y = g.Height - 1
	}
	return c
}

func mod(v, n int) int {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}
