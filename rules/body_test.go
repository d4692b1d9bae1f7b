package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var board = Grid{Width: 20, Height: 20, Policy: Wrap}

func bodyOf(d Direction, cells ...Point) *Body {
	b := NewBody(cells[0], d)
	for _, c := range cells[1:] {
		b.Grow(c)
	}
	return b
}

func TestBody_Advance(t *testing.T) {
	tests := []struct {
		Direction Direction
		Expected  Point
	}{
		{Direction: Up, Expected: Point{X: 5, Y: 4}},
		{Direction: Down, Expected: Point{X: 5, Y: 6}},
		{Direction: Left, Expected: Point{X: 4, Y: 5}},
		{Direction: Right, Expected: Point{X: 6, Y: 5}},
	}

	for _, test := range tests {
		b := NewBody(Point{X: 5, Y: 5}, test.Direction)
		require.NoError(t, b.Advance(board))
		require.Equal(t, test.Expected, b.Head(), "Direction: %s", test.Direction)
		require.Equal(t, []Point{{X: 5, Y: 5}}, b.Previous())
	}
}

func TestBody_AdvanceFollow(t *testing.T) {
	b := bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6}, Point{X: 4, Y: 6})
	require.NoError(t, b.Advance(board))
	require.Equal(t, []Point{{X: 5, Y: 4}, {X: 5, Y: 5}, {X: 5, Y: 6}}, b.Cells())
	require.Equal(t, 3, b.Len())
}

func TestBody_AdvanceWrap(t *testing.T) {
	b := NewBody(Point{X: 0, Y: 0}, Left)
	require.NoError(t, b.Advance(board))
	require.Equal(t, Point{X: 19, Y: 0}, b.Head())

	b = NewBody(Point{X: 3, Y: 0}, Up)
	require.NoError(t, b.Advance(board))
	require.Equal(t, Point{X: 3, Y: 19}, b.Head())
}

func TestBody_AdvanceWallLeavesBody(t *testing.T) {
	g := Grid{Width: 20, Height: 20, Policy: Wall}
	b := bodyOf(Left, Point{X: 0, Y: 5}, Point{X: 1, Y: 5})
	err := b.Advance(g)
	require.Equal(t, ErrWallCollision, err)
	require.Equal(t, []Point{{X: 0, Y: 5}, {X: 1, Y: 5}}, b.Cells())
}

func TestBody_SetDirection(t *testing.T) {
	tests := []struct {
		Name     string
		Body     *Body
		Request  Direction
		Accepted bool
		Expected Direction
	}{
		{
			Name:     "same direction",
			Body:     bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6}),
			Request:  Up,
			Accepted: false,
			Expected: Up,
		},
		{
			Name:     "reverse through neck",
			Body:     bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6}),
			Request:  Down,
			Accepted: false,
			Expected: Up,
		},
		{
			Name:     "turn",
			Body:     bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6}),
			Request:  Left,
			Accepted: true,
			Expected: Left,
		},
		{
			Name:     "reverse across wrap seam",
			Body:     bodyOf(Right, Point{X: 0, Y: 5}, Point{X: 19, Y: 5}),
			Request:  Left,
			Accepted: false,
			Expected: Right,
		},
		{
			Name:     "single segment may reverse",
			Body:     NewBody(Point{X: 5, Y: 5}, Up),
			Request:  Down,
			Accepted: true,
			Expected: Down,
		},
		{
			Name:     "invalid",
			Body:     NewBody(Point{X: 5, Y: 5}, Up),
			Request:  Direction("sideways"),
			Accepted: false,
			Expected: Up,
		},
	}

	for _, test := range tests {
		accepted := test.Body.SetDirection(test.Request, board)
		require.Equal(t, test.Accepted, accepted, test.Name)
		require.Equal(t, test.Expected, test.Body.Direction(), test.Name)
	}
}

func TestBody_SetDirectionLatestWins(t *testing.T) {
	// Moving up, a quick left then down must not reverse through the neck.
	b := bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6})
	require.True(t, b.SetDirection(Left, board))
	require.False(t, b.SetDirection(Down, board))
	require.Equal(t, Left, b.Direction())
}

func TestBody_SelfCollidesAndRestore(t *testing.T) {
	b := bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 5, Y: 6}, Point{X: 5, Y: 5})
	require.True(t, b.SelfCollides())

	b = bodyOf(Left, Point{X: 5, Y: 5}, Point{X: 5, Y: 6})
	require.False(t, b.SelfCollides())
	require.NoError(t, b.Advance(board))
	b.Restore()
	require.Equal(t, []Point{{X: 5, Y: 5}, {X: 5, Y: 6}}, b.Cells())
}

func TestBody_Tail(t *testing.T) {
	b := bodyOf(Up, Point{X: 5, Y: 5}, Point{X: 4, Y: 5})
	require.Equal(t, Point{X: 4, Y: 5}, b.Tail())
}
