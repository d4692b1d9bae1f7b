package rules

// Body is the snake: an ordered list of cells with the head first, the
// direction it is travelling and the cells it occupied before the last
// advance.
type Body struct {
	cells     []Point
	direction Direction
	previous  []Point
}

// NewBody creates a single segment body at head travelling in d.
func NewBody(head Point, d Direction) *Body {
	return &Body{
		cells:     []Point{head},
		direction: d,
	}
}

// Cells returns a copy of the body, head first.
func (b *Body) Cells() []Point {
	return clonePoints(b.cells)
}

// Previous returns a copy of the cells captured at the start of the last
// advance.
func (b *Body) Previous() []Point {
	return clonePoints(b.previous)
}

// Len is the number of segments.
func (b *Body) Len() int {
	return len(b.cells)
}

// Head returns the first point in the body
func (b *Body) Head() Point {
	return b.cells[0]
}

// Tail returns the last point in the body
func (b *Body) Tail() Point {
	return b.cells[len(b.cells)-1]
}

// Direction is the heading used by the next advance.
func (b *Body) Direction() Direction {
	return b.direction
}

// SetDirection changes the heading. The request is ignored when d is the
// current heading, or when the cell next to the head in direction d is the
// second segment, which would turn the snake back through its own neck.
func (b *Body) SetDirection(d Direction, g Grid) bool {
	if !d.Valid() || d == b.direction {
		return false
	}
	if len(b.cells) > 1 {
		if n, ok := g.Neighbor(b.Head(), d); ok && n.Equal(b.cells[1]) {
			return false
		}
	}
	b.direction = d
	return true
}

// Advance moves the head one step and lets every other segment follow into
// the position its predecessor held. When the step leaves a walled grid the
// body is left untouched and ErrWallCollision is returned.
func (b *Body) Advance(g Grid) error {
	b.previous = clonePoints(b.cells)

	head, err := g.Normalize(b.Head().Move(b.direction))
	if err != nil {
		return err
	}
	for i := len(b.cells) - 1; i > 0; i-- {
		b.cells[i] = b.previous[i-1]
	}
	b.cells[0] = head
	return nil
}

// Grow appends a new tail segment at p.
func (b *Body) Grow(p Point) {
	b.cells = append(b.cells, p)
}

// SelfCollides reports whether the head shares a cell with another segment.
func (b *Body) SelfCollides() bool {
	return containsPoint(b.cells[1:], b.Head())
}

// Restore rolls the body back to the cells captured by the last advance.
func (b *Body) Restore() {
	if len(b.previous) == 0 {
		return
	}
	b.cells = clonePoints(b.previous)
}

func clonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
