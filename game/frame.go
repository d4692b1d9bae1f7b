package game

import (
	"time"

	"github.com/battlesnakeio/gridsnake/rules"
)

// Frame is a read-only copy of the game state, handed to renderers and
// recorders.
type Frame struct {
	Run     int                `json:"run"`
	Turn    int64              `json:"turn"`
	Body    []rules.Point      `json:"body"`
	Food    *rules.Point       `json:"food,omitempty"`
	Policy  rules.BorderPolicy `json:"policy"`
	Status  Status             `json:"status"`
	Cause   rules.EndCause     `json:"cause,omitempty"`
	Created time.Time          `json:"created"`
}

// Head returns the first body cell, ok is false for an empty frame.
func (f *Frame) Head() (rules.Point, bool) {
	if len(f.Body) == 0 {
		return rules.Point{}, false
	}
	return f.Body[0], true
}

// Length is the number of body segments.
func (f *Frame) Length() int {
	return len(f.Body)
}
