package game

import "time"

// Scheduler turns a stream of frame deltas into simulation ticks at a fixed
// interval. Elapsed time accumulates until it exceeds the interval, then one
// tick fires and the accumulator drops back to zero. The remainder is not
// carried, so the tick rate is capped by the frame rate and a long stall
// yields a single tick.
type Scheduler struct {
	speed   time.Duration
	elapsed time.Duration
}

// NewScheduler creates a scheduler that ticks every speed.
func NewScheduler(speed time.Duration) *Scheduler {
	return &Scheduler{speed: speed}
}

// Speed is the tick interval.
func (s *Scheduler) Speed() time.Duration {
	return s.speed
}

// Elapsed is the time accumulated since the last tick.
func (s *Scheduler) Elapsed() time.Duration {
	return s.elapsed
}

// Reset drops any accumulated time.
func (s *Scheduler) Reset() {
	s.elapsed = 0
}

// Advance adds delta to the accumulator and calls tick at most once. It
// reports whether tick was called. Negative deltas are ignored.
func (s *Scheduler) Advance(delta time.Duration, tick func()) bool {
	if delta < 0 {
		return false
	}
	s.elapsed += delta
	if s.elapsed <= s.speed {
		return false
	}
	s.elapsed = 0
	tick()
	return true
}
