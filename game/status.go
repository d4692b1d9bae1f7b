package game

// Status is the state of the game state machine.
type Status string

const (
	// StatusRunning means ticks advance the snake.
	StatusRunning Status = "running"
	// StatusPaused means the player paused, or changed the border policy.
	StatusPaused Status = "paused"
	// StatusGameOver means the run ended, see Game.Cause for why.
	StatusGameOver Status = "game-over"
)

// Stopped reports whether ticks are currently ignored.
func (s Status) Stopped() bool {
	return s != StatusRunning
}
