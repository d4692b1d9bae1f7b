package game

import "github.com/battlesnakeio/gridsnake/rules"

// IntentKind names a player command.
type IntentKind string

const (
	// IntentDirection asks the snake to turn.
	IntentDirection IntentKind = "direction"
	// IntentPause toggles between running and paused.
	IntentPause IntentKind = "pause"
	// IntentReset starts a new run once the game is stopped.
	IntentReset IntentKind = "reset"
	// IntentTogglePolicy flips between wrap and wall borders.
	IntentTogglePolicy IntentKind = "toggle-policy"
)

// Intent is a command pushed by an input source. Input sources never touch
// the game directly; the goroutine owning the game applies intents between
// frames.
type Intent struct {
	Kind      IntentKind      `json:"kind"`
	Direction rules.Direction `json:"direction,omitempty"`
}

// Turn builds a direction intent.
func Turn(d rules.Direction) Intent {
	return Intent{Kind: IntentDirection, Direction: d}
}

// Pause builds a pause toggle intent.
func Pause() Intent { return Intent{Kind: IntentPause} }

// Reset builds a reset intent.
func Reset() Intent { return Intent{Kind: IntentReset} }

// TogglePolicy builds a border policy toggle intent.
func TogglePolicy() Intent { return Intent{Kind: IntentTogglePolicy} }
