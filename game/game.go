// Package game holds the snake state machine. It owns the entities and the
// status of a session, and turns frame deltas into ticks through a fixed
// interval scheduler. A Game is not safe for concurrent use; it belongs
// to one goroutine which applies input intents between frames.
package game

import (
	"math/rand"
	"time"

	"github.com/battlesnakeio/gridsnake/rules"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultSpeed is the tick interval of the classic game.
const DefaultSpeed = 100 * time.Millisecond

// Config describes the board and pace of a game.
type Config struct {
	Width  int
	Height int
	Policy rules.BorderPolicy
	Speed  time.Duration
}

// DefaultConfig is a 20x20 wrapping board ticking every 100ms.
func DefaultConfig() Config {
	return Config{
		Width:  20,
		Height: 20,
		Policy: rules.Wrap,
		Speed:  DefaultSpeed,
	}
}

// Option customises a Game at construction.
type Option func(*Game)

// WithRand sets the random source used for food placement.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithLogger sets the log entry used for state transitions.
func WithLogger(entry *log.Entry) Option {
	return func(g *Game) { g.log = entry }
}

// WithID sets the game id instead of generating one.
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// Game is the snake state machine.
type Game struct {
	id        string
	grid      rules.Grid
	body      *rules.Body
	food      *rules.Point
	status    Status
	cause     rules.EndCause
	turn      int64
	run       int
	scheduler *Scheduler
	rng       *rand.Rand
	log       *log.Entry
}

// New creates a running game with a single segment in the middle of the
// board heading up, and food placed on a free cell.
func New(cfg Config, opts ...Option) (*Game, error) {
	grid := rules.Grid{Width: cfg.Width, Height: cfg.Height, Policy: cfg.Policy}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}

	g := &Game{
		grid:      grid,
		scheduler: NewScheduler(cfg.Speed),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = uuid.NewV4().String()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.log == nil {
		g.log = log.NewEntry(log.StandardLogger())
	}
	g.log = g.log.WithField("GameID", g.id)

	g.start()
	return g, nil
}

// start discards every entity and creates a fresh run.
func (g *Game) start() {
	g.body = rules.NewBody(g.grid.Center(), rules.Up)
	g.food = nil
	g.turn = 0
	g.cause = rules.CauseNone
	g.status = StatusRunning
	g.run++
	g.scheduler.Reset()

	food, err := rules.PlaceFood(g.grid, g.body.Cells(), g.rng)
	if err != nil {
		g.end(rules.CauseOf(err))
		return
	}
	g.food = &food

	g.log.WithFields(log.Fields{
		"Run":    g.run,
		"Head":   g.body.Head(),
		"Food":   food,
		"Policy": g.grid.Policy,
	}).Info("run started")
}

func (g *Game) end(cause rules.EndCause) {
	g.status = StatusGameOver
	g.cause = cause
	g.log.WithFields(log.Fields{
		"Run":    g.run,
		"Turn":   g.turn,
		"Length": g.body.Len(),
		"Cause":  cause,
	}).Info("game over")
}

// ID identifies the game across recorded frames.
func (g *Game) ID() string { return g.id }

// Grid returns the board, including the current border policy.
func (g *Game) Grid() rules.Grid { return g.grid }

// Policy is the current border policy.
func (g *Game) Policy() rules.BorderPolicy { return g.grid.Policy }

// Status is the current state machine status.
func (g *Game) Status() Status { return g.status }

// Cause explains why the last run ended, empty while it is going.
func (g *Game) Cause() rules.EndCause { return g.cause }

// Turn counts the ticks of the current run.
func (g *Game) Turn() int64 { return g.turn }

// Run counts the runs started, including the current one.
func (g *Game) Run() int { return g.run }

// Speed is the tick interval.
func (g *Game) Speed() time.Duration { return g.scheduler.Speed() }

// Direction is the heading of the snake.
func (g *Game) Direction() rules.Direction { return g.body.Direction() }

// Body returns the snake cells, head first.
func (g *Game) Body() []rules.Point { return g.body.Cells() }

// Food returns the food cell, ok is false when there is none.
func (g *Game) Food() (rules.Point, bool) {
	if g.food == nil {
		return rules.Point{}, false
	}
	return *g.food, true
}

// Snapshot copies the state into a Frame.
func (g *Game) Snapshot() *Frame {
	f := &Frame{
		Run:     g.run,
		Turn:    g.turn,
		Body:    g.body.Cells(),
		Policy:  g.grid.Policy,
		Status:  g.status,
		Cause:   g.cause,
		Created: time.Now(),
	}
	if g.food != nil {
		food := *g.food
		f.Food = &food
	}
	return f
}

// RequestDirection turns the snake. Requests while stopped, repeats of the
// current heading and turns back through the neck are ignored.
func (g *Game) RequestDirection(d rules.Direction) bool {
	if g.status != StatusRunning {
		return false
	}
	return g.body.SetDirection(d, g.grid)
}

// Tick runs one simulation step. ok is false when the game is stopped and
// nothing happened.
func (g *Game) Tick() (out rules.Outcome, ok bool) {
	if g.status != StatusRunning {
		return rules.Outcome{}, false
	}

	out = rules.Tick(g.body, g.food, g.grid, g.rng)
	g.food = out.Food
	if out.Kind != rules.GameOver {
		g.turn++
	}
	if out.Terminal() {
		g.end(out.Cause)
	}
	return out, true
}

// AdvanceFrame feeds the time since the previous frame to the scheduler and
// ticks when enough has accumulated. Time does not accumulate while the game
// is stopped.
func (g *Game) AdvanceFrame(delta time.Duration) bool {
	if g.status != StatusRunning {
		return false
	}
	return g.scheduler.Advance(delta, func() { g.Tick() })
}

// TogglePolicy flips the border policy. Changing the rules pauses a running
// game.
func (g *Game) TogglePolicy() {
	g.grid.Policy = g.grid.Policy.Toggle()
	if g.status == StatusRunning {
		g.status = StatusPaused
	}
	g.log.WithFields(log.Fields{
		"Policy": g.grid.Policy,
		"Status": g.status,
	}).Info("border policy changed")
}

// TogglePause switches between running and paused. A finished game stays
// over until it is reset.
func (g *Game) TogglePause() bool {
	switch g.status {
	case StatusRunning:
		g.status = StatusPaused
	case StatusPaused:
		g.status = StatusRunning
	default:
		return false
	}
	g.log.WithField("Status", g.status).Debug("pause toggled")
	return true
}

// Reset starts a new run. It only works while the game is stopped.
func (g *Game) Reset() bool {
	if g.status == StatusRunning {
		return false
	}
	g.start()
	return true
}

// Apply executes an intent and reports whether it changed the game.
func (g *Game) Apply(i Intent) bool {
	switch i.Kind {
	case IntentDirection:
		return g.RequestDirection(i.Direction)
	case IntentPause:
		return g.TogglePause()
	case IntentReset:
		return g.Reset()
	case IntentTogglePolicy:
		g.TogglePolicy()
		return true
	}
	g.log.WithField("Intent", i.Kind).Warn("unknown intent")
	return false
}
