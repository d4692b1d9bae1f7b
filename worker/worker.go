// Package worker runs a game. The worker owns the game for the length of a
// session and writes every state change to a controller.Store.
package worker

import (
	"context"
	"time"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultFrameInterval is roughly 60 frames a second.
const DefaultFrameInterval = 16 * time.Millisecond

const (
	// A frame is slow when it took this many intervals or more.
	slowFrameFactor = 3
	// Slow frames are reported once per this many.
	slowFrameReport = 50
)

// Worker drives a single game.
type Worker struct {
	Store         controller.Store
	FrameInterval time.Duration
	// Render, when set, is called with a snapshot after every frame.
	Render func(*game.Frame)

	slowFrames int
}

// Run records the game and plays it until the context is cancelled or the
// intents channel is closed. A game that is over keeps the session open so
// it can be reset. The final status is written with a fresh context since
// ctx is usually done by then.
func (w *Worker) Run(ctx context.Context, g *game.Game, intents <-chan game.Intent) (err error) {
	interval := w.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	entry := log.WithField("GameID", g.ID())

	if err := w.Store.CreateGame(ctx, controller.NewGameInfo(g)); err != nil {
		return errors.Wrap(err, "unable to create game")
	}
	defer func() {
		status := controller.GameStatusComplete
		if err != nil {
			status = controller.GameStatusError
		}
		if serr := w.Store.SetGameStatus(context.Background(), g.ID(), status); serr != nil {
			entry.WithError(serr).Error("unable to set final game status")
		}
		entry.WithFields(log.Fields{
			"Status": status,
			"Run":    g.Run(),
			"Turn":   g.Turn(),
		}).Info("session ended")
	}()

	if err := w.record(ctx, g); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case i, ok := <-intents:
			if !ok {
				return nil
			}
			if !g.Apply(i) {
				continue
			}
			entry.WithFields(log.Fields{
				"Intent":    i.Kind,
				"Direction": i.Direction,
				"Status":    g.Status(),
			}).Debug("intent applied")
			if err := w.record(ctx, g); err != nil {
				return err
			}
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if w.observeDelta(delta, interval) {
				entry.WithFields(log.Fields{
					"Delta":      delta,
					"SlowFrames": w.slowFrames,
				}).Warn("game is running slow")
			}
			if g.AdvanceFrame(delta) {
				if err := w.record(ctx, g); err != nil {
					return err
				}
			} else {
				w.render(g.Snapshot())
			}
		}
	}
}

// record pushes the current state to the store and renders it.
func (w *Worker) record(ctx context.Context, g *game.Game) error {
	f := g.Snapshot()
	if err := w.Store.PushGameFrame(ctx, g.ID(), f); err != nil {
		return errors.Wrap(err, "unable to push frame")
	}
	w.render(f)
	return nil
}

func (w *Worker) render(f *game.Frame) {
	if w.Render != nil {
		w.Render(f)
	}
}

// observeDelta counts slow frames and reports whether this one should be
// logged.
func (w *Worker) observeDelta(delta, interval time.Duration) bool {
	if delta < slowFrameFactor*interval {
		return false
	}
	w.slowFrames++
	return w.slowFrames%slowFrameReport == 1
}
