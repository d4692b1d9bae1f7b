package worker

import (
	"context"
	"errors"
	"io/ioutil"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(ioutil.Discard)
}

func newGame(t *testing.T, speed time.Duration) *game.Game {
	l := log.New()
	l.Out = ioutil.Discard
	g, err := game.New(game.Config{Width: 20, Height: 20, Policy: rules.Wrap, Speed: speed},
		game.WithRand(rand.New(rand.NewSource(1))),
		game.WithLogger(log.NewEntry(l)),
	)
	require.NoError(t, err)
	return g
}

type failingStore struct {
	controller.Store
	pushes int
}

func (s *failingStore) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	s.pushes++
	if s.pushes > 1 {
		return errors.New("disk full")
	}
	return s.Store.PushGameFrame(ctx, id, f)
}

func TestWorkerRecordsTicks(t *testing.T) {
	store := controller.InMemStore()
	var mu sync.Mutex
	rendered := 0
	w := &Worker{
		Store:         store,
		FrameInterval: time.Millisecond,
		Render: func(*game.Frame) {
			mu.Lock()
			rendered++
			mu.Unlock()
		},
	}
	g := newGame(t, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx, g, nil))

	info, err := store.GetGame(context.Background(), g.ID())
	require.NoError(t, err)
	require.Equal(t, controller.GameStatusComplete, info.Status)
	require.Equal(t, 20, info.Width)
	require.Equal(t, int64(5), info.TickMillis)

	frames, err := store.ListGameFrames(context.Background(), g.ID(), 1000, 0)
	require.NoError(t, err)
	require.True(t, len(frames) > 1, "expected ticks to be recorded, got %d frames", len(frames))
	require.Equal(t, int64(0), frames[0].Turn)
	for i := 1; i < len(frames); i++ {
		require.Equal(t, frames[i-1].Turn+1, frames[i].Turn)
	}

	mu.Lock()
	defer mu.Unlock()
	require.True(t, rendered >= len(frames))
}

func TestWorkerAppliesIntents(t *testing.T) {
	store := controller.InMemStore()
	w := &Worker{Store: store, FrameInterval: time.Millisecond}
	// Slow enough that no tick happens during the test.
	g := newGame(t, time.Hour)

	intents := make(chan game.Intent)
	done := make(chan error)
	go func() { done <- w.Run(context.Background(), g, intents) }()

	intents <- game.Turn(rules.Left)
	intents <- game.Turn(rules.Left) // repeat, not recorded
	intents <- game.Pause()
	intents <- game.TogglePolicy()
	close(intents)
	require.NoError(t, <-done)

	frames, err := store.ListGameFrames(context.Background(), g.ID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	require.Equal(t, game.StatusRunning, frames[1].Status)
	require.Equal(t, game.StatusPaused, frames[2].Status)
	require.Equal(t, rules.Wall, frames[3].Policy)
}

func TestWorkerStoreError(t *testing.T) {
	store := &failingStore{Store: controller.InMemStore()}
	w := &Worker{Store: store, FrameInterval: time.Millisecond}
	g := newGame(t, 2*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := w.Run(ctx, g, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")

	info, err := store.GetGame(context.Background(), g.ID())
	require.NoError(t, err)
	require.Equal(t, controller.GameStatusError, info.Status)
}

func TestWorkerDuplicateGame(t *testing.T) {
	store := controller.InMemStore()
	g := newGame(t, time.Hour)
	require.NoError(t, store.CreateGame(context.Background(), controller.NewGameInfo(g)))

	w := &Worker{Store: store}
	err := w.Run(context.Background(), g, nil)
	require.Error(t, err)
}

func TestObserveDelta(t *testing.T) {
	w := &Worker{}
	interval := 10 * time.Millisecond

	require.False(t, w.observeDelta(interval, interval))
	require.False(t, w.observeDelta(29*time.Millisecond, interval))
	require.Equal(t, 0, w.slowFrames)

	reported := 0
	for i := 0; i < 120; i++ {
		if w.observeDelta(time.Second, interval) {
			reported++
		}
	}
	require.Equal(t, 120, w.slowFrames)
	require.Equal(t, 3, reported)
}
