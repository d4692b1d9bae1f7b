// Package testsuite holds the behaviour every controller.Store backend must
// share.
package testsuite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

func newGame(id string) *controller.GameInfo {
	return &controller.GameInfo{
		ID:         id,
		Width:      20,
		Height:     20,
		Policy:     rules.Wrap,
		TickMillis: 100,
		Status:     controller.GameStatusRunning,
		Created:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newFrame(turn int64) *game.Frame {
	return &game.Frame{
		Run:    1,
		Turn:   turn,
		Body:   []rules.Point{{X: 10, Y: 10 - int(turn)}, {X: 10, Y: 11 - int(turn)}},
		Food:   &rules.Point{X: 3, Y: 4},
		Policy: rules.Wrap,
		Status: game.StatusRunning,
	}
}

func testStoreGames(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a game.
	err := s.CreateGame(ctx, newGame(key))
	require.Nil(t, err)
	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, key, g.ID)
	require.Equal(t, 20, g.Width)
	require.Equal(t, rules.Wrap, g.Policy)
	require.Equal(t, int64(100), g.TickMillis)

	// Creating it again fails.
	err = s.CreateGame(ctx, newGame(key))
	require.Equal(t, controller.ErrExists, err)

	// NotFound error thrown.
	_, err = s.GetGame(ctx, key+"-missing")
	require.Equal(t, controller.ErrNotFound, err)

	// Listed.
	games, err := s.ListGames(ctx)
	require.Nil(t, err)
	found := false
	for _, lg := range games {
		if lg.ID == key {
			found = true
		}
	}
	require.True(t, found)
}

func testStoreGameStatus(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, newGame(key))
	require.Nil(t, err)

	err = s.SetGameStatus(ctx, key, controller.GameStatusComplete)
	require.Nil(t, err)

	g, err := s.GetGame(ctx, key)
	require.Nil(t, err)
	require.Equal(t, controller.GameStatusComplete, g.Status)

	err = s.SetGameStatus(ctx, key+"-missing", controller.GameStatusError)
	require.Equal(t, controller.ErrNotFound, err)
}

func testStoreGameFrames(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, newGame(key))
	require.Nil(t, err)

	// Read game frames, too high offset.
	frames, err := s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Read game frames, 0 offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Push game frames.
	for turn := int64(0); turn < 5; turn++ {
		err = s.PushGameFrame(ctx, key, newFrame(turn))
		require.Nil(t, err)
	}

	// Read the game frames.
	frames, err = s.ListGameFrames(ctx, key, 2, 0)
	require.Nil(t, err)
	require.Equal(t, 2, len(frames))
	require.Equal(t, int64(0), frames[0].Turn)
	require.Equal(t, int64(1), frames[1].Turn)
	require.Equal(t, newFrame(1).Body, frames[1].Body)
	require.Equal(t, newFrame(1).Food, frames[1].Food)

	// Offset into the middle, limit past the end.
	frames, err = s.ListGameFrames(ctx, key, 100, 3)
	require.Nil(t, err)
	require.Equal(t, 2, len(frames))
	require.Equal(t, int64(3), frames[0].Turn)

	// Negative offset reads from the end.
	frames, err = s.ListGameFrames(ctx, key, 1, -1)
	require.Nil(t, err)
	require.Equal(t, 1, len(frames))
	require.Equal(t, int64(4), frames[0].Turn)

	// Read game frames that don't exist.
	frames, err = s.ListGameFrames(ctx, key+"-missing", 1, 0)
	require.Equal(t, controller.ErrNotFound, err)
	require.Equal(t, 0, len(frames))

	// Push to a game that doesn't exist.
	err = s.PushGameFrame(ctx, key+"-missing", newFrame(0))
	require.Equal(t, controller.ErrNotFound, err)

	// Read the game frames, too high offset.
	frames, err = s.ListGameFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))
}

func testStoreConcurrentWriters(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateGame(ctx, newGame(key))
	require.Nil(t, err)

	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.PushGameFrame(ctx, key, newFrame(int64(i)))
		}(i)
	}
	wg.Wait()

	frames, err := s.ListGameFrames(ctx, key, 100, 0)
	require.Nil(t, err)
	require.Equal(t, 20, len(frames))
}

// Suite will execute the store testsuite.
func Suite(t *testing.T, s controller.Store, pretest func()) {
	s = controller.InstrumentStore(s)
	t.Run("Games", func(t *testing.T) { pretest(); testStoreGames(t, s) })
	t.Run("GameStatus", func(t *testing.T) { pretest(); testStoreGameStatus(t, s) })
	t.Run("GameFrames", func(t *testing.T) { pretest(); testStoreGameFrames(t, s) })
	t.Run("ConcurrentWriters", func(t *testing.T) { pretest(); testStoreConcurrentWriters(t, s) })
}
