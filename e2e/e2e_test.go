package e2e

import (
	"context"
	"io/ioutil"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/battlesnakeio/gridsnake/api"
	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	"github.com/battlesnakeio/gridsnake/worker"
	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *client {
	return &client{
		apiURL: url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestRecordedSession(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	store := controller.InMemStore()
	ts := httptest.NewServer(api.New(":0", store).Handler())
	defer ts.Close()
	c := newClient(ts.URL)

	g, err := game.New(game.Config{Width: 10, Height: 10, Policy: rules.Wall, Speed: 2 * time.Millisecond},
		game.WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)

	intents := make(chan game.Intent)
	done := make(chan error, 1)
	w := &worker.Worker{Store: store, FrameInterval: time.Millisecond}
	go func() { done <- w.Run(context.Background(), g, intents) }()

	// Going straight on a walled board ends at a wall.
	intents <- game.Turn(rules.Right)

	var st *api.StatusResponse
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st, err = c.gameStatus(g.ID())
		require.NoError(t, err)
		if st.LastFrame != nil && st.LastFrame.Status == game.StatusGameOver {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, st.LastFrame, spew.Sdump(st))
	require.Equal(t, game.StatusGameOver, st.LastFrame.Status, spew.Sdump(st))
	require.Equal(t, rules.CauseWallCollision, st.LastFrame.Cause, spew.Sdump(st))
	require.Equal(t, controller.GameStatusRunning, st.Game.Status)

	close(intents)
	require.NoError(t, <-done)

	st, err = c.gameStatus(g.ID())
	require.NoError(t, err)
	require.Equal(t, controller.GameStatusComplete, st.Game.Status)

	listed, err := c.listFrames(g.ID(), 1000, 0)
	require.NoError(t, err)
	require.True(t, listed.Count > 2, spew.Sdump(listed))
	require.Equal(t, int64(0), listed.Frames[0].Turn)

	streamed, err := c.streamFrames(g.ID())
	require.NoError(t, err)
	require.Equal(t, listed.Count, len(streamed))
	for i := range streamed {
		require.Equal(t, listed.Frames[i].Turn, streamed[i].Turn)
		require.Equal(t, listed.Frames[i].Body, streamed[i].Body)
	}
}
