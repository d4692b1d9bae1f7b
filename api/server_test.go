package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func createAPIServer(t *testing.T, frames int) (*Server, controller.Store) {
	store := controller.InMemStore()
	ctx := context.Background()
	require.NoError(t, store.CreateGame(ctx, &controller.GameInfo{
		ID:         "abc_123",
		Width:      10,
		Height:     10,
		Policy:     rules.Wrap,
		TickMillis: 100,
		Status:     controller.GameStatusRunning,
		Created:    time.Now(),
	}))
	for turn := 0; turn < frames; turn++ {
		require.NoError(t, store.PushGameFrame(ctx, "abc_123", &game.Frame{
			Run:    1,
			Turn:   int64(turn),
			Body:   []rules.Point{{X: 5, Y: 5 - turn}},
			Policy: rules.Wrap,
			Status: game.StatusRunning,
		}))
	}

	s := New(":1234", store)
	s.pollInterval = time.Millisecond
	return s, store
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.hs.Handler.ServeHTTP(rr, req)
	return rr
}

func TestListGames(t *testing.T) {
	s, _ := createAPIServer(t, 0)

	rr := serve(s, "GET", "/games")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := &ListGamesResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(resp))
	require.Len(t, resp.Games, 1)
	require.Equal(t, "abc_123", resp.Games[0].ID)
}

func TestStatus(t *testing.T) {
	s, _ := createAPIServer(t, 3)

	rr := serve(s, "GET", "/games/abc_123")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := &StatusResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(resp))
	require.Equal(t, 10, resp.Game.Width)
	require.NotNil(t, resp.LastFrame)
	require.Equal(t, int64(2), resp.LastFrame.Turn)
}

func TestStatusNotFound(t *testing.T) {
	s, _ := createAPIServer(t, 0)

	rr := serve(s, "GET", "/games/missing")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListFrames(t *testing.T) {
	s, _ := createAPIServer(t, 5)

	tests := []struct {
		query string
		code  int
		turns []int64
	}{
		{"", http.StatusOK, []int64{0, 1, 2, 3, 4}},
		{"?limit=2", http.StatusOK, []int64{0, 1}},
		{"?offset=3", http.StatusOK, []int64{3, 4}},
		{"?offset=-1&limit=1", http.StatusOK, []int64{4}},
		{"?offset=10", http.StatusOK, []int64{}},
		{"?offset=x", http.StatusBadRequest, nil},
		{"?limit=-2", http.StatusBadRequest, nil},
	}
	for _, test := range tests {
		rr := serve(s, "GET", "/games/abc_123/frames"+test.query)
		require.Equal(t, test.code, rr.Code, test.query)
		if test.code != http.StatusOK {
			continue
		}

		resp := &ListFramesResponse{}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(resp))
		require.Equal(t, len(test.turns), resp.Count, test.query)
		turns := []int64{}
		for _, f := range resp.Frames {
			turns = append(turns, f.Turn)
		}
		require.Equal(t, test.turns, turns, test.query)
	}
}

func TestListFramesNotFound(t *testing.T) {
	s, _ := createAPIServer(t, 0)

	rr := serve(s, "GET", "/games/missing/frames")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	s, _ := createAPIServer(t, 0)

	req, _ := http.NewRequest("GET", "/games", nil)
	req.Header.Set("Origin", "http://example.com")
	rr := httptest.NewRecorder()
	s.hs.Handler.ServeHTTP(rr, req)
	require.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestFramesSocket(t *testing.T) {
	s, store := createAPIServer(t, 3)
	ts := httptest.NewServer(s.hs.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket/abc_123"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	read := func() *game.Frame {
		c.SetReadDeadline(time.Now().Add(5 * time.Second))
		mt, data, err := c.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, mt)
		f := &game.Frame{}
		require.NoError(t, json.Unmarshal(data, f))
		return f
	}

	for turn := int64(0); turn < 3; turn++ {
		require.Equal(t, turn, read().Turn)
	}

	// Frames pushed while following the game are streamed too.
	ctx := context.Background()
	require.NoError(t, store.PushGameFrame(ctx, "abc_123", &game.Frame{Turn: 3, Status: game.StatusGameOver}))
	require.NoError(t, store.SetGameStatus(ctx, "abc_123", controller.GameStatusComplete))
	require.Equal(t, int64(3), read().Turn)

	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = c.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}

func TestFramesSocketNotFound(t *testing.T) {
	s, _ := createAPIServer(t, 0)
	ts := httptest.NewServer(s.hs.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type countingStore struct {
	controller.Store
	mu    sync.Mutex
	polls int
}

func (c *countingStore) GetGame(ctx context.Context, id string) (*controller.GameInfo, error) {
	c.mu.Lock()
	c.polls++
	c.mu.Unlock()
	return c.Store.GetGame(ctx, id)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

func TestFramesSocketStopsWhenClientLeaves(t *testing.T) {
	s, store := createAPIServer(t, 1)
	counting := &countingStore{Store: store}
	s.store = counting
	ts := httptest.NewServer(s.hs.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/socket/abc_123"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// The game is still running, so only the hang up ends the stream.
	time.Sleep(100 * time.Millisecond)
	before := counting.count()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, before, counting.count())
}
