// Package api serves recorded games over HTTP and follows running games
// over a websocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/battlesnakeio/gridsnake/config"
	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultFrameLimit = 100
	maxFrameLimit     = 1000
	// How often a followed game is polled for new frames once the stream
	// has caught up.
	defaultPollInterval = 50 * time.Millisecond
	writeWait           = 10 * time.Second
)

// StatusResponse is the body of GET /games/:id.
type StatusResponse struct {
	Game      *controller.GameInfo `json:"game"`
	LastFrame *game.Frame          `json:"lastFrame,omitempty"`
}

// ListGamesResponse is the body of GET /games.
type ListGamesResponse struct {
	Games []*controller.GameInfo `json:"games"`
}

// ListFramesResponse is the body of GET /games/:id/frames.
type ListFramesResponse struct {
	Frames []*game.Frame `json:"frames"`
	Count  int           `json:"count"`
}

// Server is the replay API.
type Server struct {
	hs    *http.Server
	store controller.Store

	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

// New will initialize a new Server.
func New(addr string, store controller.Store) *Server {
	s := &Server{
		store: store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pollInterval: defaultPollInterval,
	}

	router := httprouter.New()
	router.GET("/games", s.listGames)
	router.GET("/games/:id", s.status)
	router.GET("/games/:id/frames", s.listFrames)
	router.GET("/socket/:id", s.framesSocket)

	handler := cors.Default().Handler(loggingHandler(router))
	s.hs = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// WaitForExit serves until the server is shut down.
func (s *Server) WaitForExit() error {
	log.WithField("Addr", s.hs.Addr).Info("gridsnake api listening")
	err := s.hs.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		log.WithError(err).Error("error while listening")
	}
	return err
}

// Handler is the routed and CORS wrapped handler of the server.
func (s *Server) Handler() http.Handler {
	return s.hs.Handler
}

// Shutdown stops accepting connections and waits for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

func loggingHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"Method":   r.Method,
			"Path":     r.URL.Path,
			"Duration": time.Since(start),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("unable to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if err == controller.ErrNotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &ListGamesResponse{Games: games})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	g, err := s.store.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &StatusResponse{Game: g}
	frames, err := s.store.ListGameFrames(r.Context(), id, 1, -1)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(frames) > 0 {
		resp.LastFrame = frames[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listFrames(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		return
	}
	limit, err := queryInt(r, "limit", defaultFrameLimit)
	if err != nil || limit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	if limit > maxFrameLimit {
		limit = maxFrameLimit
	}

	frames, err := s.store.ListGameFrames(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if frames == nil {
		frames = []*game.Frame{}
	}
	writeJSON(w, http.StatusOK, &ListFramesResponse{Frames: frames, Count: len(frames)})
}

func queryInt(r *http.Request, name string, defaults int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaults, nil
	}
	return strconv.Atoi(v)
}

// framesSocket streams every frame of a game as JSON text messages, then
// follows the game until it stops running.
func (s *Server) framesSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	ctx := r.Context()
	if _, err := s.store.GetGame(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("unable to upgrade connection")
		return
	}
	defer conn.Close()

	// The request context outlives a hijacked connection, so a dropped
	// client is only noticed by reading.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	entry := log.WithField("GameID", id)
	limiter := rate.NewLimiter(config.StreamRate, config.StreamBurstRate)
	offset := 0
	for {
		// Status first, so frames pushed before the game stopped are not
		// missed.
		g, err := s.store.GetGame(ctx, id)
		if err != nil {
			entry.WithError(err).Error("unable to get game")
			return
		}
		frames, err := s.store.ListGameFrames(ctx, id, maxFrameLimit, offset)
		if err != nil {
			entry.WithError(err).Error("unable to list frames")
			return
		}
		for _, f := range frames {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			data, err := json.Marshal(f)
			if err != nil {
				entry.WithError(err).Error("unable to marshal frame")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				entry.WithError(err).Debug("client went away")
				return
			}
		}
		offset += len(frames)
		if len(frames) > 0 {
			continue
		}
		if g.Status != controller.GameStatusRunning {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		entry.WithError(err).Debug("unable to close socket")
	}
}
