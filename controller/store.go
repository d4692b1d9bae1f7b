// Package controller records games. A Store keeps the game record and every
// frame the worker produced, so sessions can be replayed later.
package controller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
)

var (
	// ErrNotFound is thrown when a game is not found.
	ErrNotFound = errors.New("controller: game not found")
	// ErrExists is returned when creating a game whose id is taken.
	ErrExists = errors.New("controller: game already exists")
)

// GameStatus is the status of a recorded session.
type GameStatus string

const (
	// GameStatusRunning represents a session that is still producing frames
	GameStatusRunning GameStatus = "running"
	// GameStatusComplete represents a session that is done
	GameStatusComplete GameStatus = "complete"
	// GameStatusError represents a session that ended because of an error
	GameStatusError GameStatus = "error"
)

// GameInfo is the record of a session.
type GameInfo struct {
	ID         string             `json:"id"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Policy     rules.BorderPolicy `json:"policy"`
	TickMillis int64              `json:"tickMillis"`
	Status     GameStatus         `json:"status"`
	Created    time.Time          `json:"created"`
}

// NewGameInfo builds the record for a game.
func NewGameInfo(g *game.Game) *GameInfo {
	grid := g.Grid()
	return &GameInfo{
		ID:         g.ID(),
		Width:      grid.Width,
		Height:     grid.Height,
		Policy:     grid.Policy,
		TickMillis: int64(g.Speed() / time.Millisecond),
		Status:     GameStatusRunning,
		Created:    time.Now().UTC(),
	}
}

// Store is the interface to the backend store.
type Store interface {
	CreateGame(ctx context.Context, g *GameInfo) error
	SetGameStatus(ctx context.Context, id string, status GameStatus) error
	PushGameFrame(ctx context.Context, id string, f *game.Frame) error
	ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error)
	GetGame(ctx context.Context, id string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
}

// FrameWindow applies limit and offset to a list of frames. A negative
// offset counts back from the end.
func FrameWindow(frames []*game.Frame, limit, offset int) []*game.Frame {
	if offset < 0 {
		offset = len(frames) + offset
		if offset < 0 {
			offset = 0
		}
	}
	if len(frames) == 0 || offset >= len(frames) || limit <= 0 {
		return nil
	}
	if offset+limit >= len(frames) {
		limit = len(frames) - offset
	}
	return frames[offset : offset+limit]
}

// SortGames orders records newest first.
func SortGames(games []*GameInfo) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].Created.Equal(games[j].Created) {
			return games[i].ID < games[j].ID
		}
		return games[i].Created.After(games[j].Created)
	})
}

// InMemStore returns an in memory implementation of the Store interface.
func InMemStore() Store {
	return &inmem{
		games:  map[string]*GameInfo{},
		frames: map[string][]*game.Frame{},
	}
}

type inmem struct {
	games  map[string]*GameInfo
	frames map[string][]*game.Frame
	lock   sync.Mutex
}

func (in *inmem) CreateGame(ctx context.Context, g *GameInfo) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[g.ID]; ok {
		return ErrExists
	}
	clone := *g
	in.games[g.ID] = &clone
	in.frames[g.ID] = []*game.Frame{}
	return nil
}

func (in *inmem) SetGameStatus(ctx context.Context, id string, status GameStatus) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	g, ok := in.games[id]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	return nil
}

func (in *inmem) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return ErrNotFound
	}
	in.frames[id] = append(in.frames[id], f)
	return nil
}

func (in *inmem) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return nil, ErrNotFound
	}
	return FrameWindow(in.frames[id], limit, offset), nil
}

func (in *inmem) GetGame(ctx context.Context, id string) (*GameInfo, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if g, ok := in.games[id]; ok {
		clone := *g
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (in *inmem) ListGames(ctx context.Context) ([]*GameInfo, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	games := make([]*GameInfo, 0, len(in.games))
	for _, g := range in.games {
		clone := *g
		games = append(games, &clone)
	}
	SortGames(games)
	return games, nil
}
