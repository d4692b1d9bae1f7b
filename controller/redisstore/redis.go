// Package redisstore keeps recorded games in redis. Each game is a hash with
// its record and status, its frames are a list, and a set indexes the ids.
package redisstore

import (
	"context"
	"encoding/json"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const gamesKey = "games"

// Store is a controller.Store backed by redis.
type Store struct {
	client *redis.Client
}

// NewStore will create a new instance of an underlying redis client, so it
// should not be re-created across goroutines. See
// github.com/go-redis/redis/options.go for the URL format. The client is
// pinged immediately; an error means redis could not be reached.
func NewStore(connectURL string) (*Store, error) {
	o, err := redis.ParseURL(connectURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse redis URL")
	}

	client := redis.NewClient(o)

	// Validate it's connected
	err = client.Ping().Err()
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "unable to connect")
	}

	return &Store{client: client}, nil
}

// Close releases the underlying connections.
func (rs *Store) Close() error {
	return rs.client.Close()
}

func gameKey(id string) string   { return "game:" + id }
func framesKey(id string) string { return "frames:" + id }

func (rs *Store) requireGame(id string) error {
	n, err := rs.client.Exists(gameKey(id)).Result()
	if err != nil {
		return errors.Wrap(err, "unable to check game")
	}
	if n == 0 {
		return controller.ErrNotFound
	}
	return nil
}

// CreateGame stores the record and indexes the id. Ids are claimed with
// HSETNX so two writers cannot both create the same game.
func (rs *Store) CreateGame(ctx context.Context, g *controller.GameInfo) error {
	data, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, "unable to marshal game")
	}

	created, err := rs.client.HSetNX(gameKey(g.ID), "info", data).Result()
	if err != nil {
		return errors.Wrap(err, "unable to create game")
	}
	if !created {
		return controller.ErrExists
	}

	_, err = rs.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.HSet(gameKey(g.ID), "status", string(g.Status))
		pipe.SAdd(gamesKey, g.ID)
		return nil
	})
	return errors.Wrap(err, "unable to index game")
}

// SetGameStatus is used to set a specific game status.
func (rs *Store) SetGameStatus(ctx context.Context, id string, status controller.GameStatus) error {
	if err := rs.requireGame(id); err != nil {
		return err
	}
	err := rs.client.HSet(gameKey(id), "status", string(status)).Err()
	return errors.Wrap(err, "unable to set status")
}

// PushGameFrame appends a frame to the game's list.
func (rs *Store) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	if err := rs.requireGame(id); err != nil {
		return err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "unable to marshal frame")
	}
	err = rs.client.RPush(framesKey(id), data).Err()
	return errors.Wrap(err, "unable to push frame")
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (rs *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	if err := rs.requireGame(id); err != nil {
		return nil, err
	}

	n, err := rs.client.LLen(framesKey(id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to count frames")
	}
	start, stop, ok := window(int(n), limit, offset)
	if !ok {
		return nil, nil
	}

	values, err := rs.client.LRange(framesKey(id), int64(start), int64(stop)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read frames")
	}

	frames := make([]*game.Frame, 0, len(values))
	for _, v := range values {
		f := &game.Frame{}
		if err := json.Unmarshal([]byte(v), f); err != nil {
			return nil, errors.Wrap(err, "unable to unmarshal frame")
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// window turns limit and offset into inclusive list indexes.
func window(n, limit, offset int) (start, stop int, ok bool) {
	if offset < 0 {
		offset += n
		if offset < 0 {
			offset = 0
		}
	}
	if n == 0 || offset >= n || limit <= 0 {
		return 0, 0, false
	}
	stop = offset + limit - 1
	if stop >= n {
		stop = n - 1
	}
	return offset, stop, true
}

// GetGame will fetch the game.
func (rs *Store) GetGame(ctx context.Context, id string) (*controller.GameInfo, error) {
	fields, err := rs.client.HGetAll(gameKey(id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch game")
	}
	return decodeGame(fields)
}

func decodeGame(fields map[string]string) (*controller.GameInfo, error) {
	data, ok := fields["info"]
	if !ok {
		return nil, controller.ErrNotFound
	}

	g := &controller.GameInfo{}
	if err := json.Unmarshal([]byte(data), g); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal game")
	}
	if status, ok := fields["status"]; ok {
		g.Status = controller.GameStatus(status)
	}
	return g, nil
}

// ListGames returns every indexed game, newest first.
func (rs *Store) ListGames(ctx context.Context) ([]*controller.GameInfo, error) {
	ids, err := rs.client.SMembers(gamesKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list games")
	}

	games := make([]*controller.GameInfo, 0, len(ids))
	for _, id := range ids {
		g, err := rs.GetGame(ctx, id)
		if err == controller.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	controller.SortGames(games)
	return games, nil
}
