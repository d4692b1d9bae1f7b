// Package sqlstore keeps recorded games in postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq" // Import pq driver.
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/battlesnakeio/gridsnake/config"
	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
)

const migrations = `
CREATE TABLE IF NOT EXISTS games (
	id VARCHAR(255) PRIMARY KEY,
	value jsonb,
	created timestamp default now()
);
CREATE TABLE IF NOT EXISTS game_frames (
	id VARCHAR(255) REFERENCES games (id) ON DELETE CASCADE,
	seq BIGSERIAL,
	value jsonb,
	PRIMARY KEY (id, seq)
);
`

// NewSQLStore returns a new store using a postgres database.
func NewSQLStore(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to connect")
	}

	_, err = db.ExecContext(ctx, migrations)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to migrate")
	}
	return &Store{db: db}, nil
}

// Store represents an SQL store.
type Store struct {
	db *sql.DB
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// transact is a transaction wrapper, helps avoid failed to close connections.
func (s *Store) transact(
	ctx context.Context, txFunc func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			// err is non-nil; don't change it
			if rErr := tx.Rollback(); rErr != nil {
				log.WithError(rErr).Error("rollback failed")
			}
		} else {
			err = tx.Commit() // err is nil; if Commit returns error update err
		}
	}()
	err = txFunc(tx)
	return err
}

// CreateGame inserts the game record. Ids are unique.
func (s *Store) CreateGame(ctx context.Context, g *controller.GameInfo) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.transact(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, value) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
			g.ID, data,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return controller.ErrExists
		}
		return nil
	})
}

// SetGameStatus is used to set a specific game status. This operation
// should be atomic.
func (s *Store) SetGameStatus(
	ctx context.Context, id string, status controller.GameStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.transact(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE games SET value = jsonb_set(value, '{status}', $2::jsonb) WHERE id = $1`,
			id, string(data))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return controller.ErrNotFound
		}
		return nil
	})
}

// PushGameFrame will push a game frame onto the list of frames.
func (s *Store) PushGameFrame(
	ctx context.Context, id string, f *game.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return s.transact(ctx, func(tx *sql.Tx) error {
		var exists bool
		r := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id=$1)`, id)
		if err := r.Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return controller.ErrNotFound
		}
		_, err := tx.ExecContext(
			ctx, `INSERT INTO game_frames (id, value) VALUES ($1, $2)`, id, data)
		return err
	})
}

// ListGameFrames will list frames by an offset and limit, it supports
// negative offset.
func (s *Store) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	if _, err := s.GetGame(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	if offset < 0 {
		var total int
		r := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_frames WHERE id=$1`, id)
		if err := r.Scan(&total); err != nil {
			return nil, err
		}
		offset += total
		if offset < 0 {
			offset = 0
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM game_frames WHERE id=$1 ORDER BY seq ASC LIMIT $2 OFFSET $3`,
		id, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []*game.Frame
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		frame := &game.Frame{}
		if err := json.Unmarshal(data, frame); err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// GetGame will fetch the game.
func (s *Store) GetGame(c context.Context, id string) (*controller.GameInfo, error) {
	r := s.db.QueryRowContext(c, "SELECT value FROM games WHERE id=$1", id)

	var data []byte
	if err := r.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, controller.ErrNotFound
		}
		return nil, err
	}

	g := &controller.GameInfo{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGames returns every game, newest first.
func (s *Store) ListGames(ctx context.Context) ([]*controller.GameInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM games`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*controller.GameInfo{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		g := &controller.GameInfo{}
		if err := json.Unmarshal(data, g); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	controller.SortGames(games)
	return games, nil
}
