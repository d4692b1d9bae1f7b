package filestore

import (
	"context"
	"errors"
	"io/ioutil"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	log "github.com/sirupsen/logrus"
)

const fileExt = ".gs"

var errInvalidID = errors.New("filestore: invalid game id")

// validID keeps ids inside the store directory.
func validID(id string) bool {
	return id != "" && id != "." && !strings.Contains(id, "..") &&
		!strings.ContainsAny(id, `/\`)
}

func defaultDir() string {
	return path.Join(homeDir(), ".gridsnake/games")
}

func homeDir() string {
	usr, err := user.Current()
	if err != nil {
		return "."
	}
	return usr.HomeDir
}

// NewFileStore returns a file based store implementation (1 file per game).
func NewFileStore(directory string) controller.Store {
	if directory == "" {
		directory = defaultDir()
	}

	return &fileStore{
		games:     map[string]*controller.GameInfo{},
		frames:    map[string][]*game.Frame{},
		writers:   map[string]writer{},
		directory: directory,
	}
}

type fileStore struct {
	games     map[string]*controller.GameInfo
	frames    map[string][]*game.Frame
	writers   map[string]writer
	lock      sync.Mutex
	directory string
}

// closeGame closes the handle to the game's file. Should be called when
// the game is complete; the cached frames stay readable.
func (fs *fileStore) closeGame(id string) {
	if w, ok := fs.writers[id]; ok {
		err := w.Close()
		if err != nil {
			log.WithError(err).WithField("GameID", id).Error("Error while closing file writer")
		}
	}
	delete(fs.writers, id)
}

func (fs *fileStore) CreateGame(ctx context.Context, g *controller.GameInfo) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if !validID(g.ID) {
		return errInvalidID
	}
	if _, err := fs.requireGame(g.ID); err == nil {
		return controller.ErrExists
	}

	handle, err := fs.requireHandle(g.ID, true)
	if err != nil {
		return err
	}
	if err := writeGameInfo(handle, g); err != nil {
		return err
	}

	clone := *g
	fs.games[g.ID] = &clone
	fs.frames[g.ID] = []*game.Frame{}
	return nil
}

func (fs *fileStore) SetGameStatus(ctx context.Context, id string, status controller.GameStatus) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	g, err := fs.requireGame(id)
	if err != nil {
		return err
	}

	handle, err := fs.requireHandle(id, false)
	if err != nil {
		return err
	}
	if err := writeStatus(handle, status); err != nil {
		return err
	}

	g.Status = status
	if status != controller.GameStatusRunning {
		fs.closeGame(id)
	}
	return nil
}

func (fs *fileStore) PushGameFrame(ctx context.Context, id string, f *game.Frame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireGame(id); err != nil {
		return err
	}
	if _, err := fs.requireFrames(id); err != nil {
		return err
	}

	handle, err := fs.requireHandle(id, false)
	if err != nil {
		return err
	}

	// Add frame to archive file
	if err := writeFrame(handle, f); err != nil {
		return err
	}

	// Add frame to in-memory cache
	fs.frames[id] = append(fs.frames[id], f)
	return nil
}

func (fs *fileStore) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*game.Frame, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireGame(id); err != nil {
		return nil, err
	}
	frames, err := fs.requireFrames(id)
	if err != nil {
		return nil, err
	}
	return controller.FrameWindow(frames, limit, offset), nil
}

func (fs *fileStore) GetGame(ctx context.Context, id string) (*controller.GameInfo, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	g, err := fs.requireGame(id)
	if err != nil {
		return nil, err
	}

	// Clone the game, since this could be modified after this is returned
	// and upset internal state inside the store.
	clone := *g
	return &clone, nil
}

// ListGames returns every game in the directory, loading the ones not yet
// cached.
func (fs *fileStore) ListGames(ctx context.Context) ([]*controller.GameInfo, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	entries, err := ioutil.ReadDir(fs.directory)
	if err != nil && !isNotExist(err) {
		return nil, err
	}

	games := []*controller.GameInfo{}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		id := strings.TrimSuffix(e.Name(), fileExt)
		g, err := fs.requireGame(id)
		if err != nil {
			log.WithError(err).WithField("file", e.Name()).Warn("skipping unreadable game file")
			continue
		}
		clone := *g
		games = append(games, &clone)
		seen[id] = true
	}
	for id, g := range fs.games {
		if !seen[id] {
			clone := *g
			games = append(games, &clone)
		}
	}
	controller.SortGames(games)
	return games, nil
}

func (fs *fileStore) requireHandle(id string, mustBeNew bool) (writer, error) {
	if w, ok := fs.writers[id]; ok {
		return w, nil
	}

	handle, err := openFileWriter(fs.directory, id, mustBeNew)
	if err != nil {
		return nil, err
	}

	fs.writers[id] = handle
	return handle, nil
}

func (fs *fileStore) requireGame(id string) (*controller.GameInfo, error) {
	// Do nothing if game already loaded.
	if g, ok := fs.games[id]; ok {
		return g, nil
	}
	if !validID(id) {
		return nil, controller.ErrNotFound
	}

	archive, err := readArchive(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.games[id] = archive.info
	fs.frames[id] = archive.frames
	return archive.info, nil
}

func (fs *fileStore) requireFrames(id string) ([]*game.Frame, error) {
	// Do nothing if frames already loaded.
	if frames, ok := fs.frames[id]; ok {
		return frames, nil
	}
	if !validID(id) {
		return nil, controller.ErrNotFound
	}

	archive, err := readArchive(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.frames[id] = archive.frames
	return archive.frames, nil
}

type gameArchive struct {
	info   *controller.GameInfo
	frames []*game.Frame
}

func getFilePath(directory string, id string) string {
	return path.Join(directory, id) + fileExt
}
