package filestore

import (
	"encoding/json"
	"os"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/pkg/errors"
)

var openFileWriter = appendOnlyFileWriter

type writer interface {
	WriteString(s string) (int, error)
	Close() error
}

// line is a single line of a game file. The first line carries the game,
// every later line either a frame or a status change.
type line struct {
	Game   *controller.GameInfo  `json:"game,omitempty"`
	Frame  *game.Frame           `json:"frame,omitempty"`
	Status controller.GameStatus `json:"status,omitempty"`
}

func requireSaveDir(directory string) error {
	return os.MkdirAll(directory, 0775)
}

func writeLine(w writer, data interface{}) error {
	j, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.WriteString(string(j) + "\n")
	return errors.Wrap(err, "unable to write game file")
}

func writeFrame(w writer, f *game.Frame) error {
	return writeLine(w, &line{Frame: f})
}

func writeGameInfo(w writer, g *controller.GameInfo) error {
	return writeLine(w, &line{Game: g})
}

func writeStatus(w writer, status controller.GameStatus) error {
	return writeLine(w, &line{Status: status})
}

func appendOnlyFileWriter(directory, id string, mustCreate bool) (writer, error) {
	if err := requireSaveDir(directory); err != nil {
		return nil, errors.Wrap(err, "unable to create save directory")
	}

	path := getFilePath(directory, id)
	flags := os.O_APPEND | os.O_WRONLY | os.O_CREATE
	if mustCreate {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, controller.ErrExists
		}
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	return f, nil
}
