package filestore

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/pkg/errors"
)

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}

func readLine(r *bufio.Reader, out interface{}) (bool, error) {
	bytes, err := r.ReadBytes('\n')
	eof := err == io.EOF

	if err != nil && !eof {
		return false, err
	}
	if eof && len(bytes) == 0 {
		return false, io.EOF
	}

	if err = json.Unmarshal(bytes, out); err != nil {
		return !eof, err
	}

	return !eof, nil
}

func readArchive(directory, id string) (gameArchive, error) {
	f, err := os.OpenFile(getFilePath(directory, id), os.O_RDONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return gameArchive{}, controller.ErrNotFound
		}
		return gameArchive{}, err
	}
	defer f.Close()

	return decodeArchive(bufio.NewReader(f))
}

func decodeArchive(reader *bufio.Reader) (gameArchive, error) {
	header := line{}
	more, err := readLine(reader, &header)
	if err != nil {
		return gameArchive{}, errors.Wrap(err, "unable to read game header")
	}
	if header.Game == nil {
		return gameArchive{}, errors.New("filestore: game file has no header")
	}

	archive := gameArchive{info: header.Game}
	for more {
		l := line{}
		more, err = readLine(reader, &l)
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn last line from a crash is skipped, anything else is
			// corruption.
			if !more {
				break
			}
			return gameArchive{}, errors.Wrap(err, "unable to read game line")
		}
		switch {
		case l.Frame != nil:
			archive.frames = append(archive.frames, l.Frame)
		case l.Status != "":
			archive.info.Status = l.Status
		}
	}
	return archive, nil
}
