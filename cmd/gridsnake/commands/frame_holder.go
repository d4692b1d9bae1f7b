package commands

import (
	"sync"

	"github.com/battlesnakeio/gridsnake/game"
)

// frameHolder collects streamed frames. initialFrame fires once the first
// frame arrives.
type frameHolder struct {
	sync.RWMutex
	frames []*game.Frame
	ffc    chan *game.Frame
	done   bool
}

func newFrameHolder() *frameHolder {
	return &frameHolder{ffc: make(chan *game.Frame, 1)}
}

func (fh *frameHolder) append(frame *game.Frame) {
	fh.Lock()
	defer fh.Unlock()

	if len(fh.frames) == 0 {
		fh.ffc <- frame
		close(fh.ffc)
	}

	fh.frames = append(fh.frames, frame)
}

func (fh *frameHolder) get(index int) *game.Frame {
	fh.RLock()
	defer fh.RUnlock()

	if index < 0 || index >= len(fh.frames) {
		return nil
	}

	return fh.frames[index]
}

func (fh *frameHolder) initialFrame() <-chan *game.Frame {
	return fh.ffc
}

func (fh *frameHolder) count() int {
	fh.RLock()
	defer fh.RUnlock()

	return len(fh.frames)
}

// finish marks the stream as complete.
func (fh *frameHolder) finish() {
	fh.Lock()
	defer fh.Unlock()
	fh.done = true
}

func (fh *frameHolder) finished() bool {
	fh.RLock()
	defer fh.RUnlock()
	return fh.done
}
