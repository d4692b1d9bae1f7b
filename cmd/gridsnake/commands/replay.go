package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/battlesnakeio/gridsnake/api"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/gorilla/websocket"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	replayCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to replay")
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "replays a recorded game from the gridsnake api",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		return replayGame()
	},
}

func moveFrameForwards(frameIndex int, frames *frameHolder) (int, *game.Frame, bool) {
	frameIndex++
	if frameIndex >= frames.count() {
		// Keep waiting while the game is still streaming.
		if !frames.finished() {
			return frameIndex - 1, frames.get(frameIndex - 1), false
		}
		return frameIndex, nil, true
	}
	return frameIndex, frames.get(frameIndex), false
}

func moveFrameBackwards(frameIndex int, frames *frameHolder) (int, *game.Frame) {
	frameIndex--
	if frameIndex <= 0 {
		frameIndex = 0
	}
	return frameIndex, frames.get(frameIndex)
}

func socketURL(addr, id string) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: fmt.Sprintf("/socket/%s", id)}
	switch {
	case strings.HasPrefix(addr, "https://"):
		u.Scheme, u.Host = "wss", strings.TrimPrefix(addr, "https://")
	case strings.HasPrefix(addr, "http://"):
		u.Host = strings.TrimPrefix(addr, "http://")
	}
	return u.String()
}

func loadGame() (*api.StatusResponse, *frameHolder, error) {
	s, err := getStatus(gameID)
	if err != nil {
		return nil, nil, err
	}

	frames := newFrameHolder()

	u := socketURL(apiAddr, gameID)
	log.WithField("url", u).Debug("connecting")

	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		return nil, nil, err
	}

	go func() {
		defer frames.finish()
		defer c.Close()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("read")
				}
				return
			}

			switch mt {
			case websocket.TextMessage:
				frame := &game.Frame{}
				err = json.Unmarshal(message, frame)
				if err != nil {
					log.WithError(err).Warn("unmarshal frame")
					return
				}

				frames.append(frame)
			default:
				log.WithField("type", mt).Warn("unhandled message type")
			}
		}
	}()

	return s, frames, nil
}

func replayGame() error {
	status, frames, err := loadGame()
	if err != nil {
		return err
	}
	currentFrame, err := getInitialFrame(frames)
	if err != nil {
		return err
	}

	if err = termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	var (
		width, height = status.Game.Width, status.Game.Height
		interval      = time.Duration(status.Game.TickMillis) * time.Millisecond
	)
	if interval <= 0 {
		interval = game.DefaultSpeed
	}

	eventQueue := setupEventQueue()
	cycle := time.NewTicker(interval)
	defer cycle.Stop()
	frameIndex := 0
	paused := false
	done := false

	if err = render(width, height, currentFrame); err != nil {
		return err
	}

	for !done {
		select {
		case ev := <-eventQueue:
			if ev.Type != termbox.EventKey {
				continue
			}
			switch ev.Key {
			case termbox.KeyEsc:
				return nil
			case termbox.KeySpace:
				paused = !paused
			case termbox.KeyArrowLeft:
				paused = true
				frameIndex, currentFrame = moveFrameBackwards(frameIndex, frames)
				if err = render(width, height, currentFrame); err != nil {
					return err
				}
			case termbox.KeyArrowRight:
				paused = true
				var f *game.Frame
				frameIndex, f, done = moveFrameForwards(frameIndex, frames)
				if f != nil {
					currentFrame = f
				}
				if err = render(width, height, currentFrame); err != nil {
					return err
				}
			}
		case <-cycle.C:
			if paused {
				continue
			}
			var f *game.Frame
			frameIndex, f, done = moveFrameForwards(frameIndex, frames)
			if f != nil {
				currentFrame = f
			}
			if err = render(width, height, currentFrame); err != nil {
				return err
			}
		}
	}

	tbprint(0, 0, defaultColor, defaultColor, "Press any key to exit...")
	if err = termbox.Flush(); err != nil {
		return err
	}
	<-eventQueue
	return nil
}

func getInitialFrame(frames *frameHolder) (*game.Frame, error) {
	select {
	case f := <-frames.initialFrame():
		return f, nil
	case <-time.After(5 * time.Second):
		return nil, errors.New("unable to find initial frame for game")
	}
}
