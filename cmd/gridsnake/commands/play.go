package commands

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/battlesnakeio/gridsnake/config"
	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	"github.com/battlesnakeio/gridsnake/worker"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	playWidth  = config.GridWidth
	playHeight = config.GridHeight
	playTick   = config.TickInterval
	playFrame  = config.FrameInterval
	playPolicy = string(config.BorderPolicy)
	playLog    = ""
)

func init() {
	playCmd.Flags().IntVar(&playWidth, "width", playWidth, "board width in cells")
	playCmd.Flags().IntVar(&playHeight, "height", playHeight, "board height in cells")
	playCmd.Flags().DurationVar(&playTick, "tick", playTick, "time between snake moves")
	playCmd.Flags().DurationVar(&playFrame, "frame", playFrame, "time between frames")
	playCmd.Flags().StringVar(&playPolicy, "policy", playPolicy, "border policy: wrap or wall")
	playCmd.Flags().StringVar(&playLog, "log-file", playLog, "file to write logs to while playing")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "plays a game of snake in the terminal",
	RunE: func(*cobra.Command, []string) error {
		return playGame()
	},
}

func playGame() error {
	policy, err := rules.ParseBorderPolicy(playPolicy)
	if err != nil {
		return err
	}
	g, err := game.New(game.Config{
		Width:  playWidth,
		Height: playHeight,
		Policy: policy,
		Speed:  playTick,
	})
	if err != nil {
		return err
	}

	// The terminal belongs to the board while playing.
	logFile, err := redirectLogs(playLog)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	store, closeStore, err := openStore(storeKind)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = termbox.Init(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	intents := make(chan game.Intent, 8)
	go readKeys(ctx, cancel, setupEventQueue(), intents)

	grid := g.Grid()
	w := &worker.Worker{
		Store:         store,
		FrameInterval: playFrame,
		Render: func(f *game.Frame) {
			if err := render(grid.Width, grid.Height, f); err != nil {
				log.WithError(err).Error("unable to render frame")
			}
		},
	}
	err = w.Run(ctx, g, intents)
	termbox.Close()

	fmt.Printf("game %s: run %d, turn %d, length %d\n", g.ID(), g.Run(), g.Turn(), len(g.Body()))
	return err
}

func redirectLogs(path string) (*os.File, error) {
	if path == "" {
		log.SetOutput(ioutil.Discard)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

// readKeys turns key presses into intents until esc is pressed or the
// context ends.
func readKeys(ctx context.Context, quit func(), events <-chan termbox.Event, intents chan<- game.Intent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Type != termbox.EventKey {
				continue
			}
			if isQuit(ev) {
				quit()
				return
			}
			i, ok := keyIntent(ev)
			if !ok {
				continue
			}
			select {
			case intents <- i:
			case <-ctx.Done():
				return
			}
		}
	}
}

func isQuit(ev termbox.Event) bool {
	return ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q'
}

func keyIntent(ev termbox.Event) (game.Intent, bool) {
	switch ev.Key {
	case termbox.KeyArrowUp:
		return game.Turn(rules.Up), true
	case termbox.KeyArrowDown:
		return game.Turn(rules.Down), true
	case termbox.KeyArrowLeft:
		return game.Turn(rules.Left), true
	case termbox.KeyArrowRight:
		return game.Turn(rules.Right), true
	case termbox.KeySpace:
		return game.Reset(), true
	}

	switch ev.Ch {
	case 'w', 'W':
		return game.Turn(rules.Up), true
	case 's', 'S':
		return game.Turn(rules.Down), true
	case 'a', 'A':
		return game.Turn(rules.Left), true
	case 'd', 'D':
		return game.Turn(rules.Right), true
	case 'p', 'P':
		return game.Pause(), true
	case 'b', 'B':
		return game.TogglePolicy(), true
	}
	return game.Intent{}, false
}

func setupEventQueue() <-chan termbox.Event {
	eventQueue := make(chan termbox.Event)
	go func(ev chan<- termbox.Event) {
		for {
			ev <- termbox.PollEvent()
		}
	}(eventQueue)
	return eventQueue
}
