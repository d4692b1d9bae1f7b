package commands

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/battlesnakeio/gridsnake/game"
	"github.com/battlesnakeio/gridsnake/rules"
	"github.com/mattn/go-runewidth"
	termbox "github.com/nsf/termbox-go"
)

const (
	defaultColor = termbox.ColorDefault
	bgColor      = termbox.ColorDefault
	snakeColor   = termbox.ColorGreen
	headColor    = termbox.ColorYellow
	wallColor    = termbox.ColorRed
)

// Each board cell is two terminal columns wide so the board looks square.
const cellWidth = 2

func render(width, height int, frame *game.Frame) error {
	if frame == nil {
		return errors.New("received nil frame")
	}
	err := termbox.Clear(defaultColor, defaultColor)
	if err != nil {
		return err
	}

	var (
		left   = 2
		top    = 2
		bottom = top + height + 1
	)

	renderTitle(left, top, frame)
	renderBoard(width, top, bottom, left, frame.Policy)
	renderSnake(left, top, frame.Body)
	if frame.Food != nil {
		renderFood(left, top, *frame.Food)
	}
	renderFooter(left, bottom+1, frame)

	return termbox.Flush()
}

func cellX(left, x int) int { return left + x*cellWidth }

func renderSnake(left, top int, body []rules.Point) {
	for i := len(body) - 1; i >= 0; i-- {
		color := snakeColor
		if i == 0 {
			color = headColor
		}
		b := body[i]
		fill(cellX(left, b.X), top+b.Y+1, cellWidth, 1, termbox.Cell{Ch: ' ', Fg: color, Bg: color})
	}
}

func renderFood(left, top int, f rules.Point) {
	termbox.SetCell(cellX(left, f.X), top+f.Y+1, getFoodEmoji(f), defaultColor, bgColor)
}

var foods = map[rules.Point]rune{}

func getFoodEmoji(p rules.Point) rune {
	r, ok := foods[p]
	if !ok {
		r = randomFoodEmoji()
		foods[p] = r
	}
	return r
}

func randomFoodEmoji() rune {
	f := []rune{
		'🍒',
		'🍍',
		'🍑',
		'🍇',
		'🍏',
		'🍌',
		'🍫',
		'🍭',
		'🍕',
		'🍩',
		'🍗',
		'🍖',
		'🍬',
		'🍤',
		'🍪',
	}

	return f[rand.Intn(len(f))]
}

// renderBoard draws the box around the board. Walls are drawn solid red,
// a wrapping border is drawn dotted.
func renderBoard(width, top, bottom, left int, policy rules.BorderPolicy) {
	var (
		fg         = defaultColor
		horizontal = '┄'
		vertical   = '┆'
		right      = cellX(left, width)
	)
	if policy == rules.Wall {
		fg, horizontal, vertical = wallColor, '─', '│'
	}

	for i := top + 1; i < bottom; i++ {
		termbox.SetCell(left-1, i, vertical, fg, bgColor)
		termbox.SetCell(right, i, vertical, fg, bgColor)
	}

	termbox.SetCell(left-1, top, '┌', fg, bgColor)
	termbox.SetCell(left-1, bottom, '└', fg, bgColor)
	termbox.SetCell(right, top, '┐', fg, bgColor)
	termbox.SetCell(right, bottom, '┘', fg, bgColor)

	fill(left, top, width*cellWidth, 1, termbox.Cell{Ch: horizontal, Fg: fg})
	fill(left, bottom, width*cellWidth, 1, termbox.Cell{Ch: horizontal, Fg: fg})
}

func renderTitle(left, top int, frame *game.Frame) {
	tbprint(left, top-1, defaultColor, defaultColor, titleText(frame))
}

func titleText(frame *game.Frame) string {
	return fmt.Sprintf("Gridsnake! - Run %d Turn %d Length %d [%s]",
		frame.Run, frame.Turn, frame.Length(), frame.Policy)
}

func renderFooter(left, y int, frame *game.Frame) {
	tbprint(left, y, defaultColor, defaultColor, footerText(frame))
}

func footerText(frame *game.Frame) string {
	switch frame.Status {
	case game.StatusPaused:
		return "Paused - p to resume, space for a new game"
	case game.StatusGameOver:
		if frame.Cause.Won() {
			return "You filled the board! - space for a new game"
		}
		return fmt.Sprintf("Game over (%s) - space for a new game", frame.Cause)
	}
	return "arrows/wasd to turn, p pause, b border, esc quit"
}

func fill(x, y, w, h int, cell termbox.Cell) {
	for ly := 0; ly < h; ly++ {
		for lx := 0; lx < w; lx++ {
			termbox.SetCell(x+lx, y+ly, cell.Ch, cell.Fg, cell.Bg)
		}
	}
}

func tbprint(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x += runewidth.RuneWidth(c)
	}
}
