package commands

import (
	"errors"
	"fmt"

	"github.com/lightcycles/engine/casting"
	"github.com/lightcycles/engine/rules"
	"github.com/mattn/go-runewidth"
	termbox "github.com/nsf/termbox-go"
)

const (
	defaultColor = termbox.ColorDefault
	bgColor      = termbox.ColorDefault

	boardLeft = 2
	boardTop  = 2
)

// palette is indexed by red | green<<1 | blue<<2, one bit per bright channel.
var palette = []termbox.Attribute{
	termbox.ColorBlack,
	termbox.ColorRed,
	termbox.ColorGreen,
	termbox.ColorYellow,
	termbox.ColorBlue,
	termbox.ColorMagenta,
	termbox.ColorCyan,
	termbox.ColorWhite,
}

func render(match *rules.Match, frame *rules.Frame, footer string) error {
	if frame == nil {
		return errors.New("received nil frame")
	}
	err := termbox.Clear(defaultColor, defaultColor)
	if err != nil {
		return err
	}

	cols, rows := match.Width/match.CellSize, match.Height/match.CellSize

	renderTitle(boardLeft, boardTop, match, frame.Turn)
	renderBoard(cols, rows, boardLeft, boardTop)
	for i, c := range frame.Cycles {
		renderCycle(match, boardLeft, boardTop, c)
		tbprint(boardLeft+cols+3, boardTop+1+i*2, attribute(c.Color), defaultColor, cycleText(c))
	}
	if footer != "" {
		tbprint(boardLeft, boardTop+rows+3, defaultColor, defaultColor, footer)
	}

	return termbox.Flush()
}

func renderCycle(match *rules.Match, left, top int, c *rules.CycleState) {
	cols, rows := match.Width/match.CellSize, match.Height/match.CellSize
	for i, s := range c.Segments {
		x, y := s.Position.X/match.CellSize, s.Position.Y/match.CellSize
		if x < 0 || y < 0 || x >= cols || y >= rows {
			continue
		}
		fg := attribute(s.Color)
		if i == 0 {
			fg |= termbox.AttrBold
		}
		termbox.SetCell(left+x, top+1+y, segmentRune(s), fg, bgColor)
	}
}

func segmentRune(s rules.Segment) rune {
	for _, r := range s.Text {
		return r
	}
	return ' '
}

func cycleText(c *rules.CycleState) string {
	text := fmt.Sprintf("%s (%d)", c.Name, c.Player)
	if c.Death != nil {
		text = fmt.Sprintf("%s - %s on turn %d", text, c.Death.Cause, c.Death.Turn)
	}
	return text
}

func winnerText(match *rules.Match) string {
	switch match.Status {
	case rules.MatchStatusError:
		return "The match ended with an error."
	case rules.MatchStatusComplete:
		if p := match.Player(match.Winner); p != nil {
			return fmt.Sprintf("%s wins!", p.Name)
		}
		return "Nobody wins."
	}
	return "The match has not finished."
}

func attribute(c casting.Color) termbox.Attribute {
	idx := 0
	if c.Red >= 128 {
		idx |= 1
	}
	if c.Green >= 128 {
		idx |= 2
	}
	if c.Blue >= 128 {
		idx |= 4
	}
	return palette[idx]
}

func renderBoard(cols, rows, left, top int) {
	bottom := top + rows + 1
	for i := top + 1; i < bottom; i++ {
		termbox.SetCell(left-1, i, '│', defaultColor, bgColor)
		termbox.SetCell(left+cols, i, '│', defaultColor, bgColor)
	}

	termbox.SetCell(left-1, top, '┌', defaultColor, bgColor)
	termbox.SetCell(left-1, bottom, '└', defaultColor, bgColor)
	termbox.SetCell(left+cols, top, '┐', defaultColor, bgColor)
	termbox.SetCell(left+cols, bottom, '┘', defaultColor, bgColor)

	fill(left, top, cols, 1, termbox.Cell{Ch: '─'})
	fill(left, bottom, cols, 1, termbox.Cell{Ch: '─'})
}

func renderTitle(left, top int, match *rules.Match, turn int64) {
	tbprint(left, top-1, defaultColor, defaultColor, fmt.Sprintf("Cycles! - %s arena - Turn %d", match.Arena, turn))
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
