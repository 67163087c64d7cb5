package commands

import (
	"context"
	"sync"

	"github.com/lightcycles/engine/rules"
	termbox "github.com/nsf/termbox-go"
)

// keyboard steers human players from key presses. The last key pressed
// before a tick wins.
type keyboard struct {
	sync.Mutex
	pending map[int]string
}

func newKeyboard() *keyboard {
	return &keyboard{pending: map[int]string{}}
}

// press records the direction of a steering key and reports whether ev was
// one.
func (k *keyboard) press(ev termbox.Event) bool {
	player, dir, ok := keyDirection(ev)
	if !ok {
		return false
	}
	k.Lock()
	defer k.Unlock()
	k.pending[player] = dir
	return true
}

func (k *keyboard) Steer(ctx context.Context, match *rules.Match, frame *rules.Frame, player int) (string, error) {
	k.Lock()
	defer k.Unlock()
	dir := k.pending[player]
	delete(k.pending, player)
	return dir, nil
}

// keyDirection maps WASD to player 1 and the arrow keys to player 2.
func keyDirection(ev termbox.Event) (int, string, bool) {
	if ev.Type != termbox.EventKey {
		return 0, "", false
	}
	switch ev.Key {
	case termbox.KeyArrowUp:
		return 2, rules.DirectionUp, true
	case termbox.KeyArrowDown:
		return 2, rules.DirectionDown, true
	case termbox.KeyArrowLeft:
		return 2, rules.DirectionLeft, true
	case termbox.KeyArrowRight:
		return 2, rules.DirectionRight, true
	}
	switch ev.Ch {
	case 'w', 'W':
		return 1, rules.DirectionUp, true
	case 's', 'S':
		return 1, rules.DirectionDown, true
	case 'a', 'A':
		return 1, rules.DirectionLeft, true
	case 'd', 'D':
		return 1, rules.DirectionRight, true
	}
	return 0, "", false
}
