package commands

import (
	"context"
	"testing"

	"github.com/lightcycles/engine/rules"
	termbox "github.com/nsf/termbox-go"
	"github.com/stretchr/testify/require"
)

func TestKeyDirection(t *testing.T) {
	tests := []struct {
		name   string
		ev     termbox.Event
		player int
		dir    string
		ok     bool
	}{
		{"W", termbox.Event{Type: termbox.EventKey, Ch: 'w'}, 1, rules.DirectionUp, true},
		{"ShiftA", termbox.Event{Type: termbox.EventKey, Ch: 'A'}, 1, rules.DirectionLeft, true},
		{"S", termbox.Event{Type: termbox.EventKey, Ch: 's'}, 1, rules.DirectionDown, true},
		{"D", termbox.Event{Type: termbox.EventKey, Ch: 'd'}, 1, rules.DirectionRight, true},
		{"Up", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp}, 2, rules.DirectionUp, true},
		{"Left", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowLeft}, 2, rules.DirectionLeft, true},
		{"Other", termbox.Event{Type: termbox.EventKey, Ch: 'q'}, 0, "", false},
		{"Resize", termbox.Event{Type: termbox.EventResize, Ch: 'w'}, 0, "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			player, dir, ok := keyDirection(test.ev)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.player, player)
			require.Equal(t, test.dir, dir)
		})
	}
}

func TestKeyboard(t *testing.T) {
	ctx := context.Background()
	keys := newKeyboard()

	require.True(t, keys.press(termbox.Event{Type: termbox.EventKey, Ch: 'w'}))
	require.True(t, keys.press(termbox.Event{Type: termbox.EventKey, Ch: 'a'}))
	require.False(t, keys.press(termbox.Event{Type: termbox.EventKey, Ch: 'x'}))

	// The last press before the tick wins, and is only used once.
	dir, err := keys.Steer(ctx, nil, nil, 1)
	require.NoError(t, err)
	require.Equal(t, rules.DirectionLeft, dir)
	dir, err = keys.Steer(ctx, nil, nil, 1)
	require.NoError(t, err)
	require.Equal(t, "", dir)

	dir, err = keys.Steer(ctx, nil, nil, 2)
	require.NoError(t, err)
	require.Equal(t, "", dir)
}

func TestPlayDrivers(t *testing.T) {
	playBot1, playBot2 = false, true
	defer func() { playBot1, playBot2 = false, false }()

	req := playRequest()
	require.Equal(t, rules.DriverHuman, req.Players[0].Driver)
	require.Equal(t, rules.DriverBot, req.Players[1].Driver)
	require.Equal(t, playName1, req.Players[0].Name)

	match, _, err := rules.CreateInitialMatch(req)
	require.NoError(t, err)

	keys := newKeyboard()
	drivers := playDrivers(keys)(match)
	require.Len(t, drivers, 2)
	require.Equal(t, keys, drivers[1])
	require.Equal(t, rules.Bot{}, drivers[2])
}
