package commands

import (
	"testing"

	"github.com/lightcycles/engine/casting"
	"github.com/lightcycles/engine/rules"
	termbox "github.com/nsf/termbox-go"
	"github.com/stretchr/testify/require"
)

func TestAttribute(t *testing.T) {
	require.Equal(t, termbox.ColorRed, attribute(casting.Red))
	require.Equal(t, termbox.ColorYellow, attribute(casting.Yellow))
	require.Equal(t, termbox.ColorWhite, attribute(casting.White))
	require.Equal(t, termbox.ColorBlack, attribute(casting.Color{Alpha: 255}))
	require.Equal(t, termbox.ColorCyan, attribute(casting.Color{Green: 200, Blue: 130}))
}

func TestTexts(t *testing.T) {
	c := &rules.CycleState{Player: 2, Name: "two"}
	require.Equal(t, "two (2)", cycleText(c))
	c.Death = &rules.Death{Turn: 7, Cause: rules.DeathCauseWallCollision}
	require.Equal(t, "two (2) - wall-collision on turn 7", cycleText(c))

	require.Equal(t, '#', segmentRune(rules.Segment{Text: "#"}))
	require.Equal(t, ' ', segmentRune(rules.Segment{}))

	match := &rules.Match{
		Status:  rules.MatchStatusComplete,
		Winner:  1,
		Players: []*rules.Player{{Number: 1, Name: "one"}, {Number: 2, Name: "two"}},
	}
	require.Equal(t, "one wins!", winnerText(match))
	match.Winner = 0
	require.Equal(t, "Nobody wins.", winnerText(match))
	match.Status = rules.MatchStatusRunning
	require.Equal(t, "The match has not finished.", winnerText(match))
	match.Status = rules.MatchStatusError
	require.Equal(t, "The match ended with an error.", winnerText(match))
}
