package rules

import (
	"time"

	"github.com/lightcycles/engine/casting"
)

// Arena decides what happens at the edge of the board.
type Arena string

const (
	// ArenaWalled kills a cycle that drives off the board.
	ArenaWalled Arena = "walled"
	// ArenaWrapped brings a cycle back on the opposite edge.
	ArenaWrapped Arena = "wrapped"
)

// Driver names that aren't URLs.
const (
	DriverBot   = "bot"
	DriverHuman = "human"
)

// Match is everything about a match that doesn't change from tick to tick.
type Match struct {
	ID           string
	Status       MatchStatus
	Width        int
	Height       int
	CellSize     int
	CycleLength  int
	Arena        Arena
	TrailGrowth  int
	TickInterval int64 // milliseconds
	Players      []*Player
	Winner       int
}

// Player is one of the two people (or programs) steering a cycle.
type Player struct {
	Number int
	Name   string
	Driver string
}

// Settings returns the cycle layout settings for the match board.
func (m *Match) Settings() casting.Settings {
	return casting.Settings{
		MaxX:        m.Width,
		MaxY:        m.Height,
		CellSize:    m.CellSize,
		CycleLength: m.CycleLength,
	}
}

// Tick returns the time between two ticks.
func (m *Match) Tick() time.Duration {
	return time.Duration(m.TickInterval) * time.Millisecond
}

// Player returns the player with the given number, or nil.
func (m *Match) Player(number int) *Player {
	for _, p := range m.Players {
		if p.Number == number {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	clone := *m
	clone.Players = make([]*Player, 0, len(m.Players))
	for _, p := range m.Players {
		player := *p
		clone.Players = append(clone.Players, &player)
	}
	return &clone
}
