package filestore

import (
	"github.com/lightcycles/engine/casting"
	"github.com/lightcycles/engine/rules"
)

type matchInfo struct {
	ID           string
	Width        int
	Height       int
	CellSize     int
	CycleLength  int
	Arena        rules.Arena
	TrailGrowth  int
	TickInterval int64
	Players      []playerInfo
}

type playerInfo struct {
	Number int
	Name   string
	Driver string
}

type frame struct {
	Turn   int64
	Cycles []cycleState
}

type cycleState struct {
	Player int
	Name   string
	Color  casting.Color
	Alive  bool
	Death  *death `json:",omitempty"`
	Body   []segment
}

type segment struct {
	X, Y   int
	VX, VY int
	Text   string
	Color  casting.Color
}

type death struct {
	Cause string
	Turn  int64
}

type matchArchive struct {
	info   matchInfo
	frames []frame
}

func toMatchInfo(m *rules.Match) matchInfo {
	players := []playerInfo{}
	for _, p := range m.Players {
		players = append(players, playerInfo{Number: p.Number, Name: p.Name, Driver: p.Driver})
	}

	return matchInfo{
		ID:           m.ID,
		Width:        m.Width,
		Height:       m.Height,
		CellSize:     m.CellSize,
		CycleLength:  m.CycleLength,
		Arena:        m.Arena,
		TrailGrowth:  m.TrailGrowth,
		TickInterval: m.TickInterval,
		Players:      players,
	}
}

func toFrame(f *rules.Frame) frame {
	cycles := []cycleState{}
	for _, c := range f.Cycles {
		state := cycleState{
			Player: c.Player,
			Name:   c.Name,
			Color:  c.Color,
			Alive:  c.Alive,
			Body:   []segment{},
		}
		if c.Death != nil {
			state.Death = &death{Cause: c.Death.Cause, Turn: c.Death.Turn}
		}
		for _, s := range c.Segments {
			state.Body = append(state.Body, segment{
				X:     s.Position.X,
				Y:     s.Position.Y,
				VX:    s.Velocity.X,
				VY:    s.Velocity.Y,
				Text:  s.Text,
				Color: s.Color,
			})
		}
		cycles = append(cycles, state)
	}

	return frame{
		Turn:   f.Turn,
		Cycles: cycles,
	}
}

func fromFrame(f frame) *rules.Frame {
	out := &rules.Frame{Turn: f.Turn}
	for _, c := range f.Cycles {
		state := &rules.CycleState{
			Player:   c.Player,
			Name:     c.Name,
			Color:    c.Color,
			Alive:    c.Alive,
			Segments: []rules.Segment{},
		}
		if c.Death != nil {
			state.Death = &rules.Death{Cause: c.Death.Cause, Turn: c.Death.Turn}
		}
		for _, s := range c.Body {
			state.Segments = append(state.Segments, rules.Segment{
				Position: casting.NewPoint(s.X, s.Y),
				Velocity: casting.NewPoint(s.VX, s.VY),
				Text:     s.Text,
				Color:    s.Color,
			})
		}
		out.Cycles = append(out.Cycles, state)
	}
	return out
}

// fromArchive rebuilds a match and its frames. Status isn't kept in the file:
// a match whose last frame is over is complete, anything else is stopped.
func fromArchive(archive matchArchive) (*rules.Match, []*rules.Frame) {
	info := archive.info
	m := &rules.Match{
		ID:           info.ID,
		Status:       rules.MatchStatusStopped,
		Width:        info.Width,
		Height:       info.Height,
		CellSize:     info.CellSize,
		CycleLength:  info.CycleLength,
		Arena:        info.Arena,
		TrailGrowth:  info.TrailGrowth,
		TickInterval: info.TickInterval,
		Players:      []*rules.Player{},
	}
	for _, p := range info.Players {
		m.Players = append(m.Players, &rules.Player{Number: p.Number, Name: p.Name, Driver: p.Driver})
	}

	frames := []*rules.Frame{}
	for _, f := range archive.frames {
		frames = append(frames, fromFrame(f))
	}
	if len(frames) > 0 {
		last := frames[len(frames)-1]
		if rules.CheckForGameOver(last) {
			m.Status = rules.MatchStatusComplete
			m.Winner = rules.Winner(last)
		}
	}
	return m, frames
}
