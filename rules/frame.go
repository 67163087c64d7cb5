package rules

import "github.com/lightcycles/engine/casting"

// Frame is a snapshot of the board after a turn.
type Frame struct {
	Turn   int64
	Cycles []*CycleState
}

// CycleState is a saved cycle.
type CycleState struct {
	Player   int
	Name     string
	Color    casting.Color
	Alive    bool
	Death    *Death `json:",omitempty"`
	Segments []Segment
}

// Segment is a saved actor.
type Segment struct {
	Position casting.Point
	Velocity casting.Point
	Text     string
	Color    casting.Color
}

// Death records when and how a cycle crashed.
type Death struct {
	Turn  int64
	Cause string
}

// StateFromCycle snapshots c.
func StateFromCycle(c *casting.Cycle, name string, death *Death) *CycleState {
	state := &CycleState{
		Player: c.Player(),
		Name:   name,
		Color:  c.Color(),
		Alive:  c.IsAlive(),
		Death:  death,
	}
	for _, s := range c.Segments() {
		state.Segments = append(state.Segments, Segment{
			Position: s.Position(),
			Velocity: s.Velocity(),
			Text:     s.Text(),
			Color:    s.Color(),
		})
	}
	return state
}

// Cycle rebuilds a live cycle from the snapshot.
func (cs *CycleState) Cycle() *casting.Cycle {
	actors := make([]*casting.Actor, 0, len(cs.Segments))
	for _, s := range cs.Segments {
		a := casting.NewActor()
		a.SetPosition(s.Position)
		a.SetVelocity(s.Velocity)
		a.SetText(s.Text)
		a.SetColor(s.Color)
		actors = append(actors, a)
	}
	return casting.RestoreCycle(cs.Player, cs.Color, cs.Alive, actors)
}

// Head returns the head position, ok is false for a cycle without segments.
func (cs *CycleState) Head() (casting.Point, bool) {
	if len(cs.Segments) == 0 {
		return casting.Point{}, false
	}
	return cs.Segments[0].Position, true
}

// AliveCycles returns all the alive cycles
func (f *Frame) AliveCycles() []*CycleState {
	cycles := []*CycleState{}

	for _, c := range f.Cycles {
		if c.Alive {
			cycles = append(cycles, c)
		}
	}

	return cycles
}

// DeadCycles returns all the dead cycles
func (f *Frame) DeadCycles() []*CycleState {
	cycles := []*CycleState{}

	for _, c := range f.Cycles {
		if !c.Alive {
			cycles = append(cycles, c)
		}
	}

	return cycles
}

// Cycle returns the state of the given player's cycle, or nil.
func (f *Frame) Cycle(player int) *CycleState {
	for _, c := range f.Cycles {
		if c.Player == player {
			return c
		}
	}
	return nil
}

// Occupied returns every position covered by a segment in the frame.
func (f *Frame) Occupied() map[casting.Point]bool {
	occupied := map[casting.Point]bool{}
	for _, c := range f.Cycles {
		for _, s := range c.Segments {
			occupied[s.Position] = true
		}
	}
	return occupied
}
