package rules

import (
	"github.com/lightcycles/engine/casting"
)

// testMatch is a small walled board: 10x8 cells of 10 units each.
func testMatch() *Match {
	return &Match{
		ID:           "match_123",
		Status:       MatchStatusRunning,
		Width:        100,
		Height:       80,
		CellSize:     10,
		CycleLength:  3,
		Arena:        ArenaWalled,
		TrailGrowth:  1,
		TickInterval: 50,
		Players: []*Player{
			{Number: 1, Name: "one", Driver: DriverBot},
			{Number: 2, Name: "two", Driver: DriverBot},
		},
	}
}

// straight builds a cycle state with the head at (x, y) and the body trailing
// behind it, everything moving with velocity v.
func straight(player int, x, y int, v casting.Point, length int) *CycleState {
	cs := &CycleState{
		Player: player,
		Name:   "cycle",
		Color:  casting.Red,
		Alive:  true,
	}
	p := casting.NewPoint(x, y)
	for i := 0; i < length; i++ {
		cs.Segments = append(cs.Segments, Segment{
			Position: p,
			Velocity: v,
			Text:     "#",
			Color:    casting.Red,
		})
		p = p.Add(v.Reverse())
	}
	return cs
}

func positions(cs *CycleState) []casting.Point {
	points := []casting.Point{}
	for _, s := range cs.Segments {
		points = append(points, s.Position)
	}
	return points
}
