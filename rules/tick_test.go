package rules

import (
	"testing"

	"github.com/lightcycles/engine/casting"
	"github.com/stretchr/testify/require"
)

var (
	right = casting.NewPoint(10, 0)
	left  = casting.NewPoint(-10, 0)
	up    = casting.NewPoint(0, -10)
	down  = casting.NewPoint(0, 10)
)

func twoCycleFrame(turn int64) *Frame {
	return &Frame{
		Turn: turn,
		Cycles: []*CycleState{
			straight(1, 50, 20, right, 3),
			straight(2, 50, 60, right, 3),
		},
	}
}

func TestGameTickNilFrame(t *testing.T) {
	_, err := GameTick(testMatch(), nil, nil)
	require.Equal(t, ErrNoFrame, err)
}

func TestGameTickUpdatesTurnCounter(t *testing.T) {
	f, err := GameTick(testMatch(), twoCycleFrame(5), nil)
	require.NoError(t, err)
	require.Equal(t, int64(6), f.Turn)
}

func TestGameTickMovesAndGrowsTrail(t *testing.T) {
	f, err := GameTick(testMatch(), twoCycleFrame(0), nil)
	require.NoError(t, err)
	require.Len(t, f.Cycles, 2)

	c := f.Cycle(1)
	require.True(t, c.Alive)
	require.Nil(t, c.Death)
	require.Equal(t, []casting.Point{
		{X: 60, Y: 20}, {X: 50, Y: 20}, {X: 40, Y: 20}, {X: 30, Y: 20},
	}, positions(c))
	for _, s := range c.Segments {
		require.Equal(t, right, s.Velocity)
		require.Equal(t, casting.Red, s.Color)
	}
	require.Equal(t, "cycle", c.Name)
}

func TestGameTickTurnsHead(t *testing.T) {
	f, err := GameTick(testMatch(), twoCycleFrame(0), map[int]string{1: DirectionUp})
	require.NoError(t, err)

	c := f.Cycle(1)
	require.Equal(t, []casting.Point{
		{X: 50, Y: 10}, {X: 50, Y: 20}, {X: 40, Y: 20}, {X: 30, Y: 20},
	}, positions(c))
	require.Equal(t, up, c.Segments[0].Velocity)
	require.Equal(t, up, c.Segments[1].Velocity)
	require.Equal(t, right, c.Segments[2].Velocity)

	// Player 2 was not steered.
	require.Equal(t, casting.NewPoint(60, 60), f.Cycle(2).Segments[0].Position)
}

func TestGameTickIgnoresReversalAndInvalidDirections(t *testing.T) {
	for _, dir := range []string{DirectionLeft, "sideways", ""} {
		f, err := GameTick(testMatch(), twoCycleFrame(0), map[int]string{1: dir})
		require.NoError(t, err)
		require.Equal(t, casting.NewPoint(60, 20), f.Cycle(1).Segments[0].Position, "direction %q", dir)
		require.Equal(t, right, f.Cycle(1).Segments[0].Velocity)
	}
}

func TestGameTickDoesNotModifyLastFrame(t *testing.T) {
	last := twoCycleFrame(3)
	before := positions(last.Cycles[0])

	_, err := GameTick(testMatch(), last, map[int]string{1: DirectionDown})
	require.NoError(t, err)

	require.Equal(t, before, positions(last.Cycles[0]))
	require.Equal(t, right, last.Cycles[0].Segments[0].Velocity)
	require.Len(t, last.Cycles[0].Segments, 3)
}

func TestGameTickWallCollision(t *testing.T) {
	last := &Frame{
		Turn: 7,
		Cycles: []*CycleState{
			straight(1, 90, 20, right, 3),
			straight(2, 50, 60, right, 3),
		},
	}
	f, err := GameTick(testMatch(), last, nil)
	require.NoError(t, err)

	c := f.Cycle(1)
	require.False(t, c.Alive)
	require.Equal(t, &Death{Turn: 8, Cause: DeathCauseWallCollision}, c.Death)
	require.Equal(t, casting.White, c.Color)
	for _, s := range c.Segments {
		require.Equal(t, casting.White, s.Color)
	}
	require.True(t, f.Cycle(2).Alive)
	require.True(t, CheckForGameOver(f))
	require.Equal(t, 2, Winner(f))
}

func TestGameTickWrappedArena(t *testing.T) {
	m := testMatch()
	m.Arena = ArenaWrapped
	last := &Frame{
		Cycles: []*CycleState{
			straight(1, 90, 20, right, 3),
			straight(2, 0, 60, left, 3),
		},
	}
	f, err := GameTick(m, last, nil)
	require.NoError(t, err)

	require.True(t, f.Cycle(1).Alive)
	require.Equal(t, casting.NewPoint(0, 20), f.Cycle(1).Segments[0].Position)
	require.True(t, f.Cycle(2).Alive)
	require.Equal(t, casting.NewPoint(90, 60), f.Cycle(2).Segments[0].Position)
	for _, c := range f.Cycles {
		for _, s := range c.Segments {
			require.True(t, s.Position.X >= 0 && s.Position.X < m.Width)
		}
	}
}

func TestGameTickWrappedReversalAcrossEdge(t *testing.T) {
	m := testMatch()
	m.Arena = ArenaWrapped
	c := straight(1, 0, 20, right, 3)
	c.Segments[1].Position = casting.NewPoint(90, 20)
	c.Segments[2].Position = casting.NewPoint(80, 20)
	last := &Frame{Cycles: []*CycleState{c, straight(2, 50, 60, right, 3)}}

	f, err := GameTick(m, last, map[int]string{1: DirectionLeft})
	require.NoError(t, err)
	require.True(t, f.Cycle(1).Alive)
	require.Equal(t, casting.NewPoint(10, 20), f.Cycle(1).Segments[0].Position)
}

func TestGameTickHeadToHeadCollision(t *testing.T) {
	last := &Frame{
		Cycles: []*CycleState{
			straight(1, 40, 40, right, 3),
			straight(2, 60, 40, left, 3),
		},
	}
	f, err := GameTick(testMatch(), last, nil)
	require.NoError(t, err)

	for _, c := range f.Cycles {
		require.False(t, c.Alive)
		require.Equal(t, DeathCauseHeadToHeadCollision, c.Death.Cause)
	}
	require.True(t, CheckForGameOver(f))
	require.Equal(t, 0, Winner(f))
}

func TestGameTickCycleCollision(t *testing.T) {
	last := &Frame{
		Cycles: []*CycleState{
			straight(1, 40, 30, down, 3),
			straight(2, 50, 40, right, 4),
		},
	}
	f, err := GameTick(testMatch(), last, nil)
	require.NoError(t, err)

	require.False(t, f.Cycle(1).Alive)
	require.Equal(t, DeathCauseCycleCollision, f.Cycle(1).Death.Cause)
	require.True(t, f.Cycle(2).Alive)
	require.Equal(t, 2, Winner(f))
}

func TestGameTickSelfCollision(t *testing.T) {
	seg := func(x, y int, v casting.Point) Segment {
		return Segment{Position: casting.NewPoint(x, y), Velocity: v, Text: "#", Color: casting.Red}
	}
	curled := &CycleState{
		Player: 1,
		Alive:  true,
		Color:  casting.Red,
		Segments: []Segment{
			seg(50, 50, down),
			seg(50, 40, down),
			seg(60, 40, left),
			seg(60, 50, up),
			seg(60, 60, up),
			seg(50, 60, right),
			seg(40, 60, right),
		},
	}
	last := &Frame{Cycles: []*CycleState{curled, straight(2, 50, 10, right, 3)}}

	f, err := GameTick(testMatch(), last, nil)
	require.NoError(t, err)
	require.False(t, f.Cycle(1).Alive)
	require.Equal(t, DeathCauseSelfCollision, f.Cycle(1).Death.Cause)
}

func TestGameTickDeadCyclesDoNotUpdate(t *testing.T) {
	dead := straight(1, 50, 20, right, 3)
	dead.Alive = false
	dead.Color = casting.White
	dead.Death = &Death{Turn: 2, Cause: DeathCauseWallCollision}
	last := &Frame{Turn: 4, Cycles: []*CycleState{dead, straight(2, 50, 60, right, 3)}}

	f, err := GameTick(testMatch(), last, map[int]string{1: DirectionUp})
	require.NoError(t, err)

	c := f.Cycle(1)
	require.False(t, c.Alive)
	require.Equal(t, positions(dead), positions(c))
	require.Equal(t, right, c.Segments[0].Velocity)
	require.Equal(t, &Death{Turn: 2, Cause: DeathCauseWallCollision}, c.Death)
}

func TestGameTickDeadTrailIsAnObstacle(t *testing.T) {
	dead := straight(1, 50, 40, right, 4)
	dead.Alive = false
	last := &Frame{Cycles: []*CycleState{dead, straight(2, 40, 30, down, 3)}}

	f, err := GameTick(testMatch(), last, nil)
	require.NoError(t, err)
	require.False(t, f.Cycle(2).Alive)
	require.Equal(t, DeathCauseCycleCollision, f.Cycle(2).Death.Cause)
}
