package rules

import (
	"context"
	"testing"

	"github.com/lightcycles/engine/casting"
	"github.com/stretchr/testify/require"
)

func TestBotKeepsGoingWhenClear(t *testing.T) {
	dir, err := Bot{}.Steer(context.Background(), testMatch(), twoCycleFrame(0), 1)
	require.NoError(t, err)
	require.Equal(t, "", dir)
}

func TestBotTurnsAwayFromWall(t *testing.T) {
	f := &Frame{Cycles: []*CycleState{
		straight(1, 90, 20, right, 3),
		straight(2, 50, 60, right, 3),
	}}
	dir, err := Bot{}.Steer(context.Background(), testMatch(), f, 1)
	require.NoError(t, err)
	require.Equal(t, DirectionUp, dir)
}

func TestBotTurnsToTheFreeSide(t *testing.T) {
	// Heading right into the wall along the top row, up is off the board.
	f := &Frame{Cycles: []*CycleState{
		straight(1, 90, 0, right, 3),
		straight(2, 50, 60, right, 3),
	}}
	dir, err := Bot{}.Steer(context.Background(), testMatch(), f, 1)
	require.NoError(t, err)
	require.Equal(t, DirectionDown, dir)
}

func TestBotAvoidsTrails(t *testing.T) {
	// Player 2's trail runs across the cell in front of player 1.
	f := &Frame{Cycles: []*CycleState{
		straight(1, 40, 30, down, 3),
		straight(2, 60, 40, right, 4),
	}}
	dir, err := Bot{}.Steer(context.Background(), testMatch(), f, 1)
	require.NoError(t, err)
	require.Equal(t, DirectionRight, dir)
}

func TestBotWrappedArena(t *testing.T) {
	m := testMatch()
	m.Arena = ArenaWrapped
	f := &Frame{Cycles: []*CycleState{
		straight(1, 90, 20, right, 3),
		straight(2, 50, 60, right, 3),
	}}
	dir, err := Bot{}.Steer(context.Background(), m, f, 1)
	require.NoError(t, err)
	require.Equal(t, "", dir)
}

func TestBotUnknownPlayer(t *testing.T) {
	dir, err := Bot{}.Steer(context.Background(), testMatch(), twoCycleFrame(0), 5)
	require.NoError(t, err)
	require.Equal(t, "", dir)
}

func TestBotMatchRunsToTheEnd(t *testing.T) {
	m := testMatch()
	f := &Frame{Cycles: []*CycleState{
		straight(1, 50, 20, right, 3),
		straight(2, 40, 60, left, 3),
	}}
	drivers := DefaultDrivers(m)
	require.Len(t, drivers, 2)

	for i := 0; i < 1000 && !CheckForGameOver(f); i++ {
		turns := GatherTurns(context.Background(), m, f, drivers)
		next, err := GameTick(m, f, turns)
		require.NoError(t, err)
		f = next
	}
	require.True(t, CheckForGameOver(f))
	for _, c := range f.DeadCycles() {
		require.NotNil(t, c.Death)
		require.Equal(t, casting.White, c.Color)
	}
}
