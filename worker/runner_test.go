package worker

import (
	"context"
	"testing"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/stretchr/testify/require"
)

func smallMatch(drivers ...string) *rules.CreateRequest {
	req := &rules.CreateRequest{
		Width:        100,
		Height:       80,
		CellSize:     10,
		CycleLength:  3,
		TickInterval: 1,
	}
	for _, d := range drivers {
		req.Players = append(req.Players, rules.PlayerOptions{Driver: d})
	}
	return req
}

func startedMatch(t *testing.T, ctrl *controller.Controller, req *rules.CreateRequest) string {
	m, err := ctrl.Create(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background(), m.ID))
	return m.ID
}

func straightAndUp() map[int]rules.Driver {
	return map[int]rules.Driver{
		1: rules.DriverFunc(func(context.Context, *rules.Match, *rules.Frame, int) (string, error) {
			return "", nil
		}),
		2: rules.DriverFunc(func(context.Context, *rules.Match, *rules.Frame, int) (string, error) {
			return rules.DirectionUp, nil
		}),
	}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	ctrl := controller.New(controller.InMemStore())
	id := startedMatch(t, ctrl, smallMatch(rules.DriverHuman, rules.DriverHuman))

	// Player 2 turns up and drives into player 1's trail on turn 4.
	err := Runner(ctx, ctrl.Store, id, straightAndUp())
	require.NoError(t, err)

	m, last, err := ctrl.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, rules.MatchStatusComplete, m.Status)
	require.Equal(t, 1, m.Winner)
	require.Equal(t, int64(4), last.Turn)
	require.Equal(t, rules.DeathCauseCycleCollision, last.Cycle(2).Death.Cause)

	frames, err := ctrl.Frames(ctx, id, 0, 0)
	require.NoError(t, err)
	require.Len(t, frames, 5)
}

func TestRunnerBots(t *testing.T) {
	ctx := context.Background()
	ctrl := controller.New(controller.InMemStore())
	id := startedMatch(t, ctrl, smallMatch(rules.DriverBot, rules.DriverBot))
	m, err := ctrl.Store.GetMatch(ctx, id)
	require.NoError(t, err)

	err = Runner(ctx, ctrl.Store, id, rules.DefaultDrivers(m))
	require.NoError(t, err)

	m, last, err := ctrl.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, rules.MatchStatusComplete, m.Status)
	require.True(t, rules.CheckForGameOver(last))
	require.Equal(t, rules.Winner(last), m.Winner)
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	store := controller.InMemStore()

	t.Run("NoMatch", func(t *testing.T) {
		err := Runner(ctx, store, "missing", nil)
		require.Equal(t, controller.ErrNotFound, err)
	})

	t.Run("NoFrames", func(t *testing.T) {
		m, _, err := rules.CreateInitialMatch(smallMatch(rules.DriverBot, rules.DriverBot))
		require.NoError(t, err)
		m.Status = rules.MatchStatusRunning
		require.NoError(t, store.CreateMatch(ctx, m, nil))

		err = Runner(ctx, store, m.ID, nil)
		require.Equal(t, rules.ErrNoFrame, err)

		stored, err := store.GetMatch(ctx, m.ID)
		require.NoError(t, err)
		require.Equal(t, rules.MatchStatusError, stored.Status)
	})
}

func TestRunnerCancel(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	id := startedMatch(t, ctrl, smallMatch(rules.DriverHuman, rules.DriverHuman))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopAtThree := rules.DriverFunc(func(_ context.Context, _ *rules.Match, f *rules.Frame, _ int) (string, error) {
		if f.Turn == 3 {
			cancel()
		}
		return "", nil
	})

	err := Runner(ctx, ctrl.Store, id, map[int]rules.Driver{1: stopAtThree})
	require.Equal(t, context.Canceled, err)

	m, last, err := ctrl.Status(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, rules.MatchStatusRunning, m.Status)
	require.Equal(t, int64(4), last.Turn)
}

func TestRunnerFinishedMatch(t *testing.T) {
	ctx := context.Background()
	ctrl := controller.New(controller.InMemStore())
	id := startedMatch(t, ctrl, smallMatch(rules.DriverHuman, rules.DriverHuman))
	require.NoError(t, Runner(ctx, ctrl.Store, id, straightAndUp()))

	// Running it again only marks it complete.
	require.NoError(t, ctrl.Store.SetMatchStatus(ctx, id, rules.MatchStatusRunning))
	require.NoError(t, Runner(ctx, ctrl.Store, id, straightAndUp()))

	frames, err := ctrl.Frames(ctx, id, 0, 0)
	require.NoError(t, err)
	require.Len(t, frames, 5)
}
