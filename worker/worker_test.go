package worker

import (
	"context"
	"testing"
	"time"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/stretchr/testify/require"
)

func TestWorker_RunNoMatch(t *testing.T) {
	w := &Worker{
		Store:             controller.InMemStore(),
		PollInterval:      200 * time.Millisecond,
		HeartbeatInterval: 200 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := w.run(ctx, 1)
	require.Equal(t, controller.ErrNotFound, err)
}

func TestWorker_Run(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	w := &Worker{
		Store:             ctrl.Store,
		PollInterval:      1 * time.Millisecond,
		HeartbeatInterval: 1 * time.Millisecond,
	}
	id := startedMatch(t, ctrl, smallMatch(rules.DriverBot, rules.DriverBot))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.run(ctx, 1)
	require.NoError(t, err)

	m, _, err := ctrl.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, rules.MatchStatusComplete, m.Status)

	// The lock was given back.
	_, err = ctrl.Store.Lock(ctx, id, "")
	require.NoError(t, err)
}

func TestWorker_RunUsesDrivers(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	var built *rules.Match
	w := &Worker{
		Store:             ctrl.Store,
		HeartbeatInterval: 1 * time.Millisecond,
		Drivers: func(m *rules.Match) map[int]rules.Driver {
			built = m
			return straightAndUp()
		},
		RunMatch: func(ctx context.Context, store controller.Store, id string, drivers map[int]rules.Driver) error {
			require.Len(t, drivers, 2)
			// The worker holds the lock while the match runs.
			_, err := store.Lock(ctx, id, "")
			require.Equal(t, controller.ErrIsLocked, err)
			return Runner(ctx, store, id, drivers)
		},
	}
	id := startedMatch(t, ctrl, smallMatch(rules.DriverHuman, rules.DriverHuman))

	require.NoError(t, w.run(context.Background(), 1))
	require.Equal(t, id, built.ID)

	m, err := ctrl.Store.GetMatch(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 1, m.Winner)
}

func TestWorker_RunLoop(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	w := &Worker{
		Store:             ctrl.Store,
		PollInterval:      1 * time.Millisecond,
		HeartbeatInterval: 1 * time.Millisecond,
	}
	first := startedMatch(t, ctrl, smallMatch(rules.DriverBot, rules.DriverBot))
	second := startedMatch(t, ctrl, smallMatch(rules.DriverBot, rules.DriverBot))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	w.Run(ctx, 1)

	for _, id := range []string{first, second} {
		m, err := ctrl.Store.GetMatch(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, rules.MatchStatusComplete, m.Status)
	}
}

func TestWorker_ProcessLocked(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	w := &Worker{Store: ctrl.Store}
	id := startedMatch(t, ctrl, smallMatch(rules.DriverBot, rules.DriverBot))

	_, err := ctrl.Store.Lock(context.Background(), id, "someone-else")
	require.NoError(t, err)

	err = w.Process(context.Background(), 1, id)
	require.Equal(t, controller.ErrIsLocked, err)

	m, err := ctrl.Store.GetMatch(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, rules.MatchStatusRunning, m.Status)
}
