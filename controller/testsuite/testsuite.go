// Package testsuite holds the behaviour every controller.Store must have.
package testsuite

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightcycles/engine/casting"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

func testMatch(id string, status rules.MatchStatus) *rules.Match {
	return &rules.Match{
		ID:           id,
		Status:       status,
		Width:        100,
		Height:       80,
		CellSize:     10,
		CycleLength:  3,
		Arena:        rules.ArenaWalled,
		TrailGrowth:  1,
		TickInterval: 50,
		Players: []*rules.Player{
			{Number: 1, Name: "one", Driver: rules.DriverBot},
			{Number: 2, Name: "two", Driver: "http://example.com/cycle"},
		},
	}
}

func testFrame(turn int64) *rules.Frame {
	return &rules.Frame{
		Turn: turn,
		Cycles: []*rules.CycleState{
			{
				Player: 1,
				Name:   "one",
				Color:  casting.Red,
				Alive:  true,
				Segments: []rules.Segment{
					{Position: casting.NewPoint(50, 20), Velocity: casting.NewPoint(10, 0), Text: "#", Color: casting.Red},
					{Position: casting.NewPoint(40, 20), Velocity: casting.NewPoint(10, 0), Text: "#", Color: casting.Red},
				},
			},
			{
				Player: 2,
				Name:   "two ⚡",
				Color:  casting.White,
				Alive:  false,
				Death:  &rules.Death{Turn: turn, Cause: rules.DeathCauseWallCollision},
				Segments: []rules.Segment{
					{Position: casting.NewPoint(90, 60), Velocity: casting.NewPoint(10, 0), Text: "#", Color: casting.White},
				},
			},
		},
	}
}

func testStoreLock(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()

	ctx := context.Background()

	// Lock random key.
	tok, err := s.Lock(ctx, key, "")
	require.Nil(t, err)
	require.NotEmpty(t, tok)

	// Lock without token is refused.
	_, err = s.Lock(ctx, key, "")
	require.Equal(t, controller.ErrIsLocked, err)

	// Lock with valid token, no error same token returned.
	tok2, err := s.Lock(ctx, key, tok)
	require.Nil(t, err)
	require.Equal(t, tok, tok2)

	// Unlock without valid token returns error.
	err = s.Unlock(ctx, key, "")
	require.Error(t, err)

	// Unlock with valid token no error.
	err = s.Unlock(ctx, key, tok)
	require.Nil(t, err)

	// Unlocked key can be taken again.
	_, err = s.Lock(ctx, key, "")
	require.Nil(t, err)

	// Unlock where lock doesn't exist returns no error.
	err = s.Unlock(ctx, key+"-missing", "")
	require.Nil(t, err)
}

func testStoreLockExpiry(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Negative expiry, will always be expired.
	controller.LockExpiry = -10 * time.Second
	defer func() { controller.LockExpiry = 1 * time.Second }()

	// Lock random key.
	tok, err := s.Lock(ctx, key, "")
	require.Nil(t, err)
	require.NotEmpty(t, tok)

	// Lock (with token) has expired.
	tok2, err := s.Lock(ctx, key, tok)
	require.Nil(t, err)
	require.Equal(t, tok, tok2)

	// Unlock (no token) has expired.
	err = s.Unlock(ctx, key, "")
	require.NoError(t, err)

	// Lock (no token) has expired.
	_, err = s.Lock(ctx, key, "")
	require.Nil(t, err)

	// Unlock (no token) has expired.
	err = s.Unlock(ctx, key, "")
	require.Nil(t, err)
}

func testStoreMatchStatus(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create a stopped match, nothing to pop.
	err := s.CreateMatch(ctx, testMatch(key, rules.MatchStatusStopped), nil)
	require.Nil(t, err)
	_, err = s.PopMatchID(ctx)
	require.Equal(t, controller.ErrNotFound, err)

	// Set match to running.
	err = s.SetMatchStatus(ctx, key, rules.MatchStatusRunning)
	require.Nil(t, err)

	// Pop match can find it.
	id, err := s.PopMatchID(ctx)
	require.Nil(t, err)
	require.Equal(t, key, id)

	// Set match to error.
	err = s.SetMatchStatus(ctx, key, rules.MatchStatusError)
	require.Nil(t, err)
	m, err := s.GetMatch(ctx, key)
	require.Nil(t, err)
	require.Equal(t, rules.MatchStatusError, m.Status)

	// Cannot pop.
	_, err = s.PopMatchID(ctx)
	require.Equal(t, controller.ErrNotFound, err)

	// Winner is recorded.
	require.Nil(t, s.SetMatchWinner(ctx, key, 2))
	m, err = s.GetMatch(ctx, key)
	require.Nil(t, err)
	require.Equal(t, 2, m.Winner)
}

func testStoreMatches(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a match.
	expected := testMatch(key, rules.MatchStatusRunning)
	err := s.CreateMatch(ctx, expected, nil)
	require.Nil(t, err)
	m, err := s.GetMatch(ctx, key)
	require.Nil(t, err)
	require.Equal(t, expected, m)

	// Changing the copy doesn't change the store.
	m.Players[0].Name = "changed"
	m, err = s.GetMatch(ctx, key)
	require.Nil(t, err)
	require.Equal(t, "one", m.Players[0].Name)

	// NotFound error thrown.
	_, err = s.GetMatch(ctx, key+"-missing")
	require.Equal(t, controller.ErrNotFound, err)
	require.Equal(t, controller.ErrNotFound, s.SetMatchStatus(ctx, key+"-missing", rules.MatchStatusRunning))

	// Pop match can find it.
	id, err := s.PopMatchID(ctx)
	require.Nil(t, err)
	require.Equal(t, key, id)

	// Lock test key, cannot pop.
	_, err = s.Lock(ctx, key, "")
	require.Nil(t, err)
	_, err = s.PopMatchID(ctx)
	require.NotNil(t, err)
}

func testStoreFrames(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a match.
	err := s.CreateMatch(ctx, testMatch(key, rules.MatchStatusRunning), nil)
	require.Nil(t, err)

	// Read frames, too high offset.
	frames, err := s.ListFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Read frames, 0 offset.
	frames, err = s.ListFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))

	// Push a frame.
	err = s.PushFrame(ctx, key, testFrame(0))
	require.Nil(t, err)

	// Read the frames.
	frames, err = s.ListFrames(ctx, key, 1, 0)
	require.Nil(t, err)
	require.Equal(t, 1, len(frames))
	require.Equal(t, testFrame(0), frames[0])

	// Push out of order.
	err = s.PushFrame(ctx, key, testFrame(5))
	require.Equal(t, controller.ErrInvalidSequence, err)

	// Push onto a match that doesn't exist.
	err = s.PushFrame(ctx, key+"-missing", testFrame(0))
	require.Equal(t, controller.ErrNotFound, err)

	// Read frames that don't exist.
	frames, err = s.ListFrames(ctx, key+"-missing", 1, 0)
	require.Equal(t, controller.ErrNotFound, err)
	require.Equal(t, 0, len(frames))

	// Read the frames, too high offset.
	frames, err = s.ListFrames(ctx, key, 10, 100)
	require.Nil(t, err)
	require.Equal(t, 0, len(frames))
}

func testStoreFrameWindows(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	err := s.CreateMatch(ctx, testMatch(key, rules.MatchStatusRunning), []*rules.Frame{testFrame(0)})
	require.Nil(t, err)
	for turn := int64(1); turn < 5; turn++ {
		require.Nil(t, s.PushFrame(ctx, key, testFrame(turn)))
	}

	turns := func(frames []*rules.Frame) []int64 {
		out := []int64{}
		for _, f := range frames {
			out = append(out, f.Turn)
		}
		return out
	}

	frames, err := s.ListFrames(ctx, key, 10, 0)
	require.Nil(t, err)
	require.Equal(t, []int64{0, 1, 2, 3, 4}, turns(frames))

	frames, err = s.ListFrames(ctx, key, 2, 1)
	require.Nil(t, err)
	require.Equal(t, []int64{1, 2}, turns(frames))

	frames, err = s.ListFrames(ctx, key, 1, -1)
	require.Nil(t, err)
	require.Equal(t, []int64{4}, turns(frames))

	frames, err = s.ListFrames(ctx, key, 10, -2)
	require.Nil(t, err)
	require.Equal(t, []int64{3, 4}, turns(frames))
}

func testStoreConcurrentWriters(t *testing.T, s controller.Store) {
	key := uuid.NewV4().String()
	ctx := context.Background()

	// Create and fetch a match.
	err := s.CreateMatch(ctx, testMatch(key, rules.MatchStatusRunning), nil)
	require.Nil(t, err)

	var ok uint32 // How many got the lock.
	var wg sync.WaitGroup
	wg.Add(20)

	for i := 0; i < 20; i++ {
		go func() {
			// Lock key, push allowed.
			_, errl := s.Lock(ctx, key, "")
			// If locked, push should be allowed. If not locked, push not
			// allowed.
			if errl == nil {
				atomic.AddUint32(&ok, 1)
			}
			wg.Done()
		}()
	}

	wg.Wait()

	require.Equal(t, uint32(1), ok)
}

// Suite will execute the store testsuite. newStore is called before every
// test and must hand back an empty store.
func Suite(t *testing.T, newStore func() controller.Store) {
	run := func(test func(*testing.T, controller.Store)) func(*testing.T) {
		return func(t *testing.T) { test(t, controller.InstrumentStore(newStore())) }
	}
	t.Run("Lock", run(testStoreLock))
	t.Run("LockExpiry", run(testStoreLockExpiry))
	t.Run("Matches", run(testStoreMatches))
	t.Run("MatchStatus", run(testStoreMatchStatus))
	t.Run("Frames", run(testStoreFrames))
	t.Run("FrameWindows", run(testStoreFrameWindows))
	t.Run("ConcurrentWriters", run(testStoreConcurrentWriters))
}
