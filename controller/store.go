package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lightcycles/engine/rules"
)

var (
	// LockExpiry is the time after which a lock will expire.
	LockExpiry = 1 * time.Second
	// ErrNotFound is thrown when a match is not found.
	ErrNotFound = errors.New("controller: match not found")
	// ErrIsLocked is returned when a match is locked.
	ErrIsLocked = errors.New("controller: match is locked")
	// ErrInvalidSequence is returned when a frame is pushed out of turn order.
	ErrInvalidSequence = errors.New("controller: invalid frame sequence")
)

// Store is the interface to the backend store.
type Store interface {
	// Lock will lock a specific match, returning a token that must be used to
	// write frames to the match.
	Lock(ctx context.Context, key, token string) (string, error)
	// Unlock will unlock a match if it is locked and the token used to lock it
	// is correct.
	Unlock(ctx context.Context, key, token string) error
	// PopMatchID returns a match that is unlocked and running. Workers call
	// this method to find matches to process.
	PopMatchID(context.Context) (string, error)
	// SetMatchStatus is used to set a specific match status. This operation
	// should be atomic.
	SetMatchStatus(c context.Context, id string, status rules.MatchStatus) error
	// SetMatchWinner records the winning player number.
	SetMatchWinner(c context.Context, id string, winner int) error
	// CreateMatch will insert a match with the default frames.
	CreateMatch(context.Context, *rules.Match, []*rules.Frame) error
	// PushFrame will push a frame onto the list of frames.
	PushFrame(c context.Context, id string, f *rules.Frame) error
	// ListFrames will list frames by an offset and limit, it supports
	// negative offset.
	ListFrames(c context.Context, id string, limit, offset int) ([]*rules.Frame, error)
	// GetMatch will fetch the match.
	GetMatch(context.Context, string) (*rules.Match, error)
}

// InMemStore returns an in memory implementation of the Store interface.
func InMemStore() Store {
	return &inmem{
		matches: map[string]*rules.Match{},
		frames:  map[string][]*rules.Frame{},
		locks:   LockTable{},
	}
}

type inmem struct {
	matches map[string]*rules.Match
	frames  map[string][]*rules.Frame
	locks   LockTable
	lock    sync.Mutex
}

func (in *inmem) Lock(ctx context.Context, key, token string) (string, error) {
	in.lock.Lock()
	defer in.lock.Unlock()
	return in.locks.Lock(key, token)
}

func (in *inmem) Unlock(ctx context.Context, key, token string) error {
	in.lock.Lock()
	defer in.lock.Unlock()
	return in.locks.Unlock(key, token)
}

func (in *inmem) PopMatchID(ctx context.Context) (string, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	for id, m := range in.matches {
		if !in.locks.IsLocked(id) && m.Status == rules.MatchStatusRunning {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (in *inmem) SetMatchStatus(ctx context.Context, id string, status rules.MatchStatus) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	m, ok := in.matches[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	return nil
}

func (in *inmem) SetMatchWinner(ctx context.Context, id string, winner int) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	m, ok := in.matches[id]
	if !ok {
		return ErrNotFound
	}
	m.Winner = winner
	return nil
}

func (in *inmem) CreateMatch(ctx context.Context, m *rules.Match, frames []*rules.Frame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	in.matches[m.ID] = m.Clone()
	in.frames[m.ID] = nil
	for _, f := range frames {
		if err := in.pushFrame(m.ID, f); err != nil {
			return err
		}
	}
	return nil
}

func (in *inmem) PushFrame(ctx context.Context, id string, f *rules.Frame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.matches[id]; !ok {
		return ErrNotFound
	}
	return in.pushFrame(id, f)
}

func (in *inmem) pushFrame(id string, f *rules.Frame) error {
	if f.Turn != int64(len(in.frames[id])) {
		return ErrInvalidSequence
	}
	in.frames[id] = append(in.frames[id], f)
	return nil
}

func (in *inmem) ListFrames(ctx context.Context, id string, limit, offset int) ([]*rules.Frame, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.matches[id]; !ok {
		return nil, ErrNotFound
	}
	window := FrameWindow(len(in.frames[id]), limit, offset)
	frames := in.frames[id][window.Start:window.End]
	return append([]*rules.Frame(nil), frames...), nil
}

func (in *inmem) GetMatch(ctx context.Context, id string) (*rules.Match, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if m, ok := in.matches[id]; ok {
		return m.Clone(), nil
	}
	return nil, ErrNotFound
}

// Window is a half open range of frame indexes.
type Window struct {
	Start, End int
}

// FrameWindow works out which frames a ListFrames call covers when count
// frames are stored. A negative offset counts back from the end, so offset -1
// is the last frame.
func FrameWindow(count, limit, offset int) Window {
	if offset < 0 {
		offset = count + offset
		if offset < 0 {
			offset = 0
		}
	}
	if offset >= count || limit <= 0 {
		return Window{Start: count, End: count}
	}
	end := offset + limit
	if end > count {
		end = count
	}
	return Window{Start: offset, End: end}
}
