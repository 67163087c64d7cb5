// Package filestore keeps matches in append only files, one file per match.
// The first line of a file describes the match, every following line is a
// frame.
package filestore

import (
	"context"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	log "github.com/sirupsen/logrus"
)

func defaultDir() string {
	return filepath.Join(homeDir(), ".cycles", "matches")
}

func homeDir() string {
	usr, err := user.Current()
	if err != nil {
		return "."
	}
	return usr.HomeDir
}

// NewFileStore returns a file based store implementation (1 file per match).
func NewFileStore(directory string) controller.Store {
	if directory == "" {
		directory = defaultDir()
	}

	return &fileStore{
		matches:   map[string]*rules.Match{},
		frames:    map[string][]*rules.Frame{},
		writers:   map[string]writer{},
		locks:     controller.LockTable{},
		directory: directory,
	}
}

type fileStore struct {
	matches   map[string]*rules.Match
	frames    map[string][]*rules.Frame
	writers   map[string]writer
	locks     controller.LockTable
	lock      sync.Mutex
	directory string
}

// closeMatch drops the cached frames and closes the handle to the match file.
// Should be called when the match is no longer running.
func (fs *fileStore) closeMatch(id string) {
	if w, ok := fs.writers[id]; ok {
		err := w.Close()
		if err != nil {
			log.WithError(err).Error("Error while closing file writer")
		}
	}
	delete(fs.frames, id)
	delete(fs.writers, id)
}

func (fs *fileStore) Lock(ctx context.Context, key, token string) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.locks.Lock(key, token)
}

func (fs *fileStore) Unlock(ctx context.Context, key, token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.locks.Unlock(key, token)
}

// PopMatchID gives the next running match. Since running matches should
// always be cached in memory it is not necessary to scan file system.
func (fs *fileStore) PopMatchID(ctx context.Context) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	for id, m := range fs.matches {
		if !fs.locks.IsLocked(id) && m.Status == rules.MatchStatusRunning {
			return id, nil
		}
	}
	return "", controller.ErrNotFound
}

func (fs *fileStore) CreateMatch(ctx context.Context, m *rules.Match, frames []*rules.Frame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	handle, err := fs.requireHandle(m.ID, true)
	if err != nil {
		return err
	}
	if err := writeMatchInfo(handle, m); err != nil {
		return err
	}

	fs.matches[m.ID] = m.Clone()
	fs.frames[m.ID] = []*rules.Frame{}
	for _, f := range frames {
		if err := fs.appendFrame(m.ID, f); err != nil {
			return err
		}
	}
	return nil
}

func (fs *fileStore) SetMatchStatus(ctx context.Context, id string, status rules.MatchStatus) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	m, err := fs.requireMatch(id)
	if err != nil {
		return err
	}

	m.Status = status
	if status != rules.MatchStatusRunning {
		fs.closeMatch(id)
	}
	return nil
}

func (fs *fileStore) SetMatchWinner(ctx context.Context, id string, winner int) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	m, err := fs.requireMatch(id)
	if err != nil {
		return err
	}
	m.Winner = winner
	return nil
}

func (fs *fileStore) PushFrame(ctx context.Context, id string, f *rules.Frame) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireMatch(id); err != nil {
		return err
	}
	return fs.appendFrame(id, f)
}

func (fs *fileStore) ListFrames(ctx context.Context, id string, limit, offset int) ([]*rules.Frame, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, err := fs.requireMatch(id); err != nil {
		return nil, err
	}
	frames, err := fs.requireFrames(id)
	if err != nil {
		return nil, err
	}

	window := controller.FrameWindow(len(frames), limit, offset)
	return append([]*rules.Frame(nil), frames[window.Start:window.End]...), nil
}

func (fs *fileStore) GetMatch(ctx context.Context, id string) (*rules.Match, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	m, err := fs.requireMatch(id)
	if err != nil {
		return nil, err
	}

	// Clone the match, since this could be modified after this is returned
	// and upset internal state inside the store.
	return m.Clone(), nil
}

func (fs *fileStore) requireHandle(id string, mustBeNew bool) (writer, error) {
	if w, ok := fs.writers[id]; ok {
		return w, nil
	}

	handle, err := openFileWriter(fs.directory, id, mustBeNew)
	if err != nil {
		return nil, err
	}

	fs.writers[id] = handle
	return handle, nil
}

func (fs *fileStore) requireMatch(id string) (*rules.Match, error) {
	// Do nothing if match already loaded.
	if m, ok := fs.matches[id]; ok {
		return m, nil
	}

	m, frames, err := ReadMatch(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.matches[id] = m
	fs.frames[id] = frames
	return m, nil
}

func (fs *fileStore) requireFrames(id string) ([]*rules.Frame, error) {
	// Do nothing if frames already loaded.
	if frames, ok := fs.frames[id]; ok {
		return frames, nil
	}

	_, frames, err := ReadMatch(fs.directory, id)
	if err != nil {
		return nil, err
	}

	fs.frames[id] = frames
	return frames, nil
}

func (fs *fileStore) appendFrame(id string, f *rules.Frame) error {
	frames, err := fs.requireFrames(id)
	if err != nil {
		return err
	}
	if f.Turn != int64(len(frames)) {
		return controller.ErrInvalidSequence
	}

	handle, err := fs.requireHandle(id, false)
	if err != nil {
		return err
	}

	// Add frame to archive file
	if err := writeFrame(handle, f); err != nil {
		return err
	}

	// Add frame to in-memory cache
	fs.frames[id] = append(frames, f)
	return nil
}

func getFilePath(directory string, id string) string {
	return filepath.Join(directory, id) + ".cycles"
}
