package commands

import (
	"sync"

	"github.com/lightcycles/engine/rules"
)

// frameHolder collects the frames of a replay while they are still being
// loaded.
type frameHolder struct {
	sync.RWMutex
	frames []*rules.Frame
	first  chan struct{}
}

func newFrameHolder() *frameHolder {
	return &frameHolder{first: make(chan struct{})}
}

func (fh *frameHolder) append(frame *rules.Frame) {
	fh.Lock()
	defer fh.Unlock()

	fh.frames = append(fh.frames, frame)
	if len(fh.frames) == 1 {
		close(fh.first)
	}
}

func (fh *frameHolder) get(index int) *rules.Frame {
	fh.RLock()
	defer fh.RUnlock()

	if index < 0 || index >= len(fh.frames) {
		return nil
	}

	return fh.frames[index]
}

// initialFrame is closed once the first frame arrived.
func (fh *frameHolder) initialFrame() <-chan struct{} {
	return fh.first
}

func (fh *frameHolder) count() int {
	fh.RLock()
	defer fh.RUnlock()

	return len(fh.frames)
}
