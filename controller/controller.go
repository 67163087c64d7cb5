// Package controller stores matches and their frames. It provides the Store
// backends workers write to, and the Controller used by the API and the CLI
// to create, start and watch matches.
package controller

import (
	"context"
	"errors"

	"github.com/lightcycles/engine/rules"
	log "github.com/sirupsen/logrus"
)

// MaxFrames is the most frames a single Frames call returns.
const MaxFrames = 100

// ErrNotStartable is returned when starting a match that already ran.
var ErrNotStartable = errors.New("controller: match is not stopped")

// Controller is the match service on top of a Store.
type Controller struct {
	Store Store
}

// New will initialize a new Controller.
func New(store Store) *Controller {
	return &Controller{Store: store}
}

// Create builds the initial match and frame and saves them. The match stays
// stopped until Start is called.
func (c *Controller) Create(ctx context.Context, req *rules.CreateRequest) (*rules.Match, error) {
	match, frame, err := rules.CreateInitialMatch(req)
	if err != nil {
		return nil, err
	}
	if err := c.Store.CreateMatch(ctx, match, []*rules.Frame{frame}); err != nil {
		return nil, err
	}
	return match, nil
}

// Start marks a stopped match as running so a worker picks it up.
func (c *Controller) Start(ctx context.Context, id string) error {
	match, err := c.Store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if match.Status != rules.MatchStatusStopped {
		return ErrNotStartable
	}
	if err := c.Store.SetMatchStatus(ctx, id, rules.MatchStatusRunning); err != nil {
		return err
	}
	log.WithField("MatchID", id).Info("match started")
	return nil
}

// Status returns the match and its most recent frame.
func (c *Controller) Status(ctx context.Context, id string) (*rules.Match, *rules.Frame, error) {
	match, err := c.Store.GetMatch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	frames, err := c.Store.ListFrames(ctx, id, 1, -1)
	if err != nil {
		return nil, nil, err
	}
	var last *rules.Frame
	if len(frames) > 0 {
		last = frames[0]
	}
	return match, last, nil
}

// Frames lists up to limit frames starting at offset. A limit of zero or
// more than MaxFrames is capped at MaxFrames.
func (c *Controller) Frames(ctx context.Context, id string, offset, limit int) ([]*rules.Frame, error) {
	if limit <= 0 || limit > MaxFrames {
		limit = MaxFrames
	}
	return c.Store.ListFrames(ctx, id, limit, offset)
}
