// Package worker provides the actual running of matches. It pops running
// matches off the store, holds their lock and ticks them to completion.
package worker

import (
	"context"
	"time"

	"github.com/lightcycles/engine/config"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	matchesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "worker",
			Name:      "matches_total",
			Help:      "Matches run to the end, by final status.",
		},
		[]string{"status"},
	)
)

func init() { prometheus.MustRegister(matchesCounter) }

// Worker is the worker interface. It wraps a RunMatch function which is where
// all of the match logic should live.
type Worker struct {
	Store             controller.Store
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	RunMatch          RunFunc
	// Drivers builds the drivers for a popped match, rules.DefaultDrivers
	// when nil.
	Drivers func(*rules.Match) map[int]rules.Driver

	limiter *rate.Limiter
}

// Run will run the worker in a loop until ctx is done.
func (w *Worker) Run(ctx context.Context, workerID int) {
	for {
		if err := w.run(ctx, workerID); err != nil {
			if errors.Cause(err) != controller.ErrNotFound && ctx.Err() == nil {
				log.WithError(err).WithField("Worker", workerID).Warn("run failed")
			}

			select {
			case <-time.After(w.PollInterval):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Worker) run(ctx context.Context, workerID int) error {
	if w.limiter == nil {
		w.limiter = rate.NewLimiter(config.PopRate, config.PopBurstRate)
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	// Pop an item of work.
	id, err := w.Store.PopMatchID(ctx)
	if err != nil {
		return err
	}
	return w.Process(ctx, workerID, id)
}

// Process locks the match, runs it with the worker's drivers and unlocks it
// once the run returns. The lock is held with a heartbeat for the whole run.
func (w *Worker) Process(ctx context.Context, workerID int, id string) error {
	// Attempt to get the lock initially.
	token, err := w.Store.Lock(ctx, id, "")
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"Worker":  workerID,
		"MatchID": id,
	}).Info("acquired lock")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		log.WithFields(log.Fields{"Worker": workerID, "MatchID": id}).Info("unlocking")
		// The run context may be cancelled already, unlocking must still go
		// through.
		if err := w.Store.Unlock(context.Background(), id, token); err != nil {
			log.WithError(err).WithFields(log.Fields{"Worker": workerID, "MatchID": id}).Warn("unlock failed")
		}
	}()

	// Hold the lock, heartbeating every HeartbeatInterval.
	go func() {
		t := time.NewTicker(w.heartbeatInterval())
		defer t.Stop()
		for {
			select {
			case <-t.C:
				_, err := w.Store.Lock(ctx, id, token)
				if err != nil {
					log.WithError(err).WithFields(log.Fields{"Worker": workerID, "MatchID": id}).Warn("lock expired during heartbeat")
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	match, err := w.Store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	drivers := w.Drivers
	if drivers == nil {
		drivers = rules.DefaultDrivers
	}

	// Perform the actual work, this should respect context and Done() rules.
	runMatch := w.RunMatch
	if runMatch == nil {
		runMatch = Runner
	}
	return runMatch(ctx, w.Store, id, drivers(match))
}

func (w *Worker) heartbeatInterval() time.Duration {
	if w.HeartbeatInterval > 0 {
		return w.HeartbeatInterval
	}
	if controller.LockExpiry > 0 {
		return controller.LockExpiry / 2
	}
	return 100 * time.Millisecond
}
