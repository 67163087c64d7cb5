package worker

import (
	"context"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RunFunc runs a single match.
type RunFunc func(ctx context.Context, store controller.Store, id string, drivers map[int]rules.Driver) error

// Runner will run an invidual match to completion. It picks up from the last
// stored frame, ticking at the match's tick interval, and writes every new
// frame to the store.
func Runner(ctx context.Context, store controller.Store, id string, drivers map[int]rules.Driver) error {
	match, err := store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	frames, err := store.ListFrames(ctx, id, 1, -1)
	if err != nil {
		return err
	}
	var lastFrame *rules.Frame
	if len(frames) > 0 {
		lastFrame = frames[0]
	}

	if lastFrame != nil && lastFrame.Turn == 0 {
		rules.NotifyMatchStart(match, lastFrame)
	}

	limiter := rate.NewLimiter(rate.Every(match.Tick()), 1)
	for {
		if lastFrame != nil && rules.CheckForGameOver(lastFrame) {
			return endMatch(ctx, store, match, lastFrame)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var turns map[int]string
		if lastFrame != nil {
			turns = rules.GatherTurns(ctx, match, lastFrame, drivers)
		}
		nextFrame, err := rules.GameTick(match, lastFrame, turns)
		if err != nil {
			// This is a GameTick error, we can assume that this is a fatal
			// error and no more match processing can take place at this point.
			log.WithError(err).
				WithField("MatchID", id).
				Error("ending match due to fatal error")
			if endErr := store.SetMatchStatus(ctx, id, rules.MatchStatusError); endErr != nil {
				log.WithError(endErr).
					WithField("MatchID", id).
					Error("failed to end match after fatal error")
			}
			matchesCounter.WithLabelValues(string(rules.MatchStatusError)).Inc()
			return err
		}

		log.WithField("MatchID", id).
			WithField("Turn", nextFrame.Turn).
			Debug("adding frame")
		if err := store.PushFrame(ctx, id, nextFrame); err != nil {
			return err
		}
		lastFrame = nextFrame
	}
}

func endMatch(ctx context.Context, store controller.Store, match *rules.Match, lastFrame *rules.Frame) error {
	winner := rules.Winner(lastFrame)
	log.WithField("MatchID", match.ID).
		WithField("Turn", lastFrame.Turn).
		WithField("Winner", winner).
		Info("ending match")
	rules.NotifyMatchEnd(match, lastFrame)

	if err := store.SetMatchWinner(ctx, match.ID, winner); err != nil {
		return err
	}
	if err := store.SetMatchStatus(ctx, match.ID, rules.MatchStatusComplete); err != nil {
		return err
	}
	matchesCounter.WithLabelValues(string(rules.MatchStatusComplete)).Inc()
	return nil
}
