package rules

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const notifyTimeout = 200 * time.Millisecond

// NotifyMatchStart sends the /start requests to all the remote drivers
func NotifyMatchStart(match *Match, frame *Frame) {
	notify(match, frame, "start")
}

// NotifyMatchEnd sends the /end requests to all the remote drivers
func NotifyMatchEnd(match *Match, frame *Frame) {
	notify(match, frame, "end")
}

func notify(match *Match, frame *Frame, path string) {
	for _, p := range match.Players {
		if !IsValidURL(p.Driver) {
			continue
		}
		d := &RemoteDriver{URL: p.Driver}
		if _, err := d.post(context.Background(), getURL(p.Driver, path), notifyTimeout, buildSteerRequest(match, frame, p.Number)); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"MatchID": match.ID,
				"Player":  p.Number,
			}).Warnf("error notifying /%s", path)
		}
	}
}

// NewDriver returns the driver for a player, nil for human players who have to
// be wired up by the caller.
func NewDriver(p *Player) Driver {
	switch {
	case p.Driver == DriverBot:
		return Bot{}
	case IsValidURL(p.Driver):
		return &RemoteDriver{URL: p.Driver}
	}
	return nil
}

// DefaultDrivers builds a driver for every player of the match that can be
// driven without a keyboard.
func DefaultDrivers(match *Match) map[int]Driver {
	drivers := map[int]Driver{}
	for _, p := range match.Players {
		if d := NewDriver(p); d != nil {
			drivers[p.Number] = d
		}
	}
	return drivers
}
