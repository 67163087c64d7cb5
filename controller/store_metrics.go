package controller

import (
	"context"

	"github.com/lightcycles/engine/rules"
	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentStore wraps all store methods to instrument the underlying calls.
func InstrumentStore(s Store) Store { return &metrics{s} }

var (
	storeCalls = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "engine",
			Subsystem: "store",
			Name:      "calls",
			Help:      "Calls processed by the store.",
		},
		[]string{"method"},
	)
)

func instrument(method string) func() {
	t := prometheus.NewTimer(storeCalls.WithLabelValues(method))
	return t.ObserveDuration
}

func init() {
	prometheus.MustRegister(storeCalls)
}

type metrics struct{ s Store }

func (m *metrics) Lock(ctx context.Context, key, token string) (string, error) {
	defer instrument("Lock")()
	return m.s.Lock(ctx, key, token)
}

func (m *metrics) Unlock(ctx context.Context, key, token string) error {
	defer instrument("Unlock")()
	return m.s.Unlock(ctx, key, token)
}

func (m *metrics) PopMatchID(c context.Context) (string, error) {
	defer instrument("PopMatchID")()
	return m.s.PopMatchID(c)
}

func (m *metrics) SetMatchStatus(c context.Context, id string, status rules.MatchStatus) error {
	defer instrument("SetMatchStatus")()
	return m.s.SetMatchStatus(c, id, status)
}

func (m *metrics) SetMatchWinner(c context.Context, id string, winner int) error {
	defer instrument("SetMatchWinner")()
	return m.s.SetMatchWinner(c, id, winner)
}

func (m *metrics) CreateMatch(c context.Context, match *rules.Match, frames []*rules.Frame) error {
	defer instrument("CreateMatch")()
	return m.s.CreateMatch(c, match, frames)
}

func (m *metrics) PushFrame(c context.Context, id string, f *rules.Frame) error {
	defer instrument("PushFrame")()
	return m.s.PushFrame(c, id, f)
}

func (m *metrics) ListFrames(c context.Context, id string, limit, offset int) ([]*rules.Frame, error) {
	defer instrument("ListFrames")()
	return m.s.ListFrames(c, id, limit, offset)
}

func (m *metrics) GetMatch(c context.Context, id string) (*rules.Match, error) {
	defer instrument("GetMatch")()
	return m.s.GetMatch(c, id)
}
