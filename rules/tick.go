package rules

import (
	"errors"

	"github.com/lightcycles/engine/casting"
	log "github.com/sirupsen/logrus"
)

// ErrNoFrame is returned when a tick is asked for without a previous frame.
var ErrNoFrame = errors.New("rules: invalid state, previous frame is nil")

// GameTick runs the match one tick and returns the next frame. turns maps a
// player number to the direction it wants to go; players without an entry
// keep their heading. lastFrame is left untouched.
func GameTick(match *Match, lastFrame *Frame, turns map[int]string) (*Frame, error) {
	if lastFrame == nil {
		return nil, ErrNoFrame
	}
	nextTurn := lastFrame.Turn + 1

	cycles := make([]*casting.Cycle, 0, len(lastFrame.Cycles))
	deaths := map[int]*Death{}
	names := map[int]string{}
	for _, cs := range lastFrame.Cycles {
		cycles = append(cycles, cs.Cycle())
		deaths[cs.Player] = cs.Death
		names[cs.Player] = cs.Name
	}

	// 1. steer
	for _, c := range cycles {
		if !c.IsAlive() {
			continue
		}
		dir, ok := turns[c.Player()]
		if !ok {
			continue
		}
		steer(match, nextTurn, c, dir)
	}

	// 2. move and lay down trail
	log.WithFields(log.Fields{
		"MatchID": match.ID,
		"Turn":    nextTurn,
	}).Debug("move cycles")
	for _, c := range cycles {
		if !c.IsAlive() {
			continue
		}
		c.MoveNext()
		c.GrowTail(match.TrailGrowth)
		if match.Arena == ArenaWrapped {
			wrapCycle(c, match.Width, match.Height)
		}
	}

	// 3. check for death
	log.WithFields(log.Fields{
		"MatchID": match.ID,
		"Turn":    nextTurn,
	}).Debug("check for death")
	for _, du := range checkForDeath(match, nextTurn, cycles) {
		log.WithFields(log.Fields{
			"MatchID": match.ID,
			"Player":  du.Cycle.Player(),
			"Turn":    nextTurn,
			"Cause":   du.Death.Cause,
		}).Info("cycle crashed")
		killCycle(du.Cycle)
		deaths[du.Cycle.Player()] = du.Death
	}

	nextFrame := &Frame{Turn: nextTurn}
	for _, c := range cycles {
		nextFrame.Cycles = append(nextFrame.Cycles, StateFromCycle(c, names[c.Player()], deaths[c.Player()]))
	}
	return nextFrame, nil
}

// steer turns the head unless the direction is unknown or would send the
// cycle straight back into its own second segment.
func steer(match *Match, turn int64, c *casting.Cycle, dir string) {
	velocity, err := DirectionVelocity(dir, match.CellSize)
	if err != nil {
		log.WithFields(log.Fields{
			"MatchID":   match.ID,
			"Player":    c.Player(),
			"Turn":      turn,
			"Direction": dir,
		}).Warn("ignoring invalid direction")
		return
	}
	if isReversal(match, c, velocity) {
		log.WithFields(log.Fields{
			"MatchID":   match.ID,
			"Player":    c.Player(),
			"Turn":      turn,
			"Direction": dir,
		}).Debug("ignoring reversal")
		return
	}
	c.TurnHead(velocity)
}

func isReversal(match *Match, c *casting.Cycle, velocity casting.Point) bool {
	body := c.Body()
	if len(body) == 0 {
		return false
	}
	next := c.Head().Position().Add(velocity)
	if match.Arena == ArenaWrapped {
		next = casting.NewPoint(wrap(next.X, match.Width), wrap(next.Y, match.Height))
	}
	return next.Equals(body[0].Position())
}

func killCycle(c *casting.Cycle) {
	c.Kill()
	for _, s := range c.Segments() {
		s.SetColor(c.Color())
	}
}

func wrapCycle(c *casting.Cycle, width, height int) {
	for _, s := range c.Segments() {
		p := s.Position()
		s.SetPosition(casting.NewPoint(wrap(p.X, width), wrap(p.Y, height)))
	}
}

func wrap(v, size int) int {
	return ((v % size) + size) % size
}
