package rules

import (
	"context"
	"errors"
	"sync"

	"github.com/lightcycles/engine/casting"
	log "github.com/sirupsen/logrus"
)

// Directions a cycle can be steered in.
const (
	DirectionUp    = "up"
	DirectionDown  = "down"
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// ErrInvalidDirection is returned for anything that isn't up, down, left or
// right.
var ErrInvalidDirection = errors.New("rules: invalid direction")

// DirectionVelocity converts a direction into a velocity of one cell per
// tick. Up is towards row 0.
func DirectionVelocity(direction string, cellSize int) (casting.Point, error) {
	switch direction {
	case DirectionUp:
		return casting.NewPoint(0, -cellSize), nil
	case DirectionDown:
		return casting.NewPoint(0, cellSize), nil
	case DirectionLeft:
		return casting.NewPoint(-cellSize, 0), nil
	case DirectionRight:
		return casting.NewPoint(cellSize, 0), nil
	}
	return casting.Point{}, ErrInvalidDirection
}

// VelocityDirection is the inverse of DirectionVelocity. It returns "" for a
// cycle that is standing still.
func VelocityDirection(v casting.Point) string {
	switch {
	case v.Y < 0:
		return DirectionUp
	case v.Y > 0:
		return DirectionDown
	case v.X < 0:
		return DirectionLeft
	case v.X > 0:
		return DirectionRight
	}
	return ""
}

// Driver steers a cycle. An empty direction means keep going.
type Driver interface {
	Steer(ctx context.Context, match *Match, frame *Frame, player int) (string, error)
}

// DriverFunc adapts a function to a Driver.
type DriverFunc func(ctx context.Context, match *Match, frame *Frame, player int) (string, error)

// Steer calls f.
func (f DriverFunc) Steer(ctx context.Context, match *Match, frame *Frame, player int) (string, error) {
	return f(ctx, match, frame, player)
}

// CycleUpdate bundles together a player with a turn for processing
type CycleUpdate struct {
	Player    int
	Direction string
	Err       error
}

// GatherTurns asks the driver of every alive cycle which way to go. Drivers
// are asked concurrently; a driver that fails or has nothing to say gives no
// turn.
func GatherTurns(ctx context.Context, match *Match, frame *Frame, drivers map[int]Driver) map[int]string {
	alive := frame.AliveCycles()
	respChan := make(chan CycleUpdate, len(alive))
	wg := sync.WaitGroup{}

	for _, c := range alive {
		driver, ok := drivers[c.Player]
		if !ok || driver == nil {
			continue
		}
		wg.Add(1)
		go func(player int, d Driver) {
			defer wg.Done()
			dir, err := d.Steer(ctx, match, frame, player)
			respChan <- CycleUpdate{Player: player, Direction: dir, Err: err}
		}(c.Player, driver)
	}
	wg.Wait()
	close(respChan)

	turns := map[int]string{}
	for update := range respChan {
		if update.Err != nil {
			log.WithError(update.Err).WithFields(log.Fields{
				"MatchID": match.ID,
				"Player":  update.Player,
				"Turn":    frame.Turn,
			}).Warn("driver failed, keeping heading")
			continue
		}
		if update.Direction == "" {
			continue
		}
		turns[update.Player] = update.Direction
	}
	return turns
}
