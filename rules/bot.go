package rules

import (
	"context"

	"github.com/lightcycles/engine/casting"
)

// sideTurns lists the two directions a cycle can turn into from a heading.
var sideTurns = map[string][2]string{
	DirectionUp:    {DirectionLeft, DirectionRight},
	DirectionDown:  {DirectionRight, DirectionLeft},
	DirectionLeft:  {DirectionDown, DirectionUp},
	DirectionRight: {DirectionUp, DirectionDown},
}

// Bot is a simple autopilot. It keeps going straight while the next cell is
// free, otherwise turns to whichever side is free.
type Bot struct{}

// Steer implements Driver.
func (Bot) Steer(ctx context.Context, match *Match, frame *Frame, player int) (string, error) {
	cs := frame.Cycle(player)
	if cs == nil || len(cs.Segments) == 0 {
		return "", nil
	}
	head := cs.Segments[0]
	heading := VelocityDirection(head.Velocity)
	if heading == "" {
		return "", nil
	}

	occupied := frame.Occupied()
	side := sideTurns[heading]
	candidates := append([]string{heading}, side[:]...)
	for _, dir := range candidates {
		if isFree(match, occupied, head.Position, dir) {
			if dir == heading {
				return "", nil
			}
			return dir, nil
		}
	}
	return "", nil
}

func isFree(match *Match, occupied map[casting.Point]bool, from casting.Point, dir string) bool {
	velocity, err := DirectionVelocity(dir, match.CellSize)
	if err != nil {
		return false
	}
	next := from.Add(velocity)
	if match.Arena == ArenaWrapped {
		next = casting.NewPoint(wrap(next.X, match.Width), wrap(next.Y, match.Height))
	} else if deathByOutOfBounds(next, match.Width, match.Height) {
		return false
	}
	return !occupied[next]
}
