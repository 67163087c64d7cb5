package rules

import "github.com/lightcycles/engine/casting"

type deathUpdate struct {
	Cycle *casting.Cycle
	Death *Death
}

// checkForDeath looks through the cycles with the updated coords and checks
// to see if any have crashed. Possible causes are leaving a walled board,
// meeting the other head, driving into its own trail or into anybody else's.
// Dead cycles stay on the board as obstacles.
func checkForDeath(match *Match, turn int64, cycles []*casting.Cycle) []deathUpdate {
	updates := []deathUpdate{}
	for _, c := range cycles {
		if !c.IsAlive() {
			continue
		}
		if cause := deathCause(match, c, cycles); cause != "" {
			updates = append(updates, deathUpdate{
				Cycle: c,
				Death: &Death{
					Turn:  turn,
					Cause: cause,
				},
			})
		}
	}
	return updates
}

func deathCause(match *Match, c *casting.Cycle, cycles []*casting.Cycle) string {
	head := c.Head().Position()
	if match.Arena != ArenaWrapped && deathByOutOfBounds(head, match.Width, match.Height) {
		return DeathCauseWallCollision
	}

	for _, other := range cycles {
		if deathByHeadCollision(c, other) {
			return DeathCauseHeadToHeadCollision
		}
	}

	for _, b := range c.Body() {
		if deathByBodyCollision(head, b.Position()) {
			return DeathCauseSelfCollision
		}
	}

	for _, other := range cycles {
		if other == c {
			continue
		}
		for _, s := range other.Segments() {
			if deathByBodyCollision(head, s.Position()) {
				return DeathCauseCycleCollision
			}
		}
	}
	return ""
}

func deathByBodyCollision(head, body casting.Point) bool {
	return head.Equals(body)
}

func deathByOutOfBounds(head casting.Point, width, height int) bool {
	return (head.X < 0) || (head.X >= width) || (head.Y < 0) || (head.Y >= height)
}

func deathByHeadCollision(c, other *casting.Cycle) bool {
	return other != c && other.IsAlive() && c.Head().Position().Equals(other.Head().Position())
}
