// Package casting holds the things that appear on the board: actors and the
// light cycles built out of them.
package casting

const segmentText = "#"

// Cycle is a light cycle: a chain of segments where the head is steered and
// every other segment follows the path of the one in front of it.
type Cycle struct {
	player   int
	segments []*Actor
	color    Color
	alive    bool
}

// NewCycle lays out a straight cycle for the given player, heading right.
// Player 1 starts a quarter of the way down the board in red, player 2 three
// quarters of the way down in yellow. Any other player starts on row 0 in
// player 1's color.
func NewCycle(player int, s Settings) *Cycle {
	c := &Cycle{
		player: player,
		color:  Red,
		alive:  true,
	}
	if player == 2 {
		c.color = Yellow
	}

	x := s.MaxX / 2
	y := 0
	switch player {
	case 1:
		y = s.MaxY / 4
	case 2:
		y = s.MaxY / 4 * 3
	}

	for i := 0; i < s.CycleLength; i++ {
		segment := NewActor()
		segment.SetPosition(NewPoint(x-i*s.CellSize, y))
		segment.SetVelocity(NewPoint(s.CellSize, 0))
		segment.SetText(segmentText)
		segment.SetColor(c.color)
		c.segments = append(c.segments, segment)
	}
	return c
}

// RestoreCycle rebuilds a cycle from segments that were saved earlier. The
// segments are used as given, head first.
func RestoreCycle(player int, color Color, alive bool, segments []*Actor) *Cycle {
	return &Cycle{
		player:   player,
		segments: append([]*Actor(nil), segments...),
		color:    color,
		alive:    alive,
	}
}

// Player returns the player number the cycle belongs to.
func (c *Cycle) Player() int { return c.player }

// Color returns the cycle's current color.
func (c *Cycle) Color() Color { return c.color }

// IsAlive reports whether the cycle has been killed.
func (c *Cycle) IsAlive() bool { return c.alive }

// Head returns the first segment.
func (c *Cycle) Head() *Actor {
	return c.segments[0]
}

// Body returns every segment behind the head. The returned slice is a copy,
// the segments in it are not.
func (c *Cycle) Body() []*Actor {
	return append([]*Actor(nil), c.segments[1:]...)
}

// Segments returns all segments, head first. The returned slice is a copy,
// the segments in it are not.
func (c *Cycle) Segments() []*Actor {
	return append([]*Actor(nil), c.segments...)
}

// TurnHead points the head in the given direction. Followers pick the turn
// up one tick at a time.
func (c *Cycle) TurnHead(direction Point) {
	c.segments[0].SetVelocity(direction)
}

// GrowTail appends n segments, each one cell behind the tail before it and
// moving the same way.
func (c *Cycle) GrowTail(n int) {
	for i := 0; i < n; i++ {
		tail := c.segments[len(c.segments)-1]
		velocity := tail.Velocity()

		segment := NewActor()
		segment.SetPosition(tail.Position().Add(velocity.Reverse()))
		segment.SetVelocity(velocity)
		segment.SetText(segmentText)
		segment.SetColor(c.color)
		c.segments = append(c.segments, segment)
	}
}

// MoveNext advances every segment by its own velocity, then hands each
// velocity one segment back. The hand off runs tail first so every follower
// receives what its predecessor had before this tick.
func (c *Cycle) MoveNext() {
	for _, segment := range c.segments {
		segment.MoveNext()
	}

	for i := len(c.segments) - 1; i > 0; i-- {
		c.segments[i].SetVelocity(c.segments[i-1].Velocity())
	}
}

// Kill marks the cycle dead and switches it to white. The segments are left
// where they are.
func (c *Cycle) Kill() {
	c.color = White
	c.alive = false
}
