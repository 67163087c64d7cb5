package casting

// Actor is a single visible thing on the board. Cycles are made of them.
type Actor struct {
	position Point
	velocity Point
	text     string
	color    Color
}

// NewActor returns an actor at the origin with no velocity, drawn in white.
func NewActor() *Actor {
	return &Actor{color: White}
}

func (a *Actor) Position() Point { return a.position }
func (a *Actor) SetPosition(p Point) { a.position = p }
func (a *Actor) Velocity() Point { return a.velocity }
func (a *Actor) SetVelocity(v Point) { a.velocity = v }
func (a *Actor) Text() string { return a.text }
func (a *Actor) SetText(text string) { a.text = text }
func (a *Actor) Color() Color { return a.color }
func (a *Actor) SetColor(color Color) { a.color = color }

// MoveNext moves the actor one step along its velocity.
func (a *Actor) MoveNext() {
	a.position = a.position.Add(a.velocity)
}
