package casting

import "fmt"

// Point is a position or velocity on the game lattice.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewPoint returns the point (x, y).
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of p and other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Reverse returns p pointing the opposite way.
func (p Point) Reverse() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Scale multiplies both axes by factor.
func (p Point) Scale(factor int) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Equals checks if 2 points are the same x,y coordinate
func (p Point) Equals(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
