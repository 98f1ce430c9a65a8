package game

import "math"

// Vec2 is a 2D vector in world units (pixels).
type Vec2 struct {
	X, Y float64
}

// V is shorthand for constructing a Vec2.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }
func (a Vec2) Dist(b Vec2) float64 { return a.Sub(b).Len() }
func (a Vec2) IsZero() bool { return a.X == 0 && a.Y == 0 }
func (a Vec2) Perp() Vec2 { return Vec2{-a.Y, a.X} }

// Normalize returns the unit vector in the direction of a.
// A zero (or near-zero) vector normalises to zero rather than NaN.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Limit caps the magnitude of a at limit.
func (a Vec2) Limit(limit float64) Vec2 {
	l := a.Len()
	if l <= limit || l < 1e-12 {
		return a
	}
	return a.Scale(limit / l)
}

// Rotate rotates a by rad radians (counter-clockwise in math coordinates).
func (a Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}
