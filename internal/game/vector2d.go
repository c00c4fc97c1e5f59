package game

import "math"

// Vec2 is a 2D vector in table units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector; zero-length input yields the zero
// vector rather than NaN.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / m, Y: v.Y / m}
}

// Angle returns the heading of the vector in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	dx := o.X - v.X
	dy := o.Y - v.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// FromAngle builds a vector of the given magnitude along a heading.
func FromAngle(angle, magnitude float64) Vec2 {
	return Vec2{X: math.Cos(angle) * magnitude, Y: math.Sin(angle) * magnitude}
}
