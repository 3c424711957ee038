package vec

import "math"

// Vec2 is a world-space position, velocity or force. Y grows downward,
// matching grid rows.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// LengthSq avoids the sqrt for distance comparisons.
func (v Vec2) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Length() float64 { return math.Sqrt(v.LengthSq()) }

// Normalized returns the unit vector, or zero for a zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// ClampLength scales v down so its length does not exceed max.
func (v Vec2) ClampLength(max float64) Vec2 {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

func (v Vec2) DistanceSq(o Vec2) float64 { return v.Sub(o).LengthSq() }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
