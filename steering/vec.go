package steering

import "math"

// Vec2 is a resolved steering vector. Its length is the aggregate confidence
// of the gradient, not a unit direction.
type Vec2 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Angle returns the direction of v in radians, in (-π, π].
func (v Vec2) Angle() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
