package component

import "github.com/milk9111/steering/steering"

// Steering configures an agent's gradient map and how its heading drives
// the body. Map is built lazily from Resolution, Sigma and Blending; set it
// to nil to have it rebuilt after changing them.
type Steering struct {
	Map        *steering.GradientMap
	Resolution int
	Sigma      float32
	Blending   float32

	// MoveSpeed is the speed reached at full heading confidence.
	MoveSpeed float64
	// Acceleration bounds the per-frame velocity change. Zero snaps.
	Acceleration float64

	// Heading is the last resolved heading, kept for rendering and logs.
	Heading steering.Vec2
	// Invalid is set when the parameters were rejected; the agent idles.
	Invalid bool
}

var SteeringComponent = NewComponent[Steering]()
