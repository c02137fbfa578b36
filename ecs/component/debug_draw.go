package component

// DebugDraw opts an agent into gradient ray rendering.
type DebugDraw struct {
	Rays    bool
	Heading bool
	// RayScale is the pixel length of a full-strength ray.
	RayScale float64
}

var DebugDrawComponent = NewComponent[DebugDraw]()
