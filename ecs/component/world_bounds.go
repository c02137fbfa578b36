package component

// WorldBounds stores the world-space size of the current scene.
type WorldBounds struct {
	Width  float64
	Height float64
}

var WorldBoundsComponent = NewComponent[WorldBounds]()
