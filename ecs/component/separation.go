package component

// Separation makes an agent treat nearby agents as danger. Category and
// Mask select which agents count, the same way repulsion layers did: an
// agent A avoids B when A.Mask & B.Category != 0.
type Separation struct {
	Radius float64
	Weight float64
	// Category is a bitmask of this entity's group. Zero means 1.
	Category uint32
	// Mask is a bitmask of groups to avoid. Zero means all.
	Mask uint32
}

var SeparationComponent = NewComponent[Separation]()
