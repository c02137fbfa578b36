package component

// Perception limits how far an agent notices targets and hazards.
// Zero means unlimited.
type Perception struct {
	Range float64
}

var PerceptionComponent = NewComponent[Perception]()
