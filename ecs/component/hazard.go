package component

// Hazard emits danger toward itself. Distance is measured from the hazard
// edge (Radius); an agent inside the radius receives the full Weight.
type Hazard struct {
	Radius float64
	Range  float64
	Weight float64
}

var HazardComponent = NewComponent[Hazard]()
