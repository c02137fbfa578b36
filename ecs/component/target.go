package component

// Target emits interest toward itself. Weight is the peak signal at zero
// distance; it falls off linearly to zero at Range (zero = no falloff).
type Target struct {
	Weight float64
	Range  float64
}

var TargetComponent = NewComponent[Target]()
