package component

// SteeringScript attaches a tengo script that may add signals to the
// entity's gradient map every frame.
type SteeringScript struct {
	Path string
	// Params is exposed to the script as engine.params.
	Params map[string]any
}

var SteeringScriptComponent = NewComponent[SteeringScript]()
