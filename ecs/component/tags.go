package component

// SteeringAgentTag marks an entity whose movement is decided by its own
// gradient map.
type SteeringAgentTag struct{}

var SteeringAgentTagComponent = NewComponent[SteeringAgentTag]()

// Name is the label given to an entity in its scene file.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
