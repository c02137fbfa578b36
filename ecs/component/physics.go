package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and the circle collider the
// physics system builds it from.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
