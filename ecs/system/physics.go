package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"go.uber.org/zap"
)

const collisionTypeSolid cp.CollisionType = 1

// DefaultTimeStep is one frame at 60 TPS.
const DefaultTimeStep = 1.0 / 60.0

// PhysicsSystem moves agent bodies through a gravity-free Chipmunk space.
type PhysicsSystem struct {
	logger   *zap.Logger
	space    *cp.Space
	dt       float64
	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	space.SetDamping(0.9)
	return space
}

// NewPhysicsSystem steps the space by dt seconds per frame; dt <= 0 uses
// DefaultTimeStep.
func NewPhysicsSystem(logger *zap.Logger, dt float64) *PhysicsSystem {
	if dt <= 0 {
		dt = DefaultTimeStep
	}
	return &PhysicsSystem{
		logger:   loggerOr(logger, "physics"),
		space:    newSpace(),
		dt:       dt,
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.space = newSpace()
	}
	if ps.entities == nil {
		ps.entities = make(map[ecs.Entity]*bodyInfo)
	}
	if ps.dt <= 0 {
		ps.dt = DefaultTimeStep
	}

	ps.syncEntities(w)
	ps.syncWorldBounds(w)

	ps.space.Step(ps.dt)

	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		if info := ps.entities[e]; info != nil {
			continue
		}

		info := ps.createBodyInfo(transform, bodyComp)
		ps.entities[e] = info
		bodyComp.Body = info.body
		bodyComp.Shape = info.shapes[0]
		ps.logger.Debug("body created",
			zap.Stringer("entity", e),
			zap.Float64("radius", bodyComp.Radius),
			zap.Bool("static", bodyComp.Static),
		)
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp *component.PhysicsBody) *bodyInfo {
	radius := bodyComp.Radius
	if radius <= 0 {
		radius = 8
	}
	center := cp.Vector{X: transform.X, Y: transform.Y}

	if bodyComp.Static {
		shape := cp.NewCircle(ps.space.StaticBody, radius, center)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(center)
	body.SetAngle(transform.Rotation)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(collisionTypeSolid)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}}
}

func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	boundsEntity, ok := w.First(component.WorldBoundsComponent.Kind())
	if !ok {
		return
	}
	if _, exists := ps.entities[boundsEntity]; exists {
		return
	}
	bounds, ok := ecs.Get(w, boundsEntity, component.WorldBoundsComponent)
	if !ok || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	worldW := bounds.Width
	worldH := bounds.Height
	segments := [][2]cp.Vector{
		{{X: 0, Y: 0}, {X: worldW, Y: 0}},
		{{X: 0, Y: worldH}, {X: worldW, Y: worldH}},
		{{X: 0, Y: 0}, {X: 0, Y: worldH}},
		{{X: worldW, Y: 0}, {X: worldW, Y: worldH}},
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg[0], seg[1], 1)
		shape.SetFriction(0.2)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}
	ps.entities[boundsEntity] = info
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok || bodyComp.Body == nil || bodyComp.Static {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && (ecs.Has(w, e, component.PhysicsBodyComponent) || ecs.Has(w, e, component.WorldBoundsComponent)) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		ps.logger.Debug("body removed", zap.Stringer("entity", e))
	}
}
