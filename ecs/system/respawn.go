package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/steering"
	"go.uber.org/zap"
)

type RespawnSystem struct {
	logger *zap.Logger
}

func NewRespawnSystem(logger *zap.Logger) *RespawnSystem {
	return &RespawnSystem{logger: loggerOr(logger, "respawn")}
}

// Update performs pending respawn requests. It runs after the physics step
// so the body it moves is not stepped again until the next frame.
func (s *RespawnSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for _, e := range w.Query(component.RespawnRequestComponent.Kind()) {
		s.respawn(w, e)
		ecs.Remove(w, e, component.RespawnRequestComponent)
	}
}

func (s *RespawnSystem) respawn(w *ecs.World, e ecs.Entity) {
	if !ecs.Has(w, e, component.SteeringAgentTagComponent) {
		return
	}
	t, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return
	}
	spawn, ok := ecs.Get(w, e, component.SpawnComponent)
	if !ok || !spawn.Initialized {
		return
	}

	t.X = spawn.X
	t.Y = spawn.Y
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok && body.Body != nil && !body.Static {
		body.Body.SetPosition(cp.Vector{X: t.X, Y: t.Y})
		body.Body.SetVelocityVector(cp.Vector{})
		body.Body.SetAngularVelocity(0)
	}

	// signals gathered before the respawn point away from the new position
	if st, ok := ecs.Get(w, e, component.SteeringComponent); ok {
		if st.Map != nil {
			st.Map.Reset()
		}
		st.Heading = steering.Vec2{}
	}

	s.logger.Info("agent respawned",
		zap.Stringer("entity", e),
		zap.Float64("x", t.X),
		zap.Float64("y", t.Y),
	)
}
