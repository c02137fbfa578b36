package system

import (
	"math"

	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"go.uber.org/zap"
)

// HazardContact is the payload of EventHazardContact.
type HazardContact struct {
	Agent  ecs.Entity
	Hazard ecs.Entity
	X      float64
	Y      float64
}

type contactPair struct {
	agent  ecs.Entity
	hazard ecs.Entity
}

// HazardContactSystem flags agents whose center enters a hazard's Radius.
// An event is pushed once per entry and the agent is queued for respawn.
type HazardContactSystem struct {
	logger *zap.Logger
	inside map[contactPair]struct{}
}

func NewHazardContactSystem(logger *zap.Logger) *HazardContactSystem {
	return &HazardContactSystem{
		logger: loggerOr(logger, "hazard"),
		inside: make(map[contactPair]struct{}),
	}
}

type hazardSource struct {
	e      ecs.Entity
	x, y   float64
	radius float64
}

func (s *HazardContactSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.inside == nil {
		s.inside = make(map[contactPair]struct{})
	}

	hazards := make([]hazardSource, 0, 8)
	ecs.ForEach2(w, component.HazardComponent, component.TransformComponent, func(e ecs.Entity, h *component.Hazard, t *component.Transform) {
		if h.Radius <= 0 {
			return
		}
		hazards = append(hazards, hazardSource{e: e, x: t.X, y: t.Y, radius: h.Radius})
	})

	seen := make(map[contactPair]struct{}, len(s.inside))
	ecs.ForEach2(w, component.SteeringAgentTagComponent, component.TransformComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, t *component.Transform) {
		spawn, ok := ecs.Get(w, e, component.SpawnComponent)
		if !ok {
			spawn = &component.Spawn{}
			_ = ecs.Add(w, e, component.SpawnComponent, spawn)
		}
		if !spawn.Initialized {
			spawn.X = t.X
			spawn.Y = t.Y
			spawn.Initialized = true
		}

		for _, hz := range hazards {
			if hz.e == e || math.Hypot(t.X-hz.x, t.Y-hz.y) >= hz.radius {
				continue
			}
			pair := contactPair{agent: e, hazard: hz.e}
			seen[pair] = struct{}{}
			if _, was := s.inside[pair]; was {
				continue
			}

			w.Events().Push(ecs.Event{
				Type: EventHazardContact,
				Data: HazardContact{Agent: e, Hazard: hz.e, X: t.X, Y: t.Y},
			})
			if !ecs.Has(w, e, component.RespawnRequestComponent) {
				_ = ecs.Add(w, e, component.RespawnRequestComponent, &component.RespawnRequest{})
			}
			s.logger.Debug("hazard contact",
				zap.Stringer("agent", e),
				zap.Stringer("hazard", hz.e),
				zap.Float64("x", t.X),
				zap.Float64("y", t.Y),
			)
		}
	})
	s.inside = seen
}
