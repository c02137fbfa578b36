package system

import (
	"math"

	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/internal/observability"
	"go.uber.org/zap"
)

// Event types pushed to the world queue by this package.
const (
	EventSteeringResolved = "steering_resolved"
	EventHazardContact    = "hazard_contact"
)

// SteeringResolved is the payload of EventSteeringResolved.
type SteeringResolved struct {
	Entity  ecs.Entity
	Heading [2]float32
	Speed   float64
}

func loggerOr(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return logger.Named(name)
}

// agent is a live steering agent whose map is ready for signals.
type agent struct {
	e  ecs.Entity
	st *component.Steering
	tr *component.Transform
}

func collectAgents(w *ecs.World) []agent {
	var out []agent
	ecs.ForEach3(w, component.SteeringAgentTagComponent, component.SteeringComponent, component.TransformComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, st *component.Steering, tr *component.Transform) {
		if st.Map == nil || st.Invalid {
			return
		}
		out = append(out, agent{e: e, st: st, tr: tr})
	})
	return out
}

// bearing returns the direction from (x0,y0) to (x1,y1) and the distance.
func bearing(x0, y0, x1, y1 float64) (float32, float64) {
	dx := x1 - x0
	dy := y1 - y0
	return float32(math.Atan2(dy, dx)), math.Hypot(dx, dy)
}

// falloff is linear from 1 at d <= 0 to 0 at d >= r. r <= 0 never falls off.
func falloff(d, r float64) float64 {
	if r <= 0 || d <= 0 {
		return 1
	}
	f := 1 - d/r
	if f < 0 {
		return 0
	}
	return f
}
