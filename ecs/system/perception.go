package system

import (
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"go.uber.org/zap"
)

// PerceptionSystem turns targets into interest and hazards into danger for
// every agent that can see them.
type PerceptionSystem struct {
	logger *zap.Logger
}

func NewPerceptionSystem(logger *zap.Logger) *PerceptionSystem {
	return &PerceptionSystem{logger: loggerOr(logger, "perception")}
}

type targetInfo struct {
	e  ecs.Entity
	tr *component.Transform
	tg *component.Target
}

type hazardInfo struct {
	e  ecs.Entity
	tr *component.Transform
	hz *component.Hazard
}

func (ps *PerceptionSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	var targets []targetInfo
	ecs.ForEach2(w, component.TargetComponent, component.TransformComponent, func(e ecs.Entity, tg *component.Target, tr *component.Transform) {
		targets = append(targets, targetInfo{e: e, tr: tr, tg: tg})
	})
	var hazards []hazardInfo
	ecs.ForEach2(w, component.HazardComponent, component.TransformComponent, func(e ecs.Entity, hz *component.Hazard, tr *component.Transform) {
		hazards = append(hazards, hazardInfo{e: e, tr: tr, hz: hz})
	})
	if len(targets) == 0 && len(hazards) == 0 {
		return
	}

	for _, a := range collectAgents(w) {
		sight := 0.0
		if p, ok := ecs.Get(w, a.e, component.PerceptionComponent); ok {
			sight = p.Range
		}

		for _, t := range targets {
			if t.e == a.e {
				continue
			}
			angle, dist := bearing(a.tr.X, a.tr.Y, t.tr.X, t.tr.Y)
			if dist == 0 || (sight > 0 && dist > sight) {
				continue
			}
			v := t.tg.Weight * falloff(dist, t.tg.Range)
			if v <= 0 {
				continue
			}
			a.st.Map.AddInterest(angle, float32(v))
		}

		for _, h := range hazards {
			if h.e == a.e {
				continue
			}
			angle, dist := bearing(a.tr.X, a.tr.Y, h.tr.X, h.tr.Y)
			if dist == 0 {
				continue
			}
			edge := dist - h.hz.Radius
			if sight > 0 && edge > sight {
				continue
			}
			v := h.hz.Weight * falloff(edge, h.hz.Range)
			if v <= 0 {
				continue
			}
			a.st.Map.AddDanger(angle, float32(v))
		}
	}
}
