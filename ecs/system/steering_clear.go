package system

import (
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/steering"
	"go.uber.org/zap"
)

// SteeringClearSystem opens a frame: it decays every agent's gradient and
// builds maps for agents that do not have one yet.
type SteeringClearSystem struct {
	logger *zap.Logger
}

func NewSteeringClearSystem(logger *zap.Logger) *SteeringClearSystem {
	return &SteeringClearSystem{logger: loggerOr(logger, "steering_clear")}
}

func (s *SteeringClearSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.SteeringAgentTagComponent, component.SteeringComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, st *component.Steering) {
		if st.Map != nil {
			st.Map.Clear()
			return
		}
		if st.Invalid {
			return
		}
		m, err := steering.NewChecked(st.Resolution, st.Sigma, st.Blending)
		if err != nil {
			st.Invalid = true
			s.logger.Warn("agent disabled", zap.Stringer("entity", e), zap.Error(err))
			return
		}
		st.Map = m
		s.logger.Debug("gradient map built",
			zap.Stringer("entity", e),
			zap.Int("resolution", st.Resolution),
			zap.Float32("sigma", st.Sigma),
			zap.Float32("blending", st.Blending),
		)
	})
}
