package system

import (
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"go.uber.org/zap"
)

// SeparationSystem makes agents treat close neighbours as danger. Each agent
// only writes its own map, so A avoiding B says nothing about B avoiding A.
type SeparationSystem struct {
	logger *zap.Logger
}

func NewSeparationSystem(logger *zap.Logger) *SeparationSystem {
	return &SeparationSystem{logger: loggerOr(logger, "separation")}
}

func (ss *SeparationSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}

	type entInfo struct {
		agent
		sep *component.Separation
	}

	var list []entInfo
	for _, a := range collectAgents(w) {
		sep, ok := ecs.Get(w, a.e, component.SeparationComponent)
		if !ok || sep.Radius <= 0 {
			continue
		}
		list = append(list, entInfo{agent: a, sep: sep})
	}

	n := len(list)
	if n < 2 {
		return
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			self := list[i]
			other := list[j]
			if !avoids(self.sep, other.sep) {
				continue
			}
			angle, dist := bearing(self.tr.X, self.tr.Y, other.tr.X, other.tr.Y)
			// coincident agents have no bearing
			if dist == 0 || dist >= self.sep.Radius {
				continue
			}
			v := self.sep.Weight * falloff(dist, self.sep.Radius)
			self.st.Map.AddDanger(angle, float32(v))
		}
	}
}

func avoids(self, other *component.Separation) bool {
	mask := self.Mask
	if mask == 0 {
		return true
	}
	category := other.Category
	if category == 0 {
		category = 1
	}
	return mask&category != 0
}
