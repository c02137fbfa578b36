package entity

import (
	"fmt"

	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/prefabs"
)

// BuildScene adds the scene bounds and every scene entity to w, in file
// order. The first failing entity aborts the build.
func BuildScene(w *ecs.World, spec *prefabs.SceneSpec) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	if spec == nil {
		return nil, fmt.Errorf("build scene: spec is nil")
	}

	bounds := ecs.CreateEntity(w)
	if err := ecs.Add(w, bounds, component.WorldBoundsComponent, &component.WorldBounds{
		Width:  spec.Width,
		Height: spec.Height,
	}); err != nil {
		return nil, fmt.Errorf("build scene: bounds: %w", err)
	}

	out := make([]ecs.Entity, 0, len(spec.Entities))
	for i, es := range spec.Entities {
		resolved, err := es.Resolve()
		if err != nil {
			return nil, fmt.Errorf("build scene %q: entity %d (%s): %w", spec.Name, i, es.Name, err)
		}
		e, err := BuildEntityFromSpec(w, resolved)
		if err != nil {
			return nil, fmt.Errorf("build scene %q: entity %d: %w", spec.Name, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
