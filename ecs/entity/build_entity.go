package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/prefabs"
)

// Defaults applied to zero-valued spec fields.
const (
	DefaultResolution = 16
	DefaultSigma      = 0.5
	DefaultMoveSpeed  = 100
	DefaultRayScale   = 32
)

type buildContext struct {
	Name string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"name":         addName,
	"steering_tag": addSteeringTag,
	"transform":    addTransform,
	"steering":     addSteering,
	"perception":   addPerception,
	"target":       addTarget,
	"hazard":       addHazard,
	"separation":   addSeparation,
	"physics_body": addPhysicsBody,
	"script":       addScript,
	"debug_draw":   addDebugDraw,
}

var componentBuildOrder = []string{
	"name",
	"steering_tag",
	"transform",
	"steering",
	"perception",
	"target",
	"hazard",
	"separation",
	"physics_body",
	"script",
	"debug_draw",
}

// BuildEntity loads a prefab and builds it into w.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if spec.Name == "" {
		spec.Name = prefabPath
	}
	return BuildEntityFromSpec(w, spec)
}

// BuildEntityFromSpec adds every component of spec to a new entity. Unknown
// components fail the build and the half-built entity is destroyed.
func BuildEntityFromSpec(w *ecs.World, spec prefabs.EntityBuildSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{Name: spec.Name}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", spec.Name, names[0])
	}

	return e, nil
}

func addSteeringTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.SteeringAgentTagComponent, &component.SteeringAgentTag{})
}

func addName(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	name, ok := raw.(string)
	if !ok || name == "" {
		name = ctx.Name
	}
	return ecs.Add(w, e, component.NameComponent, &component.Name{Value: name})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent, &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

func addSteering(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SteeringComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode steering spec: %w", err)
	}
	if spec.Resolution == 0 {
		spec.Resolution = DefaultResolution
	}
	if spec.Sigma == 0 {
		spec.Sigma = DefaultSigma
	}
	if spec.MoveSpeed == 0 {
		spec.MoveSpeed = DefaultMoveSpeed
	}
	// the map itself is built by the clear system on the first frame
	return ecs.Add(w, e, component.SteeringComponent, &component.Steering{
		Resolution:   spec.Resolution,
		Sigma:        spec.Sigma,
		Blending:     spec.Blending,
		MoveSpeed:    spec.MoveSpeed,
		Acceleration: spec.Acceleration,
	})
}

func addPerception(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PerceptionComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode perception spec: %w", err)
	}
	if spec.Range < 0 {
		return fmt.Errorf("perception range %v is negative", spec.Range)
	}
	return ecs.Add(w, e, component.PerceptionComponent, &component.Perception{Range: spec.Range})
}

func addTarget(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TargetComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode target spec: %w", err)
	}
	return ecs.Add(w, e, component.TargetComponent, &component.Target{
		Weight: weightOr(spec.Weight),
		Range:  spec.Range,
	})
}

func addHazard(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.HazardComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode hazard spec: %w", err)
	}
	return ecs.Add(w, e, component.HazardComponent, &component.Hazard{
		Radius: spec.Radius,
		Range:  spec.Range,
		Weight: weightOr(spec.Weight),
	})
}

func addSeparation(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SeparationComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode separation spec: %w", err)
	}
	return ecs.Add(w, e, component.SeparationComponent, &component.Separation{
		Radius:   spec.Radius,
		Weight:   weightOr(spec.Weight),
		Category: spec.Category,
		Mask:     spec.Mask,
	})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics_body spec: %w", err)
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{
		Radius:     spec.Radius,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Static:     spec.Static,
	})
}

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is empty")
	}
	return ecs.Add(w, e, component.SteeringScriptComponent, &component.SteeringScript{
		Path:   spec.Path,
		Params: spec.Params,
	})
}

func addDebugDraw(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.DebugDrawComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode debug_draw spec: %w", err)
	}
	if spec.RayScale <= 0 {
		spec.RayScale = DefaultRayScale
	}
	return ecs.Add(w, e, component.DebugDrawComponent, &component.DebugDraw{
		Rays:     spec.Rays,
		Heading:  spec.Heading,
		RayScale: spec.RayScale,
	})
}

func weightOr(w *float64) float64 {
	if w == nil {
		return 1
	}
	return *w
}
