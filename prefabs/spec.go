package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec lists the entities of a sandbox scene.
type SceneSpec struct {
	Name     string       `yaml:"name"`
	Width    float64      `yaml:"width"`
	Height   float64      `yaml:"height"`
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec places one entity. Components override the prefab's
// components key by key.
type EntitySpec struct {
	Name       string         `yaml:"name"`
	Prefab     string         `yaml:"prefab"`
	X          float64        `yaml:"x"`
	Y          float64        `yaml:"y"`
	Rotation   float64        `yaml:"rotation"`
	Components map[string]any `yaml:"components"`
}

func LoadSceneSpec(name string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](name)
	if err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: scene %s: size %vx%v must be positive", name, spec.Width, spec.Height)
	}
	return &spec, nil
}

// Resolve merges the entity's prefab with its own components and position
// into a single build spec.
func (es EntitySpec) Resolve() (EntityBuildSpec, error) {
	out := EntityBuildSpec{Name: es.Name, Components: map[string]any{}}
	if es.Prefab != "" {
		base, err := LoadEntityBuildSpec(es.Prefab)
		if err != nil {
			return EntityBuildSpec{}, err
		}
		if out.Name == "" {
			out.Name = base.Name
		}
		for k, v := range base.Components {
			out.Components[k] = v
		}
	}
	for k, v := range es.Components {
		out.Components[k] = mergeComponent(out.Components[k], v)
	}
	out.Components["transform"] = mergeComponent(out.Components["transform"], map[string]any{
		"x":        es.X,
		"y":        es.Y,
		"rotation": es.Rotation,
	})
	if out.Name != "" {
		out.Components["name"] = out.Name
	}
	return out, nil
}

// mergeComponent overlays over onto base when both are mappings; otherwise
// over replaces base.
func mergeComponent(base, over any) any {
	bm, okB := base.(map[string]any)
	om, okO := over.(map[string]any)
	if !okB || !okO {
		if over == nil {
			return base
		}
		return over
	}
	merged := make(map[string]any, len(bm)+len(om))
	for k, v := range bm {
		merged[k] = v
	}
	for k, v := range om {
		merged[k] = v
	}
	return merged
}
