package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type SteeringComponentSpec struct {
	Resolution   int     `yaml:"resolution"`
	Sigma        float32 `yaml:"sigma"`
	Blending     float32 `yaml:"blending"`
	MoveSpeed    float64 `yaml:"move_speed"`
	Acceleration float64 `yaml:"acceleration"`
}

type PerceptionComponentSpec struct {
	Range float64 `yaml:"range"`
}

type TargetComponentSpec struct {
	Weight *float64 `yaml:"weight"`
	Range  float64  `yaml:"range"`
}

type HazardComponentSpec struct {
	Radius float64  `yaml:"radius"`
	Range  float64  `yaml:"range"`
	Weight *float64 `yaml:"weight"`
}

type SeparationComponentSpec struct {
	Radius   float64  `yaml:"radius"`
	Weight   *float64 `yaml:"weight"`
	Category uint32   `yaml:"category,omitempty"`
	Mask     uint32   `yaml:"mask,omitempty"`
}

type PhysicsBodyComponentSpec struct {
	Radius     float64 `yaml:"radius"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Static     bool    `yaml:"static"`
}

type ScriptComponentSpec struct {
	Path   string         `yaml:"path"`
	Params map[string]any `yaml:"params"`
}

type DebugDrawComponentSpec struct {
	Rays     bool    `yaml:"rays"`
	Heading  bool    `yaml:"heading"`
	RayScale float64 `yaml:"ray_scale"`
}
