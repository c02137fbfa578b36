package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/prefabs"
	"github.com/milk9111/steering/steering"
	"go.uber.org/zap"
)

// ScriptSystem runs each agent's tengo script once per frame. A script
// defines update(engine) and may add signals through engine.add_interest and
// engine.add_danger. engine.heading() is the heading resolved on the
// previous frame.
type ScriptSystem struct {
	logger *zap.Logger
	cache  map[ecs.Entity]*scriptRuntime
	frame  int64
	// Load reads script sources. Defaults to prefabs.LoadScript.
	Load func(name string) ([]byte, error)
}

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	failed   bool
}

const scriptDispatch = `
update(__engine)
`

func NewScriptSystem(logger *zap.Logger) *ScriptSystem {
	return &ScriptSystem{
		logger: loggerOr(logger, "script"),
		cache:  map[ecs.Entity]*scriptRuntime{},
		Load:   prefabs.LoadScript,
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.cache == nil {
		s.cache = map[ecs.Entity]*scriptRuntime{}
	}
	for e := range s.cache {
		if !ecs.Has(w, e, component.SteeringScriptComponent) {
			delete(s.cache, e)
		}
	}

	bounds := [2]float64{}
	if be, ok := w.First(component.WorldBoundsComponent.Kind()); ok {
		if b, ok := ecs.Get(w, be, component.WorldBoundsComponent); ok {
			bounds = [2]float64{b.Width, b.Height}
		}
	}

	for _, a := range collectAgents(w) {
		sc, ok := ecs.Get(w, a.e, component.SteeringScriptComponent)
		if !ok || strings.TrimSpace(sc.Path) == "" {
			continue
		}
		rt, err := s.runtime(a.e, sc.Path)
		if err != nil {
			s.logger.Error("script load failed", zap.Stringer("entity", a.e), zap.String("path", sc.Path), zap.Error(err))
			continue
		}
		if rt.failed {
			continue
		}
		engine := buildScriptEngine(a, sc, s.frame, bounds)
		if err := rt.compiled.Set("__engine", engine); err != nil {
			s.logger.Error("script setup failed", zap.Stringer("entity", a.e), zap.Error(err))
			continue
		}
		if err := rt.compiled.Run(); err != nil {
			s.logger.Warn("script update failed", zap.Stringer("entity", a.e), zap.String("path", sc.Path), zap.Error(err))
		}
	}
	s.frame++
}

// Invalidate drops every compiled script so the next frame reloads them.
func (s *ScriptSystem) Invalidate() {
	if s == nil {
		return
	}
	clear(s.cache)
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}

	load := s.Load
	if load == nil {
		load = prefabs.LoadScript
	}
	src, err := load(path)
	if err != nil {
		// remember the failure; the error is logged once
		s.cache[e] = &scriptRuntime{path: path, failed: true}
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__engine", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		s.cache[e] = &scriptRuntime{path: path, failed: true}
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	rt := &scriptRuntime{path: path, compiled: compiled}
	s.cache[e] = rt
	return rt, nil
}

func buildScriptEngine(a agent, sc *component.SteeringScript, frame int64, bounds [2]float64) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	addSignal := func(ch steering.Channel) tengo.CallableFunc {
		return func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			angle, ok := tengo.ToFloat64(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "angle", Expected: "float", Found: args[0].TypeName()}
			}
			value, ok := tengo.ToFloat64(args[1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "value", Expected: "float", Found: args[1].TypeName()}
			}
			a.st.Map.Add(ch, float32(angle), float32(value))
			return tengo.UndefinedValue, nil
		}
	}

	values["add_interest"] = &tengo.UserFunction{Name: "add_interest", Value: addSignal(steering.Interest)}
	values["add_danger"] = &tengo.UserFunction{Name: "add_danger", Value: addSignal(steering.Danger)}

	values["heading"] = &tengo.UserFunction{Name: "heading", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return floatPair(float64(a.st.Heading.X), float64(a.st.Heading.Y)), nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return floatPair(a.tr.X, a.tr.Y), nil
	}}

	values["bounds"] = &tengo.UserFunction{Name: "bounds", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return floatPair(bounds[0], bounds[1]), nil
	}}

	values["frame"] = &tengo.UserFunction{Name: "frame", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: frame}, nil
	}}

	values["resolution"] = &tengo.UserFunction{Name: "resolution", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(a.st.Map.Resolution())}, nil
	}}

	values["gradient"] = &tengo.UserFunction{Name: "gradient", Value: func(args ...tengo.Object) (tengo.Object, error) {
		samples := a.st.Map.Gradient()
		out := make([]tengo.Object, 0, len(samples))
		for _, sm := range samples {
			out = append(out, &tengo.Array{Value: []tengo.Object{
				&tengo.Float{Value: float64(sm.Angle)},
				&tengo.Float{Value: float64(sm.Interest)},
				&tengo.Float{Value: float64(sm.Danger)},
			}})
		}
		return &tengo.Array{Value: out}, nil
	}}

	values["param"] = &tengo.UserFunction{Name: "param", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		var fallback tengo.Object = tengo.UndefinedValue
		if len(args) == 2 {
			fallback = args[1]
		}
		name, ok := tengo.ToString(args[0])
		if !ok || sc.Params == nil {
			return fallback, nil
		}
		raw, ok := sc.Params[name]
		if !ok {
			return fallback, nil
		}
		obj, err := tengo.FromInterface(raw)
		if err != nil {
			return fallback, nil
		}
		return obj, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func floatPair(x, y float64) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}
