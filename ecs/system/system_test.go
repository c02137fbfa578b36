package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/steering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newAgent(t *testing.T, w *ecs.World, x, y float64, st component.Steering) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.SteeringAgentTagComponent, &component.SteeringAgentTag{}))
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, &component.Transform{X: x, Y: y}))
	require.NoError(t, ecs.Add(w, e, component.SteeringComponent, &st))
	return e
}

func defaultSteering() component.Steering {
	return component.Steering{Resolution: 8, Sigma: 0.5, Blending: 0.5, MoveSpeed: 100}
}

func newTarget(t *testing.T, w *ecs.World, x, y float64, tg component.Target) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, &component.Transform{X: x, Y: y}))
	require.NoError(t, ecs.Add(w, e, component.TargetComponent, &tg))
	return e
}

func newHazard(t *testing.T, w *ecs.World, x, y float64, hz component.Hazard) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, &component.Transform{X: x, Y: y}))
	require.NoError(t, ecs.Add(w, e, component.HazardComponent, &hz))
	return e
}

func steeringOf(t *testing.T, w *ecs.World, e ecs.Entity) *component.Steering {
	t.Helper()
	st, ok := ecs.Get(w, e, component.SteeringComponent)
	require.True(t, ok)
	return st
}

func TestSteeringClearBuildsAndDecays(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	clearSys := NewSteeringClearSystem(zap.NewNop())

	clearSys.Update(w)
	st := steeringOf(t, w, e)
	require.NotNil(t, st.Map)
	assert.Equal(t, 8, st.Map.Resolution())

	st.Map.AddInterest(0, 1)
	clearSys.Update(w)
	assert.InDelta(t, 0.5, st.Map.Gradient()[0].Interest, 1e-6)
}

func TestSteeringClearRejectsInvalidParameters(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := ecs.NewWorld()
	bad := defaultSteering()
	bad.Blending = 2
	e := newAgent(t, w, 0, 0, bad)

	clearSys := NewSteeringClearSystem(zap.New(core))
	clearSys.Update(w)
	clearSys.Update(w)

	st := steeringOf(t, w, e)
	assert.Nil(t, st.Map)
	assert.True(t, st.Invalid)
	assert.Equal(t, 1, logs.FilterMessage("agent disabled").Len())
}

func TestPerceptionTargetsAndHazards(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	newTarget(t, w, 100, 0, component.Target{Weight: 1, Range: 200})
	newHazard(t, w, 0, 100, component.Hazard{Radius: 40, Range: 120, Weight: 1})

	NewSteeringClearSystem(nil).Update(w)
	NewPerceptionSystem(nil).Update(w)

	m := steeringOf(t, w, e).Map
	s, idx := m.Peak(steering.Interest)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 0.5, s.Interest, 1e-6, "linear falloff at half range")

	s, idx = m.Peak(steering.Danger)
	assert.Equal(t, 2, idx, "danger points down +y")
	assert.InDelta(t, 0.5, s.Danger, 1e-6, "falloff measured from the hazard edge")
}

func TestHazardBetweenAgentAndTargetSlowsHeading(t *testing.T) {
	headingX := func(withHazard bool) float32 {
		w := ecs.NewWorld()
		e := newAgent(t, w, 0, 0, defaultSteering())
		newTarget(t, w, 200, 0, component.Target{Weight: 1})
		if withHazard {
			newHazard(t, w, 60, 10, component.Hazard{Radius: 20, Range: 100, Weight: 1})
		}
		NewSteeringClearSystem(nil).Update(w)
		NewPerceptionSystem(nil).Update(w)
		return steeringOf(t, w, e).Map.Heading().X
	}

	unblocked := headingX(false)
	blocked := headingX(true)
	assert.Greater(t, unblocked, float32(0))
	assert.Less(t, blocked, unblocked)
}

func TestPerceptionRange(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.PerceptionComponent, &component.Perception{Range: 50}))
	newTarget(t, w, 100, 0, component.Target{Weight: 1})
	newHazard(t, w, -200, 0, component.Hazard{Radius: 10, Weight: 1})

	NewSteeringClearSystem(nil).Update(w)
	NewPerceptionSystem(nil).Update(w)

	for _, s := range steeringOf(t, w, e).Map.Gradient() {
		assert.Zero(t, s.Interest)
		assert.Zero(t, s.Danger)
	}
}

func TestPerceptionInsideHazard(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	newHazard(t, w, -5, 0, component.Hazard{Radius: 20, Range: 10, Weight: 0.8})

	NewSteeringClearSystem(nil).Update(w)
	NewPerceptionSystem(nil).Update(w)

	s, idx := steeringOf(t, w, e).Map.Peak(steering.Danger)
	assert.Equal(t, 4, idx)
	assert.InDelta(t, 0.8, s.Danger, 1e-6)
}

func TestSeparation(t *testing.T) {
	w := ecs.NewWorld()
	a := newAgent(t, w, 0, 0, defaultSteering())
	b := newAgent(t, w, 10, 0, defaultSteering())
	c := newAgent(t, w, 0, -10, defaultSteering())
	require.NoError(t, ecs.Add(w, a, component.SeparationComponent, &component.Separation{Radius: 20, Weight: 1}))
	require.NoError(t, ecs.Add(w, b, component.SeparationComponent, &component.Separation{Radius: 20, Weight: 1, Category: 2}))
	// c only avoids category 2
	require.NoError(t, ecs.Add(w, c, component.SeparationComponent, &component.Separation{Radius: 20, Weight: 1, Mask: 2}))

	NewSteeringClearSystem(nil).Update(w)
	NewSeparationSystem(nil).Update(w)

	ma := steeringOf(t, w, a).Map
	assert.InDelta(t, 0.5, ma.Gradient()[0].Danger, 1e-6)
	assert.InDelta(t, 0.5, ma.Gradient()[6].Danger, 1e-6)

	_, idx := steeringOf(t, w, b).Map.Peak(steering.Danger)
	assert.Equal(t, 4, idx)

	mc := steeringOf(t, w, c).Map
	_, idx = mc.Peak(steering.Danger)
	assert.Equal(t, 1, idx)
	assert.Less(t, mc.Gradient()[2].Danger, float32(0.25), "c ignores a, which is category 1")
	for _, s := range mc.Gradient() {
		assert.Zero(t, s.Interest)
	}
}

func TestScriptAddsSignals(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.SteeringScriptComponent, &component.SteeringScript{
		Path:   "flee",
		Params: map[string]any{"strength": 0.75},
	}))
	be := w.CreateEntity()
	require.NoError(t, ecs.Add(w, be, component.WorldBoundsComponent, &component.WorldBounds{Width: 320, Height: 240}))

	loads := 0
	scripts := NewScriptSystem(zap.NewNop())
	scripts.Load = func(name string) ([]byte, error) {
		loads++
		assert.Equal(t, "flee", name)
		return []byte(`
math := import("math")
update := func(engine) {
	b := engine.bounds()
	if b[0] != 320.0 || engine.resolution() != 8 {
		return
	}
	engine.add_interest(math.pi, engine.param("strength", 0.1))
	engine.add_danger(0, engine.param("missing", 0.25))
}
`), nil
	}

	NewSteeringClearSystem(nil).Update(w)
	scripts.Update(w)
	scripts.Update(w)

	m := steeringOf(t, w, e).Map
	s, idx := m.Peak(steering.Interest)
	assert.Equal(t, 4, idx)
	assert.InDelta(t, 0.75, s.Interest, 1e-6)
	s, idx = m.Peak(steering.Danger)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 0.25, s.Danger, 1e-6)
	assert.Equal(t, 1, loads, "compiled once per entity")
}

func TestScriptFrameCounter(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.SteeringScriptComponent, &component.SteeringScript{Path: "frames"}))

	scripts := NewScriptSystem(nil)
	scripts.Load = func(string) ([]byte, error) {
		return []byte(`
update := func(engine) {
	if engine.frame() == 2 {
		engine.add_interest(0, 1)
	}
}
`), nil
	}

	clearSys := NewSteeringClearSystem(nil)
	for i := 0; i < 2; i++ {
		clearSys.Update(w)
		scripts.Update(w)
		assert.Zero(t, steeringOf(t, w, e).Map.Gradient()[0].Interest, "frame %d", i)
	}
	clearSys.Update(w)
	scripts.Update(w)
	assert.Equal(t, float32(1), steeringOf(t, w, e).Map.Gradient()[0].Interest)
}

func TestScriptErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ecs.NewWorld()
	broken := newAgent(t, w, 0, 0, defaultSteering())
	failing := newAgent(t, w, 5, 5, defaultSteering())
	require.NoError(t, ecs.Add(w, broken, component.SteeringScriptComponent, &component.SteeringScript{Path: "broken"}))
	require.NoError(t, ecs.Add(w, failing, component.SteeringScriptComponent, &component.SteeringScript{Path: "failing"}))

	scripts := NewScriptSystem(zap.New(core))
	scripts.Load = func(name string) ([]byte, error) {
		if name == "broken" {
			return []byte(`update := func(engine) {`), nil
		}
		return []byte(`update := func(engine) { engine.add_interest("north", 1) }`), nil
	}

	NewSteeringClearSystem(nil).Update(w)
	require.NotPanics(t, func() {
		scripts.Update(w)
		scripts.Update(w)
	})

	assert.Equal(t, 1, logs.FilterMessage("script load failed").Len())
	assert.Equal(t, 2, logs.FilterMessage("script update failed").Len())
}

func TestSteerVelocity(t *testing.T) {
	// heading longer than one is capped to max speed
	v := steerVelocity(cp.Vector{}, 3, 0, 100, 0)
	assert.InDelta(t, 100, v.X, 1e-9)
	assert.InDelta(t, 0, v.Y, 1e-9)

	// weak heading is a proportional speed
	v = steerVelocity(cp.Vector{}, 0, 0.5, 100, 0)
	assert.InDelta(t, 50, v.Y, 1e-9)

	// acceleration limits the change per frame
	v = steerVelocity(cp.Vector{X: -100}, 1, 0, 100, 30)
	assert.InDelta(t, -70, v.X, 1e-9)

	v = steerVelocity(cp.Vector{X: 90}, 1, 0, 100, 30)
	assert.InDelta(t, 100, v.X, 1e-9)
}

func TestSteeringSystemDrivesBody(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 50, 50, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{Radius: 5, Mass: 1}))
	newTarget(t, w, 150, 50, component.Target{Weight: 1})

	clearSys := NewSteeringClearSystem(nil)
	perception := NewPerceptionSystem(nil)
	steer := NewSteeringSystem(nil)
	physics := NewPhysicsSystem(nil, 0)

	// the first frame creates the body
	for i := 0; i < 2; i++ {
		clearSys.Update(w)
		perception.Update(w)
		steer.Update(w)
		physics.Update(w)
	}

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	require.True(t, ok)
	require.NotNil(t, body.Body)
	// damping bleeds a little speed during the step
	assert.InDelta(t, 100, body.Body.Velocity().X, 1)

	st := steeringOf(t, w, e)
	cached, ok := st.Map.CachedHeading()
	require.True(t, ok)
	assert.Equal(t, cached, st.Heading)

	events := w.Events().Drain()
	require.Len(t, events, 2)
	resolved, ok := events[1].Data.(SteeringResolved)
	require.True(t, ok)
	assert.Equal(t, EventSteeringResolved, events[1].Type)
	assert.Equal(t, e, resolved.Entity)
	assert.InDelta(t, 100, resolved.Speed, 1e-6)
}

func TestPhysicsLifecycle(t *testing.T) {
	w := ecs.NewWorld()
	bounds := w.CreateEntity()
	require.NoError(t, ecs.Add(w, bounds, component.WorldBoundsComponent, &component.WorldBounds{Width: 200, Height: 100}))

	mover := w.CreateEntity()
	require.NoError(t, ecs.Add(w, mover, component.TransformComponent, &component.Transform{X: 20, Y: 50}))
	require.NoError(t, ecs.Add(w, mover, component.PhysicsBodyComponent, &component.PhysicsBody{Radius: 5}))
	rock := w.CreateEntity()
	require.NoError(t, ecs.Add(w, rock, component.TransformComponent, &component.Transform{X: 150, Y: 50}))
	require.NoError(t, ecs.Add(w, rock, component.PhysicsBodyComponent, &component.PhysicsBody{Radius: 10, Static: true}))

	physics := NewPhysicsSystem(nil, 0.1)
	physics.Update(w)
	assert.Len(t, physics.entities, 3)

	body, _ := ecs.Get(w, mover, component.PhysicsBodyComponent)
	require.NotNil(t, body.Body)
	body.Body.SetVelocity(10, 0)
	physics.Update(w)

	tr, _ := ecs.Get(w, mover, component.TransformComponent)
	assert.Greater(t, tr.X, 20.0)
	assert.InDelta(t, 50, tr.Y, 1e-6)

	rockTr, _ := ecs.Get(w, rock, component.TransformComponent)
	assert.Equal(t, 150.0, rockTr.X, "static bodies do not sync")

	require.True(t, w.DestroyEntity(mover))
	physics.Update(w)
	assert.Len(t, physics.entities, 2)
	assert.False(t, physics.Space().ContainsBody(body.Body))
}

func TestPipelineReachesTarget(t *testing.T) {
	w := ecs.NewWorld()
	be := w.CreateEntity()
	require.NoError(t, ecs.Add(w, be, component.WorldBoundsComponent, &component.WorldBounds{Width: 400, Height: 400}))

	st := defaultSteering()
	st.Resolution = 16
	st.Acceleration = 20
	e := newAgent(t, w, 50, 200, st)
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{Radius: 5}))
	newTarget(t, w, 350, 200, component.Target{Weight: 1})

	sched := ecs.NewScheduler(
		NewSteeringClearSystem(nil),
		NewPerceptionSystem(nil),
		NewSeparationSystem(nil),
		NewScriptSystem(nil),
		NewSteeringSystem(nil),
		NewPhysicsSystem(nil, 0),
	)

	start := 300.0
	for i := 0; i < 120; i++ {
		sched.Update(w)
		w.Events().Drain()
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	dist := math.Hypot(350-tr.X, 200-tr.Y)
	assert.Less(t, dist, start-100)
	assert.Equal(t, uint64(120), sched.Frame())
}

func TestHazardContactQueuesRespawn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ecs.NewWorld()
	e := newAgent(t, w, 0, 0, defaultSteering())
	hz := newHazard(t, w, 100, 0, component.Hazard{Radius: 20, Range: 60, Weight: 1})
	contacts := NewHazardContactSystem(zap.New(core))

	contacts.Update(w)
	spawn, ok := ecs.Get(w, e, component.SpawnComponent)
	require.True(t, ok)
	assert.Equal(t, component.Spawn{X: 0, Y: 0, Initialized: true}, *spawn)
	assert.Zero(t, w.Events().Len())

	tr, _ := ecs.Get(w, e, component.TransformComponent)
	tr.X = 90
	contacts.Update(w)
	events := w.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventHazardContact, events[0].Type)
	assert.Equal(t, HazardContact{Agent: e, Hazard: hz, X: 90, Y: 0}, events[0].Data)
	assert.True(t, ecs.Has(w, e, component.RespawnRequestComponent))
	assert.Equal(t, 1, logs.FilterMessage("hazard contact").Len())

	// staying inside is not a new contact
	contacts.Update(w)
	assert.Zero(t, w.Events().Len())

	tr.X = 0
	contacts.Update(w)
	tr.X = 95
	contacts.Update(w)
	assert.Equal(t, 1, w.Events().Len(), "leaving and re-entering is")

	assert.Equal(t, component.Spawn{X: 0, Y: 0, Initialized: true}, *spawn, "spawn is only recorded once")
}

func TestRespawnResetsAgent(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 120, 40, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{Radius: 5}))
	require.NoError(t, ecs.Add(w, e, component.SpawnComponent, &component.Spawn{X: 20, Y: 30, Initialized: true}))

	physics := NewPhysicsSystem(nil, 0)
	NewSteeringClearSystem(nil).Update(w)
	physics.Update(w)

	st := steeringOf(t, w, e)
	st.Map.AddInterest(0, 1)
	st.Map.AddDanger(1, 0.5)
	st.Heading = st.Map.Heading()
	_, ok := st.Map.CachedHeading()
	require.True(t, ok)

	body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
	require.NotNil(t, body.Body)
	body.Body.SetVelocity(40, -10)

	require.NoError(t, ecs.Add(w, e, component.RespawnRequestComponent, &component.RespawnRequest{}))
	NewRespawnSystem(zap.NewNop()).Update(w)

	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.Equal(t, 20.0, tr.X)
	assert.Equal(t, 30.0, tr.Y)
	assert.Equal(t, cp.Vector{X: 20, Y: 30}, body.Body.Position())
	assert.Equal(t, cp.Vector{}, body.Body.Velocity())

	for _, s := range st.Map.Gradient() {
		assert.Zero(t, s.Interest)
		assert.Zero(t, s.Danger)
	}
	_, ok = st.Map.CachedHeading()
	assert.False(t, ok, "reset drops the memoized heading")
	assert.Equal(t, steering.Vec2{}, st.Heading)
	assert.False(t, ecs.Has(w, e, component.RespawnRequestComponent))
}

func TestRespawnWithoutSpawnOnlyDropsRequest(t *testing.T) {
	w := ecs.NewWorld()
	e := newAgent(t, w, 10, 10, defaultSteering())
	require.NoError(t, ecs.Add(w, e, component.RespawnRequestComponent, &component.RespawnRequest{}))

	NewRespawnSystem(nil).Update(w)

	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.Equal(t, component.Transform{X: 10, Y: 10}, *tr)
	assert.False(t, ecs.Has(w, e, component.RespawnRequestComponent))
}
