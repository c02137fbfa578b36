package entity

import (
	"fmt"
	"math"

	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/ecs/system"
	"github.com/milk9111/steering/internal/observability"
	"github.com/milk9111/steering/prefabs"
	"github.com/milk9111/steering/steering"
	"go.uber.org/zap"
)

// Options tunes a Sim. The zero value is usable.
type Options struct {
	Logger *zap.Logger
	// DT is the physics step in seconds. Zero means system.DefaultTimeStep.
	DT float64
	// LoadScript overrides where agent scripts are read from.
	LoadScript func(name string) ([]byte, error)
	// LogEvery logs a heading summary every n frames. Zero disables it.
	LogEvery int
}

// Sim is a built scene together with the frame pipeline that drives it.
type Sim struct {
	World *ecs.World
	Scene *prefabs.SceneSpec

	logger    *zap.Logger
	scheduler *ecs.Scheduler
	scripts   *system.ScriptSystem
	logEvery  int
	resolved  int
	contacts  int
}

// AgentSnapshot is one agent's state after a frame.
type AgentSnapshot struct {
	Name     string            `yaml:"name"`
	X        float64           `yaml:"x"`
	Y        float64           `yaml:"y"`
	Heading  steering.Vec2     `yaml:"heading"`
	Gradient []steering.Sample `yaml:"gradient"`
}

// AgentPeak is an agent's strongest interest and danger slots.
type AgentPeak struct {
	Name         string
	Interest     steering.Sample
	InterestSlot int
	Danger       steering.Sample
	DangerSlot   int
}

func (p AgentPeak) String() string {
	return fmt.Sprintf("%-10s interest #%d %4.0f° %.2f  danger #%d %4.0f° %.2f",
		p.Name,
		p.InterestSlot, degrees(p.Interest.Angle), p.Interest.Interest,
		p.DangerSlot, degrees(p.Danger.Angle), p.Danger.Danger,
	)
}

func degrees(rad float32) float64 {
	return float64(rad) * 180 / math.Pi
}

// Snapshot is every agent's state after Frame frames.
type Snapshot struct {
	Scene  string          `yaml:"scene"`
	Frame  uint64          `yaml:"frame"`
	Agents []AgentSnapshot `yaml:"agents"`
}

// NewSim builds spec into a fresh world and wires the systems in frame
// order.
func NewSim(spec *prefabs.SceneSpec, opts Options) (*Sim, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.GetLogger()
	}

	w := ecs.NewWorld()
	ents, err := BuildScene(w, spec)
	if err != nil {
		return nil, err
	}

	scripts := system.NewScriptSystem(logger)
	if opts.LoadScript != nil {
		scripts.Load = opts.LoadScript
	}

	sim := &Sim{
		World:  w,
		Scene:  spec,
		logger: logger.Named("sim"),
		scheduler: ecs.NewScheduler(
			system.NewSteeringClearSystem(logger),
			system.NewPerceptionSystem(logger),
			system.NewSeparationSystem(logger),
			scripts,
			system.NewSteeringSystem(logger),
			system.NewPhysicsSystem(logger, opts.DT),
			system.NewHazardContactSystem(logger),
			system.NewRespawnSystem(logger),
		),
		scripts:  scripts,
		logEvery: opts.LogEvery,
	}
	sim.logger.Info("scene built",
		zap.String("scene", spec.Name),
		zap.Int("entities", len(ents)),
		zap.Float64("width", spec.Width),
		zap.Float64("height", spec.Height),
	)
	return sim, nil
}

// Step advances the simulation by one frame.
func (s *Sim) Step() {
	if s == nil {
		return
	}
	s.scheduler.Update(s.World)

	for _, evt := range s.World.Events().Drain() {
		if evt.Type == system.EventHazardContact {
			s.contacts++
			if c, ok := evt.Data.(system.HazardContact); ok {
				s.logger.Info("hazard contact",
					zap.Uint64("frame", s.scheduler.Frame()),
					zap.Stringer("agent", c.Agent),
					zap.Stringer("hazard", c.Hazard),
				)
			}
			continue
		}
		if evt.Type != system.EventSteeringResolved {
			continue
		}
		s.resolved++
		if s.logEvery <= 0 || s.scheduler.Frame()%uint64(s.logEvery) != 0 {
			continue
		}
		if r, ok := evt.Data.(system.SteeringResolved); ok {
			s.logger.Debug("heading resolved",
				zap.Uint64("frame", s.scheduler.Frame()),
				zap.Stringer("entity", r.Entity),
				zap.Float32("x", r.Heading[0]),
				zap.Float32("y", r.Heading[1]),
				zap.Float64("speed", r.Speed),
			)
		}
	}
}

// Frame returns the number of completed frames.
func (s *Sim) Frame() uint64 {
	if s == nil {
		return 0
	}
	return s.scheduler.Frame()
}

// Resolved counts the headings resolved since the sim was built.
func (s *Sim) Resolved() int {
	if s == nil {
		return 0
	}
	return s.resolved
}

// Contacts counts hazard contacts since the sim was built.
func (s *Sim) Contacts() int {
	if s == nil {
		return 0
	}
	return s.contacts
}

// ReloadScripts drops compiled scripts so edits take effect next frame.
func (s *Sim) ReloadScripts() {
	if s == nil {
		return
	}
	s.scripts.Invalidate()
}

// Peaks reports each agent's peak slots in entity order.
func (s *Sim) Peaks() []AgentPeak {
	if s == nil {
		return nil
	}
	var out []AgentPeak
	ecs.ForEach2(s.World, component.SteeringAgentTagComponent, component.SteeringComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, st *component.Steering) {
		if st.Map == nil {
			return
		}
		p := AgentPeak{Name: s.nameOf(e)}
		p.Interest, p.InterestSlot = st.Map.Peak(steering.Interest)
		p.Danger, p.DangerSlot = st.Map.Peak(steering.Danger)
		out = append(out, p)
	})
	return out
}

func (s *Sim) nameOf(e ecs.Entity) string {
	if n, ok := ecs.Get(s.World, e, component.NameComponent); ok && n.Value != "" {
		return n.Value
	}
	return e.String()
}

// Snapshot reports every agent with a built gradient map, by entity order.
func (s *Sim) Snapshot() Snapshot {
	snap := Snapshot{}
	if s == nil {
		return snap
	}
	if s.Scene != nil {
		snap.Scene = s.Scene.Name
	}
	snap.Frame = s.Frame()

	ecs.ForEach3(s.World, component.SteeringAgentTagComponent, component.SteeringComponent, component.TransformComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, st *component.Steering, tr *component.Transform) {
		if st.Map == nil {
			return
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			Name:     s.nameOf(e),
			X:        tr.X,
			Y:        tr.Y,
			Heading:  st.Heading,
			Gradient: st.Map.Gradient(),
		})
	})
	return snap
}
