package ecs

type System interface {
	Update(w *World)
}

// Scheduler runs systems in insertion order, once per frame.
type Scheduler struct {
	systems []System
	frame   uint64
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(w *World) {
	if s == nil || w == nil {
		return
	}
	for _, system := range s.systems {
		system.Update(w)
	}
	s.frame++
}

// Frame returns the number of completed updates.
func (s *Scheduler) Frame() uint64 {
	if s == nil {
		return 0
	}
	return s.frame
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
