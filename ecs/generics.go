package ecs

import "github.com/milk9111/steering/ecs/component"

// Add stores value on e, replacing any previous value of the same kind.
func Add[T any](w *World, e Entity, key component.Key[T], value *T) error {
	kind := key.Kind()
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	if value == nil {
		return component.ErrNilComponent
	}
	w.store(kind.ID(), true).Set(e, value)
	return nil
}

func Remove[T any](w *World, e Entity, key component.Key[T]) bool {
	if !w.IsAlive(e) {
		return false
	}
	return w.store(key.Kind().ID(), false).Remove(e)
}

func Has[T any](w *World, e Entity, key component.Key[T]) bool {
	if !w.IsAlive(e) {
		return false
	}
	return w.store(key.Kind().ID(), false).Has(e)
}

func Get[T any](w *World, e Entity, key component.Key[T]) (*T, bool) {
	if !w.IsAlive(e) {
		return nil, false
	}
	v, ok := w.store(key.Kind().ID(), false).Get(e).(*T)
	return v, ok && v != nil
}

func ForEach[A any](w *World, ka component.Key[A], fn func(Entity, *A)) {
	for _, e := range w.Query(ka.Kind()) {
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		fn(e, a)
	}
}

func ForEach2[A, B any](w *World, ka component.Key[A], kb component.Key[B], fn func(Entity, *A, *B)) {
	for _, e := range w.Query(ka.Kind(), kb.Kind()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		if !okA || !okB {
			continue
		}
		fn(e, a, b)
	}
}

func ForEach3[A, B, C any](w *World, ka component.Key[A], kb component.Key[B], kc component.Key[C], fn func(Entity, *A, *B, *C)) {
	for _, e := range w.Query(ka.Kind(), kb.Kind(), kc.Kind()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		c, okC := Get(w, e, kc)
		if !okA || !okB || !okC {
			continue
		}
		fn(e, a, b, c)
	}
}
