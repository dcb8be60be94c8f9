package ecs

import (
	"github.com/selene-engine/selene/internal/core/engine"
)

// World owns every entity. Typed queries scan entities linearly in insertion
// order; no secondary index is kept, since entity counts are modest and
// queries are rare next to per-entity updates.
type World struct {
	ctx      *engine.Context
	entities []*Entity
}

// NewWorld builds an empty world bound to the application context.
func NewWorld(ctx *engine.Context) *World {
	return &World{ctx: ctx}
}

// Ctx returns the application context the world was built with.
func (w *World) Ctx() *engine.Context { return w.ctx }

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.entities) }

// NewEntity creates an empty entity owned by this world.
func (w *World) NewEntity() *Entity {
	e := newEntity(w)
	w.entities = append(w.entities, e)
	return e
}

// Update runs the per-frame update hook across every entity in insertion
// order.
func (w *World) Update(dt float32) {
	for _, e := range w.entities {
		e.Update(dt)
	}
}

// DestroyEntity tears the entity down (teardown hook per component, in
// insertion order) and removes it from the world. Outstanding component
// references to it become dead and panic on borrow.
func (w *World) DestroyEntity(target *Entity) {
	for i, e := range w.entities {
		if e == target {
			e.destroy()
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return
		}
	}
}

// Destroy tears down every entity in insertion order. The world is empty
// afterwards.
func (w *World) Destroy() {
	for _, e := range w.entities {
		e.destroy()
	}
	w.entities = nil
}

// ValidateDependencies runs the advisory dependency check across all
// entities, returning the first failure.
func (w *World) ValidateDependencies() error {
	for _, e := range w.entities {
		if err := CheckDependencies(e); err != nil {
			return err
		}
	}
	return nil
}

// AllComponents returns a reference to every component of concrete type T
// across the world, in entity insertion order. Fails with
// ErrComponentDoesNotExist when no entity has one.
func AllComponents[T any](w *World) ([]Ref[T], error) {
	var refs []Ref[T]
	typ := TypeOf[T]()
	for _, e := range w.entities {
		if c := e.findCell(typ); c != nil {
			refs = append(refs, Ref[T]{c: c})
		}
	}
	if len(refs) == 0 {
		return nil, ErrComponentDoesNotExist
	}
	return refs, nil
}
