package ecs

import (
	"math/rand/v2"
	"reflect"
)

// EntityID is a random 64-bit identifier. Not guaranteed globally unique,
// but the collision probability is negligible at engine scale.
type EntityID uint64

// Entity owns an insertion-ordered set of components, at most one per
// concrete type. Create entities through World.NewEntity.
type Entity struct {
	id    EntityID
	cells []*cell
	world *World
}

// ID returns the entity identifier.
func (e *Entity) ID() EntityID { return e.id }

// Len returns the number of attached components.
func (e *Entity) Len() int { return len(e.cells) }

func (e *Entity) findCell(typ reflect.Type) *cell {
	for _, c := range e.cells {
		if c.typ == typ {
			return c
		}
	}
	return nil
}

// Has reports whether a component of concrete type T is attached. Linear in
// the number of components on the entity.
func Has[T any](e *Entity) bool {
	return e.findCell(TypeOf[T]()) != nil
}

// Add constructs a component of type T, attaches it and runs its lifecycle
// hooks: Init, SetOwner, then the one-time GPUInit. Fails with
// ErrComponentAlreadyExists if the entity already has a T.
func Add[T any, P ComponentPtr[T]](e *Entity) (Ref[T], error) {
	if Has[T](e) {
		return Ref[T]{}, ErrComponentAlreadyExists
	}

	var v T
	p := P(&v)
	c := &cell{comp: p, typ: TypeOf[T](), alive: true}
	e.cells = append(e.cells, c)

	p.Init()
	p.SetOwner(Owner{entity: e})
	p.GPUInit(e.world.ctx)

	return Ref[T]{c: c}, nil
}

// Remove detaches and drops the component of type T. No teardown hook fires
// here; teardown only runs on whole-entity destruction. Fails with
// ErrComponentDoesNotExist if absent.
func Remove[T any](e *Entity) error {
	typ := TypeOf[T]()
	for i, c := range e.cells {
		if c.typ == typ {
			c.alive = false
			e.cells = append(e.cells[:i], e.cells[i+1:]...)
			return nil
		}
	}
	return ErrComponentDoesNotExist
}

// Get returns a borrow handle to the component of type T, or
// ErrComponentDoesNotExist.
func Get[T any](e *Entity) (Ref[T], error) {
	c := e.findCell(TypeOf[T]())
	if c == nil {
		return Ref[T]{}, ErrComponentDoesNotExist
	}
	return Ref[T]{c: c}, nil
}

// Update invokes the update hook on every component in insertion order. Each
// component is exclusively borrowed for the duration of its hook.
func (e *Entity) Update(dt float32) {
	for _, c := range e.cells {
		c.borrowExclusive()
		c.comp.Update(dt)
		c.releaseExclusive()
	}
}

// destroy runs teardown on every component in insertion order, then marks
// all cells dead so outstanding references fail loudly instead of dangling.
func (e *Entity) destroy() {
	for _, c := range e.cells {
		c.borrowExclusive()
		c.comp.Teardown()
		c.releaseExclusive()
	}
	for _, c := range e.cells {
		c.alive = false
	}
	e.cells = nil
}

// CheckDependencies verifies every Dependent component's declared sibling
// requirements, returning a MissingDependencyError naming the first missing
// type. Advisory: Add never calls this.
func CheckDependencies(e *Entity) error {
	for _, c := range e.cells {
		dep, ok := c.comp.(Dependent)
		if !ok {
			continue
		}
		for _, req := range dep.Requires() {
			if e.findCell(req) == nil {
				return &MissingDependencyError{
					Component: typeName(c.typ),
					Missing:   typeName(req),
				}
			}
		}
	}
	return nil
}

func newEntity(w *World) *Entity {
	return &Entity{
		id:    EntityID(rand.Uint64()),
		world: w,
	}
}
