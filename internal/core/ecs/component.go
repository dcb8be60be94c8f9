// Package ecs implements the entity-component system: entities own
// heterogeneous components stored behind runtime-checked borrow cells, the
// world owns entities and answers typed queries across them.
package ecs

import (
	"reflect"

	"github.com/selene-engine/selene/internal/core/engine"
)

// Component is the capability interface every component implements. Embed
// BaseComponent to inherit no-op defaults and override only what is needed.
type Component interface {
	// Init runs immediately after construction, before the component is
	// visible to queries. Field defaults belong here.
	Init()
	// Update runs once per frame in component insertion order.
	Update(dt float32)
	// GPUInit runs exactly once, right after the component is attached.
	// GPU resource acquisition belongs here.
	GPUInit(ctx *engine.Context)
	// Teardown runs when the owning entity is destroyed. It does not run on
	// plain component removal.
	Teardown()
	// SetOwner hands the component a back-reference to its owning entity,
	// through which sibling components are resolved.
	SetOwner(o Owner)
}

// ComponentPtr constrains a type parameter to a pointer-to-struct component,
// letting Add construct the value itself.
type ComponentPtr[T any] interface {
	*T
	Component
}

// BaseComponent provides no-op defaults for the full capability set.
type BaseComponent struct{}

func (BaseComponent) Init()                   {}
func (BaseComponent) Update(float32)          {}
func (BaseComponent) GPUInit(*engine.Context) {}
func (BaseComponent) Teardown()               {}
func (BaseComponent) SetOwner(Owner)          {}

// Dependent is implemented by components that require sibling components on
// the same entity. The check is advisory: Add does not enforce it, callers
// invoke CheckDependencies or World.ValidateDependencies explicitly.
type Dependent interface {
	Requires() []reflect.Type
}

// TypeOf returns the registry type key for component type T, for use in
// Requires declarations.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil))
}

// Owner is the back-reference a component receives at attach time.
type Owner struct {
	entity *Entity
}

// Entity returns the owning entity.
func (o Owner) Entity() *Entity { return o.entity }

// Resolve finds a sibling component of type T on the owner's entity. The
// returned reference stays usable for as long as the entity lives;
// borrowing it after the entity is destroyed panics.
func Resolve[T any](o Owner) (Ref[T], error) {
	if o.entity == nil {
		return Ref[T]{}, ErrComponentDoesNotExist
	}
	return Get[T](o.entity)
}
