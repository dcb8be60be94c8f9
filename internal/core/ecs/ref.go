package ecs

import (
	"fmt"
	"reflect"
)

// cell stores one component behind a runtime-checked borrow state. The
// discipline mirrors a RefCell: any number of concurrent readers or exactly
// one writer, with violations failing fast instead of racing. Cells of a
// destroyed entity are marked dead; borrowing them is a checked failure
// rather than undefined behavior.
type cell struct {
	comp    Component
	typ     reflect.Type
	borrows int // -1 while exclusively borrowed, otherwise reader count
	alive   bool
}

func (c *cell) borrowShared() {
	if !c.alive {
		panic(fmt.Sprintf("ecs: borrow of %s on a destroyed entity", typeName(c.typ)))
	}
	if c.borrows < 0 {
		panic(fmt.Sprintf("ecs: %s already exclusively borrowed", typeName(c.typ)))
	}
	c.borrows++
}

func (c *cell) borrowExclusive() {
	if !c.alive {
		panic(fmt.Sprintf("ecs: borrow of %s on a destroyed entity", typeName(c.typ)))
	}
	if c.borrows != 0 {
		panic(fmt.Sprintf("ecs: %s already borrowed", typeName(c.typ)))
	}
	c.borrows = -1
}

func (c *cell) releaseShared() {
	if c.borrows <= 0 {
		panic(fmt.Sprintf("ecs: unbalanced shared release of %s", typeName(c.typ)))
	}
	c.borrows--
}

func (c *cell) releaseExclusive() {
	if c.borrows != -1 {
		panic(fmt.Sprintf("ecs: unbalanced exclusive release of %s", typeName(c.typ)))
	}
	c.borrows = 0
}

// typeName strips the pointer from the registry key for messages and errors.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return t.Elem().Name()
	}
	return t.Name()
}

// Ref is a typed, non-owning handle to a component stored on some entity.
// The zero Ref is invalid.
type Ref[T any] struct {
	c *cell
}

// Valid reports whether the reference points at a component at all. It stays
// true after the owning entity is destroyed; borrows catch that case.
func (r Ref[T]) Valid() bool { return r.c != nil }

// Alive reports whether the owning entity still exists.
func (r Ref[T]) Alive() bool { return r.c != nil && r.c.alive }

// Borrow takes a shared borrow. Panics if the reference is the zero Ref, the
// component is currently exclusively borrowed, or its entity was destroyed.
func (r Ref[T]) Borrow() *Guard[T] {
	if r.c == nil {
		panic("ecs: borrow through a zero Ref")
	}
	r.c.borrowShared()
	return &Guard[T]{c: r.c, v: any(r.c.comp).(*T)}
}

// BorrowMut takes an exclusive borrow. Panics if the reference is the zero
// Ref, any borrow is active, or the entity was destroyed.
func (r Ref[T]) BorrowMut() *MutGuard[T] {
	if r.c == nil {
		panic("ecs: borrow through a zero Ref")
	}
	r.c.borrowExclusive()
	return &MutGuard[T]{c: r.c, v: any(r.c.comp).(*T)}
}

// Guard is an active shared borrow. Release it when done.
type Guard[T any] struct {
	c        *cell
	v        *T
	released bool
}

// Get returns the borrowed component. Mutating through a shared guard is a
// contract violation the checker cannot see.
func (g *Guard[T]) Get() *T {
	if g.released {
		panic("ecs: use of released borrow")
	}
	return g.v
}

func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.c.releaseShared()
}

// MutGuard is an active exclusive borrow. Release it when done.
type MutGuard[T any] struct {
	c        *cell
	v        *T
	released bool
}

func (g *MutGuard[T]) Get() *T {
	if g.released {
		panic("ecs: use of released borrow")
	}
	return g.v
}

func (g *MutGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.c.releaseExclusive()
}
