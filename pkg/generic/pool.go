// Package generic holds small type-parameterized helpers shared across the
// engine.
package generic

import "sync"

// Pool recycles values of T so steady-state frames allocate nothing.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool builds a pool that falls back to generate when empty.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewHotPool pre-populates the pool with hotSize values so the first frames
// do not pay the allocation cost.
func NewHotPool[T any](generate func() T, hotSize int) *Pool[T] {
	p := NewPool[T](generate)
	for i := 0; i < hotSize; i++ {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}

// SlicePool recycles scratch slices of E. Get always returns a zero-length
// slice; Put keeps the slice's grown capacity but drops slices that ballooned
// past maxCap so one oversized frame cannot pin memory forever.
type SlicePool[E any] struct {
	pool   *Pool[[]E]
	maxCap int
}

// NewSlicePool builds a slice pool whose fresh slices start at initialCap and
// whose recycled slices are discarded beyond maxCap. hotSize slices are
// pre-allocated.
func NewSlicePool[E any](initialCap, maxCap, hotSize int) *SlicePool[E] {
	return &SlicePool[E]{
		maxCap: maxCap,
		pool: NewHotPool(func() []E {
			return make([]E, 0, initialCap)
		}, hotSize),
	}
}

// Get returns an empty slice ready to append into.
func (p *SlicePool[E]) Get() []E {
	return p.pool.Get()[:0]
}

// Put returns a slice to the pool. The caller must not use it afterwards.
func (p *SlicePool[E]) Put(s []E) {
	if cap(s) > p.maxCap {
		return
	}
	p.pool.Put(s[:0])
}
