// Package engine holds the application context and the frame-driven loop.
// Everything the original renderer kept in process-wide statics (device,
// queue, resolution, delta time) lives here and is passed explicitly.
package engine

import (
	"sync"

	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/observability/log"
)

// Resolution is the current viewport size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

// Aspect returns width over height. A zero-height resolution would poison
// every projection matrix, so it is rejected loudly.
func (r Resolution) Aspect() float32 {
	if r.Height == 0 {
		panic("engine: resolution height is zero")
	}
	return float32(r.Width) / float32(r.Height)
}

// Context carries the shared engine state: GPU device and queue (set once at
// startup), the viewport resolution and frame delta time (updated once per
// frame by the frame driver, read by components under a lock).
type Context struct {
	device gpu.Device
	queue  gpu.Queue
	logger log.Log

	mu  sync.RWMutex
	res Resolution
	dt  float32
}

// NewContext builds the context. device and queue must already be acquired.
func NewContext(device gpu.Device, queue gpu.Queue, logger log.Log, res Resolution) *Context {
	return &Context{
		device: device,
		queue:  queue,
		logger: logger,
		res:    res,
	}
}

func (c *Context) Device() gpu.Device { return c.device }
func (c *Context) Queue() gpu.Queue   { return c.queue }
func (c *Context) Log() log.Log       { return c.logger }

// Resolution returns the viewport size as of the current frame.
func (c *Context) Resolution() Resolution {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.res
}

// SetResolution is called by the frame driver on resize events.
func (c *Context) SetResolution(res Resolution) {
	c.mu.Lock()
	c.res = res
	c.mu.Unlock()
}

// DeltaTime returns the duration of the previous frame in seconds.
func (c *Context) DeltaTime() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dt
}

func (c *Context) setDeltaTime(dt float32) {
	c.mu.Lock()
	c.dt = dt
	c.mu.Unlock()
}
