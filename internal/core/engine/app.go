package engine

import (
	"time"

	"github.com/selene-engine/selene/internal/core/events"
	"github.com/selene-engine/selene/internal/observability/log"
)

// App drives the frame loop: one update/render pass per tick, no frame
// overlap. The host window layer (an external collaborator) publishes resize
// and quit events on the bus; the loop itself is window-agnostic.
type App struct {
	ctx *Context
	bus *events.Bus

	quit       bool
	frameStart time.Time
}

// NewApp wires the loop to the context and bus. Resize events update the
// context resolution, quit events stop the loop at the start of the next tick.
func NewApp(ctx *Context, bus *events.Bus) *App {
	a := &App{ctx: ctx, bus: bus}

	bus.Subscribe(events.Resize{}.Type(), func(e events.Event) {
		r := e.(events.Resize)
		ctx.SetResolution(Resolution{Width: r.Width, Height: r.Height})
	})
	bus.Subscribe(events.Quit{}.Type(), func(events.Event) {
		a.quit = true
	})

	return a
}

// Quit requests the loop to stop. Takes effect at the start of the next tick.
func (a *App) Quit() {
	a.quit = true
}

// Run executes init once, then frame every tick until quit is observed, then
// shutdown exactly once. Delta time covers the full tick including any wait
// the frame callback performs.
func (a *App) Run(init func(), frame func(), shutdown func()) {
	logger := a.ctx.Log()
	logger.Info("engine starting")

	if init != nil {
		init()
	}

	for {
		if a.quit {
			break
		}

		now := time.Now()
		if !a.frameStart.IsZero() {
			a.ctx.setDeltaTime(float32(now.Sub(a.frameStart).Seconds()))
		}
		a.frameStart = now

		frame()
	}

	logger.Info("engine stopping", log.Float32("last_dt", a.ctx.DeltaTime()))
	if shutdown != nil {
		shutdown()
	}
}
