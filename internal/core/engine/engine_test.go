package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selene-engine/selene/internal/core/events"
	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/observability/log"
)

func testContext() *Context {
	dev, queue := gpu.NewHeadless()
	return NewContext(dev, queue, log.Nop(), Resolution{Width: 1920, Height: 1080})
}

func TestConfig(t *testing.T) {
	t.Run("LoadYAML", func(t *testing.T) {
		src := `
window:
  width: 800
  height: 600
clear_color:
  r: 0.1
  g: 0.2
  b: 0.3
  a: 1.0
log_level: debug
`
		c, err := LoadYAML(strings.NewReader(src))
		require.NoError(t, err)
		require.Equal(t, uint32(800), c.Window.Width)
		require.Equal(t, uint32(600), c.Window.Height)
		require.Equal(t, 0.3, c.ClearColor.B)
		require.Equal(t, "debug", c.LogLevel)
		require.Equal(t, Resolution{Width: 800, Height: 600}, c.Resolution())
	})

	t.Run("Defaults Fill Missing Fields", func(t *testing.T) {
		c, err := LoadYAML(strings.NewReader("log_level: warn\n"))
		require.NoError(t, err)
		require.Equal(t, uint32(1280), c.Window.Width)
		require.Equal(t, 1.0, c.ClearColor.A)
	})

	t.Run("Invalid Window Size", func(t *testing.T) {
		src := "window:\n  width: 0\n  height: 600\n"
		_, err := LoadYAML(strings.NewReader(src))
		require.ErrorIs(t, err, ErrInvalidWindowSize)
	})

	t.Run("Invalid Clear Color", func(t *testing.T) {
		src := "clear_color:\n  r: 1.5\n"
		_, err := LoadYAML(strings.NewReader(src))
		require.ErrorIs(t, err, ErrInvalidClearColor)
	})
}

func TestContext(t *testing.T) {
	t.Run("Resolution And Aspect", func(t *testing.T) {
		ctx := testContext()
		require.Equal(t, Resolution{Width: 1920, Height: 1080}, ctx.Resolution())
		require.InDelta(t, 16.0/9.0, ctx.Resolution().Aspect(), 1e-5)

		ctx.SetResolution(Resolution{Width: 800, Height: 800})
		require.InDelta(t, 1.0, ctx.Resolution().Aspect(), 1e-6)
	})

	t.Run("Zero Height Aspect Panics", func(t *testing.T) {
		require.Panics(t, func() {
			Resolution{Width: 100, Height: 0}.Aspect()
		})
	})
}

func TestApp_Run(t *testing.T) {
	t.Run("Quit Observed At Start Of Tick", func(t *testing.T) {
		ctx := testContext()
		bus := events.NewBus()
		app := NewApp(ctx, bus)

		frames := 0
		shutdowns := 0
		app.Run(
			func() {},
			func() {
				frames++
				if frames == 3 {
					bus.Publish(events.Quit{})
				}
			},
			func() { shutdowns++ },
		)

		require.Equal(t, 3, frames)
		require.Equal(t, 1, shutdowns)
	})

	t.Run("Resize Event Updates Context", func(t *testing.T) {
		ctx := testContext()
		bus := events.NewBus()
		app := NewApp(ctx, bus)

		app.Run(nil, func() {
			bus.Publish(events.Resize{Width: 640, Height: 480})
			app.Quit()
		}, nil)

		require.Equal(t, Resolution{Width: 640, Height: 480}, ctx.Resolution())
	})

	t.Run("Delta Time Advances", func(t *testing.T) {
		ctx := testContext()
		bus := events.NewBus()
		app := NewApp(ctx, bus)

		frames := 0
		app.Run(nil, func() {
			frames++
			if frames >= 2 {
				require.GreaterOrEqual(t, ctx.DeltaTime(), float32(0))
				app.Quit()
			}
		}, nil)
	})
}
