package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/selene-engine/selene/internal/core/assets"
	"github.com/selene-engine/selene/internal/core/components"
	"github.com/selene-engine/selene/internal/core/ecs"
	"github.com/selene-engine/selene/internal/core/engine"
	"github.com/selene-engine/selene/internal/core/events"
	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/core/render"
	"github.com/selene-engine/selene/internal/injector"
	"github.com/selene-engine/selene/internal/observability/log"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML engine config")
	frames := flag.Int("frames", 600, "number of frames to render before exiting")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = engine.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	logger := injector.ProvideLogger()
	logger.SetLevel(log.ParseLevel(cfg.LogLevel))

	// The demo runs on the headless device; a windowed build would hand a
	// wgpu device and surface views in here instead.
	dev, queue := gpu.NewHeadless()
	ctx := engine.NewContext(dev, queue, logger, cfg.Resolution())
	bus := events.NewBus()

	store := assets.NewStore()
	world := ecs.NewWorld(ctx)
	batcher := render.NewCullingBatcher(ctx, 0, gpu.Color{
		R: cfg.ClearColor.R, G: cfg.ClearColor.G, B: cfg.ClearColor.B, A: cfg.ClearColor.A,
	})
	renderer := render.NewRenderer(ctx, batcher)

	if err := buildScene(world, store, dev); err != nil {
		logger.Fatal("scene setup failed", log.Err(err))
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	app := engine.NewApp(ctx, bus)
	rendered := 0

	app.Run(
		func() {
			logger.Info("demo scene ready",
				log.Int("entities", world.Len()),
				log.Int("frames", *frames))
		},
		func() {
			select {
			case <-stopCh:
				bus.Publish(events.Quit{})
				return
			default:
			}

			spin(world, ctx.DeltaTime())
			world.Update(ctx.DeltaTime())

			if err := renderer.Frame(world, store, gpu.Attachments{}); err != nil {
				logger.Error("frame failed", log.Err(err))
				app.Quit()
				return
			}

			rendered++
			if rendered%60 == 0 {
				stats := batcher.LastStats()
				logger.Info("render stats",
					log.Int("frame", rendered),
					log.Int("meshes", stats.Meshes),
					log.Int("culled", stats.Culled),
					log.Int("batches", stats.Batches),
					log.Int("instances", stats.Instances),
					log.Bool("rebuilt", stats.Rebuilt))
			}
			if rendered >= *frames {
				app.Quit()
			}
		},
		func() {
			batcher.Release()
			store.Release()
			world.Destroy()
			logger.Info("demo finished", log.Int("frames_rendered", rendered))
		},
	)
}

// buildScene fills the world with a camera and a grid of quads, half of them
// sharing one material so the batcher has something to merge.
func buildScene(world *ecs.World, store *assets.Store, dev gpu.Device) error {
	quad, err := assets.NewMesh(dev, "quad",
		gpu.MatrixBytes(mgl32.Ident4()), // placeholder vertex data, layout is opaque
		[]uint32{0, 1, 2, 2, 3, 0}, 0.5)
	if err != nil {
		return err
	}
	quadID := store.AddMesh(quad)

	flat := store.AddMaterial(assets.NewMaterial(&gpu.HeadlessPipeline{NameLabel: "flat"}, nil))
	glow := store.AddMaterial(assets.NewMaterial(&gpu.HeadlessPipeline{NameLabel: "glow"}, nil))

	camEntity := world.NewEntity()
	camTr, err := ecs.Add[components.Transform](camEntity)
	if err != nil {
		return err
	}
	g := camTr.BorrowMut()
	g.Get().Position = mgl32.Vec3{0, 0, -3}
	g.Release()
	if _, err := ecs.Add[components.MainCamera](camEntity); err != nil {
		return err
	}

	for x := -2; x <= 2; x++ {
		for y := -2; y <= 2; y++ {
			e := world.NewEntity()
			tr, err := ecs.Add[components.Transform](e)
			if err != nil {
				return err
			}
			tg := tr.BorrowMut()
			tg.Get().Position = mgl32.Vec3{float32(x), float32(y), 2}
			tg.Release()

			m, err := ecs.Add[components.Mesh](e)
			if err != nil {
				return err
			}
			mg := m.BorrowMut()
			mg.Get().MeshID = quadID
			mg.Get().MaterialID = flat
			if (x+y)%2 == 0 {
				mg.Get().MaterialID = glow
			}
			mg.Release()
		}
	}
	return nil
}

// spin rotates every transform so consecutive frames exercise the batch
// cache's in-place refresh path.
func spin(world *ecs.World, dt float32) {
	trs, err := ecs.AllComponents[components.Transform](world)
	if err != nil {
		return
	}
	for _, ref := range trs {
		g := ref.BorrowMut()
		g.Get().Rotation = g.Get().Rotation.Add(mgl32.Vec3{0, 45 * dt, 0})
		g.Release()
	}
}
