package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/selene-engine/selene/internal/core/assets"
	"github.com/selene-engine/selene/internal/core/components"
	"github.com/selene-engine/selene/internal/core/ecs"
	"github.com/selene-engine/selene/internal/core/engine"
	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/observability/log"
)

type scene struct {
	world *ecs.World
	store *assets.Store
	dev   *gpu.HeadlessDevice
	queue *gpu.HeadlessQueue
	ctx   *engine.Context

	meshA, meshB uuid.UUID
	matA, matB   uuid.UUID
}

func newScene(t *testing.T) *scene {
	t.Helper()
	dev, queue := gpu.NewHeadless()
	ctx := engine.NewContext(dev, queue, log.Nop(), engine.Resolution{Width: 1920, Height: 1080})
	w := ecs.NewWorld(ctx)

	cam := w.NewEntity()
	_, err := ecs.Add[components.Transform](cam)
	require.NoError(t, err)
	_, err = ecs.Add[components.MainCamera](cam)
	require.NoError(t, err)

	store := assets.NewStore()
	s := &scene{world: w, store: store, dev: dev, queue: queue, ctx: ctx}

	meshA, err := assets.NewMesh(dev, "a", make([]byte, 32), []uint32{0, 1, 2}, 0)
	require.NoError(t, err)
	s.meshA = store.AddMesh(meshA)

	meshB, err := assets.NewMesh(dev, "b", make([]byte, 32), []uint32{0, 1, 2, 2, 3, 0}, 0)
	require.NoError(t, err)
	s.meshB = store.AddMesh(meshB)

	s.matA = store.AddMaterial(assets.NewMaterial(&gpu.HeadlessPipeline{NameLabel: "matA"}, nil))
	s.matB = store.AddMaterial(assets.NewMaterial(&gpu.HeadlessPipeline{NameLabel: "matB"}, nil))
	return s
}

func (s *scene) addMesh(t *testing.T, pos mgl32.Vec3, meshID, matID uuid.UUID) (ecs.Ref[components.Transform], ecs.Ref[components.Mesh]) {
	t.Helper()
	e := s.world.NewEntity()
	tr, err := ecs.Add[components.Transform](e)
	require.NoError(t, err)
	g := tr.BorrowMut()
	g.Get().Position = pos
	g.Release()

	m, err := ecs.Add[components.Mesh](e)
	require.NoError(t, err)
	mg := m.BorrowMut()
	mg.Get().MeshID = meshID
	mg.Get().MaterialID = matID
	mg.Release()
	return tr, m
}

// frame renders one frame through ext and returns the recorded pass.
func (s *scene) frame(t *testing.T, ext Extension) *gpu.HeadlessPass {
	t.Helper()
	enc, err := s.dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	require.NoError(t, ext.Render(enc, s.world, s.store, gpu.Attachments{}))
	s.queue.Submit(enc)

	passes := enc.(*gpu.HeadlessEncoder).Passes()
	require.Len(t, passes, 1)
	require.True(t, passes[0].Ended())
	return passes[0]
}

func TestCullingBatcher_CacheRoundTrip(t *testing.T) {
	s := newScene(t)
	b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})

	tr, _ := s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
	s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshA, s.matA)
	s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshB, s.matB)

	first := s.frame(t, b)
	require.True(t, b.LastStats().Rebuilt)
	created := s.dev.BuffersCreated()

	// Move a mesh along the view axis so it stays inside the frustum; the
	// composition is unchanged, so the second frame must reuse the buffers
	// and only rewrite their contents.
	g := tr.BorrowMut()
	g.Get().Position = mgl32.Vec3{0, 0, 0.5}
	moved := g.Get().Local()
	g.Release()

	second := s.frame(t, b)
	require.False(t, b.LastStats().Rebuilt)
	require.Equal(t, created, s.dev.BuffersCreated())

	// Same buffer objects bound in both frames.
	require.Len(t, second.Draws(), len(first.Draws()))
	for i := range first.Draws() {
		require.Same(t, first.Draws()[i].VertexBuffers[1], second.Draws()[i].VertexBuffers[1])
	}

	// The rewritten instance buffer carries the moved matrix.
	var found bool
	want := gpu.MatrixBytes(moved)
	for _, d := range second.Draws() {
		data := d.VertexBuffers[1].(*gpu.HeadlessBuffer).Data()
		for off := 0; off+gpu.MatrixSize <= len(data); off += gpu.MatrixSize {
			if string(data[off:off+gpu.MatrixSize]) == string(want) {
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestCullingBatcher_RebuildOnCompositionChange(t *testing.T) {
	t.Run("Material Change", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		_, m := s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
		s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshA, s.matA)

		s.frame(t, b)
		g := m.BorrowMut()
		g.Get().MaterialID = s.matB
		g.Release()

		s.frame(t, b)
		require.True(t, b.LastStats().Rebuilt)
	})

	t.Run("Mesh Change", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		_, m := s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)

		s.frame(t, b)
		g := m.BorrowMut()
		g.Get().MeshID = s.meshB
		g.Release()

		s.frame(t, b)
		require.True(t, b.LastStats().Rebuilt)
	})

	t.Run("New Entity", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)

		s.frame(t, b)
		s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshA, s.matA)
		s.frame(t, b)
		require.True(t, b.LastStats().Rebuilt)
	})
}

func TestCullingBatcher_CullsAndCounts(t *testing.T) {
	s := newScene(t)
	b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})

	s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshA, s.matA)
	s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
	s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshB, s.matA)
	s.addMesh(t, mgl32.Vec3{0, 0, -5}, s.meshA, s.matA) // behind the camera
	_, hidden := s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshB, s.matB)
	g := hidden.BorrowMut()
	g.Get().Visible = false
	g.Release()

	pass := s.frame(t, b)

	stats := b.LastStats()
	require.Equal(t, 4, stats.Meshes) // invisible mesh never counted
	require.Equal(t, 1, stats.Culled)
	require.Equal(t, 3, stats.Instances)

	total := uint32(0)
	for _, d := range pass.Draws() {
		total += d.InstanceCount
	}
	require.Equal(t, uint32(3), total)
}

func TestCullingBatcher_ZeroSurvivorsStillClears(t *testing.T) {
	s := newScene(t)
	clear := gpu.Color{R: 0.25, A: 1}
	b := NewCullingBatcher(s.ctx, 0, clear)

	_, m := s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
	g := m.BorrowMut()
	g.Get().Visible = false
	g.Release()

	pass := s.frame(t, b)
	require.Empty(t, pass.Draws())
	require.Equal(t, clear, pass.ClearColor())
	require.Zero(t, b.LastStats().Batches)
}

func TestCullingBatcher_MaterialRebinds(t *testing.T) {
	t.Run("Shared Material Binds Once", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
		s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshB, s.matA)

		pass := s.frame(t, b)
		require.Len(t, pass.Draws(), 2)
		require.Equal(t, 1, pass.PipelineSets())
	})

	t.Run("Distinct Materials Rebind", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)
		s.addMesh(t, mgl32.Vec3{0, 0, 0}, s.meshB, s.matB)

		pass := s.frame(t, b)
		require.Len(t, pass.Draws(), 2)
		require.Equal(t, 2, pass.PipelineSets())
	})
}

func TestCullingBatcher_Panics(t *testing.T) {
	t.Run("Missing Main Camera", func(t *testing.T) {
		s := newScene(t)
		world := ecs.NewWorld(s.ctx) // fresh world, no camera
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})

		enc, err := s.dev.CreateCommandEncoder("frame")
		require.NoError(t, err)
		require.Panics(t, func() {
			_ = b.Render(enc, world, s.store, gpu.Attachments{})
		})
	})

	t.Run("Unassigned Asset Ids", func(t *testing.T) {
		s := newScene(t)
		b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
		s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, uuid.Nil, s.matA)

		enc, err := s.dev.CreateCommandEncoder("frame")
		require.NoError(t, err)
		require.Panics(t, func() {
			_ = b.Render(enc, s.world, s.store, gpu.Attachments{})
		})
	})
}

func TestBatcher_MatchesCullingBatcherOnVisibleScene(t *testing.T) {
	build := func(t *testing.T) (*scene, []mgl32.Vec3) {
		s := newScene(t)
		// On-axis positions in front of the camera, so the culling variant
		// keeps all of them and the two batchers see the same scene.
		positions := []mgl32.Vec3{{0, 0, 0}, {0, 0, 0.3}, {0, 0, 0.5}}
		return s, positions
	}

	s1, ps := build(t)
	plain := NewBatcher(s1.ctx, 0, gpu.Color{A: 1})
	for _, p := range ps {
		s1.addMesh(t, p, s1.meshA, s1.matA)
	}
	s1.frame(t, plain)

	s2, _ := build(t)
	culling := NewCullingBatcher(s2.ctx, 0, gpu.Color{A: 1})
	for _, p := range ps {
		s2.addMesh(t, p, s2.meshA, s2.matA)
	}
	s2.frame(t, culling)

	require.Equal(t, plain.LastStats().Batches, culling.LastStats().Batches)
	require.Equal(t, plain.LastStats().Instances, culling.LastStats().Instances)
	require.Zero(t, culling.LastStats().Culled)
}

func TestBatcher_SkipsCulling(t *testing.T) {
	s := newScene(t)
	b := NewBatcher(s.ctx, 0, gpu.Color{A: 1})

	// Behind the camera; the plain batcher draws it anyway.
	s.addMesh(t, mgl32.Vec3{0, 0, -5}, s.meshA, s.matA)

	s.frame(t, b)
	require.Equal(t, 1, b.LastStats().Instances)
	require.Zero(t, b.LastStats().Culled)
}

type orderProbe struct {
	name     string
	priority uint32
	order    *[]string
}

func (o *orderProbe) Render(gpu.CommandEncoder, *ecs.World, *assets.Store, gpu.Attachments) error {
	*o.order = append(*o.order, o.name)
	return nil
}

func (o *orderProbe) Priority() uint32 { return o.priority }

func TestRenderer_PriorityOrder(t *testing.T) {
	s := newScene(t)

	var order []string
	r := NewRenderer(s.ctx,
		&orderProbe{name: "overlay", priority: 10, order: &order},
		&orderProbe{name: "scene", priority: 0, order: &order},
	)
	r.Add(&orderProbe{name: "shadows", priority: 5, order: &order})

	require.NoError(t, r.Frame(s.world, s.store, gpu.Attachments{}))
	require.Equal(t, []string{"scene", "shadows", "overlay"}, order)
	require.Len(t, s.queue.Submitted(), 1)
}

func TestBatcher_SignatureDigestStable(t *testing.T) {
	s := newScene(t)
	b := NewCullingBatcher(s.ctx, 0, gpu.Color{A: 1})
	s.addMesh(t, mgl32.Vec3{0, 0, 0.3}, s.meshA, s.matA)

	s.frame(t, b)
	first := b.LastStats().Signature
	s.frame(t, b)
	require.Equal(t, first, b.LastStats().Signature)
	require.NotZero(t, first)
}
