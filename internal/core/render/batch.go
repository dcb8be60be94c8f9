package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/selene-engine/selene/internal/core/assets"
	"github.com/selene-engine/selene/internal/core/components"
	"github.com/selene-engine/selene/internal/core/ecs"
	"github.com/selene-engine/selene/internal/core/engine"
	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/observability/log"
	"github.com/selene-engine/selene/pkg/generic"
)

// idPair is one element of the cache signature.
type idPair struct {
	mesh, material uuid.UUID
}

// instance is one mesh component that survived visibility and culling this
// frame.
type instance struct {
	mesh     uuid.UUID
	matrix   mgl32.Mat4
	material uuid.UUID
	ref      ecs.Ref[components.Mesh]
}

// batchKey identifies one (mesh, material) group drawn with a single
// instanced call.
type batchKey struct {
	mesh, material uuid.UUID
}

// Stats describes the last frame a batcher rendered.
type Stats struct {
	// Meshes is the number of visible mesh components considered.
	Meshes int
	// Culled is how many of them the frustum test rejected.
	Culled int
	// Batches is the number of instanced draw calls issued.
	Batches int
	// Instances is the total instance count across all batches.
	Instances int
	// Rebuilt reports whether the instance buffers were rebuilt rather than
	// refreshed in place.
	Rebuilt bool
	// Signature is an xxhash digest of the cache signature, for logs and
	// metrics only.
	Signature uint64
}

// batcher is the composition-keyed buffer cache shared by Batcher and
// CullingBatcher.
//
// The cache signature is the mesh-major ordered list of (mesh id, material
// id) pairs of the current frame. While consecutive frames produce identical
// signatures the instance buffers are kept and only their contents are
// rewritten from the recorded mesh references; any composition change
// releases and rebuilds all of them.
type batcher struct {
	ctx      *engine.Context
	priority uint32
	clear    gpu.Color

	signature      []idPair
	buffers        []gpu.Buffer
	batches        []batchKey
	instanceCounts []int
	meshRefs       [][]ecs.Ref[components.Mesh]

	scratch *generic.SlicePool[mgl32.Mat4]
	stats   Stats
}

func newBatcher(ctx *engine.Context, priority uint32, clear gpu.Color) batcher {
	return batcher{
		ctx:      ctx,
		priority: priority,
		clear:    clear,
		scratch:  generic.NewSlicePool[mgl32.Mat4](64, 64*1024, 2),
	}
}

func (b *batcher) Priority() uint32 { return b.priority }

// LastStats returns the statistics of the most recent frame.
func (b *batcher) LastStats() Stats { return b.stats }

// Release frees the cached instance buffers and forgets the signature.
func (b *batcher) Release() {
	for _, buf := range b.buffers {
		buf.Release()
	}
	b.signature = nil
	b.buffers = nil
	b.batches = nil
	b.instanceCounts = nil
	b.meshRefs = nil
}

func (b *batcher) render(enc gpu.CommandEncoder, world *ecs.World, store *assets.Store, att gpu.Attachments, cull bool) error {
	res := b.ctx.Resolution()
	queue := b.ctx.Queue()

	camRefs, err := ecs.AllComponents[components.MainCamera](world)
	if err != nil {
		panic("render: could not find the main camera")
	}
	camGuard := camRefs[0].Borrow()
	defer camGuard.Release()
	cam := &camGuard.Get().Camera

	cam.UploadMatrix(queue, res)

	var frustum mgl32.Vec3
	var camTransform mgl32.Mat4
	if cull {
		// For orthographic cameras the half-size plays the fov's role in
		// the frustum derivation.
		fov := cam.Projection.FOV
		if cam.Projection.Kind == components.Orthographic {
			fov = cam.Projection.Size
		}
		frustum = CalculateFrustum(cam.Near, cam.Far, fov, res.Aspect())
		camTransform = cam.TransformMatrix()
	}

	instances, materials, seen, culled := b.collect(world, store, cull, frustum, camTransform)

	// Mesh-major order; this is both the signature order and the batch
	// order. Ties keep collection order (stable), which tests must not rely
	// on.
	sort.SliceStable(instances, func(i, j int) bool {
		return bytes.Compare(instances[i].mesh[:], instances[j].mesh[:]) < 0
	})

	next := make([]idPair, len(instances))
	for i, in := range instances {
		next[i] = idPair{mesh: in.mesh, material: in.material}
	}

	identical := len(next) == len(b.signature)
	if identical {
		for i, p := range b.signature {
			if p != next[i] {
				identical = false
				break
			}
		}
	}

	if identical {
		b.refresh(queue)
	} else {
		b.rebuild(instances, next)
	}

	b.stats = Stats{
		Meshes:    seen,
		Culled:    culled,
		Batches:   len(b.batches),
		Instances: len(instances),
		Rebuilt:   !identical,
		Signature: digest(next),
	}
	b.ctx.Log().Debug("batched frame",
		log.Int("meshes", seen),
		log.Int("culled", culled),
		log.Int("batches", len(b.batches)),
		log.Bool("rebuilt", !identical),
		log.Uint64("signature", b.stats.Signature))

	// Materials get their bind groups on first use.
	for id := range materials {
		mat, err := store.Material(id)
		if err != nil {
			panic(fmt.Sprintf("render: material %s not in the asset store", id))
		}
		if mat.State() == assets.BindGroupsInitialized {
			continue
		}
		if err := mat.InitBindGroups(b.ctx.Device()); err != nil {
			return err
		}
	}

	pass := enc.BeginRenderPass(att, b.clear)
	cam.Bind(pass)

	// Adjacent batches sharing a material keep its pipeline bound.
	prev := uuid.Nil
	for i, key := range b.batches {
		if key.material != prev {
			mat, err := store.Material(key.material)
			if err != nil {
				panic(fmt.Sprintf("render: material %s not in the asset store", key.material))
			}
			mat.Render(pass)
		}
		prev = key.material

		meshAsset, err := store.Mesh(key.mesh)
		if err != nil {
			panic(fmt.Sprintf("render: mesh %s not in the asset store", key.mesh))
		}
		pass.SetVertexBuffer(0, meshAsset.VertexBuffer())
		pass.SetVertexBuffer(1, b.buffers[i])
		pass.SetIndexBuffer(meshAsset.IndexBuffer(), gpu.IndexFormatUint32)
		pass.DrawIndexed(meshAsset.IndexCount(), uint32(b.instanceCounts[i]))
	}
	pass.End()
	return nil
}

// collect walks the world's mesh components and returns the surviving
// instances plus the set of materials they use.
func (b *batcher) collect(world *ecs.World, store *assets.Store, cull bool, frustum mgl32.Vec3, camTransform mgl32.Mat4) ([]instance, map[uuid.UUID]struct{}, int, int) {
	var instances []instance
	materials := make(map[uuid.UUID]struct{})

	refs, err := ecs.AllComponents[components.Mesh](world)
	if err != nil {
		// A world without meshes still clears the screen.
		return nil, materials, 0, 0
	}

	seen, culled := 0, 0
	for _, ref := range refs {
		g := ref.Borrow()
		m := g.Get()
		if !m.Visible {
			g.Release()
			continue
		}
		seen++
		if m.MeshID == uuid.Nil || m.MaterialID == uuid.Nil {
			panic("render: mesh component with unassigned mesh or material id")
		}
		if cull {
			asset, err := store.Mesh(m.MeshID)
			if err != nil {
				panic(fmt.Sprintf("render: mesh %s not in the asset store", m.MeshID))
			}
			if inside, _ := CheckFrustum(frustum, camTransform, m.Position(), asset.Extent()); !inside {
				culled++
				g.Release()
				continue
			}
		}
		materials[m.MaterialID] = struct{}{}
		instances = append(instances, instance{
			mesh:     m.MeshID,
			matrix:   m.Matrix(),
			material: m.MaterialID,
			ref:      ref,
		})
		g.Release()
	}
	return instances, materials, seen, culled
}

// refresh is the reuse path: every cached buffer is rewritten in place from
// the live matrices of its recorded mesh references. No allocation happens.
func (b *batcher) refresh(queue gpu.Queue) {
	for i, buf := range b.buffers {
		ms := b.scratch.Get()
		for _, ref := range b.meshRefs[i] {
			g := ref.Borrow()
			ms = append(ms, g.Get().Matrix())
			g.Release()
		}
		queue.WriteBuffer(buf, 0, gpu.MatrixBytes(ms...))
		b.scratch.Put(ms)
	}
}

// rebuild is taken whenever the composition changed: old buffers are
// released, instances are partitioned into contiguous mesh runs and
// material sub-runs, and each sub-run gets one packed instance buffer.
func (b *batcher) rebuild(instances []instance, next []idPair) {
	for _, buf := range b.buffers {
		buf.Release()
	}

	var (
		buffers []gpu.Buffer
		batches []batchKey
		counts  []int
		refs    [][]ecs.Ref[components.Mesh]
	)

	for start := 0; start < len(instances); {
		end := start
		for end < len(instances) && instances[end].mesh == instances[start].mesh {
			end++
		}
		run := instances[start:end]

		// Material-minor order within the mesh run.
		sort.SliceStable(run, func(i, j int) bool {
			return bytes.Compare(run[i].material[:], run[j].material[:]) < 0
		})

		for s := 0; s < len(run); {
			e := s
			for e < len(run) && run[e].material == run[s].material {
				e++
			}
			sub := run[s:e]

			ms := make([]mgl32.Mat4, len(sub))
			subRefs := make([]ecs.Ref[components.Mesh], len(sub))
			for i, in := range sub {
				ms[i] = in.matrix
				subRefs[i] = in.ref
			}

			label := fmt.Sprintf("instances %d..%d", start+s, start+e)
			buf, err := b.ctx.Device().CreateBufferInit(label, gpu.MatrixBytes(ms...), gpu.BufferUsageVertex|gpu.BufferUsageCopyDst)
			if err != nil {
				panic("render: instance buffer allocation failed: " + err.Error())
			}

			buffers = append(buffers, buf)
			batches = append(batches, batchKey{mesh: run[s].mesh, material: run[s].material})
			counts = append(counts, len(sub))
			refs = append(refs, subRefs)
			s = e
		}
		start = end
	}

	// Internal-consistency checks; a mismatch is a defect in the
	// partitioning above, not a recoverable condition.
	if len(buffers) != len(batches) {
		panic("render: instance buffer count diverged from batch count")
	}
	if len(buffers) != len(refs) {
		panic("render: instance buffer count diverged from mesh reference lists")
	}
	if len(counts) != len(batches) {
		panic("render: instance count entries diverged from batch count")
	}

	b.signature = next
	b.buffers = buffers
	b.batches = batches
	b.instanceCounts = counts
	b.meshRefs = refs
}

// digest is advisory: it condenses the signature for logs and metrics. The
// reuse decision is always the element-wise comparison.
func digest(pairs []idPair) uint64 {
	h := xxhash.New()
	for _, p := range pairs {
		h.Write(p.mesh[:])
		h.Write(p.material[:])
	}
	return h.Sum64()
}

var (
	_ Extension = (*Batcher)(nil)
	_ Extension = (*CullingBatcher)(nil)
)

// Batcher batches and draws every visible mesh without frustum culling.
type Batcher struct {
	batcher
}

func NewBatcher(ctx *engine.Context, priority uint32, clear gpu.Color) *Batcher {
	return &Batcher{batcher: newBatcher(ctx, priority, clear)}
}

func (b *Batcher) Render(enc gpu.CommandEncoder, world *ecs.World, store *assets.Store, att gpu.Attachments) error {
	return b.render(enc, world, store, att, false)
}

// CullingBatcher batches visible meshes after frustum culling them against
// the main camera.
type CullingBatcher struct {
	batcher
}

func NewCullingBatcher(ctx *engine.Context, priority uint32, clear gpu.Color) *CullingBatcher {
	return &CullingBatcher{batcher: newBatcher(ctx, priority, clear)}
}

func (b *CullingBatcher) Render(enc gpu.CommandEncoder, world *ecs.World, store *assets.Store, att gpu.Attachments) error {
	return b.render(enc, world, store, att, true)
}
