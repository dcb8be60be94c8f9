package components

import (
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/selene-engine/selene/internal/core/ecs"
	"github.com/selene-engine/selene/internal/core/engine"
	"github.com/selene-engine/selene/internal/core/gpu"
)

// CameraBindGroupIndex is the bind group slot the camera uniform occupies in
// every pipeline layout.
const CameraBindGroupIndex = 0

// ProjectionKind selects between perspective and orthographic projection.
type ProjectionKind uint8

const (
	Perspective ProjectionKind = iota
	Orthographic
)

// Projection is a tagged projection description. FOV (radians) applies to
// Perspective, Size (half the vertical viewing volume) to Orthographic.
type Projection struct {
	Kind ProjectionKind
	FOV  float32
	Size float32
}

var (
	_ ecs.Component = (*Camera)(nil)
	_ ecs.Dependent = (*Camera)(nil)
)

// Camera renders the scene from its sibling Transform. GPU resources are
// allocated once on attach; every frame only the matrix buffer is rewritten.
type Camera struct {
	ecs.BaseComponent

	Projection Projection
	Near       float32
	Far        float32

	transform ecs.Ref[Transform]
	buffer    gpu.Buffer
	bindGroup gpu.BindGroup
}

// Init sets the defaults: 60 degree perspective, near 0.1, far 100.
func (c *Camera) Init() {
	c.Projection = Projection{Kind: Perspective, FOV: math.Pi / 3}
	c.Near = 0.1
	c.Far = 100
}

func (c *Camera) Requires() []reflect.Type {
	return []reflect.Type{ecs.TypeOf[Transform]()}
}

// SetOwner resolves the sibling Transform. A missing sibling is tolerated
// here so dependency validation can report it; matrix computation requires it.
func (c *Camera) SetOwner(o ecs.Owner) {
	if ref, err := ecs.Resolve[Transform](o); err == nil {
		c.transform = ref
	}
}

func (c *Camera) GPUInit(ctx *engine.Context) {
	if c.buffer != nil {
		return
	}
	buf, err := ctx.Device().CreateBuffer("camera", gpu.MatrixSize, gpu.BufferUsageUniform|gpu.BufferUsageCopyDst)
	if err != nil {
		panic("camera: uniform buffer allocation failed: " + err.Error())
	}
	bg, err := ctx.Device().CreateUniformBindGroup("camera", buf)
	if err != nil {
		panic("camera: bind group creation failed: " + err.Error())
	}
	c.buffer = buf
	c.bindGroup = bg
}

func (c *Camera) Teardown() {
	if c.buffer != nil {
		c.bindGroup.Release()
		c.buffer.Release()
		c.buffer = nil
		c.bindGroup = nil
	}
}

// TransformMatrix returns the world matrix of the sibling Transform. It is the
// matrix frustum culling runs against.
func (c *Camera) TransformMatrix() mgl32.Mat4 {
	g := c.mustTransform().Borrow()
	m := g.Get().Matrix()
	g.Release()
	return m
}

// ViewProjection derives the combined view-projection matrix. Aspect comes
// from the resolution at call time, never from a cached value.
func (c *Camera) ViewProjection(res engine.Resolution) mgl32.Mat4 {
	g := c.mustTransform().Borrow()
	pos := g.Get().Position
	rot := RotationEuler(g.Get().Rotation)
	g.Release()

	up := rot.Mul4x1(mgl32.Vec4{0, 1, 0, 1}).Vec3()
	forward := rot.Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3().Add(pos)
	view := mgl32.LookAtV(pos, forward, up)

	aspect := res.Aspect()
	var proj mgl32.Mat4
	switch c.Projection.Kind {
	case Perspective:
		proj = mgl32.Perspective(c.Projection.FOV, aspect, c.Near, c.Far)
	case Orthographic:
		s := c.Projection.Size
		proj = mgl32.Ortho(-s*aspect, s*aspect, -s, s, c.Near, c.Far)
	}
	return proj.Mul4(view)
}

// UploadMatrix queues a rewrite of the camera uniform with the current
// view-projection matrix. The buffer is never reallocated.
func (c *Camera) UploadMatrix(queue gpu.Queue, res engine.Resolution) {
	queue.WriteBuffer(c.buffer, 0, gpu.MatrixBytes(c.ViewProjection(res)))
}

// Bind sets the camera bind group on the pass.
func (c *Camera) Bind(pass gpu.RenderPass) {
	pass.SetBindGroup(CameraBindGroupIndex, c.bindGroup)
}

func (c *Camera) mustTransform() ecs.Ref[Transform] {
	if !c.transform.Valid() {
		panic("camera: no Transform sibling on the owning entity")
	}
	return c.transform
}

// MainCamera tags the camera the render extensions draw from. It is a plain
// composition over Camera so typed queries can find exactly one.
type MainCamera struct {
	Camera
}
