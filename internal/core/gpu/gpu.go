// Package gpu abstracts the graphics device behind small interfaces so the
// batching and camera code can run against either a real WebGPU device or the
// in-memory headless device used in tests.
package gpu

// BufferUsage is a bitmask of allowed buffer uses.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopyDst
)

// IndexFormat selects the element width of an index buffer.
type IndexFormat uint8

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Color is a normalized clear color.
type Color struct {
	R, G, B, A float64
}

// TextureView is an opaque render target view supplied by the host
// window/surface layer.
type TextureView interface{}

// Attachments carries the color and depth targets for one render pass.
type Attachments struct {
	Color        TextureView
	DepthStencil TextureView
}

// Buffer is a GPU-side allocation.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// BindGroup is an opaque resource binding (for example the camera uniform).
type BindGroup interface {
	Release()
}

// Pipeline is an opaque render pipeline owned by a material.
type Pipeline interface {
	Label() string
}

// Device creates GPU resources.
type Device interface {
	// CreateBuffer allocates an uninitialized buffer of the given size.
	CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error)
	// CreateBufferInit allocates a buffer and uploads data in one step.
	CreateBufferInit(label string, data []byte, usage BufferUsage) (Buffer, error)
	// CreateUniformBindGroup builds a single-entry bind group over buf.
	CreateUniformBindGroup(label string, buf Buffer) (BindGroup, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// Queue schedules work on the device.
type Queue interface {
	// WriteBuffer overwrites buffer contents starting at offset. The data is
	// copied before returning.
	WriteBuffer(buf Buffer, offset uint64, data []byte)
	// Submit finishes the encoder and hands its command buffer to the GPU.
	Submit(enc CommandEncoder)
}

// CommandEncoder records render passes for one submission.
type CommandEncoder interface {
	BeginRenderPass(att Attachments, clear Color) RenderPass
}

// RenderPass records draw state and instanced indexed draws.
type RenderPass interface {
	SetPipeline(p Pipeline)
	SetBindGroup(index uint32, bg BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	DrawIndexed(indexCount, instanceCount uint32)
	End()
}
