package gpu

import "fmt"

// Headless implementations backed by plain memory. They keep the batching and
// camera code runnable and testable without a GPU: buffers are byte slices,
// render passes record their draws.

var _ Device = (*HeadlessDevice)(nil)
var _ Queue = (*HeadlessQueue)(nil)

// HeadlessDevice allocates in-memory resources and counts allocations, which
// lets tests observe whether the batch cache reused or rebuilt its buffers.
type HeadlessDevice struct {
	buffersCreated int
	queue          *HeadlessQueue
}

// HeadlessQueue applies writes synchronously and collects submitted encoders.
type HeadlessQueue struct {
	submitted []*HeadlessEncoder
}

// NewHeadless builds a paired in-memory device and queue.
func NewHeadless() (*HeadlessDevice, *HeadlessQueue) {
	q := &HeadlessQueue{}
	return &HeadlessDevice{queue: q}, q
}

// BuffersCreated reports how many buffers this device has allocated.
func (d *HeadlessDevice) BuffersCreated() int { return d.buffersCreated }

// HeadlessBuffer is a byte-slice buffer. Contents are exported for tests.
type HeadlessBuffer struct {
	label    string
	data     []byte
	usage    BufferUsage
	released bool
}

func (b *HeadlessBuffer) Label() string { return b.label }
func (b *HeadlessBuffer) Size() uint64  { return uint64(len(b.data)) }
func (b *HeadlessBuffer) Release()      { b.released = true }

// Data exposes the current buffer contents.
func (b *HeadlessBuffer) Data() []byte { return b.data }

// Released reports whether Release was called.
func (b *HeadlessBuffer) Released() bool { return b.released }

// HeadlessBindGroup is an inert bind group handle.
type HeadlessBindGroup struct {
	label  string
	buffer Buffer
}

func (g *HeadlessBindGroup) Release() {}

// HeadlessPipeline is an inert pipeline usable as a material pipeline in
// tests and GPU-less runs.
type HeadlessPipeline struct {
	NameLabel string
}

func (p *HeadlessPipeline) Label() string { return p.NameLabel }

func (d *HeadlessDevice) CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error) {
	d.buffersCreated++
	return &HeadlessBuffer{label: label, data: make([]byte, size), usage: usage}, nil
}

func (d *HeadlessDevice) CreateBufferInit(label string, data []byte, usage BufferUsage) (Buffer, error) {
	d.buffersCreated++
	owned := make([]byte, len(data))
	copy(owned, data)
	return &HeadlessBuffer{label: label, data: owned, usage: usage | BufferUsageCopyDst}, nil
}

func (d *HeadlessDevice) CreateUniformBindGroup(label string, buf Buffer) (BindGroup, error) {
	return &HeadlessBindGroup{label: label, buffer: buf}, nil
}

func (d *HeadlessDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	return &HeadlessEncoder{label: label}, nil
}

func (q *HeadlessQueue) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	hb := buf.(*HeadlessBuffer)
	if offset+uint64(len(data)) > uint64(len(hb.data)) {
		panic(fmt.Sprintf("write past end of buffer %q: %d+%d > %d",
			hb.label, offset, len(data), len(hb.data)))
	}
	copy(hb.data[offset:], data)
}

func (q *HeadlessQueue) Submit(enc CommandEncoder) {
	q.submitted = append(q.submitted, enc.(*HeadlessEncoder))
}

// Submitted returns every encoder submitted so far.
func (q *HeadlessQueue) Submitted() []*HeadlessEncoder { return q.submitted }

// HeadlessEncoder records the passes begun on it.
type HeadlessEncoder struct {
	label  string
	passes []*HeadlessPass
}

// Passes returns the recorded render passes.
func (e *HeadlessEncoder) Passes() []*HeadlessPass { return e.passes }

func (e *HeadlessEncoder) BeginRenderPass(att Attachments, clear Color) RenderPass {
	p := &HeadlessPass{clear: clear}
	e.passes = append(e.passes, p)
	return p
}

// DrawCall is one recorded instanced indexed draw with the state in effect
// when it was issued.
type DrawCall struct {
	Pipeline      string
	VertexBuffers map[uint32]Buffer
	IndexBuffer   Buffer
	IndexCount    uint32
	InstanceCount uint32
}

// HeadlessPass records state changes and draw calls.
type HeadlessPass struct {
	clear Color
	ended bool

	pipeline      Pipeline
	pipelineSets  int
	bindGroups    map[uint32]BindGroup
	vertexBuffers map[uint32]Buffer
	indexBuffer   Buffer

	draws []DrawCall
}

// Draws returns the recorded draw calls.
func (p *HeadlessPass) Draws() []DrawCall { return p.draws }

// PipelineSets reports how many times a pipeline was bound, which lets tests
// verify that adjacent batches sharing a material are not re-bound.
func (p *HeadlessPass) PipelineSets() int { return p.pipelineSets }

// ClearColor returns the clear color the pass was begun with.
func (p *HeadlessPass) ClearColor() Color { return p.clear }

// Ended reports whether End was called.
func (p *HeadlessPass) Ended() bool { return p.ended }

func (p *HeadlessPass) SetPipeline(pl Pipeline) {
	p.pipeline = pl
	p.pipelineSets++
}

func (p *HeadlessPass) SetBindGroup(index uint32, bg BindGroup) {
	if p.bindGroups == nil {
		p.bindGroups = make(map[uint32]BindGroup)
	}
	p.bindGroups[index] = bg
}

func (p *HeadlessPass) SetVertexBuffer(slot uint32, buf Buffer) {
	if p.vertexBuffers == nil {
		p.vertexBuffers = make(map[uint32]Buffer)
	}
	p.vertexBuffers[slot] = buf
}

func (p *HeadlessPass) SetIndexBuffer(buf Buffer, format IndexFormat) {
	p.indexBuffer = buf
}

func (p *HeadlessPass) DrawIndexed(indexCount, instanceCount uint32) {
	vbs := make(map[uint32]Buffer, len(p.vertexBuffers))
	for slot, buf := range p.vertexBuffers {
		vbs[slot] = buf
	}
	name := ""
	if p.pipeline != nil {
		name = p.pipeline.Label()
	}
	p.draws = append(p.draws, DrawCall{
		Pipeline:      name,
		VertexBuffers: vbs,
		IndexBuffer:   p.indexBuffer,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
	})
}

func (p *HeadlessPass) End() { p.ended = true }
