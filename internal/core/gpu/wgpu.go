package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WebGPU-backed implementations. The device and queue are acquired by the
// host windowing layer; this file only wraps them behind the package
// interfaces.

var _ Device = (*WGPUDevice)(nil)
var _ Queue = (*WGPUQueue)(nil)

// WGPUDevice wraps a wgpu device. The queue is needed for CreateBufferInit,
// since buffer uploads go through queue writes.
type WGPUDevice struct {
	inner *wgpu.Device
	queue *wgpu.Queue
}

// WGPUQueue wraps a wgpu queue.
type WGPUQueue struct {
	inner *wgpu.Queue
}

// NewWGPU wraps an already-acquired device and queue.
func NewWGPU(device *wgpu.Device, queue *wgpu.Queue) (*WGPUDevice, *WGPUQueue) {
	return &WGPUDevice{inner: device, queue: queue}, &WGPUQueue{inner: queue}
}

type wgpuBuffer struct {
	inner *wgpu.Buffer
	label string
	size  uint64
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }
func (b *wgpuBuffer) Release()      { b.inner.Release() }

type wgpuBindGroup struct {
	inner  *wgpu.BindGroup
	layout *wgpu.BindGroupLayout
}

func (g *wgpuBindGroup) Release() {
	g.inner.Release()
	g.layout.Release()
}

// WGPUPipeline adapts a concrete render pipeline to the Pipeline interface so
// materials can carry it opaquely.
type WGPUPipeline struct {
	Inner     *wgpu.RenderPipeline
	NameLabel string
}

func (p *WGPUPipeline) Label() string { return p.NameLabel }

func toWGPUUsage(usage BufferUsage) wgpu.BufferUsage {
	var u wgpu.BufferUsage
	if usage&BufferUsageVertex != 0 {
		u |= wgpu.BufferUsageVertex
	}
	if usage&BufferUsageIndex != 0 {
		u |= wgpu.BufferUsageIndex
	}
	if usage&BufferUsageUniform != 0 {
		u |= wgpu.BufferUsageUniform
	}
	if usage&BufferUsageCopyDst != 0 {
		u |= wgpu.BufferUsageCopyDst
	}
	return u
}

func (d *WGPUDevice) CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error) {
	buf, err := d.inner.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: toWGPUUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", label, err)
	}
	return &wgpuBuffer{inner: buf, label: label, size: size}, nil
}

func (d *WGPUDevice) CreateBufferInit(label string, data []byte, usage BufferUsage) (Buffer, error) {
	// Uploads go through a queue write, so CopyDst is always required.
	buf, err := d.CreateBuffer(label, uint64(len(data)), usage|BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	d.queue.WriteBuffer(buf.(*wgpuBuffer).inner, 0, data)
	return buf, nil
}

func (d *WGPUDevice) CreateUniformBindGroup(label string, buf Buffer) (BindGroup, error) {
	wb, ok := buf.(*wgpuBuffer)
	if !ok {
		return nil, errors.New("buffer was not created by this device")
	}

	layout, err := d.inner.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", label, err)
	}

	group, err := d.inner.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  wb.inner,
			Size:    wb.size,
		}},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("create bind group %q: %w", label, err)
	}

	return &wgpuBindGroup{inner: group, layout: layout}, nil
}

func (d *WGPUDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.inner.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder %q: %w", label, err)
	}
	return &wgpuEncoder{inner: enc}, nil
}

func (q *WGPUQueue) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	q.inner.WriteBuffer(buf.(*wgpuBuffer).inner, offset, data)
}

func (q *WGPUQueue) Submit(enc CommandEncoder) {
	we := enc.(*wgpuEncoder)
	cmd, err := we.inner.Finish(nil)
	if err != nil {
		panic(fmt.Errorf("finish command encoder: %w", err))
	}
	q.inner.Submit(cmd)
	cmd.Release()
	we.inner.Release()
}

type wgpuEncoder struct {
	inner *wgpu.CommandEncoder
}

func (e *wgpuEncoder) BeginRenderPass(att Attachments, clear Color) RenderPass {
	pass := e.inner.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    att.Color.(*wgpu.TextureView),
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: clear.R,
				G: clear.G,
				B: clear.B,
				A: clear.A,
			},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            att.DepthStencil.(*wgpu.TextureView),
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	return &wgpuPass{inner: pass}
}

type wgpuPass struct {
	inner *wgpu.RenderPassEncoder
}

func (p *wgpuPass) SetPipeline(pl Pipeline) {
	p.inner.SetPipeline(pl.(*WGPUPipeline).Inner)
}

func (p *wgpuPass) SetBindGroup(index uint32, bg BindGroup) {
	p.inner.SetBindGroup(index, bg.(*wgpuBindGroup).inner, nil)
}

func (p *wgpuPass) SetVertexBuffer(slot uint32, buf Buffer) {
	p.inner.SetVertexBuffer(slot, buf.(*wgpuBuffer).inner, 0, wgpu.WholeSize)
}

func (p *wgpuPass) SetIndexBuffer(buf Buffer, format IndexFormat) {
	f := wgpu.IndexFormatUint32
	if format == IndexFormatUint16 {
		f = wgpu.IndexFormatUint16
	}
	p.inner.SetIndexBuffer(buf.(*wgpuBuffer).inner, f, 0, wgpu.WholeSize)
}

func (p *wgpuPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.inner.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuPass) End() {
	p.inner.End()
	p.inner.Release()
}
