// Package assets holds the GPU-side resources meshes and materials render
// with, keyed by opaque 128-bit ids.
package assets

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/selene-engine/selene/internal/core/gpu"
)

// Mesh is uploaded geometry: a vertex buffer, an index buffer and the
// bounding sphere radius culling tests against.
type Mesh struct {
	id           uuid.UUID
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
	extent       float32
}

// NewMesh uploads vertex and index data. The vertex layout is opaque to the
// engine; extent is the bounding sphere radius around the mesh origin.
func NewMesh(dev gpu.Device, label string, vertices []byte, indices []uint32, extent float32) (*Mesh, error) {
	vb, err := dev.CreateBufferInit(label+" vertices", vertices, gpu.BufferUsageVertex|gpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", label, err)
	}
	ib, err := dev.CreateBufferInit(label+" indices", indexBytes(indices), gpu.BufferUsageIndex|gpu.BufferUsageCopyDst)
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("mesh %q: %w", label, err)
	}
	return &Mesh{
		vertexBuffer: vb,
		indexBuffer:  ib,
		indexCount:   uint32(len(indices)),
		extent:       extent,
	}, nil
}

func (m *Mesh) ID() uuid.UUID            { return m.id }
func (m *Mesh) VertexBuffer() gpu.Buffer { return m.vertexBuffer }
func (m *Mesh) IndexBuffer() gpu.Buffer  { return m.indexBuffer }
func (m *Mesh) IndexCount() uint32       { return m.indexCount }

// Extent is the bounding sphere radius.
func (m *Mesh) Extent() float32 { return m.extent }

// Release frees both buffers.
func (m *Mesh) Release() {
	m.vertexBuffer.Release()
	m.indexBuffer.Release()
}

func indexBytes(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
