package gpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadlessDevice_Buffers(t *testing.T) {
	dev, queue := NewHeadless()

	t.Run("CreateBufferInit Copies Data", func(t *testing.T) {
		src := []byte{1, 2, 3, 4}
		buf, err := dev.CreateBufferInit("init", src, BufferUsageVertex)
		require.NoError(t, err)

		src[0] = 99
		require.Equal(t, []byte{1, 2, 3, 4}, buf.(*HeadlessBuffer).Data())
		require.Equal(t, uint64(4), buf.Size())
	})

	t.Run("WriteBuffer Overwrites In Place", func(t *testing.T) {
		buf, err := dev.CreateBuffer("scratch", 8, BufferUsageUniform|BufferUsageCopyDst)
		require.NoError(t, err)

		queue.WriteBuffer(buf, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
		queue.WriteBuffer(buf, 4, []byte{9, 9})
		require.Equal(t, []byte{1, 2, 3, 4, 9, 9, 7, 8}, buf.(*HeadlessBuffer).Data())
	})

	t.Run("WriteBuffer Past End Panics", func(t *testing.T) {
		buf, err := dev.CreateBuffer("small", 2, BufferUsageCopyDst)
		require.NoError(t, err)

		require.Panics(t, func() {
			queue.WriteBuffer(buf, 0, []byte{1, 2, 3})
		})
	})

	t.Run("Allocation Counter", func(t *testing.T) {
		before := dev.BuffersCreated()
		_, err := dev.CreateBuffer("counted", 1, BufferUsageVertex)
		require.NoError(t, err)
		require.Equal(t, before+1, dev.BuffersCreated())
	})
}

func TestHeadlessPass_Recording(t *testing.T) {
	dev, queue := NewHeadless()

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)

	vb, _ := dev.CreateBuffer("verts", 16, BufferUsageVertex)
	ib, _ := dev.CreateBuffer("indices", 16, BufferUsageIndex)
	inst, _ := dev.CreateBuffer("instances", 64, BufferUsageVertex)

	pass := enc.BeginRenderPass(Attachments{}, Color{A: 1})
	pass.SetPipeline(&HeadlessPipeline{NameLabel: "mat"})
	pass.SetVertexBuffer(0, vb)
	pass.SetVertexBuffer(1, inst)
	pass.SetIndexBuffer(ib, IndexFormatUint32)
	pass.DrawIndexed(36, 4)
	pass.End()

	queue.Submit(enc)

	submitted := queue.Submitted()
	require.Len(t, submitted, 1)
	require.Len(t, submitted[0].Passes(), 1)

	rec := submitted[0].Passes()[0]
	require.True(t, rec.Ended())

	draws := rec.Draws()
	require.Len(t, draws, 1)
	require.Equal(t, "mat", draws[0].Pipeline)
	require.Equal(t, uint32(36), draws[0].IndexCount)
	require.Equal(t, uint32(4), draws[0].InstanceCount)
	require.Same(t, inst, draws[0].VertexBuffers[1])
	require.Same(t, ib, draws[0].IndexBuffer)
}
