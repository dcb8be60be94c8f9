package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MatrixSize is the byte size of one packed 4x4 float32 matrix.
const MatrixSize = 64

// MatrixBytes packs column-major matrices into little-endian bytes suitable
// for WriteBuffer and CreateBufferInit.
func MatrixBytes(ms ...mgl32.Mat4) []byte {
	out := make([]byte, len(ms)*MatrixSize)
	for i, m := range ms {
		for j, f := range m {
			binary.LittleEndian.PutUint32(out[i*MatrixSize+j*4:], math.Float32bits(f))
		}
	}
	return out
}
