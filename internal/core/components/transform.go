// Package components provides the built-in spatial components: Transform,
// Camera and Mesh, plus zero-data marker types for tagging entities.
package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/selene-engine/selene/internal/core/ecs"
)

var _ ecs.Component = (*Transform)(nil)

// Transform places an entity in the world.
//
// Rotation is Euler angles in degrees, composed intrinsically X then Y then Z.
type Transform struct {
	ecs.BaseComponent

	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	// Parent chains this transform under another one. Zero value means no
	// parent.
	Parent ecs.Ref[Transform]
}

func (t *Transform) Init() {
	t.Scale = mgl32.Vec3{1, 1, 1}
}

// Local returns the local transformation matrix. The multiplication order
// translate, scale, rotate is a contract shared with the instance packing in
// the render batcher; do not reorder.
func (t *Transform) Local() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(scale).Mul4(RotationEuler(t.Rotation))
}

// Matrix returns the world transformation matrix, composing every parent
// recursively.
func (t *Transform) Matrix() mgl32.Mat4 {
	if !t.Parent.Valid() {
		return t.Local()
	}
	g := t.Parent.Borrow()
	parent := g.Get().Matrix()
	g.Release()
	return parent.Mul4(t.Local())
}

// RotationEuler builds a rotation matrix from Euler angles in degrees,
// composed intrinsically X then Y then Z.
func RotationEuler(deg mgl32.Vec3) mgl32.Mat4 {
	sx, cx := sincos(mgl32.DegToRad(deg.X()))
	sy, cy := sincos(mgl32.DegToRad(deg.Y()))
	sz, cz := sincos(mgl32.DegToRad(deg.Z()))

	return mgl32.Mat4{
		cy * cz, cy * sz, -sy, 0,
		sx*sy*cz - cx*sz, sx*sy*sz + cx*cz, sx * cy, 0,
		cx*sy*cz + sx*sz, cx*sy*sz - sx*cz, cx * cy, 0,
		0, 0, 0, 1,
	}
}

func sincos(rad float32) (float32, float32) {
	s, c := math.Sincos(float64(rad))
	return float32(s), float32(c)
}
