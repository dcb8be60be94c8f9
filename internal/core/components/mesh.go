package components

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/selene-engine/selene/internal/core/ecs"
)

var (
	_ ecs.Component = (*Mesh)(nil)
	_ ecs.Dependent = (*Mesh)(nil)
)

// Mesh makes an entity drawable: it pairs a mesh asset with a material asset
// and exposes the sibling Transform to the batcher. A zero MeshID or
// MaterialID at render time is a programmer error.
type Mesh struct {
	ecs.BaseComponent

	MeshID     uuid.UUID
	MaterialID uuid.UUID
	Visible    bool

	transform ecs.Ref[Transform]
}

func (m *Mesh) Init() {
	m.Visible = true
}

func (m *Mesh) Requires() []reflect.Type {
	return []reflect.Type{ecs.TypeOf[Transform]()}
}

func (m *Mesh) SetOwner(o ecs.Owner) {
	if ref, err := ecs.Resolve[Transform](o); err == nil {
		m.transform = ref
	}
}

// Matrix returns the world matrix of the sibling Transform.
func (m *Mesh) Matrix() mgl32.Mat4 {
	g := m.mustTransform().Borrow()
	mat := g.Get().Matrix()
	g.Release()
	return mat
}

// Position returns the world translation, the bounding sphere center used by
// frustum culling.
func (m *Mesh) Position() mgl32.Vec3 {
	return m.Matrix().Col(3).Vec3()
}

func (m *Mesh) mustTransform() ecs.Ref[Transform] {
	if !m.transform.Valid() {
		panic("mesh: no Transform sibling on the owning entity")
	}
	return m.transform
}
