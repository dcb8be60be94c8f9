package assets

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/selene-engine/selene/internal/core/gpu"
)

// BindGroupState tracks whether a material's bind groups exist yet.
type BindGroupState uint8

const (
	BindGroupsUninitialized BindGroupState = iota
	BindGroupsInitialized
)

// MaterialBindGroupIndex is the first bind group slot materials own; slot 0
// belongs to the camera.
const MaterialBindGroupIndex = 1

// Material pairs a render pipeline with lazily created bind groups. Bind
// groups are built on first use during a frame, not at asset load.
type Material struct {
	id         uuid.UUID
	pipeline   gpu.Pipeline
	state      BindGroupState
	bindGroups []gpu.BindGroup
	initFn     func(dev gpu.Device) ([]gpu.BindGroup, error)
}

// NewMaterial wraps a pipeline. initFn, if non-nil, builds the material's
// bind groups when InitBindGroups first runs.
func NewMaterial(pipeline gpu.Pipeline, initFn func(dev gpu.Device) ([]gpu.BindGroup, error)) *Material {
	return &Material{pipeline: pipeline, initFn: initFn}
}

func (m *Material) ID() uuid.UUID          { return m.id }
func (m *Material) Pipeline() gpu.Pipeline { return m.pipeline }
func (m *Material) State() BindGroupState  { return m.state }

// InitBindGroups builds the bind groups once. Calling it on an initialized
// material is a no-op.
func (m *Material) InitBindGroups(dev gpu.Device) error {
	if m.state == BindGroupsInitialized {
		return nil
	}
	if m.initFn != nil {
		bgs, err := m.initFn(dev)
		if err != nil {
			return fmt.Errorf("material %s: %w", m.id, err)
		}
		m.bindGroups = bgs
	}
	m.state = BindGroupsInitialized
	return nil
}

// Render binds the material's pipeline and bind groups on the pass.
func (m *Material) Render(pass gpu.RenderPass) {
	pass.SetPipeline(m.pipeline)
	for i, bg := range m.bindGroups {
		pass.SetBindGroup(uint32(MaterialBindGroupIndex+i), bg)
	}
}

// Release frees the bind groups and resets the state machine.
func (m *Material) Release() {
	for _, bg := range m.bindGroups {
		bg.Release()
	}
	m.bindGroups = nil
	m.state = BindGroupsUninitialized
}
