// Package render turns the world's mesh components into instanced draw calls.
// Its core is the batch cache: per frame, visible meshes are culled, grouped
// by (mesh, material) and compared against the previous frame's composition;
// unchanged compositions reuse the existing instance buffers.
package render

import (
	"fmt"
	"sort"

	"github.com/selene-engine/selene/internal/core/assets"
	"github.com/selene-engine/selene/internal/core/ecs"
	"github.com/selene-engine/selene/internal/core/engine"
	"github.com/selene-engine/selene/internal/core/gpu"
	"github.com/selene-engine/selene/internal/observability/log"
)

// Extension renders one layer of the frame. Extensions run in ascending
// Priority order and share a command encoder.
type Extension interface {
	Render(enc gpu.CommandEncoder, world *ecs.World, store *assets.Store, att gpu.Attachments) error
	Priority() uint32
}

// Renderer drives the registered extensions once per frame.
type Renderer struct {
	ctx        *engine.Context
	extensions []Extension
}

func NewRenderer(ctx *engine.Context, exts ...Extension) *Renderer {
	r := &Renderer{ctx: ctx}
	for _, e := range exts {
		r.Add(e)
	}
	return r
}

// Add registers an extension, keeping the run order sorted by priority.
func (r *Renderer) Add(ext Extension) {
	r.extensions = append(r.extensions, ext)
	sort.SliceStable(r.extensions, func(i, j int) bool {
		return r.extensions[i].Priority() < r.extensions[j].Priority()
	})
}

// Frame encodes every extension and submits the result.
func (r *Renderer) Frame(world *ecs.World, store *assets.Store, att gpu.Attachments) error {
	enc, err := r.ctx.Device().CreateCommandEncoder("frame")
	if err != nil {
		return fmt.Errorf("render: encoder: %w", err)
	}
	for _, ext := range r.extensions {
		if err := ext.Render(enc, world, store, att); err != nil {
			return fmt.Errorf("render: extension priority %d: %w", ext.Priority(), err)
		}
	}
	r.ctx.Queue().Submit(enc)
	r.ctx.Log().Debug("frame submitted", log.Int("extensions", len(r.extensions)))
	return nil
}
