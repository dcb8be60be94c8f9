package components

import "github.com/selene-engine/selene/internal/core/ecs"

// Static tags geometry that never moves. It carries no data; its presence is
// queried through ecs.Has and ecs.AllComponents.
type Static struct {
	ecs.BaseComponent
}
