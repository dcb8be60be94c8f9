package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrComponentDoesNotExist  = errors.New("component does not exist")
	ErrComponentAlreadyExists = errors.New("component already exists")
)

// MissingDependencyError reports a required sibling component that is not
// attached to the entity. The missing type is identified by name so callers
// can surface it directly.
type MissingDependencyError struct {
	Component string
	Missing   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("component %s requires missing sibling %s", e.Component, e.Missing)
}
