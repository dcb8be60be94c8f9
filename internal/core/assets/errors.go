package assets

import "errors"

var (
	// ErrAssetNotFound is returned when the store has no asset for the
	// requested id.
	ErrAssetNotFound = errors.New("asset not found")
)
