package octree

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds is returned when a position lies outside the root cube.
	ErrOutOfBounds = errors.New("position is outside the bounds of the octree")
	// ErrNotFound is returned when a removal finds no matching item in the leaf the
	// position routes to.
	ErrNotFound = errors.New("item not found at position")
	// ErrEmpty is returned by queries against a tree holding no items.
	ErrEmpty = errors.New("octree is empty")
)
