// Package octree implements a bounded-depth point octree. Items are stored with the
// position they were inserted at, in leaves whose half-size has reached the tree's
// minimum half-size, and can be removed again or searched for by proximity.
//
// An Octree is not safe for concurrent mutation.
package octree

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/widve/widve/logging"
)

// Octree is a data structure that recursively partitions a cube of 3D space into
// octants down to a minimum half-size. Interior nodes only route; leaves hold items.
type Octree[T comparable] struct {
	logger      golog.Logger
	root        *Node[T]
	minHalfSize float64
	size        int
}

// New creates an empty octree whose root covers the cube of edge 2*halfSize centered
// at center. Nodes whose half-size is at or below minHalfSize are leaves. A nil
// logger means the global logger.
func New[T comparable](minHalfSize float64, center r3.Vector, halfSize float64, logger golog.Logger) (*Octree[T], error) {
	if !(minHalfSize > 0) || math.IsInf(minHalfSize, 0) {
		return nil, errors.Errorf("invalid minimum half size (%.4f) for octree", minHalfSize)
	}
	if !(halfSize > 0) || math.IsInf(halfSize, 0) {
		return nil, errors.Errorf("invalid half size (%.4f) for octree", halfSize)
	}
	if !finite(center) {
		return nil, errors.Errorf("invalid center %v for octree", center)
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Octree[T]{
		logger:      logger,
		root:        newNode[T](nil, center, halfSize, minHalfSize),
		minHalfSize: minHalfSize,
	}, nil
}

// Add stores item at position and returns the leaf it was placed in. A position
// outside the root cube yields ErrOutOfBounds and leaves the tree unchanged.
func (tree *Octree[T]) Add(item T, position r3.Vector) (*Node[T], error) {
	leaf, err := tree.root.add(item, position)
	if err != nil {
		tree.logger.Debugw("octree insert rejected", "position", position, "error", err)
		return nil, err
	}
	tree.size++
	return leaf, nil
}

// Remove deletes the first entry equal to item from the leaf that position routes to.
// position must be the one the item was added with; the rest of the tree is not
// searched.
func (tree *Octree[T]) Remove(item T, position r3.Vector) (*Node[T], error) {
	leaf, err := tree.root.remove(item, position)
	if err != nil {
		return nil, err
	}
	tree.size--
	return leaf, nil
}

// Size returns the number of items stored in the tree.
func (tree *Octree[T]) Size() int {
	return tree.size
}

// MinHalfSize returns the half-size at and below which nodes stop subdividing.
func (tree *Octree[T]) MinHalfSize() float64 {
	return tree.minHalfSize
}

// Center returns the center of the root cube.
func (tree *Octree[T]) Center() r3.Vector {
	return tree.root.center
}

// HalfSize returns the half-size of the root cube.
func (tree *Octree[T]) HalfSize() float64 {
	return tree.root.halfSize
}

// Root returns the root node.
func (tree *Octree[T]) Root() *Node[T] {
	return tree.root
}

// Contains reports whether position lies inside the root cube.
func (tree *Octree[T]) Contains(position r3.Vector) bool {
	return tree.root.Contains(position)
}

// Depth returns the depth of the deepest node allocated so far; a lone root is 0.
func (tree *Octree[T]) Depth() int {
	deepest := 0
	tree.root.walk(func(n *Node[T]) {
		if d := n.Depth(); d > deepest {
			deepest = d
		}
	})
	return deepest
}

// MaxDepth returns the depth at which nodes become leaves for this tree.
func (tree *Octree[T]) MaxDepth() int {
	depth := 0
	for h := tree.root.halfSize; h > tree.minHalfSize; h /= 2 {
		depth++
	}
	return depth
}

// Iterate calls fn for every stored item until fn returns false.
func (tree *Octree[T]) Iterate(fn func(item T, position r3.Vector) bool) {
	tree.root.iterate(fn)
}

// String returns a human readable description of the tree.
func (tree *Octree[T]) String() string {
	return fmt.Sprintf("octree with center at %v, half size %v and %d items",
		tree.root.center, tree.root.halfSize, tree.size)
}

func finite(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
