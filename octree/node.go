package octree

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/widve/widve/spatialmath"
)

// Item is an entry stored in a leaf: the caller's payload and the position it was
// inserted at.
type Item[T comparable] struct {
	Value    T
	Position r3.Vector
}

// Node is a cube of space in an octree. A node whose half-size is at or below the
// tree's minimum half-size is a leaf and holds items; any other node only holds up
// to 8 children, created the first time an insertion descends into their octant.
type Node[T comparable] struct {
	center r3.Vector
	// lo and hi are the cube's faces. A child's faces are taken from its parent's
	// faces and center rather than recomputed, so rounding never leaves a gap.
	lo, hi      r3.Vector
	halfSize    float64
	minHalfSize float64
	// parent is only used to compute depth.
	parent   *Node[T]
	children [8]*Node[T]
	contents []Item[T]
}

func newNode[T comparable](parent *Node[T], center r3.Vector, halfSize, minHalfSize float64) *Node[T] {
	offset := r3.Vector{X: halfSize, Y: halfSize, Z: halfSize}
	return &Node[T]{
		parent:      parent,
		center:      center,
		lo:          center.Sub(offset),
		hi:          center.Add(offset),
		halfSize:    halfSize,
		minHalfSize: minHalfSize,
	}
}

// newChild creates the child cube for octant.
func (n *Node[T]) newChild(octant int) *Node[T] {
	lo, hi := n.childBounds(octant)
	return &Node[T]{
		parent:      n,
		center:      lo.Add(hi.Sub(lo).Mul(0.5)),
		lo:          lo,
		hi:          hi,
		halfSize:    n.halfSize / 2,
		minHalfSize: n.minHalfSize,
	}
}

// Center returns the center of the node's cube.
func (n *Node[T]) Center() r3.Vector {
	return n.center
}

// HalfSize returns half the edge length of the node's cube.
func (n *Node[T]) HalfSize() float64 {
	return n.halfSize
}

// IsLeaf reports whether the node stores items rather than children.
func (n *Node[T]) IsLeaf() bool {
	return n.halfSize <= n.minHalfSize
}

// Depth returns the number of ancestors of the node.
func (n *Node[T]) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Child returns the child in the given octant, or nil if it has not been created.
func (n *Node[T]) Child(octant int) *Node[T] {
	if octant < 0 || octant >= len(n.children) {
		return nil
	}
	return n.children[octant]
}

// Children returns the children that exist, in octant order.
func (n *Node[T]) Children() []*Node[T] {
	var children []*Node[T]
	for _, child := range n.children {
		if child != nil {
			children = append(children, child)
		}
	}
	return children
}

// Contents returns a copy of the items stored in the node. It is empty for internal
// nodes.
func (n *Node[T]) Contents() []Item[T] {
	contents := make([]Item[T], len(n.contents))
	copy(contents, n.contents)
	return contents
}

// Contains reports whether position lies inside the node's closed cube.
func (n *Node[T]) Contains(position r3.Vector) bool {
	return spatialmath.BoxContains(n.lo, n.hi, position)
}

// Octant returns the 0-7 index of the child cube position falls into. Bit 0 is set
// when x is greater than the center's x, bit 1 for y and bit 2 for z. A coordinate
// equal to the center's goes to the lower side.
func (n *Node[T]) Octant(position r3.Vector) int {
	octant := 0
	if position.X > n.center.X {
		octant |= 1
	}
	if position.Y > n.center.Y {
		octant |= 2
	}
	if position.Z > n.center.Z {
		octant |= 4
	}
	return octant
}

// childBounds returns the faces of the child cube for octant. The side a
// coordinate falls on matches Octant, so the center plane belongs to both halves.
func (n *Node[T]) childBounds(octant int) (lo, hi r3.Vector) {
	lo, hi = n.lo, n.hi
	if octant&1 != 0 {
		lo.X = n.center.X
	} else {
		hi.X = n.center.X
	}
	if octant&2 != 0 {
		lo.Y = n.center.Y
	} else {
		hi.Y = n.center.Y
	}
	if octant&4 != 0 {
		lo.Z = n.center.Z
	} else {
		hi.Z = n.center.Z
	}
	return lo, hi
}

// add places item in the leaf position routes to, creating nodes along the way.
func (n *Node[T]) add(item T, position r3.Vector) (*Node[T], error) {
	if !n.Contains(position) {
		return nil, errors.Wrapf(ErrOutOfBounds, "position %v outside cube at %v with half size %v", position, n.center, n.halfSize)
	}
	// routing by octant keeps the position inside every child it visits, so bounds
	// are only checked once here.
	node := n
	for !node.IsLeaf() {
		octant := node.Octant(position)
		if node.children[octant] == nil {
			node.children[octant] = node.newChild(octant)
		}
		node = node.children[octant]
	}
	node.contents = append(node.contents, Item[T]{Value: item, Position: position})
	return node, nil
}

// remove deletes the first entry equal to item from the leaf position routes to.
func (n *Node[T]) remove(item T, position r3.Vector) (*Node[T], error) {
	leaf, err := n.leafFor(position)
	if err != nil {
		return nil, err
	}
	for i, entry := range leaf.contents {
		if entry.Value == item {
			leaf.contents = append(leaf.contents[:i], leaf.contents[i+1:]...)
			return leaf, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "item %v at position %v", item, position)
}

// leafFor returns the existing leaf position routes to without creating nodes.
func (n *Node[T]) leafFor(position r3.Vector) (*Node[T], error) {
	if !n.Contains(position) {
		return nil, errors.Wrapf(ErrOutOfBounds, "position %v outside cube at %v with half size %v", position, n.center, n.halfSize)
	}
	node := n
	for !node.IsLeaf() {
		node = node.children[node.Octant(position)]
		if node == nil {
			return nil, errors.Wrapf(ErrNotFound, "no leaf allocated for position %v", position)
		}
	}
	return node, nil
}

// walk visits n and every descendant, parents before children.
func (n *Node[T]) walk(fn func(*Node[T])) {
	fn(n)
	for _, child := range n.children {
		if child != nil {
			child.walk(fn)
		}
	}
}

func (n *Node[T]) iterate(fn func(item T, position r3.Vector) bool) bool {
	for _, entry := range n.contents {
		if !fn(entry.Value, entry.Position) {
			return false
		}
	}
	for _, child := range n.children {
		if child != nil && !child.iterate(fn) {
			return false
		}
	}
	return true
}
