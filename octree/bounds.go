package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// relativeSlack widens a bounding cube by a fraction of its extent so that points on
// the bounding box stay inside the cube after the center is rounded.
const relativeSlack = 1e-9

// BoundingCube returns the center and half-size of an axis-aligned cube covering all
// points, widened by padding on every side. A set with no extent (one distinct point)
// needs a positive padding.
func BoundingCube(points []r3.Vector, padding float64) (r3.Vector, float64, error) {
	if len(points) == 0 {
		return r3.Vector{}, 0, ErrEmpty
	}
	if padding < 0 || math.IsNaN(padding) {
		return r3.Vector{}, 0, errors.Errorf("invalid padding %v", padding)
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	if !finite(lo) || !finite(hi) {
		return r3.Vector{}, 0, errors.New("points contain non-finite coordinates")
	}

	extent := hi.Sub(lo)
	halfSize := math.Max(extent.X, math.Max(extent.Y, extent.Z)) / 2
	halfSize += halfSize*relativeSlack + padding
	if halfSize <= 0 {
		return r3.Vector{}, 0, errors.New("points have no extent and padding is zero")
	}
	return lo.Add(hi).Mul(0.5), halfSize, nil
}

// NewFromPoints builds a tree sized to cover positions and adds items[i] at
// positions[i] for every i.
func NewFromPoints[T comparable](
	minHalfSize, padding float64,
	items []T,
	positions []r3.Vector,
	logger golog.Logger,
) (*Octree[T], error) {
	if len(items) != len(positions) {
		return nil, errors.Errorf("got %d items but %d positions", len(items), len(positions))
	}
	center, halfSize, err := BoundingCube(positions, padding)
	if err != nil {
		return nil, err
	}
	tree, err := New[T](minHalfSize, center, halfSize, logger)
	if err != nil {
		return nil, err
	}
	for i, p := range positions {
		if _, err := tree.Add(items[i], p); err != nil {
			return nil, errors.Wrapf(err, "adding item %d", i)
		}
	}
	return tree, nil
}
