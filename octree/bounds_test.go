package octree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/widve/widve/logging"
)

func TestBoundingCube(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, _, err := BoundingCube(nil, 1)
		test.That(t, errors.Is(err, ErrEmpty), test.ShouldBeTrue)
	})

	t.Run("single point needs padding", func(t *testing.T) {
		_, _, err := BoundingCube([]r3.Vector{{1, 2, 3}}, 0)
		test.That(t, err, test.ShouldNotBeNil)

		center, halfSize, err := BoundingCube([]r3.Vector{{1, 2, 3}}, 0.5)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, center, test.ShouldResemble, r3.Vector{1, 2, 3})
		test.That(t, halfSize, test.ShouldEqual, 0.5)
	})

	t.Run("negative padding", func(t *testing.T) {
		_, _, err := BoundingCube([]r3.Vector{{1, 2, 3}, {2, 3, 4}}, -1)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("non-finite points", func(t *testing.T) {
		_, _, err := BoundingCube([]r3.Vector{{1, 2, 3}, {math.Inf(1), 3, 4}}, 1)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("covers the largest extent", func(t *testing.T) {
		points := []r3.Vector{{-1, 0, 0}, {3, 1, 0}, {0, -1, 2}}
		center, halfSize, err := BoundingCube(points, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, center, test.ShouldResemble, r3.Vector{1, 0, 1})
		test.That(t, halfSize, test.ShouldAlmostEqual, 2, 1e-6)
	})

	t.Run("every point fits in the tree", func(t *testing.T) {
		rng := rand.New(rand.NewSource(6))
		points := make([]r3.Vector, 1000)
		offset := r3.Vector{1e5, -2e5, 3e4}
		for i := range points {
			points[i] = randomPoint(rng, 50).Add(offset)
		}
		center, halfSize, err := BoundingCube(points, 0)
		test.That(t, err, test.ShouldBeNil)
		tree, err := New[int](0.5, center, halfSize, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		for i, p := range points {
			_, err := tree.Add(i, p)
			test.That(t, err, test.ShouldBeNil)
		}
	})
}

func TestNewFromPoints(t *testing.T) {
	logger := logging.NewTestLogger(t)
	points := []r3.Vector{{1, 1, 1}, {-1, -1, -1}, {7, 7, 7}}

	tree, err := NewFromPoints(0.1, 0.01, []string{"a", "b", "c"}, points, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tree.Size(), test.ShouldEqual, 3)
	item, _, err := tree.FindNearest(r3.Vector{6, 6, 6})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, item, test.ShouldEqual, "c")

	_, err = NewFromPoints(0.1, 0.01, []string{"a"}, points, logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewFromPoints[string](0.1, 0.01, nil, nil, logger)
	test.That(t, errors.Is(err, ErrEmpty), test.ShouldBeTrue)
}
