package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCubeContains(t *testing.T) {
	center := r3.Vector{1, 1, 1}
	test.That(t, CubeContains(center, 1, r3.Vector{1, 1, 1}), test.ShouldBeTrue)
	test.That(t, CubeContains(center, 1, r3.Vector{2, 0, 1}), test.ShouldBeTrue)
	test.That(t, CubeContains(center, 1, r3.Vector{0, 0, 0}), test.ShouldBeTrue)
	test.That(t, CubeContains(center, 1, r3.Vector{2.0001, 1, 1}), test.ShouldBeFalse)
	test.That(t, CubeContains(center, 1, r3.Vector{1, 1, -0.5}), test.ShouldBeFalse)
}

func TestCubeDistanceSquared(t *testing.T) {
	center := r3.Vector{}
	for _, tc := range []struct {
		name     string
		p        r3.Vector
		expected float64
	}{
		{"inside", r3.Vector{0.5, -0.5, 0.2}, 0},
		{"on face", r3.Vector{1, 0, 0}, 0},
		{"off face", r3.Vector{3, 0, 0}, 4},
		{"off edge", r3.Vector{2, -2, 0}, 2},
		{"off corner", r3.Vector{-2, 2, 3}, 1 + 1 + 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, CubeDistanceSquared(center, 1, tc.p), test.ShouldAlmostEqual, tc.expected)
		})
	}
}

func TestBoxContains(t *testing.T) {
	lo := r3.Vector{-1, 0, 2}
	hi := r3.Vector{1, 0.5, 2}
	test.That(t, BoxContains(lo, hi, r3.Vector{0, 0.25, 2}), test.ShouldBeTrue)
	test.That(t, BoxContains(lo, hi, lo), test.ShouldBeTrue)
	test.That(t, BoxContains(lo, hi, hi), test.ShouldBeTrue)
	test.That(t, BoxContains(lo, hi, r3.Vector{0, 0.25, 2.0001}), test.ShouldBeFalse)
	test.That(t, BoxContains(lo, hi, r3.Vector{-1.5, 0, 2}), test.ShouldBeFalse)
	test.That(t, BoxDistanceSquared(lo, hi, r3.Vector{3, 1.5, 2}), test.ShouldAlmostEqual, 4+1)
	test.That(t, BoxDistanceSquared(lo, hi, r3.Vector{0, 0, 2}), test.ShouldEqual, 0)
}
