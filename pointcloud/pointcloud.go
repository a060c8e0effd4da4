// Package pointcloud reads and writes point clouds as plain position sets suitable
// for spatial indexing.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/widve/widve/spatialmath"
)

// Cloud is a set of points read from a file, with the viewpoint they were acquired
// from when the format records one.
type Cloud struct {
	Points    []r3.Vector
	Viewpoint spatialmath.Pose
}

// New returns an empty cloud preallocated for size points.
func New(size int) *Cloud {
	return &Cloud{
		Points:    make([]r3.Vector, 0, size),
		Viewpoint: spatialmath.NewZeroPose(),
	}
}

// Size returns the number of points in the cloud.
func (cloud *Cloud) Size() int {
	return len(cloud.Points)
}

// Bounds returns the minimum and maximum corner of the cloud's axis-aligned bounding
// box. Both are zero for an empty cloud.
func (cloud *Cloud) Bounds() (r3.Vector, r3.Vector) {
	if len(cloud.Points) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	lo := r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	hi := r3.Vector{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	for _, p := range cloud.Points {
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}
