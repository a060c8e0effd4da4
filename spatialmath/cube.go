package spatialmath

import (
	"github.com/golang/geo/r3"
)

// CubeContains reports whether p lies in the closed axis-aligned cube with the given
// center and half-size. Points on a face are inside.
func CubeContains(center r3.Vector, halfSize float64, p r3.Vector) bool {
	offset := r3.Vector{X: halfSize, Y: halfSize, Z: halfSize}
	return BoxContains(center.Sub(offset), center.Add(offset), p)
}

// BoxContains reports whether p lies in the closed axis-aligned box [lo, hi].
func BoxContains(lo, hi, p r3.Vector) bool {
	return lo.X <= p.X && p.X <= hi.X &&
		lo.Y <= p.Y && p.Y <= hi.Y &&
		lo.Z <= p.Z && p.Z <= hi.Z
}

// CubeDistanceSquared returns the squared distance from p to the closest point of the
// cube. It is 0 when p is inside.
func CubeDistanceSquared(center r3.Vector, halfSize float64, p r3.Vector) float64 {
	offset := r3.Vector{X: halfSize, Y: halfSize, Z: halfSize}
	return BoxDistanceSquared(center.Sub(offset), center.Add(offset), p)
}

// BoxDistanceSquared returns the squared distance from p to the closest point of the
// box [lo, hi].
func BoxDistanceSquared(lo, hi, p r3.Vector) float64 {
	dx := axisDist(p.X, lo.X, hi.X)
	dy := axisDist(p.Y, lo.Y, hi.Y)
	dz := axisDist(p.Z, lo.Z, hi.Z)
	return dx*dx + dy*dy + dz*dz
}

func axisDist(k, lo, hi float64) float64 {
	if k < lo {
		return lo - k
	}
	if k <= hi {
		return 0
	}
	return k - hi
}
