// Package spatialmath defines the rigid transforms and cube geometry used to place
// and index points in 3D space.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const (
	degToRad = math.Pi / 180

	// poses closer than this in translation, and whose rotations differ by less than
	// orientationEpsilon, are considered the same.
	translationEpsilon = 1e-8
	orientationEpsilon = 1e-10
)

// Pose is a rigid transform: a rotation about the origin followed by a translation.
type Pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{orientation: quat.Number{Real: 1}}
}

// NewPoseFromPoint returns a pose that translates by point and does not rotate.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{point: point, orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose that rotates by theta radians about axis and then translates
// by point. A zero axis means no rotation.
func NewPose(point, axis r3.Vector, theta float64) Pose {
	norm := axis.Norm()
	if norm == 0 {
		return NewPoseFromPoint(point)
	}
	axis = axis.Mul(1 / norm)
	s := math.Sin(theta / 2)
	return Pose{
		point: point,
		orientation: quat.Number{
			Real: math.Cos(theta / 2),
			Imag: axis.X * s,
			Jmag: axis.Y * s,
			Kmag: axis.Z * s,
		},
	}
}

// NewPoseFromDegrees is NewPose with the angle given in degrees.
func NewPoseFromDegrees(point, axis r3.Vector, degrees float64) Pose {
	return NewPose(point, axis, degrees*degToRad)
}

// NewPoseFromQuat returns a pose from a translation and a rotation quaternion. The
// quaternion is normalized; a zero quaternion is treated as no rotation.
func NewPoseFromQuat(point r3.Vector, q quat.Number) Pose {
	n := quat.Abs(q)
	if n == 0 {
		return NewPoseFromPoint(point)
	}
	return Pose{point: point, orientation: quat.Scale(1/n, q)}
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Orientation returns the unit quaternion of the pose.
func (p Pose) Orientation() quat.Number {
	if p.orientation == (quat.Number{}) {
		return quat.Number{Real: 1}
	}
	return p.orientation
}

// TransformPoint maps a point from the pose's local frame into the parent frame.
func (p Pose) TransformPoint(v r3.Vector) r3.Vector {
	return rotate(p.Orientation(), v).Add(p.point)
}

// Compose returns the pose that applies b and then a.
func Compose(a, b Pose) Pose {
	return Pose{
		point:       a.TransformPoint(b.point),
		orientation: quat.Mul(a.Orientation(), b.Orientation()),
	}
}

// PoseAlmostEqual reports whether two poses describe the same transform. q and -q are
// the same rotation.
func PoseAlmostEqual(a, b Pose) bool {
	if !(a.point.Sub(b.point).Norm() <= translationEpsilon) {
		return false
	}
	qa, qb := a.Orientation(), b.Orientation()
	dot := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	return 1-math.Abs(dot) < orientationEpsilon
}

func rotate(q quat.Number, v r3.Vector) r3.Vector {
	r := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
