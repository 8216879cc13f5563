package rig3d

import (
	"math"
	"strconv"
)

// Quaternion represents a rotation, stored as (X, Y, Z, W) with W being the scalar part.
type Quaternion struct {
	X, Y, Z, W float64
}

// NewQuaternion creates a new Quaternion out of the provided components.
func NewQuaternion(x, y, z, w float64) Quaternion {
	return Quaternion{x, y, z, w}
}

// NewQuaternionIdentity returns the Quaternion representing no rotation at all.
func NewQuaternionIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1}
}

// NewQuaternionFromAxisAngle returns a Quaternion that rotates counter-clockwise by angle (in radians) around the given axis.
// A zero axis defaults to +Y, same as NewMatrix4Rotate.
func NewQuaternionFromAxisAngle(axis Vector, angle float64) Quaternion {

	if axis.MagnitudeSquared() == 0 {
		axis = VecY
	}

	axis = axis.Unit()
	s := math.Sin(angle / 2)

	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}

}

// Add returns the componentwise sum of the two Quaternions.
func (quat Quaternion) Add(other Quaternion) Quaternion {
	quat.X += other.X
	quat.Y += other.Y
	quat.Z += other.Z
	quat.W += other.W
	return quat
}

// Scale returns a copy of the Quaternion with every component multiplied by the scalar.
func (quat Quaternion) Scale(scalar float64) Quaternion {
	quat.X *= scalar
	quat.Y *= scalar
	quat.Z *= scalar
	quat.W *= scalar
	return quat
}

// Dot returns the four-dimensional dot product of the two Quaternions.
func (quat Quaternion) Dot(other Quaternion) float64 {
	return quat.X*other.X + quat.Y*other.Y + quat.Z*other.Z + quat.W*other.W
}

// Mult returns the Hamilton product quat * other; the result applies other's rotation first, then quat's.
func (quat Quaternion) Mult(other Quaternion) Quaternion {
	return Quaternion{
		X: quat.W*other.X + quat.X*other.W + quat.Y*other.Z - quat.Z*other.Y,
		Y: quat.W*other.Y - quat.X*other.Z + quat.Y*other.W + quat.Z*other.X,
		Z: quat.W*other.Z + quat.X*other.Y - quat.Y*other.X + quat.Z*other.W,
		W: quat.W*other.W - quat.X*other.X - quat.Y*other.Y - quat.Z*other.Z,
	}
}

// Magnitude returns the length of the Quaternion.
func (quat Quaternion) Magnitude() float64 {
	return math.Sqrt(quat.Dot(quat))
}

// Normalized returns a unit-length copy of the Quaternion. A zero Quaternion becomes the identity.
func (quat Quaternion) Normalized() Quaternion {
	m := quat.Magnitude()
	if m < 1e-12 {
		return NewQuaternionIdentity()
	}
	return quat.Scale(1 / m)
}

// Lerp linearly interpolates each component of the Quaternion towards other. The result is not renormalized;
// ToMatrix4 normalizes when building the rotation, so a slightly short Quaternion still rotates correctly.
func (quat Quaternion) Lerp(other Quaternion, percent float64) Quaternion {
	return Lerp(quat, other, percent)
}

// Slerp spherically interpolates towards other along the shortest arc.
func (quat Quaternion) Slerp(other Quaternion, percent float64) Quaternion {

	if percent <= 0 {
		return quat
	} else if percent >= 1 {
		return other
	}

	cosTheta := quat.Dot(other)

	if cosTheta < 0 {
		other = other.Scale(-1)
		cosTheta = -cosTheta
	}

	// Nearly parallel; sin(theta) approaches zero, so fall back to a normalized lerp.
	if cosTheta > 0.9995 {
		return quat.Lerp(other, percent).Normalized()
	}

	theta := math.Acos(cosTheta)
	sinTheta := math.Sin(theta)

	ratioA := math.Sin((1-percent)*theta) / sinTheta
	ratioB := math.Sin(percent*theta) / sinTheta

	return quat.Scale(ratioA).Add(other.Scale(ratioB))

}

// ToMatrix4 returns a rotation Matrix4 representing the (normalized) Quaternion.
func (quat Quaternion) ToMatrix4() Matrix4 {
	return NewMatrix4RotateFromQuaternion(quat)
}

// Equals returns true if the two Quaternions are close enough in all values.
func (quat Quaternion) Equals(other Quaternion) bool {
	return quat.EqualsApprox(other, 1e-8)
}

// EqualsApprox returns true if every component of the two Quaternions lies within epsilon of each other.
func (quat Quaternion) EqualsApprox(other Quaternion, epsilon float64) bool {
	return math.Abs(quat.X-other.X) <= epsilon &&
		math.Abs(quat.Y-other.Y) <= epsilon &&
		math.Abs(quat.Z-other.Z) <= epsilon &&
		math.Abs(quat.W-other.W) <= epsilon
}

func (quat Quaternion) String() string {
	return "{" + strconv.FormatFloat(quat.X, 'f', -1, 64) + ", " +
		strconv.FormatFloat(quat.Y, 'f', -1, 64) + ", " +
		strconv.FormatFloat(quat.Z, 'f', -1, 64) + ", " +
		strconv.FormatFloat(quat.W, 'f', -1, 64) + "}"
}
