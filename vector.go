package rig3d

import (
	"math"
	"strconv"
)

// VecX represents a unit vector in the global direction of VecX on the right-handed coordinate system (right).
var VecX = NewVector(1, 0, 0)

// VecY represents a unit vector in the global direction of VecY on the right-handed coordinate system (upwards).
var VecY = NewVector(0, 1, 0)

// VecZ represents a unit vector in the global direction of VecZ on the right-handed coordinate system (backwards, towards you).
var VecZ = NewVector(0, 0, 1)

// VecOne is a Vector with all components set to 1; it's the default scale of a Bone.
var VecOne = NewVector(1, 1, 1)

// Vector represents a 3D Vector, used for keyframed positions and scales.
// Any Vector functions that modify the calling Vector return copies of the modified Vector, meaning you can do method-chaining easily.
// Vectors are most efficient when copied, so try not to store pointers to them.
type Vector struct {
	X float64 // The X (1st) component of the Vector
	Y float64 // The Y (2nd) component of the Vector
	Z float64 // The Z (3rd) component of the Vector
}

// NewVector creates a new Vector with the specified x, y, and z components.
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// NewVectorZero creates a new "zero-ed out" Vector.
func NewVectorZero() Vector {
	return Vector{}
}

// Add returns a copy of the calling vector, added together with the other Vector provided.
func (vec Vector) Add(other Vector) Vector {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Sub returns a copy of the calling Vector, with the other Vector subtracted from it.
func (vec Vector) Sub(other Vector) Vector {
	vec.X -= other.X
	vec.Y -= other.Y
	vec.Z -= other.Z
	return vec
}

// Scale scales a Vector by the given scalar, returning a copy.
func (vec Vector) Scale(scalar float64) Vector {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// Dot returns the dot product of the calling Vector and the other Vector.
func (vec Vector) Dot(other Vector) float64 {
	return vec.X*other.X + vec.Y*other.Y + vec.Z*other.Z
}

// Cross returns a new Vector, indicating the cross product of the calling Vector and the provided other Vector.
func (vec Vector) Cross(other Vector) Vector {
	return Vector{
		X: vec.Y*other.Z - vec.Z*other.Y,
		Y: vec.Z*other.X - vec.X*other.Z,
		Z: vec.X*other.Y - vec.Y*other.X,
	}
}

// Invert returns a copy of the Vector with all components negated.
func (vec Vector) Invert() Vector {
	vec.X = -vec.X
	vec.Y = -vec.Y
	vec.Z = -vec.Z
	return vec
}

// Magnitude returns the length of the Vector.
func (vec Vector) Magnitude() float64 {
	return math.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

// MagnitudeSquared returns the squared length of the Vector; this is faster than Magnitude() as it avoids using math.Sqrt().
func (vec Vector) MagnitudeSquared() float64 {
	return vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z
}

// Unit returns a copy of the Vector, normalized (set to be of unit length).
// A zero-length Vector is returned unchanged.
func (vec Vector) Unit() Vector {
	l := vec.Magnitude()
	if l < 1e-8 {
		return vec
	}
	vec.X, vec.Y, vec.Z = vec.X/l, vec.Y/l, vec.Z/l
	return vec
}

// Lerp linearly interpolates from the calling Vector towards the other Vector by the percentage given.
func (vec Vector) Lerp(other Vector, percent float64) Vector {
	return Lerp(vec, other, percent)
}

// Equals returns true if the two Vectors are close enough in all values.
func (vec Vector) Equals(other Vector) bool {
	return vec.EqualsApprox(other, 1e-8)
}

// EqualsApprox returns true if every component of the two Vectors lies within epsilon of each other.
func (vec Vector) EqualsApprox(other Vector, epsilon float64) bool {
	return math.Abs(vec.X-other.X) <= epsilon &&
		math.Abs(vec.Y-other.Y) <= epsilon &&
		math.Abs(vec.Z-other.Z) <= epsilon
}

func (vec Vector) String() string {
	return "{" + strconv.FormatFloat(vec.X, 'f', -1, 64) + ", " +
		strconv.FormatFloat(vec.Y, 'f', -1, 64) + ", " +
		strconv.FormatFloat(vec.Z, 'f', -1, 64) + "}"
}
