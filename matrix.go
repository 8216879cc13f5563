package rig3d

import (
	"math"
	"strconv"
)

// Matrix4 represents a 4x4 matrix for translation, scale, and rotation. A Matrix4 in rig3d follows the column-vector
// convention and is indexed as matrix[row][column], so the translation lives in the last column (matrix[0][3], matrix[1][3], matrix[2][3]).
// Because of this, A.Mult(B) applied to a point transforms it by B first, then A; a child Bone's world transform is
// therefore parentWorld.Mult(childLocal).
type Matrix4 [4][4]float64

// NewMatrix4 returns a new identity Matrix4.
func NewMatrix4() Matrix4 {

	mat := Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	return mat

}

// NewMatrix4FromColumnMajor creates a Matrix4 out of 16 floats laid out column by column, which is how glTF
// and most GPU APIs store matrices.
func NewMatrix4FromColumnMajor(floats [16]float64) Matrix4 {
	mat := Matrix4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			mat[row][col] = floats[col*4+row]
		}
	}
	return mat
}

// NewMatrix4Translate returns a new identity Matrix4, but with the x, y, and z translation components set as provided.
func NewMatrix4Translate(x, y, z float64) Matrix4 {
	mat := NewMatrix4()
	mat[0][3] = x
	mat[1][3] = y
	mat[2][3] = z
	return mat
}

// NewMatrix4Scale returns a new identity Matrix4, but with the scale components set as provided. 1, 1, 1 is the default.
func NewMatrix4Scale(x, y, z float64) Matrix4 {
	mat := NewMatrix4()
	mat[0][0] = x
	mat[1][1] = y
	mat[2][2] = z
	return mat
}

// NewMatrix4Rotate returns a new Matrix4 designed to rotate by the angle given (in radians) along the axis given [x, y, z].
// This rotation works as though you pierced the object utilizing the matrix through by the axis, and then rotated it
// counter-clockwise by the angle in radians.
func NewMatrix4Rotate(x, y, z, angle float64) Matrix4 {

	// Default to spinning on +Y axis if there is no valid axis
	if x == 0 && y == 0 && z == 0 {
		y = 1
	}

	mat := NewMatrix4()
	axis := Vector{X: x, Y: y, Z: z}.Unit()
	s := math.Sin(angle)
	c := math.Cos(angle)
	m := 1 - c

	mat[0][0] = m*axis.X*axis.X + c
	mat[0][1] = m*axis.X*axis.Y - axis.Z*s
	mat[0][2] = m*axis.X*axis.Z + axis.Y*s

	mat[1][0] = m*axis.X*axis.Y + axis.Z*s
	mat[1][1] = m*axis.Y*axis.Y + c
	mat[1][2] = m*axis.Y*axis.Z - axis.X*s

	mat[2][0] = m*axis.X*axis.Z - axis.Y*s
	mat[2][1] = m*axis.Y*axis.Z + axis.X*s
	mat[2][2] = m*axis.Z*axis.Z + c

	return mat

}

// NewMatrix4RotateFromQuaternion returns a rotation Matrix4 built from the Quaternion given. The Quaternion is normalized
// first, so componentwise-lerped rotations still produce a pure rotation.
func NewMatrix4RotateFromQuaternion(quat Quaternion) Matrix4 {

	q := quat.Normalized()

	x, y, z, w := q.X, q.Y, q.Z, q.W
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	mat := NewMatrix4()

	mat[0][0] = 1 - 2*(yy+zz)
	mat[0][1] = 2 * (xy - wz)
	mat[0][2] = 2 * (xz + wy)

	mat[1][0] = 2 * (xy + wz)
	mat[1][1] = 1 - 2*(xx+zz)
	mat[1][2] = 2 * (yz - wx)

	mat[2][0] = 2 * (xz - wy)
	mat[2][1] = 2 * (yz + wx)
	mat[2][2] = 1 - 2*(xx+yy)

	return mat

}

// NewMatrix4TRS composes Translate(position) * Rotate(rotation) * Scale(scale); applied to a point, the scale happens
// first, then the rotation, then the translation.
func NewMatrix4TRS(position Vector, rotation Quaternion, scale Vector) Matrix4 {
	return NewMatrix4Translate(position.X, position.Y, position.Z).
		Mult(NewMatrix4RotateFromQuaternion(rotation)).
		Mult(NewMatrix4Scale(scale.X, scale.Y, scale.Z))
}

// Mult multiplies a Matrix4 by another provided Matrix4 (matrix * other) - this effectively combines them.
func (matrix Matrix4) Mult(other Matrix4) Matrix4 {

	var newMat Matrix4

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			newMat[row][col] = matrix[row][0]*other[0][col] +
				matrix[row][1]*other[1][col] +
				matrix[row][2]*other[2][col] +
				matrix[row][3]*other[3][col]
		}
	}

	return newMat

}

// Add returns the element-wise sum of the two matrices.
func (matrix Matrix4) Add(other Matrix4) Matrix4 {
	for row := range matrix {
		for col := range matrix[row] {
			matrix[row][col] += other[row][col]
		}
	}
	return matrix
}

// ScaleByScalar returns the Matrix4 with every element multiplied by scalar.
func (matrix Matrix4) ScaleByScalar(scalar float64) Matrix4 {
	for row := range matrix {
		for col := range matrix[row] {
			matrix[row][col] *= scalar
		}
	}
	return matrix
}

// MultVec multiplies the point provided by the Matrix4, giving a vector that has been rotated, scaled, or translated as desired.
func (matrix Matrix4) MultVec(vect Vector) Vector {

	return Vector{
		X: matrix[0][0]*vect.X + matrix[0][1]*vect.Y + matrix[0][2]*vect.Z + matrix[0][3],
		Y: matrix[1][0]*vect.X + matrix[1][1]*vect.Y + matrix[1][2]*vect.Z + matrix[1][3],
		Z: matrix[2][0]*vect.X + matrix[2][1]*vect.Y + matrix[2][2]*vect.Z + matrix[2][3],
	}

}

// Translation returns the translation component of the Matrix4.
func (matrix Matrix4) Translation() Vector {
	return Vector{X: matrix[0][3], Y: matrix[1][3], Z: matrix[2][3]}
}

// Decompose splits the Matrix4 into the position, rotation, and scale that NewMatrix4TRS would rebuild it from.
// Shear can't be represented and is lost. A mirrored matrix gets a negative X scale.
func (matrix Matrix4) Decompose() (position Vector, rotation Quaternion, scale Vector) {

	position = matrix.Translation()

	scale = Vector{
		X: math.Sqrt(matrix[0][0]*matrix[0][0] + matrix[1][0]*matrix[1][0] + matrix[2][0]*matrix[2][0]),
		Y: math.Sqrt(matrix[0][1]*matrix[0][1] + matrix[1][1]*matrix[1][1] + matrix[2][1]*matrix[2][1]),
		Z: math.Sqrt(matrix[0][2]*matrix[0][2] + matrix[1][2]*matrix[1][2] + matrix[2][2]*matrix[2][2]),
	}

	det := matrix[0][0]*(matrix[1][1]*matrix[2][2]-matrix[1][2]*matrix[2][1]) -
		matrix[0][1]*(matrix[1][0]*matrix[2][2]-matrix[1][2]*matrix[2][0]) +
		matrix[0][2]*(matrix[1][0]*matrix[2][1]-matrix[1][1]*matrix[2][0])

	if det < 0 {
		scale.X = -scale.X
	}

	var r [3][3]float64
	for col, s := range [3]float64{scale.X, scale.Y, scale.Z} {
		if s == 0 {
			return position, NewQuaternionIdentity(), scale
		}
		for row := 0; row < 3; row++ {
			r[row][col] = matrix[row][col] / s
		}
	}

	trace := r[0][0] + r[1][1] + r[2][2]

	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		rotation = Quaternion{X: (r[2][1] - r[1][2]) * s, Y: (r[0][2] - r[2][0]) * s, Z: (r[1][0] - r[0][1]) * s, W: 0.25 / s}
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		rotation = Quaternion{X: 0.25 * s, Y: (r[0][1] + r[1][0]) / s, Z: (r[0][2] + r[2][0]) / s, W: (r[2][1] - r[1][2]) / s}
	case r[1][1] > r[2][2]:
		s := 2 * math.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		rotation = Quaternion{X: (r[0][1] + r[1][0]) / s, Y: 0.25 * s, Z: (r[1][2] + r[2][1]) / s, W: (r[0][2] - r[2][0]) / s}
	default:
		s := 2 * math.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		rotation = Quaternion{X: (r[0][2] + r[2][0]) / s, Y: (r[1][2] + r[2][1]) / s, Z: 0.25 * s, W: (r[1][0] - r[0][1]) / s}
	}

	return position, rotation.Normalized(), scale

}

// Inverted returns an inverted version of the Matrix4. This code was obtained from
// https://stackoverflow.com/questions/1148309/inverting-a-4x4-matrix.
// A singular Matrix4 has no inverse; in that case the zero Matrix4 is returned.
func (matrix Matrix4) Inverted() Matrix4 {

	var A2323 = matrix[2][2]*matrix[3][3] - matrix[2][3]*matrix[3][2]
	var A1323 = matrix[2][1]*matrix[3][3] - matrix[2][3]*matrix[3][1]
	var A1223 = matrix[2][1]*matrix[3][2] - matrix[2][2]*matrix[3][1]
	var A0323 = matrix[2][0]*matrix[3][3] - matrix[2][3]*matrix[3][0]
	var A0223 = matrix[2][0]*matrix[3][2] - matrix[2][2]*matrix[3][0]
	var A0123 = matrix[2][0]*matrix[3][1] - matrix[2][1]*matrix[3][0]
	var A2313 = matrix[1][2]*matrix[3][3] - matrix[1][3]*matrix[3][2]
	var A1313 = matrix[1][1]*matrix[3][3] - matrix[1][3]*matrix[3][1]
	var A1213 = matrix[1][1]*matrix[3][2] - matrix[1][2]*matrix[3][1]
	var A2312 = matrix[1][2]*matrix[2][3] - matrix[1][3]*matrix[2][2]
	var A1312 = matrix[1][1]*matrix[2][3] - matrix[1][3]*matrix[2][1]
	var A1212 = matrix[1][1]*matrix[2][2] - matrix[1][2]*matrix[2][1]
	var A0313 = matrix[1][0]*matrix[3][3] - matrix[1][3]*matrix[3][0]
	var A0213 = matrix[1][0]*matrix[3][2] - matrix[1][2]*matrix[3][0]
	var A0312 = matrix[1][0]*matrix[2][3] - matrix[1][3]*matrix[2][0]
	var A0212 = matrix[1][0]*matrix[2][2] - matrix[1][2]*matrix[2][0]
	var A0113 = matrix[1][0]*matrix[3][1] - matrix[1][1]*matrix[3][0]
	var A0112 = matrix[1][0]*matrix[2][1] - matrix[1][1]*matrix[2][0]

	var det = matrix[0][0]*(matrix[1][1]*A2323-matrix[1][2]*A1323+matrix[1][3]*A1223) -
		matrix[0][1]*(matrix[1][0]*A2323-matrix[1][2]*A0323+matrix[1][3]*A0223) +
		matrix[0][2]*(matrix[1][0]*A1323-matrix[1][1]*A0323+matrix[1][3]*A0123) -
		matrix[0][3]*(matrix[1][0]*A1223-matrix[1][1]*A0223+matrix[1][2]*A0123)

	if det == 0 {
		return Matrix4{}
	}

	det = 1 / det

	var m Matrix4

	m[0][0] = det * (matrix[1][1]*A2323 - matrix[1][2]*A1323 + matrix[1][3]*A1223)
	m[0][1] = det * -(matrix[0][1]*A2323 - matrix[0][2]*A1323 + matrix[0][3]*A1223)
	m[0][2] = det * (matrix[0][1]*A2313 - matrix[0][2]*A1313 + matrix[0][3]*A1213)
	m[0][3] = det * -(matrix[0][1]*A2312 - matrix[0][2]*A1312 + matrix[0][3]*A1212)
	m[1][0] = det * -(matrix[1][0]*A2323 - matrix[1][2]*A0323 + matrix[1][3]*A0223)
	m[1][1] = det * (matrix[0][0]*A2323 - matrix[0][2]*A0323 + matrix[0][3]*A0223)
	m[1][2] = det * -(matrix[0][0]*A2313 - matrix[0][2]*A0313 + matrix[0][3]*A0213)
	m[1][3] = det * (matrix[0][0]*A2312 - matrix[0][2]*A0312 + matrix[0][3]*A0212)
	m[2][0] = det * (matrix[1][0]*A1323 - matrix[1][1]*A0323 + matrix[1][3]*A0123)
	m[2][1] = det * -(matrix[0][0]*A1323 - matrix[0][1]*A0323 + matrix[0][3]*A0123)
	m[2][2] = det * (matrix[0][0]*A1313 - matrix[0][1]*A0313 + matrix[0][3]*A0113)
	m[2][3] = det * -(matrix[0][0]*A1312 - matrix[0][1]*A0312 + matrix[0][3]*A0112)
	m[3][0] = det * -(matrix[1][0]*A1223 - matrix[1][1]*A0223 + matrix[1][2]*A0123)
	m[3][1] = det * (matrix[0][0]*A1223 - matrix[0][1]*A0223 + matrix[0][2]*A0123)
	m[3][2] = det * -(matrix[0][0]*A1213 - matrix[0][1]*A0213 + matrix[0][2]*A0113)
	m[3][3] = det * (matrix[0][0]*A1212 - matrix[0][1]*A0212 + matrix[0][2]*A0112)

	return m

}

// Equals returns true if the matrix equals the same values in the provided Other Matrix4, within a small epsilon.
func (matrix Matrix4) Equals(other Matrix4) bool {
	return matrix.EqualsApprox(other, 0.0001)
}

// EqualsApprox returns true if every element of the two matrices lies within epsilon of each other.
func (matrix Matrix4) EqualsApprox(other Matrix4, epsilon float64) bool {
	for i := 0; i < len(matrix); i++ {
		for j := 0; j < len(matrix[i]); j++ {
			if math.Abs(matrix[i][j]-other[i][j]) > epsilon {
				return false
			}
		}
	}
	return true
}

var identityMatrix = NewMatrix4()

// IsIdentity returns true if the matrix is an unmodified identity matrix.
func (matrix Matrix4) IsIdentity() bool {
	return matrix.Equals(identityMatrix)
}

// ColumnMajor returns the Matrix4's 16 values laid out column by column, ready for upload to a GPU buffer.
func (matrix Matrix4) ColumnMajor() [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col*4+row] = float32(matrix[row][col])
		}
	}
	return out
}

func (matrix Matrix4) String() string {
	s := "{"
	for i, y := range matrix {
		for _, x := range y {
			s += strconv.FormatFloat(x, 'f', -1, 64) + ", "
		}
		if i < len(matrix)-1 {
			s += "\n"
		}
	}
	s += "}"
	return s
}
