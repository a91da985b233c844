package common

import (
	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order. Result: out = a * b.
// out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective creates a perspective projection matrix for the WebGPU clip space
// depth range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant == 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det
	var r [16]float32

	r[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	r[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	r[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	r[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	r[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	r[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	r[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	r[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	r[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	r[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	r[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	r[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	r[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	r[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	r[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	r[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	copy(out, r[:])
	return true
}

// Determinant3 returns the determinant of the upper-left 3x3 block of a 4x4
// column-major matrix.
//
// Parameters:
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - float32: the determinant of the rotation/scale block
func Determinant3(m []float32) float32 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}

// NormalMatrix derives the normal matrix (inverse-transpose of the upper-left 3x3
// block) of a 4x4 column-major matrix. A singular block leaves out unchanged and
// returns false.
//
// Parameters:
//   - out: destination 3x3 column-major slice (must be at least 9 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the normal matrix was written, false if the block is singular
func NormalMatrix(out, m []float32) bool {
	a00, a01, a02 := m[0], m[1], m[2]
	a10, a11, a12 := m[4], m[5], m[6]
	a20, a21, a22 := m[8], m[9], m[10]

	b01 := a22*a11 - a12*a21
	b11 := -a22*a10 + a12*a20
	b21 := a21*a10 - a11*a20

	det := a00*b01 + a01*b11 + a02*b21
	if det == 0 {
		return false
	}
	inv := 1.0 / det

	// out holds the inverse; transposing in place gives the normal matrix
	out[0] = b01 * inv
	out[1] = (-a22*a01 + a02*a21) * inv
	out[2] = (a12*a01 - a02*a11) * inv
	out[3] = b11 * inv
	out[4] = (a22*a00 - a02*a20) * inv
	out[5] = (-a12*a00 + a02*a10) * inv
	out[6] = b21 * inv
	out[7] = (-a21*a00 + a01*a20) * inv
	out[8] = (a11*a00 - a01*a10) * inv

	out[1], out[3] = out[3], out[1]
	out[2], out[6] = out[6], out[2]
	out[5], out[7] = out[7], out[5]
	return true
}

// Mat3ToGPU pads a 3x3 column-major matrix to the WGSL mat3x3<f32> layout,
// where each column occupies four floats.
//
// Parameters:
//   - m: source 3x3 matrix (9 elements, column-major)
//
// Returns:
//   - Mat3GPU: the padded 12-float representation
func Mat3ToGPU(m []float32) Mat3GPU {
	return Mat3GPU{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
	}
}

// QuatFromEuler converts Euler angles (radians, XYZ order) to a quaternion.
//
// Parameters:
//   - e: rotation about X, Y and Z in radians
//
// Returns:
//   - Quat: the equivalent unit quaternion
func QuatFromEuler(e Vec3) Quat {
	c1, s1 := math32.Cos(e[0]/2), math32.Sin(e[0]/2)
	c2, s2 := math32.Cos(e[1]/2), math32.Sin(e[1]/2)
	c3, s3 := math32.Cos(e[2]/2), math32.Sin(e[2]/2)

	return Quat{
		s1*c2*c3 + c1*s2*s3,
		c1*s2*c3 - s1*c2*s3,
		c1*c2*s3 + s1*s2*c3,
		c1*c2*c3 - s1*s2*s3,
	}
}

// QuatFromRotationMatrix extracts a quaternion from the upper-left 3x3 block of
// a 4x4 column-major matrix. The block must be a pure rotation (unscaled).
// The branch is chosen by the trace or the largest diagonal term to avoid
// cancellation.
//
// Parameters:
//   - m: rotation matrix (16 elements, column-major)
//
// Returns:
//   - Quat: the extracted quaternion
func QuatFromRotationMatrix(m []float32) Quat {
	m11, m12, m13 := m[0], m[4], m[8]
	m21, m22, m23 := m[1], m[5], m[9]
	m31, m32, m33 := m[2], m[6], m[10]

	trace := m11 + m22 + m33

	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1.0)
		return Quat{(m32 - m23) * s, (m13 - m31) * s, (m21 - m12) * s, 0.25 / s}
	case m11 > m22 && m11 > m33:
		s := 2.0 * math32.Sqrt(1.0+m11-m22-m33)
		return Quat{0.25 * s, (m12 + m21) / s, (m13 + m31) / s, (m32 - m23) / s}
	case m22 > m33:
		s := 2.0 * math32.Sqrt(1.0+m22-m11-m33)
		return Quat{(m12 + m21) / s, 0.25 * s, (m23 + m32) / s, (m13 - m31) / s}
	default:
		s := 2.0 * math32.Sqrt(1.0+m33-m11-m22)
		return Quat{(m13 + m31) / s, (m23 + m32) / s, 0.25 * s, (m21 - m12) / s}
	}
}

// EulerFromQuat converts a unit quaternion to Euler angles (radians, XYZ order).
// Near the Y = ±90° singularity the Z angle is fixed at zero.
//
// Parameters:
//   - q: unit quaternion
//
// Returns:
//   - Vec3: rotation about X, Y and Z in radians
func EulerFromQuat(q Quat) Vec3 {
	var m Mat4
	Compose(m[:], Vec3{}, q, Vec3{1, 1, 1})

	m11, m12, m13 := m[0], m[4], m[8]
	m22, m23 := m[5], m[9]
	m32, m33 := m[6], m[10]

	y := math32.Asin(clamp(m13, -1, 1))
	if math32.Abs(m13) < 0.9999999 {
		return Vec3{math32.Atan2(-m23, m33), y, math32.Atan2(-m12, m11)}
	}
	return Vec3{math32.Atan2(m32, m22), y, 0}
}

// Compose builds a transform matrix from a translation, rotation and scale. Scale
// and rotation are applied in the local frame, then the translation, so the result
// maps local-space points into the parent space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - p: translation
//   - q: unit rotation quaternion
//   - s: per-axis scale
func Compose(out []float32, p Vec3, q Quat, s Vec3) {
	x, y, z, w := q[0], q[1], q[2], q[3]
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	out[0] = (1 - (yy + zz)) * s[0]
	out[1] = (xy + wz) * s[0]
	out[2] = (xz - wy) * s[0]
	out[3] = 0

	out[4] = (xy - wz) * s[1]
	out[5] = (1 - (xx + zz)) * s[1]
	out[6] = (yz + wx) * s[1]
	out[7] = 0

	out[8] = (xz + wy) * s[2]
	out[9] = (yz - wx) * s[2]
	out[10] = (1 - (xx + yy)) * s[2]
	out[11] = 0

	out[12] = p[0]
	out[13] = p[1]
	out[14] = p[2]
	out[15] = 1
}

// Decompose splits a transform matrix into translation, rotation and scale. It is
// the inverse of Compose for proper (non-reflective) transforms. A negative
// determinant flips the sign of the whole scale vector so the remaining rotation
// stays proper. If any scale component is zero the rotation cannot be recovered
// and the identity quaternion is returned for it.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - Vec3: translation
//   - Quat: rotation
//   - Vec3: scale
func Decompose(m []float32) (Vec3, Quat, Vec3) {
	pos := Vec3{m[12], m[13], m[14]}
	scale := Vec3{
		math32.Sqrt(m[0]*m[0] + m[1]*m[1] + m[2]*m[2]),
		math32.Sqrt(m[4]*m[4] + m[5]*m[5] + m[6]*m[6]),
		math32.Sqrt(m[8]*m[8] + m[9]*m[9] + m[10]*m[10]),
	}
	if Determinant3(m) < 0 {
		scale = scale.Scale(-1)
	}
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return pos, IdentityQuat(), scale
	}

	var r Mat4
	copy(r[:], m[:16])
	for col := 0; col < 3; col++ {
		inv := 1.0 / scale[col]
		r[col*4] *= inv
		r[col*4+1] *= inv
		r[col*4+2] *= inv
	}
	return pos, QuatFromRotationMatrix(r[:]), scale
}

// TransformPoint applies a 4x4 column-major transform to a point (w = 1).
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//   - p: the point to transform
//
// Returns:
//   - Vec3: the transformed point
func TransformPoint(m []float32, p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
