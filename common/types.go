// package common contains the plain math types and helpers shared by every engine package. They are not interface-wrapped
// structs, just fixed-size arrays that map directly onto GPU-side vector and matrix layouts.
package common

// Vec3 is a three component float vector (x, y, z).
type Vec3 [3]float32

// Vec4 is a four component float vector (x, y, z, w), also used for RGBA colors.
type Vec4 [4]float32

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// Mat3 is a 3x3 matrix stored in column-major order.
type Mat3 [9]float32

// Mat4 is a 4x4 matrix stored in column-major order (OpenGL/WebGPU convention).
type Mat4 [16]float32

// Mat3GPU is a 3x3 matrix laid out the way WGSL stores mat3x3<f32>: three columns,
// each padded to four floats.
type Mat3GPU [12]float32

// IdentityQuat returns the identity rotation.
//
// Returns:
//   - Quat: the quaternion (0, 0, 0, 1)
func IdentityQuat() Quat {
	return Quat{0, 0, 0, 1}
}

// IdentityMat4 returns a 4x4 identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func IdentityMat4() Mat4 {
	var m Mat4
	Identity(m[:])
	return m
}

// IdentityMat3 returns a 3x3 identity matrix.
//
// Returns:
//   - Mat3: the identity matrix
func IdentityMat3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}
