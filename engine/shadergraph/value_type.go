package shadergraph

import "fmt"

// ValueType is the WGSL type of a node's output.
type ValueType int

const (
	TypeFloat ValueType = iota
	TypeVec3
	TypeVec4
	TypeMat3
	TypeMat4
)

// WGSL returns the WGSL spelling of the type.
func (t ValueType) WGSL() string {
	switch t {
	case TypeFloat:
		return "f32"
	case TypeVec3:
		return "vec3<f32>"
	case TypeVec4:
		return "vec4<f32>"
	case TypeMat3:
		return "mat3x3<f32>"
	case TypeMat4:
		return "mat4x4<f32>"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// String implements fmt.Stringer.
func (t ValueType) String() string {
	return t.WGSL()
}

func isVector(t ValueType) bool {
	return t == TypeVec3 || t == TypeVec4
}

// arithmeticType returns the result type of a component-wise add or subtract.
func arithmeticType(a, b ValueType) (ValueType, bool) {
	switch {
	case a == b:
		return a, true
	case a == TypeFloat && isVector(b):
		return b, true
	case b == TypeFloat && isVector(a):
		return a, true
	}
	return 0, false
}

// multiplyType returns the result type of a * b under WGSL rules.
func multiplyType(a, b ValueType) (ValueType, bool) {
	switch {
	case a == b:
		return a, true
	case a == TypeFloat:
		return b, true
	case b == TypeFloat:
		return a, true
	case a == TypeMat4 && b == TypeVec4, a == TypeVec4 && b == TypeMat4:
		return TypeVec4, true
	case a == TypeMat3 && b == TypeVec3, a == TypeVec3 && b == TypeMat3:
		return TypeVec3, true
	}
	return 0, false
}
