package scene

import (
	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

// Node is a transform in the scene hierarchy. Its local transform is described by TRS
// (translation, Euler XYZ rotation in radians, scale) and cached as a matrix; the world matrix is
// written by Scene.UpdateMatrices as parent.world × local.
type Node struct {
	parent    resource.Handle[Node]
	hasParent bool
	children  []resource.Handle[Node]

	position   common.Vec3
	rotation   common.Vec3
	scale      common.Vec3
	quaternion common.Quat

	local common.Mat4
	world common.Mat4
}

// NewNode returns a node at the origin with identity rotation and unit scale.
//
// Returns:
//   - Node: the node, not yet part of any scene
func NewNode() Node {
	return Node{
		scale:      common.Vec3{1, 1, 1},
		quaternion: common.IdentityQuat(),
		local:      common.IdentityMat4(),
		world:      common.IdentityMat4(),
	}
}

// Position returns the local translation.
func (n *Node) Position() common.Vec3 {
	return n.position
}

// SetPosition sets the local translation. The matrices update on the next UpdateMatrix.
func (n *Node) SetPosition(p common.Vec3) {
	n.position = p
}

// Rotation returns the local rotation as Euler XYZ angles in radians.
func (n *Node) Rotation() common.Vec3 {
	return n.rotation
}

// SetRotation sets the local rotation as Euler XYZ angles in radians.
func (n *Node) SetRotation(r common.Vec3) {
	n.rotation = r
}

// Scale returns the local scale.
func (n *Node) Scale() common.Vec3 {
	return n.scale
}

// SetScale sets the local scale.
func (n *Node) SetScale(s common.Vec3) {
	n.scale = s
}

// Quaternion returns the rotation quaternion derived by the last UpdateMatrix or SetMatrix.
func (n *Node) Quaternion() common.Quat {
	return n.quaternion
}

// LocalMatrix returns the cached local matrix.
func (n *Node) LocalMatrix() common.Mat4 {
	return n.local
}

// WorldMatrix returns the world matrix computed by the last Scene.UpdateMatrices.
func (n *Node) WorldMatrix() common.Mat4 {
	return n.world
}

// Parent returns the parent handle, if the node has one.
func (n *Node) Parent() (resource.Handle[Node], bool) {
	return n.parent, n.hasParent
}

// Children returns a copy of the child handles in insertion order.
func (n *Node) Children() []resource.Handle[Node] {
	return append([]resource.Handle[Node](nil), n.children...)
}

// UpdateMatrix recomputes the quaternion and local matrix from position, rotation and scale.
func (n *Node) UpdateMatrix() {
	n.quaternion = common.QuatFromEuler(n.rotation)
	common.Compose(n.local[:], n.position, n.quaternion, n.scale)
}

// SetMatrix replaces the local matrix and decomposes it back into position, rotation and scale.
// A matrix with a zero scale axis decomposes to the identity rotation.
//
// Parameters:
//   - m: the new local matrix, column-major
func (n *Node) SetMatrix(m common.Mat4) {
	n.local = m
	n.position, n.quaternion, n.scale = common.Decompose(m[:])
	n.rotation = common.EulerFromQuat(n.quaternion)
}
