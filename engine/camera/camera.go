package camera

import (
	"github.com/Carmen-Shannon/oxy-core/common"
)

type cameraImpl struct {
	fov    float32
	aspect float32
	near   float32
	far    float32

	projectionMatrix        common.Mat4
	inverseProjectionMatrix common.Mat4
}

// Camera defines the interface for a perspective camera. The camera only owns its projection; its
// position and orientation come from the scene node it is attached to, whose inverse world matrix is
// the view matrix.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// InverseProjectionMatrix returns the inverse of the current projection matrix (column-major).
	// If the projection is singular the previous inverse is kept.
	//
	// Returns:
	//   - common.Mat4: the inverse projection matrix
	InverseProjectionMatrix() common.Mat4

	// SetAspect sets the aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the new aspect ratio (width / height)
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetClipPlanes sets the near and far plane distances and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance (> 0)
	//   - far: far plane distance (> near)
	SetClipPlanes(near, far float32)

	// Uniform returns the GPU representation of the camera uniform buffer.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready to marshal
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new perspective Camera configured with the provided options.
// Defaults: 60° field of view, aspect 1, near 0.1, far 1000.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: a new Camera instance
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		fov:                     DefaultFov,
		aspect:                  1,
		near:                    DefaultNear,
		far:                     DefaultFar,
		inverseProjectionMatrix: common.IdentityMat4(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateProjection()
	return c
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	return c.projectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() common.Mat4 {
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.near = near
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	return GPUCameraUniform{ProjectionMatrix: c.projectionMatrix}
}

// updateProjection recomputes the projection and its inverse. A singular projection keeps the
// previous inverse.
func (c *cameraImpl) updateProjection() {
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Invert4(c.inverseProjectionMatrix[:], c.projectionMatrix[:])
}
