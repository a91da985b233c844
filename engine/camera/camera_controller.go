package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-core/common"
)

// orbitController is the implementation of the OrbitController interface.
type orbitController struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3

	// spherical offset from target
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	zoomSpeed float32
	panSpeed  float32
}

// OrbitController moves a camera around a target point using spherical coordinates. Cameras have
// no transform of their own, so the controller produces the local matrix of the node the camera is
// attached to; pass Matrix to scene.Node.SetMatrix after each change.
type OrbitController interface {
	// Position returns the world-space eye position.
	Position() common.Vec3

	// Target returns the point the camera looks at.
	Target() common.Vec3

	// SetTarget moves the pivot and keeps the spherical offset.
	//
	// Parameters:
	//   - target: the new look-at point
	SetTarget(target common.Vec3)

	// Orbit rotates the eye around the target. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle around +Y, in radians
	//   - dElevation: change of the vertical angle from the horizontal plane, in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the eye toward the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates eye and target together along the camera's local axes.
	//
	// Parameters:
	//   - right: amount along the right axis
	//   - up: amount along the up axis
	//   - forward: amount along the view direction
	Pan(right, up, forward float32)

	// Radius returns the distance from the target.
	Radius() float32

	// SetRadius sets the distance from the target, clamped to the configured bounds.
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle in radians; 0 places the eye on +Z of the target.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle in radians.
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle in radians.
	Elevation() float32

	// SetElevation sets the vertical angle, clamped to the configured bounds.
	SetElevation(elevation float32)

	// Matrix returns the camera-to-world matrix: the eye position with the camera's -Z axis facing
	// the target and +Y as close to world up as possible.
	//
	// Returns:
	//   - common.Mat4: the local matrix for the camera node
	Matrix() common.Mat4
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an OrbitController looking at the origin from 10 units along +Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       10,
		minRadius:    0.1,
		maxRadius:    DefaultFar,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,
		zoomSpeed:    1,
		panSpeed:     1,
	}
	for _, option := range options {
		option(oc)
	}
	oc.radius = clampf(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = clampf(oc.elevation, oc.minElevation, oc.maxElevation)
	oc.updatePosition()
	return oc
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// updatePosition recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	sinElev, cosElev := math32.Sincos(oc.elevation)
	sinAzim, cosAzim := math32.Sincos(oc.azimuth)
	oc.position = oc.target.Add(common.Vec3{
		oc.radius * cosElev * sinAzim,
		oc.radius * sinElev,
		oc.radius * cosElev * cosAzim,
	})
}

// axes returns the camera's right, up and backward unit vectors. Caller must hold the mutex.
func (oc *orbitController) axes() (right, up, back common.Vec3, ok bool) {
	back = oc.position.Sub(oc.target)
	l := math32.Sqrt(back.Dot(back))
	if l < 1e-8 {
		return right, up, back, false
	}
	back = back.Scale(1 / l)

	right = common.Vec3{0, 1, 0}.Cross(back)
	rl := math32.Sqrt(right.Dot(right))
	if rl < 1e-8 {
		return right, up, back, false
	}
	right = right.Scale(1 / rl)
	up = back.Cross(right)
	return right, up, back, true
}

func (oc *orbitController) Position() common.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitController) Target() common.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target common.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.updatePosition()
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += dAzimuth
	oc.elevation = clampf(oc.elevation+dElevation, oc.minElevation, oc.maxElevation)
	oc.updatePosition()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clampf(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
	oc.updatePosition()
}

func (oc *orbitController) Pan(right, up, forward float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	r, u, b, ok := oc.axes()
	if !ok {
		return
	}
	offset := r.Scale(right * oc.panSpeed).
		Add(u.Scale(up * oc.panSpeed)).
		Add(b.Scale(-forward * oc.panSpeed))
	oc.target = oc.target.Add(offset)
	oc.position = oc.position.Add(offset)
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) SetRadius(radius float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = clampf(radius, oc.minRadius, oc.maxRadius)
	oc.updatePosition()
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) SetAzimuth(azimuth float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth = azimuth
	oc.updatePosition()
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) SetElevation(elevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation = clampf(elevation, oc.minElevation, oc.maxElevation)
	oc.updatePosition()
}

func (oc *orbitController) Matrix() common.Mat4 {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	m := common.IdentityMat4()
	right, up, back, ok := oc.axes()
	if ok {
		copy(m[0:3], right[:])
		copy(m[4:7], up[:])
		copy(m[8:11], back[:])
	}
	copy(m[12:15], oc.position[:])
	return m
}
