package camera

import "github.com/Carmen-Shannon/oxy-core/common"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - OrbitControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
func WithElevation(elevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.elevation = elevation
	}
}

// WithTarget sets the look-at point.
func WithTarget(target common.Vec3) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - min: the closest allowed distance
//   - max: the farthest allowed distance
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius bounds
func WithRadiusBounds(min, max float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minRadius = min
		oc.maxRadius = max
	}
}

// WithElevationBounds sets the vertical angle limits in radians.
func WithElevationBounds(min, max float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minElevation = min
		oc.maxElevation = max
	}
}

// WithZoomSpeed sets the multiplier applied to Zoom deltas.
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the multiplier applied to Pan amounts.
func WithPanSpeed(speed float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.panSpeed = speed
	}
}
