package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the world position of the camera.
//
// Parameters:
//   - p: the world position
//
// Returns:
//   - CameraBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithLookTo sets the look direction of the camera. Zero vectors are ignored.
//
// Parameters:
//   - d: the look direction
//
// Returns:
//   - CameraBuilderOption: functional option to set the look direction
func WithLookTo(d mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		if d.LenSqr() > 0 {
			c.lookTo = d
		}
	}
}

// WithUp sets the approximate up vector of the camera.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: functional option to set the up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFovDeg sets the vertical field of view in degrees.
//
// Parameters:
//   - deg: the field of view
//
// Returns:
//   - CameraBuilderOption: functional option to set the field of view
func WithFovDeg(deg float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fovDeg = deg
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: functional option to set the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far plane distances.
//
// Parameters:
//   - near: the near distance
//   - far: the far distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
