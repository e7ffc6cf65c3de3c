package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a DirectionalLight during construction.
type LightBuilderOption func(*directionalLight)

// WithPosition is an option builder that sets the world-space origin of the light volume.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a directionalLight
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that sets the direction of the light. The direction is kept
// as given and normalized when the view matrix is built; a zero vector is ignored.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a directionalLight
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.SetDirection(mgl32.Vec3{x, y, z})
	}
}

// WithColor is an option builder that sets the light flux.
//
// Parameters:
//   - r: the red component
//   - g: the green component
//   - b: the blue component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a directionalLight
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithExtent is an option builder that sets the cross-section of the light volume.
//
// Parameters:
//   - width: the volume width
//   - height: the volume height
//
// Returns:
//   - LightBuilderOption: a function that applies the extent option to a directionalLight
func WithExtent(width, height float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.width = width
		l.height = height
	}
}

// WithAffectedDepth is an option builder that sets how far the light volume extends.
//
// Parameters:
//   - depth: the volume depth
//
// Returns:
//   - LightBuilderOption: a function that applies the depth option to a directionalLight
func WithAffectedDepth(depth float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.affectedDepth = depth
	}
}

// WithEpsilon is an option builder that sets the near-plane distance in front of the position.
//
// Parameters:
//   - epsilon: the near-plane distance
//
// Returns:
//   - LightBuilderOption: a function that applies the epsilon option to a directionalLight
func WithEpsilon(epsilon float32) LightBuilderOption {
	return func(l *directionalLight) {
		l.epsilon = epsilon
	}
}
