package common

import "github.com/chewxy/math32"

// Spherical coordinates use +Y as the polar axis. phi is the azimuth measured in the XZ plane
// from +X towards +Z, theta is the polar angle measured from +Y.

// ToCartesian converts spherical coordinates to cartesian coordinates.
//
// Parameters:
//   - r: the radius
//   - phi: the azimuth in radians
//   - theta: the polar angle in radians
//
// Returns:
//   - x, y, z: the cartesian coordinates
func ToCartesian(r, phi, theta float32) (x, y, z float32) {
	sinTheta := math32.Sin(theta)
	x = r * sinTheta * math32.Cos(phi)
	y = r * math32.Cos(theta)
	z = r * sinTheta * math32.Sin(phi)
	return x, y, z
}

// ToSpherical converts cartesian coordinates to spherical coordinates.
// The origin is degenerate: r is 0 and theta is NaN.
//
// Parameters:
//   - x, y, z: the cartesian coordinates
//
// Returns:
//   - r: the radius
//   - phi: the azimuth in radians, in (-pi, pi]
//   - theta: the polar angle in radians, in [0, pi]
func ToSpherical(x, y, z float32) (r, phi, theta float32) {
	r = math32.Sqrt(x*x + y*y + z*z)
	phi = math32.Atan2(z, x)
	theta = math32.Acos(y / r)
	return r, phi, theta
}
