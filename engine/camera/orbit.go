package camera

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Polar angle limits keep the orbit away from the poles, where the view matrix degenerates.
const (
	minPolar = float32(0.1)
	maxPolar = math32.Pi - 0.1
)

// SetOrbitWithOffset moves the camera on a sphere around focus and turns it to face focus.
// The camera offset from focus is converted to spherical coordinates, the deltas are applied,
// the radius is kept at or above minR, the azimuth wraps into [0, 2π) and the polar angle is
// clamped to [0.1, π-0.1].
//
// Parameters:
//   - cam: the camera to move
//   - focus: the orbit centre
//   - deltaR: the change of radius
//   - deltaPhiDeg: the change of azimuth in degrees
//   - deltaThetaDeg: the change of polar angle in degrees
//   - minR: the smallest allowed radius
func SetOrbitWithOffset(cam Camera, focus mgl32.Vec3, deltaR, deltaPhiDeg, deltaThetaDeg, minR float32) {
	d := cam.Position().Sub(focus)
	r, phi, theta := common.ToSpherical(d[0], d[1], d[2])
	if r == 0 {
		// the direction is undefined at the focus; start from straight ahead of it
		phi, theta = -math32.Pi/2, math32.Pi/2
	}

	r = max(minR, r+deltaR)
	phi = common.Wrap(phi+mgl32.DegToRad(deltaPhiDeg), 0, 2*math32.Pi)
	theta = common.Clamp(theta+mgl32.DegToRad(deltaThetaDeg), minPolar, maxPolar)

	x, y, z := common.ToCartesian(r, phi, theta)
	cam.SetPosition(focus.Add(mgl32.Vec3{x, y, z}))
	cam.FocusAtPoint(focus)
}
