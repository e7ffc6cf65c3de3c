package camera

import "github.com/go-gl/mathgl/mgl32"

// MoveForward moves the camera d units along its look direction.
func MoveForward(cam Camera, d float32) {
	cam.SetPosition(cam.Position().Add(cam.AxisZ().Mul(d)))
}

// MoveRight moves the camera d units along its right axis.
func MoveRight(cam Camera, d float32) {
	cam.SetPosition(cam.Position().Add(cam.AxisX().Mul(d)))
}

// MoveUp moves the camera d units along its up axis.
func MoveUp(cam Camera, d float32) {
	cam.SetPosition(cam.Position().Add(cam.AxisY().Mul(d)))
}

// LookRight turns the look direction by deg degrees about the camera up axis.
func LookRight(cam Camera, deg float32) {
	q := mgl32.QuatRotate(mgl32.DegToRad(deg), cam.AxisY())
	cam.SetLookTo(q.Rotate(cam.AxisZ()))
}

// LookUp tilts the look direction by deg degrees about the camera right axis. Positive values
// tilt the view up.
func LookUp(cam Camera, deg float32) {
	q := mgl32.QuatRotate(mgl32.DegToRad(-deg), cam.AxisX())
	cam.SetLookTo(q.Rotate(cam.AxisZ()))
}
