package camera

import (
	"runtime"
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, DefaultPosition, c.Position())
	assert.Equal(t, DefaultLookTo, c.LookTo())
	assert.Equal(t, DefaultUp, c.Up())
	assert.Equal(t, float32(60), c.FovDeg())
	near, far := c.ClipPlanes()
	assert.Equal(t, float32(1), near)
	assert.Equal(t, float32(100), far)
}

func TestCamera_Axes(t *testing.T) {
	c := NewCamera()
	assertVecInDelta(t, mgl32.Vec3{0, 0, 1}, c.AxisZ(), 1e-6)
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.AxisX(), 1e-6)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, c.AxisY(), 1e-6)
}

func TestCamera_SetLookToIgnoresZero(t *testing.T) {
	c := NewCamera()
	c.SetLookTo(mgl32.Vec3{})
	assert.Equal(t, DefaultLookTo, c.LookTo())
}

func TestCamera_FocusAtPoint(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, -5}))
	c.FocusAtPoint(mgl32.Vec3{5, 0, -5})
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.LookTo(), 1e-6)

	// focusing on the camera position keeps the previous direction
	c.FocusAtPoint(mgl32.Vec3{0, 0, -5})
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.LookTo(), 1e-6)
}

func TestCamera_ViewMatrixInvertible(t *testing.T) {
	c := NewCamera()
	SetOrbitWithOffset(c, mgl32.Vec3{}, 0, 37, 12, 1)

	view := c.ViewMatrix()
	inv := common.Inverse(view)
	p := mgl32.Vec3{1, 2, 3}
	assertVecInDelta(t, p, common.TransformPoint(inv, common.TransformPoint(view, p)), 1e-4)

	// the camera sits at the view-space origin
	assertVecInDelta(t, mgl32.Vec3{}, common.TransformPoint(view, c.Position()), 1e-4)
}

func TestCamera_ProjectionDepthRange(t *testing.T) {
	c := NewCamera(WithAspect(16.0 / 9.0))
	proj := c.ProjectionMatrix()

	nearClip := proj.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	farClip := proj.Mul4x1(mgl32.Vec4{0, 0, 100, 1})
	assert.InDelta(t, 0, nearClip[2]/nearClip[3], 1e-5)
	assert.InDelta(t, 1, farClip[2]/farClip[3], 1e-5)
}

func TestSetOrbitWithOffset_ZeroDelta(t *testing.T) {
	c := NewCamera()
	before := c.Position()
	SetOrbitWithOffset(c, mgl32.Vec3{}, 0, 0, 0, 1)
	assertVecInDelta(t, before, c.Position(), 1e-4)
	assertVecInDelta(t, before.Mul(-1).Normalize(), c.LookTo(), 1e-5)
}

func TestSetOrbitWithOffset_ZoomClampsToMinimum(t *testing.T) {
	c := NewCamera()
	SetOrbitWithOffset(c, mgl32.Vec3{}, -100, 0, 0, 2)
	assert.InDelta(t, 2, c.Position().Len(), 1e-5)
}

func TestSetOrbitWithOffset_PolarClamp(t *testing.T) {
	c := NewCamera()
	SetOrbitWithOffset(c, mgl32.Vec3{}, 0, 0, -720, 1)
	_, _, theta := common.ToSpherical(c.Position()[0], c.Position()[1], c.Position()[2])
	assert.InDelta(t, minPolar, theta, 1e-4)

	SetOrbitWithOffset(c, mgl32.Vec3{}, 0, 0, 720, 1)
	_, _, theta = common.ToSpherical(c.Position()[0], c.Position()[1], c.Position()[2])
	assert.InDelta(t, maxPolar, theta, 1e-4)
}

func TestSetOrbitWithOffset_AzimuthPreservesRadius(t *testing.T) {
	focus := mgl32.Vec3{1, 0, 1}
	c := NewCamera()
	r := c.Position().Sub(focus).Len()
	for range 10 {
		SetOrbitWithOffset(c, focus, 0, 45, 0, 0.5)
		assert.InDelta(t, r, c.Position().Sub(focus).Len(), 1e-4)
	}
}

func TestFps_Moves(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{}))
	MoveForward(c, 2)
	assertVecInDelta(t, mgl32.Vec3{0, 0, 2}, c.Position(), 1e-6)
	MoveRight(c, -1)
	assertVecInDelta(t, mgl32.Vec3{-1, 0, 2}, c.Position(), 1e-6)
	MoveUp(c, 3)
	assertVecInDelta(t, mgl32.Vec3{-1, 3, 2}, c.Position(), 1e-6)
}

func TestFps_Look(t *testing.T) {
	c := NewCamera()
	LookRight(c, 90)
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, c.LookTo().Normalize(), 1e-5)

	c = NewCamera()
	LookUp(c, 90)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, c.LookTo().Normalize(), 1e-5)

	c = NewCamera()
	LookUp(c, 30)
	LookUp(c, -30)
	assertVecInDelta(t, DefaultLookTo, c.LookTo().Normalize(), 1e-5)
}

func TestRef(t *testing.T) {
	var zero Ref
	assert.False(t, zero.IsValid())

	c := NewCamera()
	ref := c.Ref()
	got, ok := ref.Get()
	require.True(t, ok)
	assert.Same(t, c, got)

	c.Release()
	assert.False(t, ref.IsValid())
	runtime.KeepAlive(c)
}
