package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewDirectionalLight_Defaults(t *testing.T) {
	l := NewDirectionalLight()
	assert.Equal(t, mgl32.Vec3{6, 6, -6}, l.Position())
	assert.Equal(t, mgl32.Vec3{-1, -1, 1}, l.Direction())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	w, h := l.Extent()
	assert.Equal(t, float32(15), w)
	assert.Equal(t, float32(15), h)
	assert.Equal(t, float32(0.01), l.ZNear())
	assert.InDelta(t, 50.01, l.ZFar(), 1e-5)
}

func TestDirectionalLight_OrthoDepthRange(t *testing.T) {
	l := NewDirectionalLight()
	viewProj := l.ProjectionMatrix().Mul4(l.ViewMatrix())

	// the light origin sits epsilon behind the near plane
	p := common.TransformPoint(viewProj, l.Position())
	assert.InDelta(t, 0.01/50, -p.Z(), 1e-5)

	far := l.Position().Add(l.Direction().Normalize().Mul(50))
	p = common.TransformPoint(viewProj, far)
	assert.InDelta(t, 1, p.Z(), 1e-3)

	// points on the axis project to the centre of the map
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
}

func TestDirectionalLight_ViewMatrixIgnoresDirectionLength(t *testing.T) {
	a := NewDirectionalLight(WithDirection(-1, -1, 1))
	b := NewDirectionalLight(WithDirection(-3, -3, 3))
	assert.True(t, a.ViewMatrix().ApproxEqualThreshold(b.ViewMatrix(), 1e-6))
}

func TestDirectionalLight_Options(t *testing.T) {
	l := NewDirectionalLight(
		WithPosition(1, 2, 3),
		WithDirection(0, 0, 0),
		WithColor(2, 2, 2),
		WithExtent(10, 20),
		WithAffectedDepth(5),
		WithEpsilon(1),
	)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Position())
	assert.Equal(t, DefaultDirection, l.Direction(), "zero direction is ignored")
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, l.Color())
	assert.Equal(t, float32(5), l.AffectedDepth())
	assert.Equal(t, float32(1), l.Epsilon())
	assert.Equal(t, float32(6), l.ZFar())

	// a point at half width maps to the edge of clip space
	pos := common.TransformPoint(l.ProjectionMatrix(), mgl32.Vec3{5, 10, 3})
	assert.InDelta(t, 1, pos.X(), 1e-6)
	assert.InDelta(t, 1, pos.Y(), 1e-6)
	assert.InDelta(t, 0.4, pos.Z(), 1e-6)

	l.SetPosition(mgl32.Vec3{})
	l.SetColor(mgl32.Vec3{0.5, 0.5, 0.5})
	l.SetDirection(mgl32.Vec3{0, -1, 0.001})
	assert.Equal(t, mgl32.Vec3{}, l.Position())
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, l.Color())
	assert.Equal(t, mgl32.Vec3{0, -1, 0.001}, l.Direction())
}
