package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewDiffuse_Defaults(t *testing.T) {
	d := NewDiffuse()
	assert.Equal(t, mgl32.Vec3{0.8, 0.8, 0.8}, d.Albedo)
	assert.Equal(t, float32(0.8), d.Reflectance)
	assert.Equal(t, [4]float32{0.8, 0.8, 0.8, 0.8}, d.Color())
}

func TestNewDiffuse_Options(t *testing.T) {
	d := NewDiffuse(
		WithName("floor"),
		WithColor(common.Color{G: 0.8, A: 1}),
		WithReflectance(2),
	)
	assert.Equal(t, "floor", d.Name)
	assert.Equal(t, mgl32.Vec3{0, 0.8, 0}, d.Albedo)
	assert.Equal(t, float32(1), d.Reflectance, "reflectance is clamped")
}

func TestDiffuse_ValueCopy(t *testing.T) {
	a := NewDiffuse(WithAlbedo(mgl32.Vec3{1, 0, 0}))
	b := a
	b.Albedo[0] = 0
	assert.Equal(t, float32(1), a.Albedo[0])
}

func TestDiffuse_Flux(t *testing.T) {
	d := NewDiffuse(WithAlbedo(mgl32.Vec3{1, 0.5, 0}), WithReflectance(0.5))
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, d.Flux(mgl32.Vec3{2, 2, 2}))
}
