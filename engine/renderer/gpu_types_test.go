package renderer

import (
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantLayouts(t *testing.T) {
	assert.Equal(t, uint64(576), PassConstantsSize)
	assert.Equal(t, uint64(144), ModelConstantsSize)

	var p PassConstants
	assert.Equal(t, uintptr(512), unsafe.Offsetof(p.LightFlux))
	assert.Equal(t, uintptr(524), unsafe.Offsetof(p.LightZNear))
	assert.Equal(t, uintptr(544), unsafe.Offsetof(p.LightPos))
	assert.Equal(t, uintptr(568), unsafe.Offsetof(p.TimeElapsed))
	assert.Len(t, p.Bytes(), 576)

	var m ModelConstants
	assert.Equal(t, uintptr(128), unsafe.Offsetof(m.Color))
	assert.Len(t, m.Bytes(), 144)
}

func TestConstantLayouts_MatchShader(t *testing.T) {
	for _, src := range []string{shader.RSMPassSource, shader.ShadingPassSource} {
		s, err := shader.NewShader("pass", src, shader.WithPreProcessor(NewPreProcessor()))
		require.NoError(t, err)

		size, ok := s.StructSize("PassConstants")
		require.True(t, ok)
		assert.Equal(t, PassConstantsSize, size)

		size, ok = s.StructSize("ModelConstants")
		require.True(t, ok)
		assert.Equal(t, ModelConstantsSize, size)
	}
}
