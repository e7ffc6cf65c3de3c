package renderer

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
	"github.com/Carmen-Shannon/oxy-rsm/engine/light"
	"github.com/Carmen-Shannon/oxy-rsm/engine/profiler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithCamera sets the camera pass 2 renders from. Its aspect ratio is overwritten with the back
// buffer aspect during Initialize.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(cam camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.cam = cam
	}
}

// WithLight sets the directional light pass 1 renders from.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - RendererBuilderOption: a function that applies the light option to a renderer
func WithLight(l light.DirectionalLight) RendererBuilderOption {
	return func(r *renderer) {
		r.light = l
	}
}

// WithRSMSize sets the edge length of the RSM targets. Zero keeps DefaultRSMSize.
//
// Parameters:
//   - size: the edge length in texels
//
// Returns:
//   - RendererBuilderOption: a function that applies the RSM size option to a renderer
func WithRSMSize(size uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.rsmSize = common.Coalesce(size, r.rsmSize)
	}
}

// WithBackgroundColor sets the color the back buffer is cleared to.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RendererBuilderOption: a function that applies the background color option to a renderer
func WithBackgroundColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.background = c
	}
}

// WithClock sets the time source of the frame statistics and elapsed time.
//
// Parameters:
//   - clock: the clock the frame timer reads
//
// Returns:
//   - RendererBuilderOption: a function that applies the clock option to a renderer
func WithClock(clock profiler.Clock) RendererBuilderOption {
	return func(r *renderer) {
		r.timer = profiler.NewTimer(clock)
	}
}
