package renderer

import "github.com/Carmen-Shannon/oxy-rsm/common"

// RenderTargetBuilderOption is a functional option applied to a render target during
// construction via NewRenderTarget.
type RenderTargetBuilderOption func(*renderTarget)

// WithClearColor sets the color written by Clear. The default is opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RenderTargetBuilderOption: a function that applies the clear color option to a render target
func WithClearColor(c common.Color) RenderTargetBuilderOption {
	return func(rt *renderTarget) {
		rt.clearColor = c.Array()
	}
}

// WithLabel sets the label of the render target texture.
//
// Parameters:
//   - label: the texture label
//
// Returns:
//   - RenderTargetBuilderOption: a function that applies the label option to a render target
func WithLabel(label string) RenderTargetBuilderOption {
	return func(rt *renderTarget) {
		rt.label = label
	}
}
