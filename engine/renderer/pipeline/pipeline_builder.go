package pipeline

import (
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShader sets the shader program for this pipeline.
//
// Parameters:
//   - s: the program with vertex and fragment entry points
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader for this pipeline
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shader = s
	}
}

// WithInputLayout sets the vertex attributes and the stride between vertices.
//
// Parameters:
//   - layout: the vertex attributes in shader location order
//   - stride: the byte distance between consecutive vertices
//
// Returns:
//   - PipelineBuilderOption: a function that sets the input layout for this pipeline
func WithInputLayout(layout []gpu.InputElement, stride uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.inputLayout = layout
		p.vertexStride = stride
	}
}

// WithRenderTargetFormats sets the color target formats in output location order.
//
// Parameters:
//   - formats: one format per color output
//
// Returns:
//   - PipelineBuilderOption: a function that sets the render target formats for this pipeline
func WithRenderTargetFormats(formats ...gpu.Format) PipelineBuilderOption {
	return func(p *pipeline) {
		p.renderTargetFormats = formats
	}
}

// WithDepthFormat enables depth testing and writing against a target of the given format.
//
// Parameters:
//   - format: the depth target format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth format for this pipeline
func WithDepthFormat(format gpu.Format) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithDepthBias sets the constant and slope-scaled depth bias.
//
// Parameters:
//   - bias: the constant bias in depth units
//   - slopeScale: the slope-scaled bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.slopeScaledDepthBias = slopeScale
	}
}

// WithCullMode sets which faces the rasterizer discards.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode gpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}
