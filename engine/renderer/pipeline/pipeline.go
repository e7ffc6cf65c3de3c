package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
)

// ErrBindingMismatch is returned when a shader declares a binding the root signature cannot supply.
var ErrBindingMismatch = errors.New("pipeline: shader binding does not match root signature")

// pipeline is the implementation of the Pipeline interface.
// It holds the configuration of one graphics pipeline state until it is created on a device.
type pipeline struct {
	pipelineKey string
	shader      shader.Shader

	inputLayout          []gpu.InputElement
	vertexStride         uint32
	renderTargetFormats  []gpu.Format
	depthFormat          gpu.Format
	depthBias            int32
	slopeScaledDepthBias float32
	cullMode             gpu.CullMode
}

// Pipeline describes one graphics pipeline state: a shader, its vertex input layout, the render
// target and depth formats it writes, and rasterizer settings.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader program of this pipeline.
	//
	// Returns:
	//   - shader.Shader: the program, or nil if none was set
	Shader() shader.Shader

	// RenderTargetFormats returns the color target formats in output location order.
	//
	// Returns:
	//   - []gpu.Format: one format per color output
	RenderTargetFormats() []gpu.Format

	// DepthFormat returns the depth target format, or gpu.FormatUnknown without depth.
	DepthFormat() gpu.Format

	// DepthBias returns the constant and slope-scaled depth bias.
	//
	// Returns:
	//   - int32: the constant bias in depth units
	//   - float32: the slope-scaled bias
	DepthBias() (int32, float32)

	// CullMode returns the faces culled by the rasterizer.
	CullMode() gpu.CullMode

	// Describe validates the configuration against a root signature and returns the device
	// description. Root tables the shader never reads are reported as unused; they must be the
	// trailing tables.
	//
	// Parameters:
	//   - rs: the root signature the pipeline binds through
	//
	// Returns:
	//   - gpu.GraphicsPipelineDesc: the pipeline description
	//   - error: an error if the shader, input layout or bindings are inconsistent
	Describe(rs gpu.RootSignature) (gpu.GraphicsPipelineDesc, error)

	// Create validates the configuration and creates the pipeline state on a device.
	//
	// Parameters:
	//   - device: the device to create the pipeline on
	//   - rs: the root signature the pipeline binds through
	//
	// Returns:
	//   - gpu.Pipeline: the compiled pipeline
	//   - error: an error if validation or creation fails
	Create(device gpu.Device, rs gpu.RootSignature) (gpu.Pipeline, error)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with back-face culling and no depth target, then applies options.
//
// Parameters:
//   - key: the unique identifier of the pipeline, used as its label
//   - options: the PipelineBuilderOptions to apply
//
// Returns:
//   - Pipeline: the configured pipeline description
func NewPipeline(key string, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: key,
		cullMode:    gpu.CullBack,
		depthFormat: gpu.FormatUnknown,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) RenderTargetFormats() []gpu.Format {
	return p.renderTargetFormats
}

func (p *pipeline) DepthFormat() gpu.Format {
	return p.depthFormat
}

func (p *pipeline) DepthBias() (int32, float32) {
	return p.depthBias, p.slopeScaledDepthBias
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Describe(rs gpu.RootSignature) (gpu.GraphicsPipelineDesc, error) {
	if p.shader == nil {
		return gpu.GraphicsPipelineDesc{}, fmt.Errorf("pipeline %s: no shader set", p.pipelineKey)
	}
	if len(p.renderTargetFormats) == 0 {
		return gpu.GraphicsPipelineDesc{}, fmt.Errorf("pipeline %s: no render target formats set", p.pipelineKey)
	}
	if err := p.validateInputLayout(); err != nil {
		return gpu.GraphicsPipelineDesc{}, fmt.Errorf("pipeline %s: %w", p.pipelineKey, err)
	}
	unused, err := unusedTables(p.shader.Bindings(), rs.Desc())
	if err != nil {
		return gpu.GraphicsPipelineDesc{}, fmt.Errorf("pipeline %s: %w", p.pipelineKey, err)
	}

	return gpu.GraphicsPipelineDesc{
		Label:                p.pipelineKey,
		RootSignature:        rs,
		Shader:               p.shader.Program(),
		InputLayout:          p.inputLayout,
		VertexStride:         p.vertexStride,
		RenderTargetFormats:  p.renderTargetFormats,
		DepthFormat:          p.depthFormat,
		DepthBias:            p.depthBias,
		SlopeScaledDepthBias: p.slopeScaledDepthBias,
		CullMode:             p.cullMode,
		UnusedTables:         unused,
	}, nil
}

func (p *pipeline) Create(device gpu.Device, rs gpu.RootSignature) (gpu.Pipeline, error) {
	desc, err := p.Describe(rs)
	if err != nil {
		return nil, err
	}
	pso, err := device.CreateGraphicsPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.pipelineKey, err)
	}
	common.Logger().Debug("pipeline created", "key", p.pipelineKey, "targets", len(desc.RenderTargetFormats), "unused_tables", desc.UnusedTables)
	return pso, nil
}

// validateInputLayout checks that the shader's vertex inputs match the layout element by element.
func (p *pipeline) validateInputLayout() error {
	attrs := p.shader.VertexAttributes()
	if len(attrs) != len(p.inputLayout) {
		return fmt.Errorf("shader reads %d vertex attributes, input layout has %d", len(attrs), len(p.inputLayout))
	}
	for i, a := range attrs {
		el := p.inputLayout[i]
		if a.Location != i {
			return fmt.Errorf("vertex attribute %q uses location %d, want %d", a.Name, a.Location, i)
		}
		if a.Format != el.Format {
			return fmt.Errorf("vertex attribute %q is %s, input element %s is %s", a.Name, a.Format, el.Semantic, el.Format)
		}
		if uint64(el.Offset)+el.Format.Size() > uint64(p.vertexStride) {
			return fmt.Errorf("input element %s ends past the %d byte stride", el.Semantic, p.vertexStride)
		}
	}
	return nil
}

// unusedTables maps shader bindings onto the root signature: group i < len(Tables) is table i and
// group len(Tables) holds the static samplers. It returns the tables no binding reads.
func unusedTables(bindings []shader.Binding, rs gpu.RootSignatureDesc) ([]int, error) {
	used := make([]bool, len(rs.Tables))
	for _, b := range bindings {
		switch {
		case b.Group < len(rs.Tables):
			table := rs.Tables[b.Group]
			if b.Binding >= table.Count {
				return nil, fmt.Errorf("%w: %s at group %d binding %d, table holds %d", ErrBindingMismatch, b.Name, b.Group, b.Binding, table.Count)
			}
			want := shader.BindingUniform
			if table.Type == gpu.DescriptorRangeSRV {
				want = shader.BindingTexture
			}
			if b.Kind != want {
				return nil, fmt.Errorf("%w: %s at group %d has the wrong resource kind", ErrBindingMismatch, b.Name, b.Group)
			}
			used[b.Group] = true
		case b.Group == len(rs.Tables):
			if b.Kind != shader.BindingSampler || b.Binding >= len(rs.StaticSamplers) {
				return nil, fmt.Errorf("%w: %s at group %d is not a static sampler", ErrBindingMismatch, b.Name, b.Group)
			}
		default:
			return nil, fmt.Errorf("%w: %s uses group %d beyond the root signature", ErrBindingMismatch, b.Name, b.Group)
		}
	}

	var unused []int
	for i, u := range used {
		if !u {
			unused = append(unused, i)
		}
	}
	// the backend drops trailing groups only
	for n, idx := range unused {
		if idx != len(rs.Tables)-len(unused)+n {
			return nil, fmt.Errorf("%w: unused table %d is followed by a used table", ErrBindingMismatch, idx)
		}
	}
	if len(unused) > 0 && slices.ContainsFunc(bindings, func(b shader.Binding) bool { return b.Kind == shader.BindingSampler }) {
		return nil, fmt.Errorf("%w: samplers need every table bound", ErrBindingMismatch)
	}
	return unused, nil
}
