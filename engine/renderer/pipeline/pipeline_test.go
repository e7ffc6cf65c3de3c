package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRootSignature = gpu.RootSignatureDesc{
	Label: "test",
	Tables: []gpu.DescriptorTableDesc{
		{Type: gpu.DescriptorRangeCBV, Count: 1, Visibility: gpu.ShaderVisibilityAll},
		{Type: gpu.DescriptorRangeCBV, Count: 1, Visibility: gpu.ShaderVisibilityAll},
		{Type: gpu.DescriptorRangeSRV, Count: 4, Visibility: gpu.ShaderVisibilityPixel},
	},
	StaticSamplers: []gpu.StaticSamplerDesc{
		{Filter: gpu.FilterPoint, Address: gpu.AddressModeBorder, Visibility: gpu.ShaderVisibilityPixel},
	},
}

func passShader(t *testing.T, key, source string) shader.Shader {
	t.Helper()
	pp := shader.NewPreProcessor(
		shader.WithStruct(shader.AnnotationArgPassConstants, "PassConstants", `struct PassConstants {
    view: mat4x4<f32>,
    proj: mat4x4<f32>,
    light_view: mat4x4<f32>,
    light_ortho: mat4x4<f32>,
    light_flux: vec3<f32>,
    light_z_near: f32,
    light_direction: vec3<f32>,
    light_z_far: f32,
};`),
		shader.WithStruct(shader.AnnotationArgModelConstants, "ModelConstants", `struct ModelConstants {
    model: mat4x4<f32>,
    inv_model: mat4x4<f32>,
    color: vec4<f32>,
};`),
	)
	s, err := shader.NewShader(key, source, shader.WithPreProcessor(pp))
	require.NoError(t, err)
	return s
}

func TestPipeline_CreateRSMPass(t *testing.T) {
	dev := gputest.NewDevice(2, 64, 64)
	rs, err := dev.CreateRootSignature(testRootSignature)
	require.NoError(t, err)

	p := NewPipeline("rsm",
		WithShader(passShader(t, "rsm", shader.RSMPassSource)),
		WithInputLayout(model.InputLayout(), model.GPUVertexSize),
		WithRenderTargetFormats(gpu.FormatRGBA32Float, gpu.FormatRGBA32Float, gpu.FormatRGBA32Float, gpu.FormatRGBA32Float),
		WithDepthFormat(gpu.FormatDepth16Unorm),
		WithDepthBias(10000, 1),
	)
	pso, err := p.Create(dev, rs)
	require.NoError(t, err)

	desc := pso.Desc()
	assert.Equal(t, "rsm", desc.Label)
	assert.Equal(t, []int{2}, desc.UnusedTables)
	assert.Len(t, desc.RenderTargetFormats, 4)
	assert.Equal(t, int32(10000), desc.DepthBias)
	assert.Equal(t, float32(1), desc.SlopeScaledDepthBias)
	assert.Equal(t, gpu.CullBack, desc.CullMode)
	assert.Equal(t, uint32(32), desc.VertexStride)
	assert.Equal(t, "vs_main", desc.Shader.VertexEntry)
}

func TestPipeline_DescribeShadingPass(t *testing.T) {
	dev := gputest.NewDevice(2, 64, 64)
	rs, err := dev.CreateRootSignature(testRootSignature)
	require.NoError(t, err)

	p := NewPipeline("shading",
		WithShader(passShader(t, "shading", shader.ShadingPassSource)),
		WithInputLayout(model.InputLayout(), model.GPUVertexSize),
		WithRenderTargetFormats(gpu.FormatBGRA8Unorm),
		WithDepthFormat(gpu.FormatDepth16Unorm),
		WithCullMode(gpu.CullNone),
	)
	desc, err := p.Describe(rs)
	require.NoError(t, err)
	assert.Empty(t, desc.UnusedTables)
	assert.Equal(t, gpu.CullNone, p.CullMode())
	assert.Equal(t, gpu.FormatDepth16Unorm, p.DepthFormat())
	bias, slope := p.DepthBias()
	assert.Zero(t, bias)
	assert.Zero(t, slope)
}

func TestPipeline_DescribeErrors(t *testing.T) {
	dev := gputest.NewDevice(2, 64, 64)
	rs, err := dev.CreateRootSignature(testRootSignature)
	require.NoError(t, err)
	s := passShader(t, "rsm", shader.RSMPassSource)
	targets := WithRenderTargetFormats(gpu.FormatRGBA32Float)

	tests := []struct {
		name string
		p    Pipeline
	}{
		{"no shader", NewPipeline("a", targets)},
		{"no targets", NewPipeline("b", WithShader(s), WithInputLayout(model.InputLayout(), model.GPUVertexSize))},
		{"short layout", NewPipeline("c", WithShader(s), targets, WithInputLayout(model.InputLayout()[:1], model.GPUVertexSize))},
		{"stride too small", NewPipeline("d", WithShader(s), targets, WithInputLayout(model.InputLayout(), 16))},
		{"wrong format", NewPipeline("e", WithShader(s), targets, WithInputLayout([]gpu.InputElement{
			{Semantic: "POSITION", Format: gpu.FormatRGBA32Float, Offset: 0},
			{Semantic: "NORMAL", Format: gpu.FormatRGB32Float, Offset: 16},
		}, 32))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Describe(rs)
			assert.Error(t, err)
		})
	}
}

func TestUnusedTables(t *testing.T) {
	cb := func(g int) shader.Binding { return shader.Binding{Group: g, Kind: shader.BindingUniform} }
	tex := func(b int) shader.Binding { return shader.Binding{Group: 2, Binding: b, Kind: shader.BindingTexture} }
	samp := shader.Binding{Group: 3, Kind: shader.BindingSampler}

	tests := []struct {
		name     string
		bindings []shader.Binding
		want     []int
		wantErr  bool
	}{
		{"all tables", []shader.Binding{cb(0), cb(1), tex(0), tex(3), samp}, nil, false},
		{"trailing unused", []shader.Binding{cb(0), cb(1)}, []int{2}, false},
		{"gap", []shader.Binding{cb(0), tex(0)}, nil, true},
		{"texture in cbv table", []shader.Binding{{Group: 0, Kind: shader.BindingTexture}}, nil, true},
		{"binding past table", []shader.Binding{cb(0), cb(1), tex(4)}, nil, true},
		{"group past samplers", []shader.Binding{{Group: 4, Kind: shader.BindingSampler}}, nil, true},
		{"sampler without textures", []shader.Binding{cb(0), cb(1), samp}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unusedTables(tt.bindings, testRootSignature)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBindingMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
