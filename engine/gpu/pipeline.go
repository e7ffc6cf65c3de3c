package gpu

// DescriptorRangeType is the kind of view a descriptor table range binds.
type DescriptorRangeType int

const (
	DescriptorRangeCBV DescriptorRangeType = iota
	DescriptorRangeSRV
)

// ShaderVisibility selects the stages a root parameter is visible to.
type ShaderVisibility uint32

const (
	ShaderVisibilityVertex ShaderVisibility = 1 << iota
	ShaderVisibilityPixel

	ShaderVisibilityAll = ShaderVisibilityVertex | ShaderVisibilityPixel
)

// DescriptorTableDesc is one root parameter: Count consecutive views of one type starting at the
// handle bound with SetGraphicsDescriptorTable.
type DescriptorTableDesc struct {
	Type       DescriptorRangeType
	Count      int
	Visibility ShaderVisibility
}

// StaticSamplerDesc is a sampler baked into the root signature.
type StaticSamplerDesc struct {
	Filter      FilterMode
	Address     AddressMode
	BorderColor [4]float32
	Visibility  ShaderVisibility
}

// RootSignatureDesc lists the root parameters in root index order.
type RootSignatureDesc struct {
	Label          string
	Tables         []DescriptorTableDesc
	StaticSamplers []StaticSamplerDesc
}

// RootSignature is the compiled binding layout.
type RootSignature interface {
	Resource

	// Desc returns the description the root signature was created from.
	Desc() RootSignatureDesc
}

// InputElement is one vertex attribute.
type InputElement struct {
	Semantic string
	Format   Format
	Offset   uint32
}

// ShaderSource is the program text and entry points of a pipeline.
type ShaderSource struct {
	Label         string
	Code          string
	VertexEntry   string
	FragmentEntry string
}

// GraphicsPipelineDesc describes a pipeline state object.
type GraphicsPipelineDesc struct {
	Label                string
	RootSignature        RootSignature
	Shader               ShaderSource
	InputLayout          []InputElement
	VertexStride         uint32
	RenderTargetFormats  []Format
	DepthFormat          Format
	DepthBias            int32
	SlopeScaledDepthBias float32
	CullMode             CullMode

	// UnusedTables lists root table indices the shader never reads. They need not be bound
	// before drawing and must be the trailing tables of the root signature.
	UnusedTables []int
}

// Pipeline is a compiled pipeline state object.
type Pipeline interface {
	Resource

	// Desc returns the description the pipeline was created from.
	Desc() GraphicsPipelineDesc
}
