package shader

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// RSMPassSource is the pass 1 program. It writes depth, normal, flux and world position for
// every texel seen from the light.
//
//go:embed assets/rsm_pass.wgsl
var RSMPassSource string

// ShadingPassSource is the pass 2 program. It shades the scene from the camera by sampling the
// four RSM targets.
//
//go:embed assets/shading_pass.wgsl
var ShadingPassSource string

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
	bindings      []Binding
	attributes    []VertexAttribute
	declarations  []Annotation
	structSizes   map[string]uint64

	pp PreProcessor
}

// Shader is a pre-processed WGSL program with a vertex and a fragment entry point, plus the
// metadata parsed from it that pipelines validate against the root signature and input layout.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with annotations replaced
	Source() string

	// VertexEntry returns the name of the @vertex function.
	VertexEntry() string

	// FragmentEntry returns the name of the @fragment function.
	FragmentEntry() string

	// Bindings returns the resource declarations sorted by group and binding.
	//
	// Returns:
	//   - []Binding: the parsed @group/@binding declarations
	Bindings() []Binding

	// VertexAttributes returns the @location fields of the vertex entry point's input struct.
	//
	// Returns:
	//   - []VertexAttribute: attributes sorted by location
	VertexAttributes() []VertexAttribute

	// StructSize returns the host-shareable byte size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the struct size
	//   - bool: false if the struct is unknown or its layout cannot be resolved
	StructSize(name string) (uint64, bool)

	// Declarations returns the group and provider annotations found during pre-processing.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation

	// Program returns the source and entry points in the form gpu pipelines consume.
	//
	// Returns:
	//   - gpu.ShaderSource: the program description
	Program() gpu.ShaderSource
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used as its label
//   - source: the raw WGSL source containing @oxy: annotations
//   - options: the ShaderBuilderOptions to apply
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or an entry point is missing
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{key: key}
	for _, opt := range options {
		opt(s)
	}
	if s.pp == nil {
		s.pp = NewPreProcessor()
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from a file and parses it with NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the WGSL file path
//   - options: the ShaderBuilderOptions to apply
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the file cannot be read or parsed
func NewShaderFromPath(key, path string, options ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: read %q: %w", key, path, err)
	}
	return NewShader(key, string(data), options...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntry() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntry() string {
	return s.fragmentEntry
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) VertexAttributes() []VertexAttribute {
	return s.attributes
}

func (s *shader) StructSize(name string) (uint64, bool) {
	size, ok := s.structSizes[name]
	return size, ok
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Program() gpu.ShaderSource {
	return gpu.ShaderSource{
		Label:         s.key,
		Code:          s.source,
		VertexEntry:   s.vertexEntry,
		FragmentEntry: s.fragmentEntry,
	}
}

// parseSource runs the pre-processor and extracts entry points, bindings, vertex attributes and
// struct sizes from the result.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return err
	}
	s.source = processed
	s.declarations = append([]Annotation(nil), s.pp.Declarations()...)
	s.vertexEntry, s.fragmentEntry = parseEntryPoints(processed)
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		return fmt.Errorf("source needs both a @vertex and a @fragment entry point")
	}
	s.bindings = parseBindings(processed)
	s.attributes = parseVertexAttributes(processed)

	layouts := computeStructSizes(parseStructBlocks(stripComments(processed)))
	s.structSizes = make(map[string]uint64, len(layouts))
	for name, l := range layouts {
		s.structSizes[name] = l.size
	}
	return nil
}
