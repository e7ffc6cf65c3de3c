// pre_processor.go implements the Oxy WGSL shader pre-processor. It replaces @oxy: annotations
// with registered struct sources or generated binding declarations and collects the binding
// declarations so pipelines can check them against a root signature.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
)

// registryEntry pairs a WGSL struct source with the type name used in generated declarations.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces @oxy: annotations with their WGSL output. The declarations list is reset
	// at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unregistered struct
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected during the most recent
	// call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation

	// Register adds or replaces a struct that @oxy:include and @oxy:group can reference.
	//
	// Parameters:
	//   - arg: the annotation argument naming the struct
	//   - typeName: the WGSL type name declared by source
	//   - source: the WGSL struct definition
	Register(arg AnnotationArg, typeName, source string)
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption is a functional option for configuring a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithStruct is an option builder that registers a struct with the PreProcessor.
//
// Parameters:
//   - arg: the annotation argument naming the struct
//   - typeName: the WGSL type name declared by source
//   - source: the WGSL struct definition
//
// Returns:
//   - PreProcessorOption: a function that registers the struct
func WithStruct(arg AnnotationArg, typeName, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.Register(arg, typeName, source)
	}
}

// NewPreProcessor creates a PreProcessor with the vertex input struct registered, then applies
// the options.
//
// Parameters:
//   - options: the PreProcessorOptions to apply
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgVertex: {Source: model.GPUVertexSource, Type: "VertexInput"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Register(arg AnnotationArg, typeName, source string) {
	p.structRegistry[arg] = registryEntry{Source: source, Type: typeName}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: struct %q is not registered", i+1, a.Args[0])
			}
			// a second include of the same struct would redeclare it
			if !included[a.Args[0]] {
				out = append(out, entry.Source)
				included[a.Args[0]] = true
			}
		case AnnotationTypeBindingGroup:
			entry, ok := p.structRegistry[a.Args[2]]
			if !ok {
				return "", fmt.Errorf("line %d: struct %q is not registered", i+1, a.Args[2])
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
