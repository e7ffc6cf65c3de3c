package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// BindingKind classifies a resource declared with @group/@binding.
type BindingKind int

const (
	// BindingUniform is a var<uniform> buffer.
	BindingUniform BindingKind = iota

	// BindingStorage is a var<storage> buffer.
	BindingStorage

	// BindingTexture is a sampled texture.
	BindingTexture

	// BindingSampler is a sampler.
	BindingSampler
)

// Binding is one resource declaration parsed from processed WGSL source.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Type    string
	Kind    BindingKind
	// Size is the byte size of buffer bindings whose type could be resolved, otherwise 0.
	Size uint64
}

// VertexAttribute is one @location field of the vertex input struct.
type VertexAttribute struct {
	Location int
	Name     string
	Format   gpu.Format
}

// parsedField represents a single field extracted from a WGSL struct during parsing.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// wgslVertexFormats maps the WGSL types allowed in the vertex input struct to gpu formats.
var wgslVertexFormats = map[string]gpu.Format{
	"vec3<f32>": gpu.FormatRGB32Float,
	"vec3f":     gpu.FormatRGB32Float,
	"vec4<f32>": gpu.FormatRGBA32Float,
	"vec4f":     gpu.FormatRGBA32Float,
}

var (
	structBlockRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex         = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	vertexParamRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+\w+\s*\(\s*\w+\s*:\s*(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> frame: PassConstants;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoints extracts the vertex and fragment entry point names. Either is "" when absent.
func parseEntryPoints(source string) (vertex, fragment string) {
	cleaned := stripComments(source)
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parseBindings extracts every @group(N) @binding(M) declaration, sorted by group then binding.
//
// Parameters:
//   - source: processed WGSL source
//
// Returns:
//   - []Binding: the declarations found
func parseBindings(source string) []Binding {
	cleaned := stripComments(source)
	sizes := computeStructSizes(parseStructBlocks(cleaned))

	var out []Binding
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		b := Binding{
			Group:   group,
			Binding: binding,
			Name:    strings.TrimSpace(m[4]),
			Type:    strings.TrimSpace(m[5]),
		}
		space := strings.TrimSpace(m[3])
		switch {
		case space == "uniform":
			b.Kind = BindingUniform
		case strings.HasPrefix(space, "storage"):
			b.Kind = BindingStorage
		case strings.HasPrefix(b.Type, "sampler"):
			b.Kind = BindingSampler
		default:
			b.Kind = BindingTexture
		}
		if b.Kind == BindingUniform || b.Kind == BindingStorage {
			if layout, ok := resolveTypeLayout(b.Type, sizes); ok {
				b.Size = layout.size
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}

// parseVertexAttributes returns the @location fields of the struct taken by the vertex entry
// point, sorted by location. Returns nil if the entry point takes no struct.
func parseVertexAttributes(source string) []VertexAttribute {
	cleaned := stripComments(source)
	m := vertexParamRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return nil
	}
	for _, ps := range parseStructBlocks(cleaned) {
		if ps.name != m[1] {
			continue
		}
		var attrs []VertexAttribute
		for _, f := range ps.fields {
			if f.isBuiltin || f.location < 0 {
				continue
			}
			attrs = append(attrs, VertexAttribute{
				Location: f.location,
				Name:     f.name,
				Format:   wgslVertexFormats[f.typeName],
			})
		}
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Location < attrs[j].Location })
		return attrs
	}
	return nil
}

// parseStructBlocks finds all struct { ... } blocks in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields parses a struct body into fields with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			field.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, field)
	}
	return fields
}
