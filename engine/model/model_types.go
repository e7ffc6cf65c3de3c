package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// ErrTooManyVertices is returned when a mesh cannot be addressed with 16-bit indices.
var ErrTooManyVertices = errors.New("model: mesh exceeds 16-bit index range")

// Mesh is a triangle list of position/normal vertices indexed with 16-bit indices.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the mesh vertices.
	Vertices []GPUVertex

	// Indices are the triangle indices, three per triangle.
	Indices []uint16
}

// Validate checks that the mesh is a non-empty triangle list whose indices stay in range.
//
// Returns:
//   - error: a description of the first problem found, or nil
func (m Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("model: mesh %q is empty", m.Name)
	}
	if len(m.Vertices) > math.MaxUint16+1 {
		return fmt.Errorf("%w: %q has %d vertices", ErrTooManyVertices, m.Name, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("model: mesh %q index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("model: mesh %q index %d references vertex %d of %d", m.Name, i, idx, len(m.Vertices))
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (m Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v.Position[a])
			hi[a] = max(hi[a], v.Position[a])
		}
	}
	return lo, hi
}

// Range locates one mesh inside concatenated geometry.
type Range struct {
	// BaseVertex is added to every index before fetching a vertex.
	BaseVertex int32

	// StartIndex is the first index of the mesh.
	StartIndex uint32

	// IndexCount is the number of indices of the mesh.
	IndexCount uint32
}

// Geometry is the concatenation of several meshes into one vertex and one index array.
type Geometry struct {
	Vertices []GPUVertex
	Indices  []uint16
	Ranges   []Range
}

// Concatenate appends the meshes in order. Each mesh's index run starts on a 4-byte boundary so
// that it can be copied independently; odd index counts are followed by one unused zero index.
//
// Parameters:
//   - meshes: the meshes to concatenate
//
// Returns:
//   - Geometry: the concatenated vertices, indices and one Range per mesh
//   - error: an error if any mesh fails validation
func Concatenate(meshes ...Mesh) (Geometry, error) {
	var g Geometry
	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return Geometry{}, err
		}
		start := gpu.AlignUp(uint64(len(g.Indices))*2, 4) / 2
		for uint64(len(g.Indices)) < start {
			g.Indices = append(g.Indices, 0)
		}
		g.Ranges = append(g.Ranges, Range{
			BaseVertex: int32(len(g.Vertices)),
			StartIndex: uint32(start),
			IndexCount: uint32(len(m.Indices)),
		})
		g.Vertices = append(g.Vertices, m.Vertices...)
		g.Indices = append(g.Indices, m.Indices...)
	}
	if len(g.Indices)%2 != 0 {
		g.Indices = append(g.Indices, 0)
	}
	return g, nil
}
