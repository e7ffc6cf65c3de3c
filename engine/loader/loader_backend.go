package loader

import (
	"fmt"
	"io"
	"math"

	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// loaderBackend defines the generic interface for decoding meshes from files or streams.
// Concrete implementations (objLoaderBackend, gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the mesh stored at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - rawMesh: the decoded mesh in source space
	//   - error: error if loading fails
	Load(path string) (rawMesh, error)

	// LoadReader decodes a mesh from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - binary: true if the reader provides a binary container (GLB)
	//
	// Returns:
	//   - rawMesh: the decoded mesh in source space
	//   - error: error if loading fails
	LoadReader(r io.Reader, binary bool) (rawMesh, error)
}

// rawMesh is decoded triangle data before conversion to the renderer's conventions.
// normals is nil when the source has none.
type rawMesh struct {
	name      string
	positions [][3]float32
	normals   [][3]float32
	indices   []uint32
}

// append adds other to m, offsetting its indices. Normals are kept only if both meshes have them.
func (m *rawMesh) append(other rawMesh) {
	base := uint32(len(m.positions))
	hadNormals := len(m.positions) == 0 || m.normals != nil
	m.positions = append(m.positions, other.positions...)
	if hadNormals && other.normals != nil {
		m.normals = append(m.normals, other.normals...)
	} else {
		m.normals = nil
	}
	for _, idx := range other.indices {
		m.indices = append(m.indices, base+idx)
	}
}

// generateNormals computes smooth vertex normals by accumulating the area-weighted face normal of
// every triangle onto its vertices. Vertices touched by no valid triangle get +Y.
func (m *rawMesh) generateNormals() {
	n := len(m.positions)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(m.indices); i += 3 {
		i0, i1, i2 := m.indices[i], m.indices[i+1], m.indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := mgl32.Vec3(m.positions[i0])
		edge1 := mgl32.Vec3(m.positions[i1]).Sub(p0)
		edge2 := mgl32.Vec3(m.positions[i2]).Sub(p0)

		// length proportional to triangle area
		face := edge1.Cross(edge2)
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	m.normals = make([][3]float32, n)
	for i, a := range accum {
		if a.Len() < 1e-6 {
			m.normals[i] = [3]float32{0, 1, 0}
			continue
		}
		m.normals[i] = a.Normalize()
	}
}

// toMesh converts to a model.Mesh, optionally mirroring Z and reversing triangle winding.
func (m rawMesh) toMesh(leftHanded, flipWinding bool) (model.Mesh, error) {
	if len(m.positions) > math.MaxUint16+1 {
		return model.Mesh{}, fmt.Errorf("%w: %q has %d vertices", model.ErrTooManyVertices, m.name, len(m.positions))
	}
	if len(m.normals) != len(m.positions) {
		return model.Mesh{}, fmt.Errorf("mesh %q has %d normals for %d positions", m.name, len(m.normals), len(m.positions))
	}

	mesh := model.Mesh{
		Name:     m.name,
		Vertices: make([]model.GPUVertex, len(m.positions)),
		Indices:  make([]uint16, len(m.indices)),
	}
	for i, p := range m.positions {
		nrm := m.normals[i]
		if leftHanded {
			p[2] = -p[2]
			nrm[2] = -nrm[2]
		}
		mesh.Vertices[i] = model.NewGPUVertex(p, nrm)
	}
	for i, idx := range m.indices {
		mesh.Indices[i] = uint16(idx)
	}
	if flipWinding {
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			mesh.Indices[i+1], mesh.Indices[i+2] = mesh.Indices[i+2], mesh.Indices[i+1]
		}
	}

	if err := mesh.Validate(); err != nil {
		return model.Mesh{}, err
	}
	return mesh, nil
}
