package model

import "sync"

// model is the implementation of the Model interface.
type model struct {
	mu     sync.RWMutex
	name   string
	path   string
	mesh   Mesh
	radius float32
}

// Model is a named mesh asset. Scenes reference models by index, and render items place them in
// the world with their own transforms, so one Model may be drawn several times.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// SourcePath retrieves the file the mesh was loaded from, or "" for generated meshes.
	//
	// Returns:
	//   - string: the source path
	SourcePath() string

	// Mesh retrieves the model's mesh.
	//
	// Returns:
	//   - Mesh: the mesh data
	Mesh() Mesh

	// SetMesh replaces the mesh and recomputes the bounding radius. Used by loaders that fill a
	// placeholder model once decoding finishes.
	//
	// Parameters:
	//   - m: the new mesh
	SetMesh(m Mesh)

	// VertexCount returns the number of vertices.
	VertexCount() int

	// IndexCount returns the number of indices.
	IndexCount() int

	// BoundingRadius returns the distance from the origin to the farthest vertex.
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a Model with the given options applied.
//
// Parameters:
//   - options: the ModelBuilderOptions to apply
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.radius = boundingRadius(m.mesh)
	return m
}

func (m *model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

func (m *model) SourcePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

func (m *model) Mesh() Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mesh
}

func (m *model) SetMesh(mesh Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mesh = mesh
	m.radius = boundingRadius(mesh)
}

func (m *model) VertexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mesh.Vertices)
}

func (m *model) IndexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mesh.Indices)
}

func (m *model) BoundingRadius() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.radius
}

func boundingRadius(mesh Mesh) float32 {
	var r2 float32
	for _, v := range mesh.Vertices {
		p := v.Position
		r2 = max(r2, p[0]*p[0]+p[1]*p[1]+p[2]*p[2])
	}
	return sqrt32(r2)
}
