package model

import "github.com/chewxy/math32"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithSourcePath is an option builder that records the file the Model is loaded from.
//
// Parameters:
//   - path: the mesh file path
//
// Returns:
//   - ModelBuilderOption: a function that applies the source path option to a model
func WithSourcePath(path string) ModelBuilderOption {
	return func(m *model) {
		m.path = path
	}
}

// WithMesh is an option builder that sets the mesh of the Model.
//
// Parameters:
//   - mesh: the mesh data
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(mesh Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
		if m.name == "" {
			m.name = mesh.Name
		}
	}
}

func sqrt32(x float32) float32 {
	return math32.Sqrt(x)
}
