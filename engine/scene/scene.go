package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderItem is one draw of a mesh with its own transform, material and model constant slot.
type RenderItem struct {
	// Name identifies the item in logs.
	Name string

	// Mesh is the index of the drawn mesh in Scene.Meshes.
	Mesh int

	// Transform is the model-to-world matrix.
	Transform mgl32.Mat4

	// Material is the item's own copy of its surface description.
	Material material.Diffuse

	// ModelCBIndex is the slot of the item's model constants in the model constant buffer.
	ModelCBIndex int

	// StartIndex, IndexCount and BaseVertex locate the mesh in the shared index and vertex
	// buffers. They are filled by Scene.Geometry.
	StartIndex uint32
	IndexCount uint32
	BaseVertex int32

	// CBV is the descriptor of the item's model constants, set by the renderer.
	CBV gpu.DescriptorHandle
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name   string
	meshes []model.Model
	items  []*RenderItem
	sealed bool
}

// Scene holds the meshes and render items drawn by the renderer. Items are added during setup;
// once Geometry has been built the item set is fixed.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Meshes returns the scene's meshes in the order they were added.
	//
	// Returns:
	//   - []model.Model: the meshes
	Meshes() []model.Model

	// Items returns the render items in model constant slot order.
	//
	// Returns:
	//   - []*RenderItem: the render items
	Items() []*RenderItem

	// AddMesh appends a mesh.
	//
	// Parameters:
	//   - m: the mesh to add
	//
	// Returns:
	//   - int: the index to reference the mesh with in AddItem
	AddMesh(m model.Model) int

	// AddItem appends a render item drawing mesh. Its model constant slot is its position in the
	// item list. Panics if Geometry has already been built or mesh is out of range.
	//
	// Parameters:
	//   - name: the item name
	//   - mesh: the mesh index returned by AddMesh
	//   - transform: the model-to-world matrix
	//   - mat: the item's material
	//
	// Returns:
	//   - *RenderItem: the new item
	AddItem(name string, mesh int, transform mgl32.Mat4, mat material.Diffuse) *RenderItem

	// Geometry concatenates every mesh into one vertex and one index array and fills the
	// StartIndex, IndexCount and BaseVertex of every item. No items can be added afterwards.
	//
	// Returns:
	//   - model.Geometry: the concatenated geometry
	//   - error: an error if a mesh is invalid or the scene has no items
	Geometry() (model.Geometry, error)
}

var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - name: the name of the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string) Scene {
	return &scene{
		mu:   &sync.RWMutex{},
		name: name,
	}
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Meshes() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Model(nil), s.meshes...)
}

func (s *scene) Items() []*RenderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*RenderItem(nil), s.items...)
}

func (s *scene) AddMesh(m model.Model) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = append(s.meshes, m)
	return len(s.meshes) - 1
}

func (s *scene) AddItem(name string, mesh int, transform mgl32.Mat4, mat material.Diffuse) *RenderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		panic(fmt.Sprintf("scene %q: item %q added after geometry was built", s.name, name))
	}
	if mesh < 0 || mesh >= len(s.meshes) {
		panic(fmt.Sprintf("scene %q: item %q references mesh %d of %d", s.name, name, mesh, len(s.meshes)))
	}
	item := &RenderItem{
		Name:         name,
		Mesh:         mesh,
		Transform:    transform,
		Material:     mat,
		ModelCBIndex: len(s.items),
	}
	s.items = append(s.items, item)
	return item
}

func (s *scene) Geometry() (model.Geometry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return model.Geometry{}, fmt.Errorf("scene %q has no render items", s.name)
	}

	meshes := make([]model.Mesh, len(s.meshes))
	for i, m := range s.meshes {
		meshes[i] = m.Mesh()
	}
	geo, err := model.Concatenate(meshes...)
	if err != nil {
		return model.Geometry{}, fmt.Errorf("scene %q: %w", s.name, err)
	}

	for _, item := range s.items {
		r := geo.Ranges[item.Mesh]
		item.StartIndex = r.StartIndex
		item.IndexCount = r.IndexCount
		item.BaseVertex = r.BaseVertex
	}
	s.sealed = true
	return geo, nil
}
