package loader

import (
	"fmt"
	"io"
)

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files. It reads the first mesh
// of the document; scenes, node transforms, materials and animations are ignored.
type gltfLoaderBackend struct{}

var _ loaderBackend = gltfLoaderBackend{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - loaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() loaderBackend {
	return gltfLoaderBackend{}
}

func (gltfLoaderBackend) Load(path string) (rawMesh, error) {
	p, err := parseGLTFFile(path)
	if err != nil {
		return rawMesh{}, err
	}
	return extractFirstMesh(p)
}

func (gltfLoaderBackend) LoadReader(r io.Reader, isGLB bool) (rawMesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return rawMesh{}, fmt.Errorf("failed to read data: %w", err)
	}
	p, err := parseGLTF(data, isGLB, "")
	if err != nil {
		return rawMesh{}, err
	}
	return extractFirstMesh(p)
}
