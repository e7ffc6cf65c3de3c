package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
)

// ErrUnsupportedFormat is returned when no backend handles a file extension.
var ErrUnsupportedFormat = errors.New("loader: unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	leftHanded  bool
	flipWinding bool

	modelCache map[string]model.Model

	backends map[string]loaderBackend
}

// Loader defines the public-facing interface for loading and caching triangle meshes.
// It abstracts the file format (OBJ, glTF, GLB) behind a backend chosen by extension and
// manages a cache of previously loaded models. Loaders are safe for concurrent use.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat for unknown extensions, or an error if decoding fails
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - ext: the format extension, one of ".obj", ".gltf" or ".glb"
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, ext string) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the OBJ and glTF backends registered. By default meshes
// are converted to the left-handed convention: Z is mirrored and triangle winding is flipped.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		leftHanded:  true,
		flipWinding: true,
		modelCache:  make(map[string]model.Model),
	}
	for _, option := range options {
		option(l)
	}

	gltf := newGLTFLoaderBackend()
	l.backends = map[string]loaderBackend{
		".obj":  newOBJLoaderBackend(),
		".gltf": gltf,
		".glb":  gltf,
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	raw, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.store(path, path, raw)
}

func (l *loader) LoadReader(name string, r io.Reader, ext string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(ext)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	raw, err := backend.LoadReader(r, strings.EqualFold(ext, ".glb"))
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	return l.store(name, "", raw)
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

// store converts raw mesh data into a Model and caches it under key.
func (l *loader) store(key, sourcePath string, raw rawMesh) (model.Model, error) {
	raw.name = common.Coalesce(raw.name, strings.TrimSuffix(filepath.Base(key), filepath.Ext(key)))
	if raw.normals == nil {
		common.Logger().Warn("mesh has no normals, generating smooth normals", "mesh", raw.name)
		raw.generateNormals()
	}

	mesh, err := raw.toMesh(l.leftHanded, l.flipWinding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", key, err)
	}

	m := model.NewModel(model.WithMesh(mesh), model.WithSourcePath(sourcePath))
	common.Logger().Debug("loaded mesh", "mesh", mesh.Name, "vertices", len(mesh.Vertices), "indices", len(mesh.Indices))

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = m
	return m, nil
}

// resolveBackend returns the backend registered for a file extension.
func (l *loader) resolveBackend(ext string) (loaderBackend, error) {
	b, ok := l.backends[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return b, nil
}
