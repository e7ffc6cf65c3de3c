package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/loader"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
)

// DefaultLoadWorkers is the number of decode workers used when LoadModels is given zero.
var DefaultLoadWorkers = max(runtime.NumCPU()-1, 1)

// LoadModels decodes mesh files concurrently on a worker pool and returns them in path order.
// All files are attempted; the returned error joins every failure.
//
// Parameters:
//   - l: the loader that decodes and caches the files
//   - paths: the files to load
//   - workers: the number of concurrent decoders, or zero for DefaultLoadWorkers
//
// Returns:
//   - []model.Model: the loaded models, nil on error
//   - error: the joined load errors
func LoadModels(l loader.Loader, paths []string, workers int) ([]model.Model, error) {
	if workers <= 0 {
		workers = DefaultLoadWorkers
	}
	pool := worker.NewDynamicWorkerPool(min(workers, max(len(paths), 1)), 256, 1*time.Second)
	defer pool.Stop()

	models := make([]model.Model, len(paths))
	errs := make([]error, len(paths))

	// wg is the completion barrier for the submitted tasks.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				start := time.Now()
				m, err := l.Load(path)
				if err != nil {
					errs[i] = fmt.Errorf("load %s: %w", path, err)
					return nil, errs[i]
				}
				models[i] = m
				common.Logger().Info("mesh loaded", "path", path, "vertices", m.VertexCount(), "indices", m.IndexCount(), "took", time.Since(start))
				return m, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return models, nil
}

// LoadRSMScene loads the subject mesh and builds the default scene around it.
//
// Parameters:
//   - l: the loader used to decode the mesh
//   - meshPath: the subject mesh file
//   - meshScale: the uniform scale applied to the subject
//
// Returns:
//   - Scene: the default scene
//   - error: an error if the mesh cannot be loaded
func LoadRSMScene(l loader.Loader, meshPath string, meshScale float32) (Scene, error) {
	models, err := LoadModels(l, []string{meshPath}, 1)
	if err != nil {
		return nil, err
	}
	return NewRSMScene(models[0], meshScale), nil
}
