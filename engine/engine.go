package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
	"github.com/Carmen-Shannon/oxy-rsm/engine/config"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/input"
	"github.com/Carmen-Shannon/oxy-rsm/engine/light"
	"github.com/Carmen-Shannon/oxy-rsm/engine/loader"
	"github.com/Carmen-Shannon/oxy-rsm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rsm/engine/scene"
	"github.com/Carmen-Shannon/oxy-rsm/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoMesh is returned by NewEngine when neither a scene nor a mesh path is configured.
var ErrNoMesh = errors.New("engine: no scene and no scene.mesh_path configured")

// pausedWaitTimeout bounds how long a paused loop sleeps in the window before checking Quit.
const pausedWaitTimeout = 100 * time.Millisecond

// engine implements the Engine interface.
// Window events, input, rendering and profiling all run on the goroutine that calls Run.
type engine struct {
	cfg config.Config

	window   window.Window
	device   gpu.Device
	scene    scene.Scene
	renderer renderer.Renderer
	registry *input.Registry

	profiler         *profiler.Profiler
	profilingEnabled bool

	focused   bool
	minimized bool
	quit      atomic.Bool
}

// Engine is the main entry point of the RSM viewer.
// It owns the window, the renderer and its device, the input handlers and the profiler.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Renderer returns the frame orchestrator.
	Renderer() renderer.Renderer

	// Input returns the input handler registry fed by the window.
	Input() *input.Registry

	// Scene returns the rendered scene.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run renders frames until the window closes or Quit is called, then destroys the renderer
	// and closes the window. Run must be called from the goroutine that created the window.
	//
	// Returns:
	//   - error: the first frame error, joined with any shutdown error
	Run() error

	// Quit asks Run to return after the current frame. Safe to call from any goroutine.
	Quit()
}

// NewEngine creates an Engine. The subject mesh is loaded before the window and device are
// created, so asset errors never leave GPU resources behind. Anything not supplied through an
// option is built from the configuration.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the initialized engine, with the renderer Idle
//   - error: error if loading, window, device or renderer setup fails
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:              config.Default(),
		registry:         input.NewRegistry(),
		profilingEnabled: true,
		focused:          true,
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	if e.scene == nil {
		s, err := e.loadScene()
		if err != nil {
			return nil, err
		}
		e.scene = s
	}

	if e.window == nil {
		w, err := window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
		)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.window = w
	}

	if e.device == nil {
		d, err := gpu.NewWGPUDevice(e.window.SurfaceDescriptor(), gpu.WGPUOptions{
			Width:                e.window.Width(),
			Height:               e.window.Height(),
			VSync:                e.cfg.Renderer.VSync,
			ForceFallbackAdapter: e.cfg.Renderer.ForceFallbackAdapter,
			BufferCount:          e.cfg.Renderer.BufferCount,
		})
		if err != nil {
			_ = e.window.Close()
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.device = d
	}

	cam := newCamera(e.cfg.Camera)
	e.renderer = renderer.NewRenderer(e.device,
		renderer.WithCamera(cam),
		renderer.WithLight(newLight(e.cfg.Light)),
		renderer.WithRSMSize(e.cfg.Renderer.RSMSize),
		renderer.WithBackgroundColor(common.Color{
			R: e.cfg.Renderer.Background[0],
			G: e.cfg.Renderer.Background[1],
			B: e.cfg.Renderer.Background[2],
			A: e.cfg.Renderer.Background[3],
		}),
	)
	if err := e.renderer.Initialize(e.scene); err != nil {
		err = errors.Join(err, e.renderer.Destroy(), e.window.Close())
		return nil, fmt.Errorf("engine: %w", err)
	}

	switch e.cfg.Camera.Mode {
	case config.CameraModeFPS:
		e.registry.Register(input.NewFpsHandler(cam.Ref(), e.cfg.Camera.MoveStep))
	default:
		focus := mgl32.Vec3(e.cfg.Camera.Focus)
		cam.FocusAtPoint(focus)
		e.registry.Register(input.NewOrbitHandler(cam.Ref(), focus, e.cfg.Camera.MinRadius))
	}

	e.profiler = profiler.NewProfiler(profiler.WithInterval(e.cfg.Renderer.StatsInterval.Std()))

	e.window.SetEventCallback(e.registry.Dispatch)
	e.window.SetFocusCallback(func(focused bool) {
		e.focused = focused
		e.syncRunState()
	})
	e.window.SetMinimizeCallback(func(minimized bool) {
		e.minimized = minimized
		e.syncRunState()
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Input() *input.Registry {
	return e.registry
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() (err error) {
	defer func() {
		err = errors.Join(err, e.shutdown())
	}()

	if err := e.syncRunState(); err != nil {
		return err
	}
	common.Logger().Info("engine running", "scene", e.scene.Name(), "camera_mode", e.cfg.Camera.Mode)

	for !e.quit.Load() && e.pumpEvents() {
		e.registry.ProcessContinuousInput()
		if err := e.renderer.Frame(); err != nil {
			return err
		}
		if e.profilingEnabled && e.renderer.State() == renderer.StateRunning {
			e.profiler.Tick()
		}
	}
	return nil
}

// pumpEvents polls the window while rendering and blocks on it while paused.
func (e *engine) pumpEvents() bool {
	if e.renderer.State() == renderer.StateRunning {
		return e.window.PollEvents()
	}
	return e.window.WaitEvents(pausedWaitTimeout)
}

func (e *engine) Quit() {
	e.quit.Store(true)
}

// syncRunState runs the renderer while the window is focused and not minimized and pauses it
// otherwise.
func (e *engine) syncRunState() error {
	if e.focused && !e.minimized {
		return e.renderer.StartRunning()
	}
	e.renderer.PauseRunning()
	return nil
}

// shutdown destroys the renderer, which waits for the GPU and releases the device, then closes
// the window.
func (e *engine) shutdown() error {
	err := e.renderer.Destroy()
	if cerr := e.window.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("engine: close window: %w", cerr))
	}
	common.Logger().Info("engine stopped")
	return err
}

func (e *engine) loadScene() (scene.Scene, error) {
	if e.cfg.Scene.MeshPath == "" {
		return nil, ErrNoMesh
	}
	l := loader.NewLoader(
		loader.WithLeftHanded(e.cfg.Scene.LeftHanded),
		loader.WithFlipWinding(e.cfg.Scene.FlipWinding),
	)
	s, err := scene.LoadRSMScene(l, e.cfg.Scene.MeshPath, e.cfg.Scene.MeshScale)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return s, nil
}

func newCamera(c config.CameraConfig) camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(mgl32.Vec3(c.Position)),
		camera.WithLookTo(mgl32.Vec3(c.LookTo)),
		camera.WithFovDeg(c.FovDeg),
		camera.WithClipPlanes(c.Near, c.Far),
	)
}

func newLight(c config.LightConfig) light.DirectionalLight {
	return light.NewDirectionalLight(
		light.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		light.WithDirection(c.Direction[0], c.Direction[1], c.Direction[2]),
		light.WithColor(c.Color[0], c.Color[1], c.Color[2]),
		light.WithExtent(c.Width, c.Height),
		light.WithAffectedDepth(c.AffectedDepth),
		light.WithEpsilon(c.Epsilon),
	)
}
