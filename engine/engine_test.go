package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/config"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-rsm/engine/input"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rsm/engine/scene"
	"github.com/Carmen-Shannon/oxy-rsm/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow stays open for a fixed number of polls and runs onPoll during each one, where
// platform callbacks would fire. Blocking waits count as polls and are recorded in waited.
type fakeWindow struct {
	polls  int
	polled int
	waited []int
	onPoll func(w *fakeWindow, n int)
	closed bool

	onEvent    func(e input.Event)
	onResize   func(width, height int)
	onFocus    func(focused bool)
	onMinimize func(minimized bool)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetEventCallback(cb func(e input.Event))      { w.onEvent = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetFocusCallback(cb func(focused bool))       { w.onFocus = cb }
func (w *fakeWindow) SetMinimizeCallback(cb func(minimized bool))  { w.onMinimize = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return !w.closed && w.polled < w.polls }
func (w *fakeWindow) Title() string                                { return "fake" }
func (w *fakeWindow) Width() int                                   { return 800 }
func (w *fakeWindow) Height() int                                  { return 600 }

func (w *fakeWindow) PollEvents() bool {
	if !w.IsRunning() {
		return false
	}
	w.polled++
	if w.onPoll != nil {
		w.onPoll(w, w.polled)
	}
	return true
}

func (w *fakeWindow) WaitEvents(timeout time.Duration) bool {
	if !w.IsRunning() {
		return false
	}
	w.waited = append(w.waited, w.polled+1)
	return w.PollEvents()
}

func (w *fakeWindow) Close() error {
	if w.closed {
		return errors.New("already closed")
	}
	w.closed = true
	return nil
}

type recordingHandler struct {
	events []input.Event
	polls  int
}

func (h *recordingHandler) Handle(e input.Event)    { h.events = append(h.events, e) }
func (h *recordingHandler) IsValid() bool           { return true }
func (h *recordingHandler) ProcessContinuousInput() { h.polls++ }

func testScene() scene.Scene {
	tri := model.NewModel(model.WithName("tri"), model.WithMesh(model.Mesh{
		Vertices: []model.GPUVertex{
			model.NewGPUVertex([3]float32{0, 0, 0}, [3]float32{0, 0, -1}),
			model.NewGPUVertex([3]float32{0, 1, 0}, [3]float32{0, 0, -1}),
			model.NewGPUVertex([3]float32{1, 0, 0}, [3]float32{0, 0, -1}),
		},
		Indices: []uint16{0, 1, 2},
	}))
	return scene.NewRSMScene(tri, 1)
}

func newTestEngine(t *testing.T, w *fakeWindow, options ...EngineBuilderOption) (Engine, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice(2, 800, 600)
	options = append([]EngineBuilderOption{
		WithWindow(w),
		WithDevice(dev),
		WithScene(testScene()),
		WithProfiling(false),
	}, options...)
	e, err := NewEngine(options...)
	require.NoError(t, err)
	return e, dev
}

func TestEngine_RunRendersUntilWindowCloses(t *testing.T) {
	w := &fakeWindow{polls: 3}
	e, dev := newTestEngine(t, w)
	assert.Equal(t, renderer.StateIdle, e.Renderer().State())

	require.NoError(t, e.Run())

	assert.Equal(t, 3, dev.Chain().Presents())
	assert.Equal(t, renderer.StateDestroyed, e.Renderer().State())
	assert.True(t, dev.Released())
	assert.True(t, w.closed)
}

func TestEngine_FocusAndMinimizePause(t *testing.T) {
	w := &fakeWindow{polls: 6}
	var (
		e      Engine
		states []renderer.State
	)
	w.onPoll = func(w *fakeWindow, n int) {
		switch n {
		case 2:
			w.onFocus(false)
		case 3:
			w.onFocus(true)
		case 4:
			w.onMinimize(true)
		case 6:
			w.onMinimize(false)
		}
		states = append(states, e.Renderer().State())
	}
	e, dev := newTestEngine(t, w)

	require.NoError(t, e.Run())

	assert.Equal(t, []renderer.State{
		renderer.StateRunning,
		renderer.StatePaused,
		renderer.StateRunning,
		renderer.StatePaused,
		renderer.StatePaused,
		renderer.StateRunning,
	}, states)
	assert.Equal(t, 3, dev.Chain().Presents(), "paused iterations render nothing")
	assert.Equal(t, []int{3, 5, 6}, w.waited, "paused iterations block in the window")
}

func TestEngine_RunningLoopNeverBlocks(t *testing.T) {
	w := &fakeWindow{polls: 4}
	e, dev := newTestEngine(t, w)

	require.NoError(t, e.Run())

	assert.Empty(t, w.waited)
	assert.Equal(t, 4, dev.Chain().Presents())
}

func TestEngine_Quit(t *testing.T) {
	w := &fakeWindow{polls: 100}
	var e Engine
	w.onPoll = func(_ *fakeWindow, n int) {
		if n == 2 {
			e.Quit()
		}
	}
	e, dev := newTestEngine(t, w)

	require.NoError(t, e.Run())
	assert.Equal(t, 2, w.polled)
	assert.Equal(t, 2, dev.Chain().Presents())
}

func TestEngine_FrameErrorStopsLoop(t *testing.T) {
	w := &fakeWindow{polls: 10}
	lost := errors.New("device lost")
	var dev *gputest.Device
	w.onPoll = func(_ *fakeWindow, n int) {
		if n == 3 {
			dev.FailExecute = lost
		}
	}
	var e Engine
	e, dev = newTestEngine(t, w)

	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, lost)
	assert.Equal(t, 3, w.polled)
	assert.Equal(t, 2, dev.Chain().Presents())
	assert.Equal(t, renderer.StateDestroyed, e.Renderer().State())
	assert.True(t, w.closed)
}

func TestEngine_EventsReachHandlers(t *testing.T) {
	h := &recordingHandler{}
	w := &fakeWindow{polls: 2}
	w.onPoll = func(w *fakeWindow, n int) {
		w.onEvent(input.KeyDown(common.KeyP))
	}
	e, _ := newTestEngine(t, w)
	e.Input().Register(h)

	require.NoError(t, e.Run())
	assert.Equal(t, []input.Event{input.KeyDown(common.KeyP), input.KeyDown(common.KeyP)}, h.events)
	assert.Equal(t, 2, h.polls)
}

func TestEngine_FPSModeMovesCamera(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Mode = config.CameraModeFPS
	cfg.Camera.MoveStep = 0.5

	w := &fakeWindow{polls: 2}
	w.onPoll = func(w *fakeWindow, n int) {
		if n == 1 {
			w.onEvent(input.KeyDown(common.KeyW))
		}
	}
	e, _ := newTestEngine(t, w, WithConfig(cfg))
	cam := e.Renderer().Camera()
	start := cam.Position()
	look := cam.LookTo().Normalize()

	require.NoError(t, e.Run())

	moved := cam.Position().Sub(start)
	assert.InDelta(t, 1.0, moved.Len(), 1e-4, "two ticks of 0.5")
	assert.InDelta(t, 1.0, moved.Normalize().Dot(look), 1e-4)
}

func TestEngine_OrbitModeFocusesCamera(t *testing.T) {
	w := &fakeWindow{}
	e, _ := newTestEngine(t, w)
	cam := e.Renderer().Camera()

	focus := mgl32.Vec3(config.Default().Camera.Focus)
	want := focus.Sub(cam.Position()).Normalize()
	assert.InDelta(t, 1.0, cam.LookTo().Normalize().Dot(want), 1e-4)
	assert.Equal(t, 1, e.Input().Len())
}

func TestNewEngine_LoadsMeshFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	cfg := config.Default()
	cfg.Scene.MeshPath = path
	e, err := NewEngine(
		WithConfig(cfg),
		WithWindow(&fakeWindow{}),
		WithDevice(gputest.NewDevice(2, 800, 600)),
	)
	require.NoError(t, err)
	assert.Len(t, e.Scene().Items(), 4)
	assert.Equal(t, "tri", e.Scene().Items()[0].Material.Name)
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(WithWindow(&fakeWindow{}), WithDevice(gputest.NewDevice(2, 8, 8)))
	assert.ErrorIs(t, err, ErrNoMesh)

	cfg := config.Default()
	cfg.Renderer.RSMSize = 0
	_, err = NewEngine(WithConfig(cfg))
	assert.ErrorIs(t, err, config.ErrInvalid)

	cfg = config.Default()
	cfg.Scene.MeshPath = filepath.Join(t.TempDir(), "missing.obj")
	_, err = NewEngine(WithConfig(cfg))
	assert.ErrorIs(t, err, os.ErrNotExist)

	w := &fakeWindow{}
	dev := gputest.NewDevice(0, 0, 0)
	_, err = NewEngine(WithWindow(w), WithDevice(dev), WithScene(testScene()))
	require.Error(t, err, "headless device has no swap chain")
	assert.True(t, dev.Released())
	assert.True(t, w.closed)
}
