package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/light"
	"github.com/Carmen-Shannon/oxy-rsm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rsm/engine/scene"
)

var (
	// ErrNotInitialized is returned by frame operations before Initialize or after Destroy.
	ErrNotInitialized = errors.New("renderer: not initialized")

	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("renderer: already initialized")
)

// State is the lifecycle state of a Renderer.
type State int

const (
	StateUninitialized State = iota
	StateIdle
	StateRunning
	StatePaused
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// RSMTarget indexes the four reflective shadow map targets. The order is the pass 1 output
// location order and the pass 2 texture binding order.
type RSMTarget int

const (
	RSMDepth RSMTarget = iota
	RSMNormal
	RSMFlux
	RSMWorldPos

	rsmTargetCount = 4
)

func (t RSMTarget) String() string {
	switch t {
	case RSMDepth:
		return "rsm depth"
	case RSMNormal:
		return "rsm normal"
	case RSMFlux:
		return "rsm flux"
	case RSMWorldPos:
		return "rsm world position"
	default:
		return "rsm unknown"
	}
}

// Root parameter indices shared by both passes.
const (
	rootTablePass  = 0
	rootTableModel = 1
	rootTableRSM   = 2
)

const (
	// DefaultRSMSize is the edge length of the square RSM targets.
	DefaultRSMSize = uint32(512)

	rsmFormat        = gpu.FormatRGBA32Float
	depthFormat      = gpu.FormatDepth16Unorm
	rsmDepthBias     = int32(10000)
	rsmSlopeBias     = float32(1)
	mainDSVSlot      = 0
	rsmDSVSlot       = 1
	passCBVSlot      = 0
	firstItemCBVSlot = 1
)

// DefaultBackgroundColor is the pass 2 back buffer clear color.
var DefaultBackgroundColor = common.Color{R: 0, G: 0.2, B: 0.4, A: 1}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device     gpu.Device
	cam        camera.Camera
	light      light.DirectionalLight
	rsmSize    uint32
	background common.Color

	state State
	timer *profiler.Timer
	stats profiler.FrameStats

	scene scene.Scene
	items []*scene.RenderItem

	swapChain   gpu.SwapChain
	bufferCount int
	frameIndex  int
	width       uint32
	height      uint32

	rtvHeap    gpu.DescriptorHeap
	dsvHeap    gpu.DescriptorHeap
	cbvSrvHeap gpu.DescriptorHeap

	rootSignature gpu.RootSignature
	rsmPSO        gpu.Pipeline
	shadingPSO    gpu.Pipeline
	cmd           gpu.CommandList
	fence         gpu.Fence
	fenceValue    uint64

	depthBuffer    gpu.Texture
	rsmDepthBuffer gpu.Texture
	rsmTargets     []RenderTarget

	vertexView gpu.VertexBufferView
	indexView  gpu.IndexBufferView

	passCB        gpu.Buffer
	passConstants PassConstants
	modelCB       gpu.Buffer
	modelStride   uint64
}

// Renderer draws a scene with reflective shadow maps. Each frame renders the scene from the light
// into four targets (depth, normal, flux and world position), then renders it from the camera,
// lighting every fragment directly and with indirect light gathered from the targets.
//
// A Renderer is driven from one goroutine: Initialize once, StartRunning, then Frame once per
// displayed frame, and Destroy at shutdown.
type Renderer interface {
	// Initialize creates every GPU resource and uploads the scene geometry.
	//
	// Parameters:
	//   - s: the scene to draw; its item set must not change afterwards
	//
	// Returns:
	//   - error: ErrAlreadyInitialized on a second call, or the wrapped device error
	Initialize(s scene.Scene) error

	// StartRunning enables Update and Render. The frame time baseline is reset so that time
	// spent idle or paused is not counted.
	//
	// Returns:
	//   - error: ErrNotInitialized before Initialize or after Destroy
	StartRunning() error

	// PauseRunning disables Update and Render and pauses the elapsed time. GPU resources stay
	// alive. It does nothing unless the renderer is running.
	PauseRunning()

	// Update advances frame statistics and uploads model and pass constants. It does nothing
	// unless the renderer is running.
	//
	// Returns:
	//   - error: the wrapped buffer write error
	Update() error

	// Render submits both passes, presents and waits for the GPU. It does nothing unless the
	// renderer is running.
	//
	// Returns:
	//   - error: ErrNotInitialized before Initialize or after Destroy, or the wrapped device error
	Render() error

	// Frame runs Update followed by Render.
	//
	// Returns:
	//   - error: the first error of either step
	Frame() error

	// WaitForGPU signals the fence with the next value and blocks until the GPU reaches it.
	//
	// Returns:
	//   - error: ErrNotInitialized before the fence exists, or the wrapped signal or wait error
	WaitForGPU() error

	// Destroy waits for the GPU, then releases every resource and the device. Calling it more
	// than once does nothing.
	//
	// Returns:
	//   - error: the wrapped wait error; resources are released regardless
	Destroy() error

	// Camera returns the camera pass 2 renders from. Input handlers mutate it between frames.
	Camera() camera.Camera

	// Light returns the directional light pass 1 renders from.
	Light() light.DirectionalLight

	// State returns the lifecycle state.
	State() State

	// FrameIndex returns the back buffer index the next frame renders into.
	FrameIndex() int

	// RenderTargets returns the four RSM targets in RSMTarget order, or nil before Initialize.
	RenderTargets() []RenderTarget

	// Stats returns a copy of the frame statistics.
	Stats() profiler.FrameStats

	// PassConstants returns a copy of the constants uploaded by the last Update.
	PassConstants() PassConstants

	// ViewportSize returns the back buffer size in pixels.
	ViewportSize() (uint32, uint32)

	// RSMSize returns the edge length of the RSM targets in texels.
	RSMSize() uint32
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the swap chain of device. The renderer takes
// ownership of the device and releases it in Destroy.
//
// Parameters:
//   - device: the device to render with; it must have a swap chain
//   - options: the RendererBuilderOptions to apply
//
// Returns:
//   - Renderer: the new renderer in StateUninitialized
func NewRenderer(device gpu.Device, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		device:     device,
		rsmSize:    DefaultRSMSize,
		background: DefaultBackgroundColor,
		timer:      profiler.NewTimer(nil),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.cam == nil {
		r.cam = camera.NewCamera()
	}
	if r.light == nil {
		r.light = light.NewDirectionalLight()
	}
	return r
}

func (r *renderer) StartRunning() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateUninitialized, StateDestroyed:
		return ErrNotInitialized
	case StateRunning:
		return nil
	}
	r.stats.Restart(r.timer.Now())
	r.timer.Start()
	r.setState(StateRunning)
	return nil
}

func (r *renderer) PauseRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	r.timer.Pause()
	r.setState(StatePaused)
}

func (r *renderer) Frame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.update(); err != nil {
		return err
	}
	return r.render()
}

func (r *renderer) Update() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update()
}

func (r *renderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.render()
}

func (r *renderer) WaitForGPU() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fence == nil {
		return ErrNotInitialized
	}
	return r.waitForGPU()
}

func (r *renderer) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateDestroyed {
		return nil
	}

	var err error
	if r.fence != nil {
		err = r.waitForGPU()
	}
	for _, rt := range r.rsmTargets {
		rt.Release()
	}
	r.rsmTargets = nil
	r.items = nil
	if r.cam != nil {
		r.cam.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	r.setState(StateDestroyed)
	return err
}

func (r *renderer) Camera() camera.Camera {
	return r.cam
}

func (r *renderer) Light() light.DirectionalLight {
	return r.light
}

func (r *renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *renderer) FrameIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameIndex
}

func (r *renderer) RenderTargets() []RenderTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rsmTargets == nil {
		return nil
	}
	return append([]RenderTarget(nil), r.rsmTargets...)
}

func (r *renderer) Stats() profiler.FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) PassConstants() PassConstants {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passConstants
}

func (r *renderer) ViewportSize() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) RSMSize() uint32 {
	return r.rsmSize
}

func (r *renderer) setState(s State) {
	common.Logger().Info("renderer state", "from", r.state.String(), "to", s.String())
	r.state = s
}
