package window

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-rsm/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event delivery.
// Wraps the platform-specific window implementation with a common interface.
type Window interface {
	// SetEventCallback sets the function receiving translated input events.
	//
	// Parameters:
	//   - callback: function to call for each event (or nil to disable)
	SetEventCallback(callback func(e input.Event))

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetFocusCallback sets the function called when the window gains or loses focus.
	//
	// Parameters:
	//   - callback: function receiving true on focus gain
	SetFocusCallback(callback func(focused bool))

	// SetMinimizeCallback sets the function called when the window is minimized or restored.
	//
	// Parameters:
	//   - callback: function receiving true when minimized
	SetMinimizeCallback(callback func(minimized bool))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true while the window is open.
	IsRunning() bool

	// PollEvents delivers pending platform events without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// WaitEvents blocks until a platform event arrives or the timeout elapses, then delivers
	// pending events.
	//
	// Parameters:
	//   - timeout: the longest time to block
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	WaitEvents(timeout time.Duration) bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never opened or is already closed
	Close() error

	// Title returns the window title.
	Title() string

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// minWidth and minHeight bound interactive resizing.
	minWidth  int
	minHeight int

	// width and height track the framebuffer size, which differs from the requested size on
	// high-DPI displays.
	width  int
	height int

	resizable bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onEvent    func(e input.Event)
	onResize   func(width, height int)
	onFocus    func(focused bool)
	onMinimize func(minimized bool)
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a new Window with the specified options.
// Applies default values first, then each option in order. The calling goroutine becomes the
// window's thread and must be the one that polls events.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-rsm",
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
		resizable: false,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("window: invalid size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetEventCallback(callback func(e input.Event)) {
	w.onEvent = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetFocusCallback(callback func(focused bool)) {
	w.onFocus = callback
}

func (w *engineWindow) SetMinimizeCallback(callback func(minimized bool)) {
	w.onMinimize = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) PollEvents() bool {
	if !w.IsRunning() {
		return false
	}
	return platformProcessMessages(w)
}

func (w *engineWindow) WaitEvents(timeout time.Duration) bool {
	if !w.IsRunning() {
		return false
	}
	return platformWaitMessages(w, timeout)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// emit forwards e to the event callback if one is set.
func (w *engineWindow) emit(e input.Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}
}
