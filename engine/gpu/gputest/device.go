// Package gputest provides a recording gpu.Device for tests. It executes command lists through
// the same validation layer as the WebGPU backend and records every resolved operation so tests
// can assert on barriers, clears, draws, buffer contents and fence traffic without a GPU.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// Event is one entry of the device timeline.
type Event struct {
	Kind  string
	Label string
	Value uint64
}

// Draw is a recorded draw with the state it was issued under.
type Draw struct {
	List  string
	State gpu.DrawState
	Args  gpu.CmdDrawIndexed
}

// Clear is a recorded clear of a color or depth target.
type Clear struct {
	List    string
	Texture gpu.Texture
	Color   [4]float32
	Depth   float32
}

// Device is an in-memory gpu.Device.
type Device struct {
	mu        sync.Mutex
	tracker   *gpu.StateTracker
	queue     *queue
	swapChain *SwapChain

	events   []Event
	barriers []gpu.Barrier
	clears   []Clear
	draws    []Draw
	buffers  []*Buffer
	textures []*Texture
	released bool

	// FailExecute, when set, is returned by the next ExecuteCommandLists call.
	FailExecute error
}

var _ gpu.Device = &Device{}

// NewDevice returns a recording device with a swap chain of bufferCount back buffers of the given
// size. A bufferCount of zero creates a headless device.
func NewDevice(bufferCount int, width, height uint32) *Device {
	d := &Device{tracker: gpu.NewStateTracker()}
	d.queue = &queue{dev: d}
	if bufferCount > 0 {
		d.swapChain = newSwapChain(d, bufferCount, width, height)
	}
	return d
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("gputest: buffer %q has zero size", desc.Label)
	}
	b := &Buffer{desc: desc, data: make([]byte, desc.Size)}
	d.mu.Lock()
	d.buffers = append(d.buffers, b)
	d.mu.Unlock()
	d.tracker.Register(b, gpu.ResourceStateCommon)
	return b, nil
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if !desc.Usage.Allows(desc.InitialState) {
		return nil, fmt.Errorf("%w: texture %q created in %s", gpu.ErrInvalidState, desc.Label, desc.InitialState)
	}
	t := &Texture{desc: desc}
	d.mu.Lock()
	d.textures = append(d.textures, t)
	d.mu.Unlock()
	d.tracker.Register(t, desc.InitialState)
	return t, nil
}

func (d *Device) CreateDescriptorHeap(kind gpu.DescriptorHeapType, capacity int) (gpu.DescriptorHeap, error) {
	return gpu.NewDescriptorHeap(kind, capacity)
}

func (d *Device) CreateRootSignature(desc gpu.RootSignatureDesc) (gpu.RootSignature, error) {
	return &RootSignature{desc: desc}, nil
}

func (d *Device) CreateGraphicsPipeline(desc gpu.GraphicsPipelineDesc) (gpu.Pipeline, error) {
	if desc.RootSignature == nil {
		return nil, fmt.Errorf("gputest: pipeline %q has no root signature", desc.Label)
	}
	if desc.Shader.Code == "" {
		return nil, fmt.Errorf("gputest: pipeline %q has no shader code", desc.Label)
	}
	return &Pipeline{desc: desc}, nil
}

func (d *Device) CreateCommandList(label string) (gpu.CommandList, error) {
	return gpu.NewCommandList(label), nil
}

func (d *Device) CreateFence(initial uint64) (gpu.Fence, error) {
	return &Fence{dev: d, completed: initial, signaled: initial}, nil
}

func (d *Device) Queue() gpu.Queue { return d.queue }

func (d *Device) SwapChain() gpu.SwapChain {
	if d.swapChain == nil {
		return nil
	}
	return d.swapChain
}

func (d *Device) ConstantBufferAlignment() uint64 { return 256 }

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
}

// Chain returns the concrete swap chain, or nil for a headless device.
func (d *Device) Chain() *SwapChain { return d.swapChain }

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// State returns the tracked state of r.
func (d *Device) State(r gpu.Resource) gpu.ResourceState {
	s, _ := d.tracker.State(r)
	return s
}

// Events returns the timeline of executions, signals, waits and presents.
func (d *Device) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// EventKinds returns the kinds of Events in order.
func (d *Device) EventKinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Kind
	}
	return out
}

// Barriers returns every applied barrier in order.
func (d *Device) Barriers() []gpu.Barrier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.Barrier(nil), d.barriers...)
}

// BarriersOn returns the barriers applied to r.
func (d *Device) BarriersOn(r gpu.Resource) []gpu.Barrier {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []gpu.Barrier
	for _, b := range d.barriers {
		if b.Resource == r {
			out = append(out, b)
		}
	}
	return out
}

// Clears returns every clear in order.
func (d *Device) Clears() []Clear {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Clear(nil), d.clears...)
}

// Draws returns every draw in order.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// Textures returns every texture created on the device.
func (d *Device) Textures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Texture(nil), d.textures...)
}

// Reset forgets recorded operations but keeps resources and their states.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
	d.barriers = nil
	d.clears = nil
	d.draws = nil
}

func (d *Device) event(kind, label string, value uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Kind: kind, Label: label, Value: value})
}
