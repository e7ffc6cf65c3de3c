package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// RenderTargetDescriptor fixes the size and pixel format of a RenderTarget at creation.
type RenderTargetDescriptor struct {
	Width  uint32
	Height uint32
	Format gpu.Format
}

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	label      string
	desc       RenderTargetDescriptor
	texture    gpu.Texture
	rtv        gpu.DescriptorHandle
	srv        gpu.DescriptorHandle
	clearColor [4]float32
	state      gpu.ResourceState
}

// RenderTarget is a texture that one pass writes through a render target view and a later pass
// reads through a shader resource view. It remembers the state it was last transitioned to, so
// callers can request a state without knowing the current one.
//
// The state is the recorded state: it changes when a transition is recorded, not when the
// command list executes. Every recorded list must therefore be executed in recording order.
type RenderTarget interface {
	// TransitionTo records a barrier to state unless the target is already in it.
	// Panics if the texture usage does not allow state.
	//
	// Parameters:
	//   - cmd: the open command list to record into
	//   - state: the requested state
	//
	// Returns:
	//   - bool: true if a barrier was recorded
	TransitionTo(cmd gpu.CommandList, state gpu.ResourceState) bool

	// Clear records a clear of the write view with the stored clear color.
	// The target must be in the render target state when the list executes.
	//
	// Parameters:
	//   - cmd: the open command list to record into
	Clear(cmd gpu.CommandList)

	// State returns the last recorded state.
	State() gpu.ResourceState

	// RTV returns the write view.
	RTV() gpu.DescriptorHandle

	// SRV returns the read view.
	SRV() gpu.DescriptorHandle

	// Texture returns the underlying texture.
	Texture() gpu.Texture

	// ClearColor returns the color written by Clear.
	ClearColor() [4]float32

	// Descriptor returns the size and format the target was created with.
	Descriptor() RenderTargetDescriptor

	// Release drops the texture and view handles. Views still bound in a descriptor heap keep
	// pointing at the texture until their slots are overwritten.
	Release()
}

var _ RenderTarget = &renderTarget{}

// NewRenderTarget creates the texture of a RenderTarget and its two views. The texture starts in
// the read state.
//
// Parameters:
//   - device: the device to allocate the texture on
//   - desc: the size and format of the texture
//   - rtv: the render target view slot
//   - srv: the shader resource view slot
//   - options: the RenderTargetBuilderOptions to apply
//
// Returns:
//   - RenderTarget: the new render target
//   - error: an error if the descriptor is invalid or allocation fails
func NewRenderTarget(device gpu.Device, desc RenderTargetDescriptor, rtv, srv gpu.DescriptorHandle, options ...RenderTargetBuilderOption) (RenderTarget, error) {
	rt := &renderTarget{
		label:      "render target",
		desc:       desc,
		rtv:        rtv,
		srv:        srv,
		clearColor: [4]float32{0, 0, 0, 1},
		state:      gpu.ResourceStateGenericRead,
	}
	for _, opt := range options {
		opt(rt)
	}

	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("render target %q: zero size %dx%d", rt.label, desc.Width, desc.Height)
	}
	if desc.Format == gpu.FormatUnknown || desc.Format.IsDepth() {
		return nil, fmt.Errorf("render target %q: format %s cannot be rendered to", rt.label, desc.Format)
	}

	tex, err := device.CreateTexture(gpu.TextureDesc{
		Label:        rt.label,
		Width:        desc.Width,
		Height:       desc.Height,
		Format:       desc.Format,
		Usage:        gpu.TextureUsageRenderTarget | gpu.TextureUsageShaderResource,
		InitialState: rt.state,
	})
	if err != nil {
		return nil, fmt.Errorf("render target %q: %w", rt.label, err)
	}
	rt.texture = tex

	if err := rtv.Heap().CreateRenderTargetView(rtv.Index(), tex); err != nil {
		return nil, fmt.Errorf("render target %q: write view: %w", rt.label, err)
	}
	if err := srv.Heap().CreateShaderResourceView(srv.Index(), tex); err != nil {
		return nil, fmt.Errorf("render target %q: read view: %w", rt.label, err)
	}
	return rt, nil
}

func (rt *renderTarget) TransitionTo(cmd gpu.CommandList, state gpu.ResourceState) bool {
	if rt.state == state {
		return false
	}
	if !rt.texture.Desc().Usage.Allows(state) {
		panic(fmt.Sprintf("render target %q: transition to %s not allowed by its usage", rt.label, state))
	}
	cmd.ResourceBarrier(gpu.Barrier{Resource: rt.texture, Before: rt.state, After: state})
	rt.state = state
	return true
}

func (rt *renderTarget) Clear(cmd gpu.CommandList) {
	cmd.ClearRenderTargetView(rt.rtv, rt.clearColor)
}

func (rt *renderTarget) State() gpu.ResourceState {
	return rt.state
}

func (rt *renderTarget) RTV() gpu.DescriptorHandle {
	return rt.rtv
}

func (rt *renderTarget) SRV() gpu.DescriptorHandle {
	return rt.srv
}

func (rt *renderTarget) Texture() gpu.Texture {
	return rt.texture
}

func (rt *renderTarget) ClearColor() [4]float32 {
	return rt.clearColor
}

func (rt *renderTarget) Descriptor() RenderTargetDescriptor {
	return rt.desc
}

func (rt *renderTarget) Release() {
	rt.texture = nil
	rt.rtv = gpu.DescriptorHandle{}
	rt.srv = gpu.DescriptorHandle{}
}
