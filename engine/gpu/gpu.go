// Package gpu models an explicit graphics API: resources carry an access state that callers move
// with barriers, views live in fixed slots of descriptor heaps, work is recorded into command
// lists and submitted to a queue, and the CPU synchronizes with the GPU through fences.
//
// The package ships a WebGPU implementation (NewWGPUDevice) and a recording implementation for
// tests (package gputest). Both replay recorded command lists through the same validation layer,
// so a misuse such as clearing a texture that is not in the render-target state is reported as an
// error at submission time.
package gpu

import "errors"

var (
	// ErrInvalidState is returned when a barrier or command does not match the tracked state of a resource.
	ErrInvalidState = errors.New("gpu: invalid resource state")

	// ErrDescriptorOutOfRange is returned when a descriptor slot lies outside its heap.
	ErrDescriptorOutOfRange = errors.New("gpu: descriptor slot out of range")

	// ErrEmptyDescriptor is returned when a command references a descriptor slot that holds no view.
	ErrEmptyDescriptor = errors.New("gpu: descriptor slot is empty")

	// ErrCommandListClosed is returned when recording into a closed command list.
	ErrCommandListClosed = errors.New("gpu: command list is closed")

	// ErrCommandListOpen is returned when executing a command list that has not been closed.
	ErrCommandListOpen = errors.New("gpu: command list is not closed")

	// ErrNotMappable is returned when writing CPU data into a buffer that is not on the upload heap.
	ErrNotMappable = errors.New("gpu: buffer is not CPU visible")
)

// ResourceState is the access state of a resource on the GPU timeline.
type ResourceState int

const (
	// ResourceStateCommon is the state of freshly created buffers. Swap chain images use the same
	// value under the name ResourceStatePresent.
	ResourceStateCommon ResourceState = iota

	// ResourceStateRenderTarget allows a texture to be written through a render target view.
	ResourceStateRenderTarget

	// ResourceStateGenericRead allows a texture to be sampled through a shader resource view.
	ResourceStateGenericRead

	// ResourceStateDepthWrite allows a depth texture to be written through a depth stencil view.
	ResourceStateDepthWrite

	// ResourceStateCopyDest allows a resource to be the destination of a copy.
	ResourceStateCopyDest

	// ResourceStateCopySource allows a resource to be the source of a copy.
	ResourceStateCopySource
)

// ResourceStatePresent is the state a swap chain image must be in to be presented.
const ResourceStatePresent = ResourceStateCommon

func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "Common/Present"
	case ResourceStateRenderTarget:
		return "RenderTarget"
	case ResourceStateGenericRead:
		return "GenericRead"
	case ResourceStateDepthWrite:
		return "DepthWrite"
	case ResourceStateCopyDest:
		return "CopyDest"
	case ResourceStateCopySource:
		return "CopySource"
	default:
		return "Unknown"
	}
}

// Format is a texel or vertex attribute format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8Unorm
	FormatBGRA8Unorm
	FormatRGBA32Float
	FormatRGB32Float
	FormatDepth16Unorm
	FormatDepth32Float
)

// IsDepth reports whether f is a depth format.
func (f Format) IsDepth() bool {
	return f == FormatDepth16Unorm || f == FormatDepth32Float
}

// Size returns the size in bytes of one element of the format.
func (f Format) Size() uint64 {
	switch f {
	case FormatRGBA8Unorm, FormatBGRA8Unorm, FormatDepth32Float:
		return 4
	case FormatDepth16Unorm:
		return 2
	case FormatRGB32Float:
		return 12
	case FormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "RGBA8Unorm"
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	case FormatRGBA32Float:
		return "RGBA32Float"
	case FormatRGB32Float:
		return "RGB32Float"
	case FormatDepth16Unorm:
		return "Depth16Unorm"
	case FormatDepth32Float:
		return "Depth32Float"
	default:
		return "Unknown"
	}
}

// TextureUsage is a bit set of the ways a texture may be used.
type TextureUsage uint32

const (
	TextureUsageRenderTarget TextureUsage = 1 << iota
	TextureUsageDepthStencil
	TextureUsageShaderResource
	TextureUsagePresent
)

// Allows reports whether a texture with usage u may enter state s.
func (u TextureUsage) Allows(s ResourceState) bool {
	switch s {
	case ResourceStateRenderTarget:
		return u&TextureUsageRenderTarget != 0
	case ResourceStateDepthWrite:
		return u&TextureUsageDepthStencil != 0
	case ResourceStateGenericRead:
		return u&TextureUsageShaderResource != 0
	case ResourceStateCommon:
		return true
	default:
		return false
	}
}

// HeapType selects the memory a buffer lives in.
type HeapType int

const (
	// HeapTypeDefault is GPU-local memory. It is filled by copies recorded on a command list.
	HeapTypeDefault HeapType = iota

	// HeapTypeUpload is CPU-writable memory that the GPU reads directly.
	HeapTypeUpload
)

// BufferUsage is a bit set of the ways a buffer may be bound.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageConstant
	BufferUsageCopySource
	BufferUsageCopyDest
)

// DescriptorHeapType is the kind of view a descriptor heap stores.
type DescriptorHeapType int

const (
	// DescriptorHeapRTV stores render target views.
	DescriptorHeapRTV DescriptorHeapType = iota

	// DescriptorHeapDSV stores depth stencil views.
	DescriptorHeapDSV

	// DescriptorHeapCBVSRV stores constant buffer and shader resource views, and is the only heap
	// type that descriptor tables can reference.
	DescriptorHeapCBVSRV
)

func (t DescriptorHeapType) String() string {
	switch t {
	case DescriptorHeapRTV:
		return "RTV"
	case DescriptorHeapDSV:
		return "DSV"
	case DescriptorHeapCBVSRV:
		return "CBV_SRV"
	default:
		return "Unknown"
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Size returns the size in bytes of one index.
func (f IndexFormat) Size() uint64 {
	if f == IndexFormatUint32 {
		return 4
	}
	return 2
}

// AddressMode controls sampling outside of [0, 1].
type AddressMode int

const (
	AddressModeClamp AddressMode = iota
	AddressModeWrap
	AddressModeBorder
)

// FilterMode controls texel filtering.
type FilterMode int

const (
	FilterPoint FilterMode = iota
	FilterLinear
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)
