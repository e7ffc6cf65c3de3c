package gpu

import (
	"fmt"
	"sync"
)

// DescriptorKind is the kind of view stored in a descriptor slot.
type DescriptorKind int

const (
	DescriptorEmpty DescriptorKind = iota
	DescriptorRTV
	DescriptorDSV
	DescriptorCBV
	DescriptorSRV
)

// Descriptor is the view stored in one heap slot.
type Descriptor struct {
	Kind    DescriptorKind
	Texture Texture
	Buffer  Buffer
	Offset  uint64
	Size    uint64
}

// DescriptorHandle addresses one slot of a descriptor heap.
type DescriptorHandle struct {
	heap  DescriptorHeap
	index int
}

// Heap returns the heap the handle points into.
func (h DescriptorHandle) Heap() DescriptorHeap { return h.heap }

// Index returns the slot index.
func (h DescriptorHandle) Index() int { return h.index }

// IsValid reports whether the handle points at a slot inside its heap.
func (h DescriptorHandle) IsValid() bool {
	return h.heap != nil && h.index >= 0 && h.index < h.heap.Capacity()
}

// Offset returns the handle n slots further into the same heap.
func (h DescriptorHandle) Offset(n int) DescriptorHandle {
	return DescriptorHandle{heap: h.heap, index: h.index + n}
}

// Descriptor returns the view stored at the handle.
func (h DescriptorHandle) Descriptor() (Descriptor, error) {
	if !h.IsValid() {
		return Descriptor{}, fmt.Errorf("%w: %d", ErrDescriptorOutOfRange, h.index)
	}
	d := h.heap.Get(h.index)
	if d.Kind == DescriptorEmpty {
		return Descriptor{}, fmt.Errorf("%w: %s[%d]", ErrEmptyDescriptor, h.heap.Type(), h.index)
	}
	return d, nil
}

// DescriptorHeap is a fixed-size array of view slots.
type DescriptorHeap interface {
	// Type returns the kind of views the heap stores.
	Type() DescriptorHeapType

	// Capacity returns the number of slots.
	Capacity() int

	// Handle returns the handle of slot i.
	Handle(i int) DescriptorHandle

	// Get returns the descriptor in slot i, or an empty descriptor when i is out of range.
	Get(i int) Descriptor

	// CreateRenderTargetView writes a render target view of tex into slot.
	//
	// Parameters:
	//   - slot: the destination slot
	//   - tex: a texture created with TextureUsageRenderTarget
	//
	// Returns:
	//   - error: an error if the slot, heap type or texture usage does not match
	CreateRenderTargetView(slot int, tex Texture) error

	// CreateDepthStencilView writes a depth stencil view of tex into slot.
	CreateDepthStencilView(slot int, tex Texture) error

	// CreateShaderResourceView writes a shader resource view of tex into slot.
	CreateShaderResourceView(slot int, tex Texture) error

	// CreateConstantBufferView writes a view of size bytes of buf starting at offset into slot.
	CreateConstantBufferView(slot int, buf Buffer, offset, size uint64) error
}

type descriptorHeap struct {
	mu    sync.RWMutex
	kind  DescriptorHeapType
	slots []Descriptor
}

var _ DescriptorHeap = &descriptorHeap{}

// NewDescriptorHeap returns a CPU-side descriptor heap. Backends share this implementation and
// resolve the stored views when a command list is executed.
//
// Parameters:
//   - kind: the type of views the heap stores
//   - capacity: the number of slots, at least one
//
// Returns:
//   - DescriptorHeap: the new heap
//   - error: an error if capacity is not positive
func NewDescriptorHeap(kind DescriptorHeapType, capacity int) (DescriptorHeap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("gpu: descriptor heap %s capacity must be positive, got %d", kind, capacity)
	}
	return &descriptorHeap{kind: kind, slots: make([]Descriptor, capacity)}, nil
}

func (h *descriptorHeap) Type() DescriptorHeapType { return h.kind }

func (h *descriptorHeap) Capacity() int { return len(h.slots) }

func (h *descriptorHeap) Handle(i int) DescriptorHandle {
	return DescriptorHandle{heap: h, index: i}
}

func (h *descriptorHeap) Get(i int) Descriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.slots) {
		return Descriptor{}
	}
	return h.slots[i]
}

func (h *descriptorHeap) CreateRenderTargetView(slot int, tex Texture) error {
	if err := h.check(slot, DescriptorHeapRTV, tex, TextureUsageRenderTarget); err != nil {
		return err
	}
	return h.put(slot, Descriptor{Kind: DescriptorRTV, Texture: tex})
}

func (h *descriptorHeap) CreateDepthStencilView(slot int, tex Texture) error {
	if err := h.check(slot, DescriptorHeapDSV, tex, TextureUsageDepthStencil); err != nil {
		return err
	}
	return h.put(slot, Descriptor{Kind: DescriptorDSV, Texture: tex})
}

func (h *descriptorHeap) CreateShaderResourceView(slot int, tex Texture) error {
	if err := h.check(slot, DescriptorHeapCBVSRV, tex, TextureUsageShaderResource); err != nil {
		return err
	}
	return h.put(slot, Descriptor{Kind: DescriptorSRV, Texture: tex})
}

func (h *descriptorHeap) CreateConstantBufferView(slot int, buf Buffer, offset, size uint64) error {
	if h.kind != DescriptorHeapCBVSRV {
		return fmt.Errorf("gpu: constant buffer view in %s heap", h.kind)
	}
	if buf == nil {
		return fmt.Errorf("gpu: constant buffer view of nil buffer")
	}
	if offset+size > buf.Size() {
		return fmt.Errorf("gpu: constant buffer view [%d, %d) exceeds %q size %d", offset, offset+size, buf.Label(), buf.Size())
	}
	return h.put(slot, Descriptor{Kind: DescriptorCBV, Buffer: buf, Offset: offset, Size: size})
}

func (h *descriptorHeap) check(slot int, want DescriptorHeapType, tex Texture, usage TextureUsage) error {
	if h.kind != want {
		return fmt.Errorf("gpu: %s view in %s heap", want, h.kind)
	}
	if tex == nil {
		return fmt.Errorf("gpu: %s view of nil texture", want)
	}
	if tex.Desc().Usage&usage == 0 {
		return fmt.Errorf("gpu: texture %q lacks usage for %s view", tex.Label(), want)
	}
	return nil
}

func (h *descriptorHeap) put(slot int, d Descriptor) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slot < 0 || slot >= len(h.slots) {
		return fmt.Errorf("%w: %s[%d] of %d", ErrDescriptorOutOfRange, h.kind, slot, len(h.slots))
	}
	h.slots[slot] = d
	return nil
}
