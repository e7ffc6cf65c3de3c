package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// Buffer is an in-memory buffer.
type Buffer struct {
	mu   sync.Mutex
	desc gpu.BufferDesc
	data []byte
}

func (b *Buffer) Label() string      { return b.desc.Label }
func (b *Buffer) Size() uint64       { return b.desc.Size }
func (b *Buffer) Heap() gpu.HeapType { return b.desc.Heap }

func (b *Buffer) Write(offset uint64, data []byte) error {
	if b.desc.Heap != gpu.HeapTypeUpload {
		return fmt.Errorf("%w: %q", gpu.ErrNotMappable, b.desc.Label)
	}
	if offset+uint64(len(data)) > b.desc.Size {
		return fmt.Errorf("gputest: write of %d bytes at %d exceeds %q size %d", len(data), offset, b.desc.Label, b.desc.Size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.data[offset:], data)
	return nil
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

func (b *Buffer) copyFrom(src *Buffer, dstOffset, srcOffset, size uint64) {
	data := src.Bytes()[srcOffset : srcOffset+size]
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.data[dstOffset:], data)
}

// Texture is an in-memory texture without contents.
type Texture struct {
	desc gpu.TextureDesc
}

func (t *Texture) Label() string         { return t.desc.Label }
func (t *Texture) Desc() gpu.TextureDesc { return t.desc }

// RootSignature records its description.
type RootSignature struct {
	desc gpu.RootSignatureDesc
}

func (r *RootSignature) Label() string               { return r.desc.Label }
func (r *RootSignature) Desc() gpu.RootSignatureDesc { return r.desc }

// Pipeline records its description.
type Pipeline struct {
	desc gpu.GraphicsPipelineDesc
}

func (p *Pipeline) Label() string                  { return p.desc.Label }
func (p *Pipeline) Desc() gpu.GraphicsPipelineDesc { return p.desc }

// Fence completes signaled values lazily, on Wait, so callers exercise their wait path.
type Fence struct {
	mu        sync.Mutex
	dev       *Device
	completed uint64
	signaled  uint64
	waits     int
}

func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *Fence) Wait(value uint64) error {
	f.mu.Lock()
	if f.completed >= value {
		f.mu.Unlock()
		return nil
	}
	if f.signaled < value {
		f.mu.Unlock()
		return fmt.Errorf("gputest: wait for fence value %d that was never signaled (last %d)", value, f.signaled)
	}
	f.completed = f.signaled
	f.waits++
	f.mu.Unlock()
	f.dev.event("wait", "", value)
	return nil
}

// Waits returns how many calls to Wait blocked.
func (f *Fence) Waits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}

// Signaled returns the last signaled value.
func (f *Fence) Signaled() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

func (f *Fence) signal(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v > f.signaled {
		f.signaled = v
	}
}
