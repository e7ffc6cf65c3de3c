package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuSwapChain exposes the surface as a ring of logical back buffers. WebGPU hands out one
// surface image at a time, so every back buffer resolves to the image acquired for the current
// frame; the ring only provides the indices and the per-buffer state tracking.
type wgpuSwapChain struct {
	mu          sync.Mutex
	dev         *wgpuDevice
	presentMode wgpu.PresentMode
	format      wgpu.TextureFormat
	width       uint32
	height      uint32
	current     int
	buffers     []*wgpuBackBuffer

	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ SwapChain = &wgpuSwapChain{}

type wgpuBackBuffer struct {
	chain *wgpuSwapChain
	index int
}

func (b *wgpuBackBuffer) Label() string { return fmt.Sprintf("back buffer %d", b.index) }

func (b *wgpuBackBuffer) Desc() TextureDesc {
	b.chain.mu.Lock()
	defer b.chain.mu.Unlock()
	return TextureDesc{
		Label:        b.Label(),
		Width:        b.chain.width,
		Height:       b.chain.height,
		Format:       fromWGPUTextureFormat(b.chain.format),
		Usage:        TextureUsageRenderTarget | TextureUsagePresent,
		InitialState: ResourceStatePresent,
	}
}

func (b *wgpuBackBuffer) view() (*wgpu.TextureView, error) {
	return b.chain.acquire(b.index)
}

func newWGPUSwapChain(dev *wgpuDevice, count int, presentMode wgpu.PresentMode) *wgpuSwapChain {
	s := &wgpuSwapChain{dev: dev, presentMode: presentMode}
	for i := 0; i < count; i++ {
		bb := &wgpuBackBuffer{chain: s, index: i}
		s.buffers = append(s.buffers, bb)
		dev.tracker.Register(bb, ResourceStatePresent)
	}
	return s
}

func (s *wgpuSwapChain) configure(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseFrame()
	capabilities := s.dev.surface.GetCapabilities(s.dev.adapter)
	s.format = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatRGBA8Unorm {
			s.format = f
			break
		}
	}
	s.width = uint32(max(width, 1))
	s.height = uint32(max(height, 1))

	s.dev.surface.Configure(s.dev.adapter, s.dev.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       s.width,
		Height:      s.height,
		PresentMode: s.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (s *wgpuSwapChain) BufferCount() int { return len(s.buffers) }

func (s *wgpuSwapChain) CurrentBackBufferIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *wgpuSwapChain) BackBuffer(i int) Texture {
	if i < 0 || i >= len(s.buffers) {
		return nil
	}
	return s.buffers[i]
}

func (s *wgpuSwapChain) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fromWGPUTextureFormat(s.format)
}

func (s *wgpuSwapChain) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bb := s.buffers[s.current]
	if err := s.dev.tracker.expect(bb, ResourceStatePresent); err != nil {
		return err
	}
	if s.frameTexture != nil {
		s.dev.surface.Present()
	}
	s.releaseFrame()
	s.current = (s.current + 1) % len(s.buffers)
	return nil
}

// acquire returns the view of the surface image for back buffer i, acquiring the image on first
// use within a frame.
func (s *wgpuSwapChain) acquire(i int) (*wgpu.TextureView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i != s.current {
		return nil, fmt.Errorf("gpu: back buffer %d is not current (current %d)", i, s.current)
	}
	if s.frameView != nil {
		return s.frameView, nil
	}
	tex, err := s.dev.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("gpu: acquire surface image: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: surface image view: %w", err)
	}
	s.frameTexture = tex
	s.frameView = view
	return view, nil
}

func (s *wgpuSwapChain) releaseFrame() {
	if s.frameView != nil {
		s.frameView.Release()
		s.frameView = nil
	}
	if s.frameTexture != nil {
		s.frameTexture.Release()
		s.frameTexture = nil
	}
}

func (s *wgpuSwapChain) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseFrame()
}
