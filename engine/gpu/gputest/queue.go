package gputest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

type queue struct {
	dev *Device
}

func (q *queue) ExecuteCommandLists(lists ...gpu.CommandList) error {
	d := q.dev
	d.mu.Lock()
	failure := d.FailExecute
	d.FailExecute = nil
	d.mu.Unlock()
	if failure != nil {
		return failure
	}

	for _, list := range lists {
		if err := gpu.Replay(list, d.tracker, &recorder{dev: d, list: list.Label()}); err != nil {
			return err
		}
		d.event("execute", list.Label(), 0)
	}
	return nil
}

func (q *queue) Signal(fence gpu.Fence, value uint64) error {
	f, ok := fence.(*Fence)
	if !ok {
		return fmt.Errorf("gputest: foreign fence")
	}
	f.signal(value)
	q.dev.event("signal", "", value)
	return nil
}

type recorder struct {
	dev  *Device
	list string
}

func (r *recorder) Barrier(b gpu.Barrier) {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	r.dev.barriers = append(r.dev.barriers, b)
}

func (r *recorder) ClearRenderTarget(tex gpu.Texture, color [4]float32) {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	r.dev.clears = append(r.dev.clears, Clear{List: r.list, Texture: tex, Color: color})
}

func (r *recorder) ClearDepth(tex gpu.Texture, depth float32) {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	r.dev.clears = append(r.dev.clears, Clear{List: r.list, Texture: tex, Depth: depth})
}

func (r *recorder) Draw(st *gpu.DrawState, draw gpu.CmdDrawIndexed) {
	r.dev.mu.Lock()
	defer r.dev.mu.Unlock()
	r.dev.draws = append(r.dev.draws, Draw{List: r.list, State: *st, Args: draw})
}

func (r *recorder) Copy(c gpu.CmdCopyBufferRegion) {
	dst, ok1 := c.Dst.(*Buffer)
	src, ok2 := c.Src.(*Buffer)
	if ok1 && ok2 {
		dst.copyFrom(src, c.DstOffset, c.SrcOffset, c.Size)
	}
}

// SwapChain is an in-memory swap chain.
type SwapChain struct {
	dev      *Device
	buffers  []*Texture
	current  int
	presents int
}

func newSwapChain(d *Device, count int, width, height uint32) *SwapChain {
	s := &SwapChain{dev: d}
	for i := 0; i < count; i++ {
		t := &Texture{desc: gpu.TextureDesc{
			Label:        fmt.Sprintf("back buffer %d", i),
			Width:        width,
			Height:       height,
			Format:       gpu.FormatRGBA8Unorm,
			Usage:        gpu.TextureUsageRenderTarget | gpu.TextureUsagePresent,
			InitialState: gpu.ResourceStatePresent,
		}}
		d.tracker.Register(t, gpu.ResourceStatePresent)
		s.buffers = append(s.buffers, t)
	}
	return s
}

func (s *SwapChain) BufferCount() int { return len(s.buffers) }

func (s *SwapChain) CurrentBackBufferIndex() int {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.current
}

func (s *SwapChain) BackBuffer(i int) gpu.Texture {
	if i < 0 || i >= len(s.buffers) {
		return nil
	}
	return s.buffers[i]
}

func (s *SwapChain) Format() gpu.Format { return gpu.FormatRGBA8Unorm }

func (s *SwapChain) Present() error {
	s.dev.mu.Lock()
	bb := s.buffers[s.current]
	s.dev.mu.Unlock()
	if st, _ := s.dev.tracker.State(bb); st != gpu.ResourceStatePresent {
		return fmt.Errorf("%w: %q is %s at present", gpu.ErrInvalidState, bb.Label(), st)
	}
	s.dev.mu.Lock()
	s.current = (s.current + 1) % len(s.buffers)
	s.presents++
	s.dev.mu.Unlock()
	s.dev.event("present", bb.Label(), 0)
	return nil
}

// Presents returns how many frames were presented.
func (s *SwapChain) Presents() int {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.presents
}
