package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuQueue struct {
	mu    sync.Mutex
	dev   *wgpuDevice
	queue *wgpu.Queue
}

var _ Queue = &wgpuQueue{}

func (q *wgpuQueue) ExecuteCommandLists(lists ...CommandList) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, list := range lists {
		encoder, err := q.dev.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: list.Label()})
		if err != nil {
			return fmt.Errorf("gpu: encoder for %q: %w", list.Label(), err)
		}
		sink := &wgpuEncoder{dev: q.dev, encoder: encoder}
		if err := Replay(list, q.dev.tracker, sink); err != nil {
			sink.abort()
			return err
		}
		if sink.err != nil {
			sink.abort()
			return fmt.Errorf("gpu: encode %q: %w", list.Label(), sink.err)
		}
		if err := sink.finish(q.queue); err != nil {
			return fmt.Errorf("gpu: submit %q: %w", list.Label(), err)
		}
	}
	return nil
}

func (q *wgpuQueue) Signal(fence Fence, value uint64) error {
	f, ok := fence.(*wgpuFence)
	if !ok {
		return fmt.Errorf("gpu: fence is not a WebGPU fence")
	}
	f.signal(value)
	return nil
}

// wgpuFence emulates a timeline fence. WebGPU completes submissions in order, so a signaled value
// is reached once the device has drained every submission made before the signal.
type wgpuFence struct {
	mu        sync.Mutex
	dev       *wgpuDevice
	completed uint64
	signaled  uint64
}

func (f *wgpuFence) signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.signaled {
		f.signaled = value
	}
}

func (f *wgpuFence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *wgpuFence) Wait(value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed >= value {
		return nil
	}
	if f.signaled < value {
		return fmt.Errorf("gpu: wait for fence value %d that was never signaled (last %d)", value, f.signaled)
	}
	f.dev.device.Poll(true, nil)
	f.completed = f.signaled
	return nil
}

// wgpuEncoder translates replayed commands into WebGPU render passes. Clears become load
// operations of the next pass that binds the cleared texture; clears of textures that are not
// drawn to before the next barrier or copy are flushed as empty passes.
type wgpuEncoder struct {
	dev     *wgpuDevice
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	targets []Texture
	depth   Texture
	err     error

	colorClears map[Texture][4]float32
	depthClears map[Texture]float32
	clearOrder  []Texture
}

var _ ReplaySink = &wgpuEncoder{}

func (e *wgpuEncoder) Barrier(Barrier) {
	e.endPass()
	e.flushClears()
}

func (e *wgpuEncoder) ClearRenderTarget(tex Texture, color [4]float32) {
	e.endPass()
	if e.colorClears == nil {
		e.colorClears = make(map[Texture][4]float32)
	}
	if _, ok := e.colorClears[tex]; !ok {
		e.clearOrder = append(e.clearOrder, tex)
	}
	e.colorClears[tex] = color
}

func (e *wgpuEncoder) ClearDepth(tex Texture, depth float32) {
	e.endPass()
	if e.depthClears == nil {
		e.depthClears = make(map[Texture]float32)
	}
	if _, ok := e.depthClears[tex]; !ok {
		e.clearOrder = append(e.clearOrder, tex)
	}
	e.depthClears[tex] = depth
}

func (e *wgpuEncoder) Copy(c CmdCopyBufferRegion) {
	e.endPass()
	e.flushClears()
	src, ok1 := c.Src.(*wgpuBuffer)
	dst, ok2 := c.Dst.(*wgpuBuffer)
	if !ok1 || !ok2 {
		e.fail(fmt.Errorf("copy between foreign buffers"))
		return
	}
	e.encoder.CopyBufferToBuffer(src.buffer, c.SrcOffset, dst.buffer, c.DstOffset, AlignUp(c.Size, 4))
}

func (e *wgpuEncoder) Draw(st *DrawState, draw CmdDrawIndexed) {
	if e.err != nil {
		return
	}
	p, ok := st.Pipeline.(*wgpuPipeline)
	if !ok {
		e.fail(fmt.Errorf("pipeline %q is not a WebGPU pipeline", st.Pipeline.Label()))
		return
	}
	if e.pass == nil || !e.sameTargets(st) {
		e.endPass()
		if err := e.beginPass(st); err != nil {
			e.fail(err)
			return
		}
	}

	e.pass.SetPipeline(p.pipeline)
	for i := 0; i < p.groups; i++ {
		group, err := p.rootSignature.bindGroup(e.dev.device, i, st.Tables[i])
		if err != nil {
			e.fail(fmt.Errorf("root table %d: %w", i, err))
			return
		}
		e.pass.SetBindGroup(uint32(i), group, nil)
	}
	if p.groups == len(p.rootSignature.layouts) && p.rootSignature.samplerGroup != nil {
		e.pass.SetBindGroup(uint32(p.groups), p.rootSignature.samplerGroup, nil)
	}

	vb := st.VertexBuffer.Buffer.(*wgpuBuffer)
	ib := st.IndexBuffer.Buffer.(*wgpuBuffer)
	e.pass.SetVertexBuffer(0, vb.buffer, st.VertexBuffer.Offset, st.VertexBuffer.Size)
	format := wgpu.IndexFormatUint16
	if st.IndexBuffer.Format == IndexFormatUint32 {
		format = wgpu.IndexFormatUint32
	}
	e.pass.SetIndexBuffer(ib.buffer, format, st.IndexBuffer.Offset, st.IndexBuffer.Size)

	vp := st.Viewport
	e.pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	x, y, w, h := e.scissor(st)
	e.pass.SetScissorRect(x, y, w, h)

	e.pass.DrawIndexed(draw.IndexCount, draw.InstanceCount, draw.StartIndex, draw.BaseVertex, draw.StartInstance)
}

func (e *wgpuEncoder) sameTargets(st *DrawState) bool {
	if st.DepthStencil != e.depth || len(st.RenderTargets) != len(e.targets) {
		return false
	}
	for i := range e.targets {
		if e.targets[i] != st.RenderTargets[i] {
			return false
		}
	}
	return true
}

func (e *wgpuEncoder) beginPass(st *DrawState) error {
	desc := &wgpu.RenderPassDescriptor{}
	for _, tex := range st.RenderTargets {
		view, err := viewOf(tex)
		if err != nil {
			return err
		}
		att := wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if c, ok := e.colorClears[tex]; ok {
			att.LoadOp = wgpu.LoadOpClear
			att.ClearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
			e.consumeClear(tex)
		}
		desc.ColorAttachments = append(desc.ColorAttachments, att)
	}
	if st.DepthStencil != nil {
		view, err := viewOf(st.DepthStencil)
		if err != nil {
			return err
		}
		att := &wgpu.RenderPassDepthStencilAttachment{
			View:         view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if d, ok := e.depthClears[st.DepthStencil]; ok {
			att.DepthLoadOp = wgpu.LoadOpClear
			att.DepthClearValue = d
			e.consumeClear(st.DepthStencil)
		}
		desc.DepthStencilAttachment = att
	}
	e.pass = e.encoder.BeginRenderPass(desc)
	e.targets = append(e.targets[:0], st.RenderTargets...)
	e.depth = st.DepthStencil
	return nil
}

func (e *wgpuEncoder) scissor(st *DrawState) (x, y, w, h uint32) {
	var width, height uint32
	if len(st.RenderTargets) > 0 {
		d := st.RenderTargets[0].Desc()
		width, height = d.Width, d.Height
	} else if st.DepthStencil != nil {
		d := st.DepthStencil.Desc()
		width, height = d.Width, d.Height
	}
	r := st.Scissor
	right := min(r.Right, width)
	bottom := min(r.Bottom, height)
	if r.Left >= right || r.Top >= bottom {
		return 0, 0, width, height
	}
	return r.Left, r.Top, right - r.Left, bottom - r.Top
}

func (e *wgpuEncoder) consumeClear(tex Texture) {
	delete(e.colorClears, tex)
	delete(e.depthClears, tex)
	for i, t := range e.clearOrder {
		if t == tex {
			e.clearOrder = append(e.clearOrder[:i], e.clearOrder[i+1:]...)
			break
		}
	}
}

func (e *wgpuEncoder) flushClears() {
	for len(e.clearOrder) > 0 {
		tex := e.clearOrder[0]
		st := &DrawState{}
		if tex.Desc().Format.IsDepth() {
			st.DepthStencil = tex
		} else {
			st.RenderTargets = []Texture{tex}
		}
		if err := e.beginPass(st); err != nil {
			e.fail(err)
			e.consumeClear(tex)
			continue
		}
		e.endPass()
	}
}

func (e *wgpuEncoder) endPass() {
	if e.pass == nil {
		return
	}
	e.pass.End()
	e.pass = nil
	e.targets = e.targets[:0]
	e.depth = nil
}

func (e *wgpuEncoder) finish(queue *wgpu.Queue) error {
	e.endPass()
	e.flushClears()
	if e.err != nil {
		e.abort()
		return e.err
	}
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		e.encoder.Release()
		return err
	}
	queue.Submit(cb)
	cb.Release()
	e.encoder.Release()
	return nil
}

func (e *wgpuEncoder) abort() {
	e.endPass()
	e.encoder.Release()
}

func (e *wgpuEncoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func viewOf(tex Texture) (*wgpu.TextureView, error) {
	v, ok := tex.(wgpuViewer)
	if !ok {
		return nil, fmt.Errorf("texture %q is not a WebGPU texture", tex.Label())
	}
	return v.view()
}
