package gpu

import (
	"fmt"
	"sync"
)

// Barrier moves a resource from one state to another.
type Barrier struct {
	Resource Resource
	Before   ResourceState
	After    ResourceState
}

// Command is one recorded operation. Backends type-switch over the concrete command types.
type Command interface {
	command()
}

type (
	// CmdBarrier transitions resources.
	CmdBarrier struct{ Barriers []Barrier }

	// CmdSetPipeline binds a pipeline state object.
	CmdSetPipeline struct{ Pipeline Pipeline }

	// CmdSetRootSignature binds the root signature that descriptor tables resolve against.
	CmdSetRootSignature struct{ RootSignature RootSignature }

	// CmdSetDescriptorTable binds the base handle of a root descriptor table.
	CmdSetDescriptorTable struct {
		RootIndex int
		Base      DescriptorHandle
	}

	// CmdSetViewport sets the viewport.
	CmdSetViewport struct{ Viewport Viewport }

	// CmdSetScissor sets the scissor rectangle.
	CmdSetScissor struct{ Rect Rect }

	// CmdSetRenderTargets binds render target views and an optional depth stencil view.
	CmdSetRenderTargets struct {
		RenderTargets []DescriptorHandle
		DepthStencil  *DescriptorHandle
	}

	// CmdClearRenderTarget clears a render target view to a color.
	CmdClearRenderTarget struct {
		View  DescriptorHandle
		Color [4]float32
	}

	// CmdClearDepth clears a depth stencil view.
	CmdClearDepth struct {
		View  DescriptorHandle
		Depth float32
	}

	// CmdSetVertexBuffer binds the vertex buffer.
	CmdSetVertexBuffer struct{ View VertexBufferView }

	// CmdSetIndexBuffer binds the index buffer.
	CmdSetIndexBuffer struct{ View IndexBufferView }

	// CmdDrawIndexed draws indexed, instanced primitives.
	CmdDrawIndexed struct {
		IndexCount    uint32
		InstanceCount uint32
		StartIndex    uint32
		BaseVertex    int32
		StartInstance uint32
	}

	// CmdCopyBufferRegion copies bytes between buffers.
	CmdCopyBufferRegion struct {
		Dst       Buffer
		DstOffset uint64
		Src       Buffer
		SrcOffset uint64
		Size      uint64
	}
)

func (CmdBarrier) command()            {}
func (CmdSetPipeline) command()        {}
func (CmdSetRootSignature) command()   {}
func (CmdSetDescriptorTable) command() {}
func (CmdSetViewport) command()        {}
func (CmdSetScissor) command()         {}
func (CmdSetRenderTargets) command()   {}
func (CmdClearRenderTarget) command()  {}
func (CmdClearDepth) command()         {}
func (CmdSetVertexBuffer) command()    {}
func (CmdSetIndexBuffer) command()     {}
func (CmdDrawIndexed) command()        {}
func (CmdCopyBufferRegion) command()   {}

// CommandList records GPU work for later submission. A list is created closed; Reset opens it
// and discards earlier commands, Close seals it for execution. Recording into a closed list
// is an error that is reported by Close.
type CommandList interface {
	// Label returns the debug name of the list.
	Label() string

	// Reset discards recorded commands and opens the list with an optional initial pipeline.
	//
	// Parameters:
	//   - pipeline: the pipeline to bind first, or nil
	//
	// Returns:
	//   - error: an error if the list is already open
	Reset(pipeline Pipeline) error

	// Close seals the list.
	//
	// Returns:
	//   - error: the first recording error, or an error if the list is not open
	Close() error

	// IsClosed reports whether the list is sealed.
	IsClosed() bool

	// Commands returns a copy of the recorded commands.
	Commands() []Command

	ResourceBarrier(barriers ...Barrier)
	SetPipelineState(pipeline Pipeline)
	SetGraphicsRootSignature(rs RootSignature)
	SetGraphicsDescriptorTable(rootIndex int, base DescriptorHandle)
	SetViewport(v Viewport)
	SetScissorRect(r Rect)
	SetRenderTargets(rtvs []DescriptorHandle, dsv *DescriptorHandle)
	ClearRenderTargetView(rtv DescriptorHandle, color [4]float32)
	ClearDepthStencilView(dsv DescriptorHandle, depth float32)
	SetVertexBuffer(view VertexBufferView)
	SetIndexBuffer(view IndexBufferView)
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)
	CopyBufferRegion(dst Buffer, dstOffset uint64, src Buffer, srcOffset, size uint64)
}

type commandList struct {
	mu       sync.Mutex
	label    string
	closed   bool
	err      error
	commands []Command
}

var _ CommandList = &commandList{}

// NewCommandList returns a closed command list. Backends share this recorder.
func NewCommandList(label string) CommandList {
	return &commandList{label: label, closed: true}
}

func (c *commandList) Label() string { return c.label }

func (c *commandList) Reset(pipeline Pipeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		return fmt.Errorf("gpu: reset of open command list %q", c.label)
	}
	c.closed = false
	c.err = nil
	c.commands = c.commands[:0]
	if pipeline != nil {
		c.commands = append(c.commands, CmdSetPipeline{Pipeline: pipeline})
	}
	return nil
}

func (c *commandList) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: %q", ErrCommandListClosed, c.label)
	}
	c.closed = true
	return c.err
}

func (c *commandList) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *commandList) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Command, len(c.commands))
	copy(out, c.commands)
	return out
}

func (c *commandList) record(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if c.err == nil {
			c.err = fmt.Errorf("%w: %q", ErrCommandListClosed, c.label)
		}
		return
	}
	c.commands = append(c.commands, cmd)
}

func (c *commandList) ResourceBarrier(barriers ...Barrier) {
	b := make([]Barrier, len(barriers))
	copy(b, barriers)
	c.record(CmdBarrier{Barriers: b})
}

func (c *commandList) SetPipelineState(pipeline Pipeline) {
	c.record(CmdSetPipeline{Pipeline: pipeline})
}

func (c *commandList) SetGraphicsRootSignature(rs RootSignature) {
	c.record(CmdSetRootSignature{RootSignature: rs})
}

func (c *commandList) SetGraphicsDescriptorTable(rootIndex int, base DescriptorHandle) {
	c.record(CmdSetDescriptorTable{RootIndex: rootIndex, Base: base})
}

func (c *commandList) SetViewport(v Viewport) {
	c.record(CmdSetViewport{Viewport: v})
}

func (c *commandList) SetScissorRect(r Rect) {
	c.record(CmdSetScissor{Rect: r})
}

func (c *commandList) SetRenderTargets(rtvs []DescriptorHandle, dsv *DescriptorHandle) {
	cmd := CmdSetRenderTargets{RenderTargets: append([]DescriptorHandle(nil), rtvs...)}
	if dsv != nil {
		d := *dsv
		cmd.DepthStencil = &d
	}
	c.record(cmd)
}

func (c *commandList) ClearRenderTargetView(rtv DescriptorHandle, color [4]float32) {
	c.record(CmdClearRenderTarget{View: rtv, Color: color})
}

func (c *commandList) ClearDepthStencilView(dsv DescriptorHandle, depth float32) {
	c.record(CmdClearDepth{View: dsv, Depth: depth})
}

func (c *commandList) SetVertexBuffer(view VertexBufferView) {
	c.record(CmdSetVertexBuffer{View: view})
}

func (c *commandList) SetIndexBuffer(view IndexBufferView) {
	c.record(CmdSetIndexBuffer{View: view})
}

func (c *commandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.record(CmdDrawIndexed{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		StartIndex:    startIndex,
		BaseVertex:    baseVertex,
		StartInstance: startInstance,
	})
}

func (c *commandList) CopyBufferRegion(dst Buffer, dstOffset uint64, src Buffer, srcOffset, size uint64) {
	c.record(CmdCopyBufferRegion{Dst: dst, DstOffset: dstOffset, Src: src, SrcOffset: srcOffset, Size: size})
}
