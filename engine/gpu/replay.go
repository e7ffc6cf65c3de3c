package gpu

import "fmt"

// DrawState is the pipeline state resolved for one draw.
type DrawState struct {
	Pipeline      Pipeline
	RootSignature RootSignature
	Tables        []DescriptorHandle
	RenderTargets []Texture
	DepthStencil  Texture
	Viewport      Viewport
	Scissor       Rect
	VertexBuffer  VertexBufferView
	IndexBuffer   IndexBufferView
}

// ReplaySink receives the validated, resolved operations of a command list in order.
type ReplaySink interface {
	Barrier(b Barrier)
	ClearRenderTarget(tex Texture, color [4]float32)
	ClearDepth(tex Texture, depth float32)
	Draw(state *DrawState, draw CmdDrawIndexed)
	Copy(copy CmdCopyBufferRegion)
}

// Replay walks the commands of a closed list, validating each against tracker and forwarding it
// to sink. Barriers are applied to tracker as they are encountered, so a list that fails halfway
// leaves the earlier transitions in place.
//
// Parameters:
//   - list: the closed command list
//   - tracker: the device state tracker
//   - sink: the backend receiving resolved operations
//
// Returns:
//   - error: the first validation failure
func Replay(list CommandList, tracker *StateTracker, sink ReplaySink) error {
	if !list.IsClosed() {
		return fmt.Errorf("%w: %q", ErrCommandListOpen, list.Label())
	}
	st := &DrawState{}
	for i, cmd := range list.Commands() {
		if err := replayOne(cmd, st, tracker, sink); err != nil {
			return fmt.Errorf("%s: command %d: %w", list.Label(), i, err)
		}
	}
	return nil
}

func replayOne(cmd Command, st *DrawState, tracker *StateTracker, sink ReplaySink) error {
	switch c := cmd.(type) {
	case CmdBarrier:
		for _, b := range c.Barriers {
			if err := tracker.Apply(b); err != nil {
				return err
			}
			sink.Barrier(b)
		}
	case CmdSetPipeline:
		st.Pipeline = c.Pipeline
	case CmdSetRootSignature:
		st.RootSignature = c.RootSignature
		st.Tables = make([]DescriptorHandle, len(c.RootSignature.Desc().Tables))
	case CmdSetDescriptorTable:
		if st.RootSignature == nil {
			return fmt.Errorf("descriptor table %d bound before root signature", c.RootIndex)
		}
		if c.RootIndex < 0 || c.RootIndex >= len(st.Tables) {
			return fmt.Errorf("root index %d outside root signature %q", c.RootIndex, st.RootSignature.Label())
		}
		if !c.Base.IsValid() || c.Base.Heap().Type() != DescriptorHeapCBVSRV {
			return fmt.Errorf("%w: table %d base", ErrDescriptorOutOfRange, c.RootIndex)
		}
		st.Tables[c.RootIndex] = c.Base
	case CmdSetViewport:
		st.Viewport = c.Viewport
	case CmdSetScissor:
		st.Scissor = c.Rect
	case CmdSetRenderTargets:
		st.RenderTargets = st.RenderTargets[:0]
		for _, h := range c.RenderTargets {
			d, err := resolve(h, DescriptorRTV)
			if err != nil {
				return err
			}
			st.RenderTargets = append(st.RenderTargets, d.Texture)
		}
		st.DepthStencil = nil
		if c.DepthStencil != nil {
			d, err := resolve(*c.DepthStencil, DescriptorDSV)
			if err != nil {
				return err
			}
			st.DepthStencil = d.Texture
		}
	case CmdClearRenderTarget:
		d, err := resolve(c.View, DescriptorRTV)
		if err != nil {
			return err
		}
		if err := tracker.expect(d.Texture, ResourceStateRenderTarget); err != nil {
			return err
		}
		sink.ClearRenderTarget(d.Texture, c.Color)
	case CmdClearDepth:
		d, err := resolve(c.View, DescriptorDSV)
		if err != nil {
			return err
		}
		if err := tracker.expect(d.Texture, ResourceStateDepthWrite); err != nil {
			return err
		}
		sink.ClearDepth(d.Texture, c.Depth)
	case CmdSetVertexBuffer:
		st.VertexBuffer = c.View
	case CmdSetIndexBuffer:
		st.IndexBuffer = c.View
	case CmdDrawIndexed:
		if err := validateDraw(st, tracker, c); err != nil {
			return err
		}
		snapshot := *st
		snapshot.Tables = append([]DescriptorHandle(nil), st.Tables...)
		snapshot.RenderTargets = append([]Texture(nil), st.RenderTargets...)
		sink.Draw(&snapshot, c)
	case CmdCopyBufferRegion:
		if c.Dst == nil || c.Src == nil {
			return fmt.Errorf("copy with nil buffer")
		}
		if c.Dst.Heap() != HeapTypeDefault {
			return fmt.Errorf("%w: copy destination %q is an upload buffer", ErrInvalidState, c.Dst.Label())
		}
		if c.SrcOffset+c.Size > c.Src.Size() || c.DstOffset+c.Size > c.Dst.Size() {
			return fmt.Errorf("copy of %d bytes from %q to %q is out of bounds", c.Size, c.Src.Label(), c.Dst.Label())
		}
		sink.Copy(c)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func validateDraw(st *DrawState, tracker *StateTracker, c CmdDrawIndexed) error {
	if st.Pipeline == nil {
		return fmt.Errorf("draw without pipeline")
	}
	if st.RootSignature == nil {
		return fmt.Errorf("draw without root signature")
	}
	if want := len(st.Pipeline.Desc().RenderTargetFormats); want != len(st.RenderTargets) {
		return fmt.Errorf("pipeline %q writes %d targets, %d bound", st.Pipeline.Label(), want, len(st.RenderTargets))
	}
	for _, tex := range st.RenderTargets {
		if err := tracker.expect(tex, ResourceStateRenderTarget); err != nil {
			return err
		}
	}
	if st.DepthStencil != nil {
		if err := tracker.expect(st.DepthStencil, ResourceStateDepthWrite); err != nil {
			return err
		}
	}
	tables := st.RootSignature.Desc().Tables
	for i, table := range tables {
		base := st.Tables[i]
		if base.Heap() == nil {
			if usedByPipeline(st.Pipeline, i) {
				return fmt.Errorf("root table %d not bound", i)
			}
			continue
		}
		for n := 0; n < table.Count; n++ {
			want := DescriptorCBV
			if table.Type == DescriptorRangeSRV {
				want = DescriptorSRV
			}
			d, err := resolve(base.Offset(n), want)
			if err != nil {
				return fmt.Errorf("root table %d: %w", i, err)
			}
			if d.Kind == DescriptorSRV {
				if err := tracker.expect(d.Texture, ResourceStateGenericRead); err != nil {
					return err
				}
			}
		}
	}
	if st.VertexBuffer.Buffer == nil || st.IndexBuffer.Buffer == nil {
		return fmt.Errorf("draw without vertex or index buffer")
	}
	end := uint64(c.StartIndex+c.IndexCount) * st.IndexBuffer.Format.Size()
	if end > st.IndexBuffer.Size {
		return fmt.Errorf("draw reads %d index bytes, view holds %d", end, st.IndexBuffer.Size)
	}
	return nil
}

// usedByPipeline reports whether a pipeline reads root table i. Pipelines list the tables they
// ignore in their description; every other table must be bound before drawing.
func usedByPipeline(p Pipeline, i int) bool {
	for _, skip := range p.Desc().UnusedTables {
		if skip == i {
			return false
		}
	}
	return true
}

func resolve(h DescriptorHandle, want DescriptorKind) (Descriptor, error) {
	d, err := h.Descriptor()
	if err != nil {
		return Descriptor{}, err
	}
	if d.Kind != want {
		return Descriptor{}, fmt.Errorf("%w: slot %d holds kind %d, need %d", ErrInvalidState, h.Index(), d.Kind, want)
	}
	return d, nil
}
