package gpu_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dev      *gputest.Device
	target   gpu.Texture
	depth    gpu.Texture
	rtvs     gpu.DescriptorHeap
	dsvs     gpu.DescriptorHeap
	views    gpu.DescriptorHeap
	cb       gpu.Buffer
	vb       gpu.Buffer
	ib       gpu.Buffer
	rs       gpu.RootSignature
	pipeline gpu.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dev: gputest.NewDevice(2, 64, 64)}
	var err error

	f.target, err = f.dev.CreateTexture(gpu.TextureDesc{
		Label:        "target",
		Width:        16,
		Height:       16,
		Format:       gpu.FormatRGBA32Float,
		Usage:        gpu.TextureUsageRenderTarget | gpu.TextureUsageShaderResource,
		InitialState: gpu.ResourceStateGenericRead,
	})
	require.NoError(t, err)
	f.depth, err = f.dev.CreateTexture(gpu.TextureDesc{
		Label:        "depth",
		Width:        16,
		Height:       16,
		Format:       gpu.FormatDepth16Unorm,
		Usage:        gpu.TextureUsageDepthStencil,
		InitialState: gpu.ResourceStateDepthWrite,
	})
	require.NoError(t, err)

	f.rtvs, err = f.dev.CreateDescriptorHeap(gpu.DescriptorHeapRTV, 1)
	require.NoError(t, err)
	f.dsvs, err = f.dev.CreateDescriptorHeap(gpu.DescriptorHeapDSV, 1)
	require.NoError(t, err)
	f.views, err = f.dev.CreateDescriptorHeap(gpu.DescriptorHeapCBVSRV, 2)
	require.NoError(t, err)

	f.cb, err = f.dev.CreateBuffer(gpu.BufferDesc{Label: "cb", Size: 256, Heap: gpu.HeapTypeUpload, Usage: gpu.BufferUsageConstant})
	require.NoError(t, err)
	f.vb, err = f.dev.CreateBuffer(gpu.BufferDesc{Label: "vb", Size: 96, Heap: gpu.HeapTypeDefault, Usage: gpu.BufferUsageVertex})
	require.NoError(t, err)
	f.ib, err = f.dev.CreateBuffer(gpu.BufferDesc{Label: "ib", Size: 6, Heap: gpu.HeapTypeDefault, Usage: gpu.BufferUsageIndex})
	require.NoError(t, err)

	require.NoError(t, f.rtvs.CreateRenderTargetView(0, f.target))
	require.NoError(t, f.dsvs.CreateDepthStencilView(0, f.depth))
	require.NoError(t, f.views.CreateConstantBufferView(0, f.cb, 0, 256))
	require.NoError(t, f.views.CreateShaderResourceView(1, f.target))

	f.rs, err = f.dev.CreateRootSignature(gpu.RootSignatureDesc{
		Label: "rs",
		Tables: []gpu.DescriptorTableDesc{
			{Type: gpu.DescriptorRangeCBV, Count: 1, Visibility: gpu.ShaderVisibilityAll},
			{Type: gpu.DescriptorRangeSRV, Count: 1, Visibility: gpu.ShaderVisibilityPixel},
		},
	})
	require.NoError(t, err)
	f.pipeline, err = f.dev.CreateGraphicsPipeline(gpu.GraphicsPipelineDesc{
		Label:               "write",
		RootSignature:       f.rs,
		Shader:              gpu.ShaderSource{Code: "fn main() {}"},
		RenderTargetFormats: []gpu.Format{gpu.FormatRGBA32Float},
		DepthFormat:         gpu.FormatDepth16Unorm,
		UnusedTables:        []int{1},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) recordDraw(list gpu.CommandList) {
	dsv := f.dsvs.Handle(0)
	list.SetGraphicsRootSignature(f.rs)
	list.SetGraphicsDescriptorTable(0, f.views.Handle(0))
	list.SetRenderTargets([]gpu.DescriptorHandle{f.rtvs.Handle(0)}, &dsv)
	list.SetVertexBuffer(gpu.VertexBufferView{Buffer: f.vb, Size: 96, Stride: 32})
	list.SetIndexBuffer(gpu.IndexBufferView{Buffer: f.ib, Size: 6, Format: gpu.IndexFormatUint16})
	list.DrawIndexedInstanced(3, 1, 0, 0, 0)
}

func TestCommandList_RecordingRules(t *testing.T) {
	list := gpu.NewCommandList("l")
	assert.True(t, list.IsClosed())

	list.SetViewport(gpu.Viewport{})
	require.NoError(t, list.Reset(nil))
	assert.Error(t, list.Reset(nil), "reset of an open list")
	assert.Empty(t, list.Commands(), "commands recorded while closed are dropped")

	list.SetScissorRect(gpu.Rect{Right: 4, Bottom: 4})
	require.NoError(t, list.Close())
	assert.Len(t, list.Commands(), 1)

	list.SetScissorRect(gpu.Rect{})
	require.NoError(t, list.Reset(nil))
	require.NoError(t, list.Close())
	assert.Empty(t, list.Commands(), "reset discards earlier commands")
}

func TestCommandList_ResetWithPipeline(t *testing.T) {
	f := newFixture(t)
	list := gpu.NewCommandList("l")
	require.NoError(t, list.Reset(f.pipeline))
	require.NoError(t, list.Close())

	cmds := list.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, gpu.CmdSetPipeline{Pipeline: f.pipeline}, cmds[0])
}

func TestDescriptorHeap_Slots(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.rtvs.CreateRenderTargetView(1, f.target), gpu.ErrDescriptorOutOfRange)
	assert.Error(t, f.rtvs.CreateDepthStencilView(0, f.depth), "wrong heap type")
	assert.Error(t, f.dsvs.CreateDepthStencilView(0, f.target), "missing usage")
	assert.Error(t, f.views.CreateConstantBufferView(0, f.cb, 128, 256), "view past the end")

	h := f.views.Handle(0)
	assert.True(t, h.IsValid())
	assert.False(t, h.Offset(2).IsValid())
	d, err := h.Offset(1).Descriptor()
	require.NoError(t, err)
	assert.Equal(t, gpu.DescriptorSRV, d.Kind)

	empty, err := gpu.NewDescriptorHeap(gpu.DescriptorHeapCBVSRV, 1)
	require.NoError(t, err)
	_, err = empty.Handle(0).Descriptor()
	assert.ErrorIs(t, err, gpu.ErrEmptyDescriptor)

	_, err = gpu.NewDescriptorHeap(gpu.DescriptorHeapRTV, 0)
	assert.Error(t, err)
}

func TestStateTracker_Apply(t *testing.T) {
	f := newFixture(t)
	tr := gpu.NewStateTracker()
	tr.Register(f.target, gpu.ResourceStateGenericRead)

	require.NoError(t, tr.Apply(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateGenericRead, After: gpu.ResourceStateRenderTarget}))
	s, ok := tr.State(f.target)
	require.True(t, ok)
	assert.Equal(t, gpu.ResourceStateRenderTarget, s)

	err := tr.Apply(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateGenericRead, After: gpu.ResourceStateRenderTarget})
	assert.ErrorIs(t, err, gpu.ErrInvalidState)

	err = tr.Apply(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateRenderTarget, After: gpu.ResourceStateDepthWrite})
	assert.ErrorIs(t, err, gpu.ErrInvalidState, "usage does not allow depth writes")

	tr.Forget(f.target)
	_, ok = tr.State(f.target)
	assert.False(t, ok)
}

func TestReplay_ClearAndDraw(t *testing.T) {
	f := newFixture(t)
	list, err := f.dev.CreateCommandList("pass")
	require.NoError(t, err)

	require.NoError(t, list.Reset(f.pipeline))
	list.ResourceBarrier(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateGenericRead, After: gpu.ResourceStateRenderTarget})
	list.ClearRenderTargetView(f.rtvs.Handle(0), [4]float32{0, 0, 0, 1})
	list.ClearDepthStencilView(f.dsvs.Handle(0), 1)
	f.recordDraw(list)
	list.ResourceBarrier(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateRenderTarget, After: gpu.ResourceStateGenericRead})
	require.NoError(t, list.Close())

	require.NoError(t, f.dev.Queue().ExecuteCommandLists(list))

	assert.Equal(t, gpu.ResourceStateGenericRead, f.dev.State(f.target))
	assert.Len(t, f.dev.BarriersOn(f.target), 2)
	require.Len(t, f.dev.Clears(), 2)
	assert.Equal(t, float32(1), f.dev.Clears()[1].Depth)
	require.Len(t, f.dev.Draws(), 1)
	draw := f.dev.Draws()[0]
	assert.Equal(t, uint32(3), draw.Args.IndexCount)
	assert.Equal(t, []gpu.Texture{f.target}, draw.State.RenderTargets)
	assert.Equal(t, f.depth, draw.State.DepthStencil)
}

func TestReplay_Misuse(t *testing.T) {
	tests := []struct {
		name   string
		record func(f *fixture, l gpu.CommandList)
		want   error
	}{
		{
			name: "clear of a texture in read state",
			record: func(f *fixture, l gpu.CommandList) {
				l.ClearRenderTargetView(f.rtvs.Handle(0), [4]float32{})
			},
			want: gpu.ErrInvalidState,
		},
		{
			name: "barrier with wrong before state",
			record: func(f *fixture, l gpu.CommandList) {
				l.ResourceBarrier(gpu.Barrier{Resource: f.target, Before: gpu.ResourceStateRenderTarget, After: gpu.ResourceStateGenericRead})
			},
			want: gpu.ErrInvalidState,
		},
		{
			name: "draw into a texture in read state",
			record: func(f *fixture, l gpu.CommandList) {
				f.recordDraw(l)
			},
			want: gpu.ErrInvalidState,
		},
		{
			name: "table outside the heap",
			record: func(f *fixture, l gpu.CommandList) {
				l.SetGraphicsRootSignature(f.rs)
				l.SetGraphicsDescriptorTable(0, f.views.Handle(5))
			},
			want: gpu.ErrDescriptorOutOfRange,
		},
		{
			name: "copy into an upload buffer",
			record: func(f *fixture, l gpu.CommandList) {
				l.CopyBufferRegion(f.cb, 0, f.cb, 0, 4)
			},
			want: gpu.ErrInvalidState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			list := gpu.NewCommandList("misuse")
			require.NoError(t, list.Reset(f.pipeline))
			tt.record(f, list)
			require.NoError(t, list.Close())
			assert.ErrorIs(t, f.dev.Queue().ExecuteCommandLists(list), tt.want)
		})
	}
}

func TestReplay_OpenListRejected(t *testing.T) {
	f := newFixture(t)
	list := gpu.NewCommandList("open")
	require.NoError(t, list.Reset(nil))
	assert.ErrorIs(t, f.dev.Queue().ExecuteCommandLists(list), gpu.ErrCommandListOpen)
}

func TestReplay_CopyMovesBytes(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	src, err := dev.CreateBuffer(gpu.BufferDesc{Label: "src", Size: 8, Heap: gpu.HeapTypeUpload})
	require.NoError(t, err)
	dst, err := dev.CreateBuffer(gpu.BufferDesc{Label: "dst", Size: 8, Heap: gpu.HeapTypeDefault})
	require.NoError(t, err)
	require.NoError(t, src.Write(0, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.ErrorIs(t, dst.Write(0, []byte{1}), gpu.ErrNotMappable)

	list := gpu.NewCommandList("copy")
	require.NoError(t, list.Reset(nil))
	list.CopyBufferRegion(dst, 4, src, 0, 4)
	require.NoError(t, list.Close())
	require.NoError(t, dev.Queue().ExecuteCommandLists(list))

	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4}, dst.(*gputest.Buffer).Bytes())
}

func TestFence_SignalAndWait(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	fence, err := dev.CreateFence(0)
	require.NoError(t, err)

	require.NoError(t, dev.Queue().Signal(fence, 1))
	assert.Equal(t, uint64(0), fence.CompletedValue())
	require.NoError(t, fence.Wait(1))
	assert.Equal(t, uint64(1), fence.CompletedValue())
	assert.Error(t, fence.Wait(2), "never signaled")
	assert.Equal(t, []string{"signal", "wait"}, dev.EventKinds())
}

func TestFormatHelpers(t *testing.T) {
	assert.True(t, gpu.FormatDepth16Unorm.IsDepth())
	assert.False(t, gpu.FormatRGBA32Float.IsDepth())
	assert.Equal(t, uint64(16), gpu.FormatRGBA32Float.Size())
	assert.Equal(t, uint64(2), gpu.IndexFormatUint16.Size())
	assert.Equal(t, uint64(256), gpu.AlignUp(200, 256))
	assert.Equal(t, uint64(512), gpu.AlignUp(512, 256))
	assert.True(t, gpu.TextureUsageShaderResource.Allows(gpu.ResourceStateGenericRead))
	assert.False(t, gpu.TextureUsageShaderResource.Allows(gpu.ResourceStateRenderTarget))
}
