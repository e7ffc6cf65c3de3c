package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTarget(t *testing.T, dev *gputest.Device, options ...RenderTargetBuilderOption) RenderTarget {
	t.Helper()
	rtvHeap, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapRTV, 1)
	require.NoError(t, err)
	srvHeap, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapCBVSRV, 1)
	require.NoError(t, err)

	rt, err := NewRenderTarget(dev, RenderTargetDescriptor{Width: 64, Height: 32, Format: gpu.FormatRGBA32Float},
		rtvHeap.Handle(0), srvHeap.Handle(0), options...)
	require.NoError(t, err)
	return rt
}

func countBarriers(cmd gpu.CommandList) int {
	n := 0
	for _, c := range cmd.Commands() {
		if b, ok := c.(gpu.CmdBarrier); ok {
			n += len(b.Barriers)
		}
	}
	return n
}

func TestNewRenderTarget(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rt := newTestTarget(t, dev, WithLabel("flux"))

	assert.Equal(t, gpu.ResourceStateGenericRead, rt.State())
	assert.Equal(t, gpu.ResourceStateGenericRead, dev.State(rt.Texture()))
	assert.Equal(t, [4]float32{0, 0, 0, 1}, rt.ClearColor())
	assert.Equal(t, RenderTargetDescriptor{Width: 64, Height: 32, Format: gpu.FormatRGBA32Float}, rt.Descriptor())

	desc := rt.Texture().Desc()
	assert.Equal(t, "flux", desc.Label)
	assert.Equal(t, gpu.TextureUsageRenderTarget|gpu.TextureUsageShaderResource, desc.Usage)

	rtv, err := rt.RTV().Descriptor()
	require.NoError(t, err)
	assert.Equal(t, gpu.DescriptorRTV, rtv.Kind)
	assert.Equal(t, rt.Texture(), rtv.Texture)

	srv, err := rt.SRV().Descriptor()
	require.NoError(t, err)
	assert.Equal(t, gpu.DescriptorSRV, srv.Kind)
}

func TestRenderTarget_TransitionOnce(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rt := newTestTarget(t, dev)

	cmd := gpu.NewCommandList("test")
	require.NoError(t, cmd.Reset(nil))
	assert.True(t, rt.TransitionTo(cmd, gpu.ResourceStateRenderTarget))
	assert.False(t, rt.TransitionTo(cmd, gpu.ResourceStateRenderTarget))
	assert.Equal(t, 1, countBarriers(cmd))
	assert.Equal(t, gpu.ResourceStateRenderTarget, rt.State())

	assert.True(t, rt.TransitionTo(cmd, gpu.ResourceStateGenericRead))
	require.NoError(t, cmd.Close())
	require.NoError(t, dev.Queue().ExecuteCommandLists(cmd))

	barriers := dev.BarriersOn(rt.Texture())
	require.Len(t, barriers, 2)
	assert.Equal(t, gpu.ResourceStateGenericRead, barriers[0].Before)
	assert.Equal(t, gpu.ResourceStateRenderTarget, barriers[0].After)
	assert.Equal(t, gpu.ResourceStateGenericRead, dev.State(rt.Texture()))
}

func TestRenderTarget_DisallowedStatePanics(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rt := newTestTarget(t, dev)
	cmd := gpu.NewCommandList("test")
	require.NoError(t, cmd.Reset(nil))

	assert.Panics(t, func() { rt.TransitionTo(cmd, gpu.ResourceStateDepthWrite) })
	assert.Equal(t, gpu.ResourceStateGenericRead, rt.State())
}

func TestRenderTarget_Clear(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rt := newTestTarget(t, dev, WithClearColor(common.White))

	cmd := gpu.NewCommandList("test")
	require.NoError(t, cmd.Reset(nil))
	rt.TransitionTo(cmd, gpu.ResourceStateRenderTarget)
	rt.Clear(cmd)
	require.NoError(t, cmd.Close())
	require.NoError(t, dev.Queue().ExecuteCommandLists(cmd))

	clears := dev.Clears()
	require.Len(t, clears, 1)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, clears[0].Color)
}

func TestRenderTarget_ClearInReadStateFailsOnExecute(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rt := newTestTarget(t, dev)

	cmd := gpu.NewCommandList("test")
	require.NoError(t, cmd.Reset(nil))
	rt.Clear(cmd)
	require.NoError(t, cmd.Close())
	assert.ErrorIs(t, dev.Queue().ExecuteCommandLists(cmd), gpu.ErrInvalidState)
}

func TestNewRenderTarget_Errors(t *testing.T) {
	dev := gputest.NewDevice(0, 0, 0)
	rtvHeap, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapRTV, 1)
	require.NoError(t, err)
	srvHeap, err := dev.CreateDescriptorHeap(gpu.DescriptorHeapCBVSRV, 1)
	require.NoError(t, err)

	_, err = NewRenderTarget(dev, RenderTargetDescriptor{Width: 0, Height: 8, Format: gpu.FormatRGBA32Float}, rtvHeap.Handle(0), srvHeap.Handle(0))
	assert.Error(t, err)

	_, err = NewRenderTarget(dev, RenderTargetDescriptor{Width: 8, Height: 8, Format: gpu.FormatDepth16Unorm}, rtvHeap.Handle(0), srvHeap.Handle(0))
	assert.Error(t, err)

	_, err = NewRenderTarget(dev, RenderTargetDescriptor{Width: 8, Height: 8, Format: gpu.FormatRGBA32Float}, rtvHeap.Handle(3), srvHeap.Handle(0))
	assert.ErrorIs(t, err, gpu.ErrDescriptorOutOfRange)
}
