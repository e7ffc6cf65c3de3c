package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

func (r *renderer) update() error {
	if r.state != StateRunning {
		return nil
	}
	r.stats.Tick(r.timer.Now())

	for _, item := range r.items {
		mc := ModelConstants{
			Model:    item.Transform,
			InvModel: common.Inverse(item.Transform),
			Color:    item.Material.Color(),
		}
		if err := r.modelCB.Write(uint64(item.ModelCBIndex)*r.modelStride, mc.Bytes()); err != nil {
			return fmt.Errorf("renderer: update model constants of %q: %w", item.Name, err)
		}
	}

	view := r.cam.ViewMatrix()
	proj := r.cam.ProjectionMatrix()
	lightView := r.light.ViewMatrix()
	lightOrtho := r.light.ProjectionMatrix()

	r.passConstants = PassConstants{}
	r.passConstants.View = view
	r.passConstants.InvView = common.Inverse(view)
	r.passConstants.Proj = proj
	r.passConstants.InvProj = common.Inverse(proj)
	r.passConstants.LightView = lightView
	r.passConstants.InvLightView = common.Inverse(lightView)
	r.passConstants.LightOrtho = lightOrtho
	r.passConstants.InvLightOrtho = common.Inverse(lightOrtho)
	r.passConstants.LightFlux = r.light.Color()
	r.passConstants.LightZNear = r.light.ZNear()
	r.passConstants.LightDirection = r.light.Direction()
	r.passConstants.LightZFar = r.light.ZFar()
	r.passConstants.LightPos = r.light.Position()
	r.passConstants.Width = float32(r.width)
	r.passConstants.Height = float32(r.height)
	r.passConstants.RSMSize = float32(r.rsmSize)
	r.passConstants.TimeElapsed = float32(r.timer.Elapsed().Seconds())

	if err := r.passCB.Write(0, r.passConstants.Bytes()); err != nil {
		return fmt.Errorf("renderer: update pass constants: %w", err)
	}
	return nil
}

func (r *renderer) render() error {
	switch r.state {
	case StateUninitialized, StateDestroyed:
		return ErrNotInitialized
	case StateRunning:
	default:
		return nil
	}

	if err := r.renderRSM(); err != nil {
		return fmt.Errorf("renderer: rsm pass: %w", err)
	}
	if err := r.renderShading(); err != nil {
		return fmt.Errorf("renderer: shading pass: %w", err)
	}
	if err := r.swapChain.Present(); err != nil {
		return fmt.Errorf("renderer: present: %w", err)
	}
	r.frameIndex = (r.frameIndex + 1) % r.bufferCount
	if err := r.waitForGPU(); err != nil {
		return fmt.Errorf("renderer: end of frame: %w", err)
	}
	return nil
}

// renderRSM records and submits pass 1: the scene seen from the light into the four RSM targets.
func (r *renderer) renderRSM() error {
	cmd := r.cmd
	if err := cmd.Reset(r.rsmPSO); err != nil {
		return err
	}
	cmd.SetGraphicsRootSignature(r.rootSignature)

	for _, rt := range r.rsmTargets {
		rt.TransitionTo(cmd, gpu.ResourceStateRenderTarget)
	}

	size := float32(r.rsmSize)
	cmd.SetViewport(gpu.Viewport{Width: size, Height: size, MinDepth: 0, MaxDepth: 1})
	cmd.SetScissorRect(gpu.Rect{Right: r.rsmSize, Bottom: r.rsmSize})

	rtvs := make([]gpu.DescriptorHandle, len(r.rsmTargets))
	for i, rt := range r.rsmTargets {
		rtvs[i] = rt.RTV()
	}
	dsv := r.dsvHeap.Handle(rsmDSVSlot)
	cmd.SetRenderTargets(rtvs, &dsv)
	for _, rt := range r.rsmTargets {
		rt.Clear(cmd)
	}
	cmd.ClearDepthStencilView(dsv, 1)

	cmd.SetGraphicsDescriptorTable(rootTablePass, r.cbvSrvHeap.Handle(passCBVSlot))
	r.drawItems(cmd)

	if err := cmd.Close(); err != nil {
		return err
	}
	if err := r.device.Queue().ExecuteCommandLists(cmd); err != nil {
		return err
	}
	return r.waitForGPU()
}

// renderShading records and submits pass 2: the scene seen from the camera into the current back
// buffer, reading the RSM targets. The targets' transition to the read state is the first thing
// the list records.
func (r *renderer) renderShading() error {
	cmd := r.cmd
	if err := cmd.Reset(r.shadingPSO); err != nil {
		return err
	}
	cmd.SetGraphicsRootSignature(r.rootSignature)

	for _, rt := range r.rsmTargets {
		rt.TransitionTo(cmd, gpu.ResourceStateGenericRead)
	}

	cmd.SetViewport(gpu.Viewport{Width: float32(r.width), Height: float32(r.height), MinDepth: 0, MaxDepth: 1})
	cmd.SetScissorRect(gpu.Rect{Right: r.width, Bottom: r.height})

	backBuffer := r.swapChain.BackBuffer(r.frameIndex)
	cmd.ResourceBarrier(gpu.Barrier{Resource: backBuffer, Before: gpu.ResourceStatePresent, After: gpu.ResourceStateRenderTarget})

	rtv := r.rtvHeap.Handle(r.frameIndex)
	dsv := r.dsvHeap.Handle(mainDSVSlot)
	cmd.SetRenderTargets([]gpu.DescriptorHandle{rtv}, &dsv)
	cmd.ClearRenderTargetView(rtv, r.background.Array())
	cmd.ClearDepthStencilView(dsv, 1)

	cmd.SetGraphicsDescriptorTable(rootTablePass, r.cbvSrvHeap.Handle(passCBVSlot))
	cmd.SetGraphicsDescriptorTable(rootTableRSM, r.rsmTargets[RSMDepth].SRV())
	r.drawItems(cmd)

	cmd.ResourceBarrier(gpu.Barrier{Resource: backBuffer, Before: gpu.ResourceStateRenderTarget, After: gpu.ResourceStatePresent})

	if err := cmd.Close(); err != nil {
		return err
	}
	return r.device.Queue().ExecuteCommandLists(cmd)
}

// drawItems binds the shared geometry and issues one draw per item with its model constants.
func (r *renderer) drawItems(cmd gpu.CommandList) {
	cmd.SetVertexBuffer(r.vertexView)
	cmd.SetIndexBuffer(r.indexView)
	for _, item := range r.items {
		cmd.SetGraphicsDescriptorTable(rootTableModel, item.CBV)
		cmd.DrawIndexedInstanced(item.IndexCount, 1, item.StartIndex, item.BaseVertex, 0)
	}
}

func (r *renderer) waitForGPU() error {
	r.fenceValue++
	if err := r.device.Queue().Signal(r.fence, r.fenceValue); err != nil {
		return fmt.Errorf("signal fence %d: %w", r.fenceValue, err)
	}
	if r.fence.CompletedValue() < r.fenceValue {
		if err := r.fence.Wait(r.fenceValue); err != nil {
			return fmt.Errorf("wait for fence %d: %w", r.fenceValue, err)
		}
	}
	return nil
}
