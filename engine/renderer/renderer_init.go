package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rsm/engine/scene"
)

// rootSignatureDesc is the binding layout of both passes: pass constants, one item's model
// constants, the four RSM textures and a static point sampler.
var rootSignatureDesc = gpu.RootSignatureDesc{
	Label: "rsm root signature",
	Tables: []gpu.DescriptorTableDesc{
		rootTablePass:  {Type: gpu.DescriptorRangeCBV, Count: 1, Visibility: gpu.ShaderVisibilityAll},
		rootTableModel: {Type: gpu.DescriptorRangeCBV, Count: 1, Visibility: gpu.ShaderVisibilityAll},
		rootTableRSM:   {Type: gpu.DescriptorRangeSRV, Count: rsmTargetCount, Visibility: gpu.ShaderVisibilityPixel},
	},
	StaticSamplers: []gpu.StaticSamplerDesc{
		{Filter: gpu.FilterPoint, Address: gpu.AddressModeBorder, Visibility: gpu.ShaderVisibilityPixel},
	},
}

func (r *renderer) Initialize(s scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateUninitialized:
	case StateDestroyed:
		return ErrNotInitialized
	default:
		return ErrAlreadyInitialized
	}
	if s == nil {
		return fmt.Errorf("renderer: initialize with nil scene")
	}
	if r.device == nil {
		return fmt.Errorf("renderer: initialize without device")
	}

	r.swapChain = r.device.SwapChain()
	if r.swapChain == nil {
		return fmt.Errorf("renderer: device has no swap chain")
	}
	r.bufferCount = r.swapChain.BufferCount()
	r.frameIndex = r.swapChain.CurrentBackBufferIndex()
	bb := r.swapChain.BackBuffer(0).Desc()
	r.width, r.height = bb.Width, bb.Height
	r.cam.SetAspect(float32(r.width) / float32(r.height))

	r.scene = s
	r.items = s.Items()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"descriptor heaps", r.createDescriptorHeaps},
		{"back buffer views", r.createBackBufferViews},
		{"depth buffer", r.createDepthBuffer},
		{"pipelines", r.createPipelines},
		{"pass constants", r.createPassConstants},
		{"fence", r.createFence},
		{"rsm targets", r.createRSMTargets},
		{"scene", r.initScene},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("renderer: initialize %s: %w", step.name, err)
		}
	}

	common.Logger().Info("renderer initialized",
		"scene", s.Name(),
		"items", len(r.items),
		"back_buffers", r.bufferCount,
		"viewport", fmt.Sprintf("%dx%d", r.width, r.height),
		"rsm_size", r.rsmSize,
	)
	r.setState(StateIdle)
	return nil
}

// createDescriptorHeaps sizes the heaps: one RTV per back buffer plus the RSM targets, the main
// and RSM depth views, and the pass CBV followed by one CBV per item and the RSM SRVs.
func (r *renderer) createDescriptorHeaps() error {
	var err error
	if r.rtvHeap, err = r.device.CreateDescriptorHeap(gpu.DescriptorHeapRTV, r.bufferCount+rsmTargetCount); err != nil {
		return err
	}
	if r.dsvHeap, err = r.device.CreateDescriptorHeap(gpu.DescriptorHeapDSV, 2); err != nil {
		return err
	}
	if r.cbvSrvHeap, err = r.device.CreateDescriptorHeap(gpu.DescriptorHeapCBVSRV, firstItemCBVSlot+len(r.items)+rsmTargetCount); err != nil {
		return err
	}
	common.Logger().Debug("descriptor heaps created",
		"rtv", r.rtvHeap.Capacity(),
		"dsv", r.dsvHeap.Capacity(),
		"cbv_srv", r.cbvSrvHeap.Capacity(),
	)
	return nil
}

func (r *renderer) createBackBufferViews() error {
	for i := 0; i < r.bufferCount; i++ {
		if err := r.rtvHeap.CreateRenderTargetView(i, r.swapChain.BackBuffer(i)); err != nil {
			return fmt.Errorf("back buffer %d: %w", i, err)
		}
	}
	return nil
}

func (r *renderer) createDepthBuffer() error {
	tex, err := r.createDepthTexture("depth buffer", r.width, r.height, mainDSVSlot)
	if err != nil {
		return err
	}
	r.depthBuffer = tex
	return nil
}

func (r *renderer) createDepthTexture(label string, width, height uint32, slot int) (gpu.Texture, error) {
	tex, err := r.device.CreateTexture(gpu.TextureDesc{
		Label:        label,
		Width:        width,
		Height:       height,
		Format:       depthFormat,
		Usage:        gpu.TextureUsageDepthStencil,
		InitialState: gpu.ResourceStateDepthWrite,
	})
	if err != nil {
		return nil, err
	}
	if err := r.dsvHeap.CreateDepthStencilView(slot, tex); err != nil {
		return nil, err
	}
	return tex, nil
}

func (r *renderer) createPipelines() error {
	rs, err := r.device.CreateRootSignature(rootSignatureDesc)
	if err != nil {
		return err
	}
	r.rootSignature = rs

	pp := NewPreProcessor()
	rsmShader, err := shader.NewShader("rsm_pass", shader.RSMPassSource, shader.WithPreProcessor(pp))
	if err != nil {
		return err
	}
	shadingShader, err := shader.NewShader("shading_pass", shader.ShadingPassSource, shader.WithPreProcessor(pp))
	if err != nil {
		return err
	}

	rsmFormats := make([]gpu.Format, rsmTargetCount)
	for i := range rsmFormats {
		rsmFormats[i] = rsmFormat
	}
	r.rsmPSO, err = pipeline.NewPipeline("rsm_pass",
		pipeline.WithShader(rsmShader),
		pipeline.WithInputLayout(model.InputLayout(), model.GPUVertexSize),
		pipeline.WithRenderTargetFormats(rsmFormats...),
		pipeline.WithDepthFormat(depthFormat),
		pipeline.WithDepthBias(rsmDepthBias, rsmSlopeBias),
	).Create(r.device, rs)
	if err != nil {
		return err
	}

	r.shadingPSO, err = pipeline.NewPipeline("shading_pass",
		pipeline.WithShader(shadingShader),
		pipeline.WithInputLayout(model.InputLayout(), model.GPUVertexSize),
		pipeline.WithRenderTargetFormats(r.swapChain.Format()),
		pipeline.WithDepthFormat(depthFormat),
	).Create(r.device, rs)
	if err != nil {
		return err
	}

	if r.cmd, err = r.device.CreateCommandList("frame"); err != nil {
		return err
	}
	return nil
}

func (r *renderer) createPassConstants() error {
	size := gpu.AlignUp(PassConstantsSize, r.device.ConstantBufferAlignment())
	buf, err := r.device.CreateBuffer(gpu.BufferDesc{
		Label: "pass constants",
		Size:  size,
		Heap:  gpu.HeapTypeUpload,
		Usage: gpu.BufferUsageConstant,
	})
	if err != nil {
		return err
	}
	r.passCB = buf
	return r.cbvSrvHeap.CreateConstantBufferView(passCBVSlot, buf, 0, size)
}

func (r *renderer) createFence() error {
	fence, err := r.device.CreateFence(0)
	if err != nil {
		return err
	}
	r.fence = fence
	r.fenceValue = 0
	return r.waitForGPU()
}

// createRSMTargets creates the four targets with their write views after the back buffer RTVs
// and their read views after the item CBVs, so the read views form one contiguous table.
func (r *renderer) createRSMTargets() error {
	desc := RenderTargetDescriptor{Width: r.rsmSize, Height: r.rsmSize, Format: rsmFormat}
	srvBase := firstItemCBVSlot + len(r.items)

	r.rsmTargets = make([]RenderTarget, 0, rsmTargetCount)
	for i := 0; i < rsmTargetCount; i++ {
		target := RSMTarget(i)
		options := []RenderTargetBuilderOption{WithLabel(target.String())}
		if target == RSMDepth {
			options = append(options, WithClearColor(common.White))
		}
		rt, err := NewRenderTarget(r.device, desc, r.rtvHeap.Handle(r.bufferCount+i), r.cbvSrvHeap.Handle(srvBase+i), options...)
		if err != nil {
			return err
		}
		r.rsmTargets = append(r.rsmTargets, rt)
	}

	tex, err := r.createDepthTexture("rsm depth buffer", r.rsmSize, r.rsmSize, rsmDSVSlot)
	if err != nil {
		return err
	}
	r.rsmDepthBuffer = tex
	return nil
}

// initScene uploads the concatenated scene geometry into default buffers and allocates one
// aligned model constant slot per item.
func (r *renderer) initScene() error {
	geo, err := r.scene.Geometry()
	if err != nil {
		return err
	}
	// Geometry fills the item ranges, so re-read the items.
	r.items = r.scene.Items()

	vertexBytes := model.VerticesToBytes(geo.Vertices)
	indexBytes := model.IndicesToBytes(geo.Indices)

	if err := r.cmd.Reset(nil); err != nil {
		return err
	}
	vb, err := r.createDefaultBuffer("vertex buffer", vertexBytes, gpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	ib, err := r.createDefaultBuffer("index buffer", indexBytes, gpu.BufferUsageIndex)
	if err != nil {
		return err
	}
	if err := r.cmd.Close(); err != nil {
		return err
	}
	if err := r.device.Queue().ExecuteCommandLists(r.cmd); err != nil {
		return err
	}
	if err := r.waitForGPU(); err != nil {
		return err
	}

	r.vertexView = gpu.VertexBufferView{Buffer: vb, Size: uint64(len(vertexBytes)), Stride: model.GPUVertexSize}
	r.indexView = gpu.IndexBufferView{Buffer: ib, Size: uint64(len(indexBytes)), Format: gpu.IndexFormatUint16}

	r.modelStride = gpu.AlignUp(ModelConstantsSize, r.device.ConstantBufferAlignment())
	r.modelCB, err = r.device.CreateBuffer(gpu.BufferDesc{
		Label: "model constants",
		Size:  r.modelStride * uint64(len(r.items)),
		Heap:  gpu.HeapTypeUpload,
		Usage: gpu.BufferUsageConstant,
	})
	if err != nil {
		return err
	}
	for _, item := range r.items {
		slot := firstItemCBVSlot + item.ModelCBIndex
		if err := r.cbvSrvHeap.CreateConstantBufferView(slot, r.modelCB, uint64(item.ModelCBIndex)*r.modelStride, r.modelStride); err != nil {
			return fmt.Errorf("item %q: %w", item.Name, err)
		}
		item.CBV = r.cbvSrvHeap.Handle(slot)
	}

	common.Logger().Debug("scene geometry uploaded",
		"vertices", len(geo.Vertices),
		"indices", len(geo.Indices),
		"vertex_bytes", len(vertexBytes),
		"index_bytes", len(indexBytes),
	)
	return nil
}

// createDefaultBuffer creates a GPU-local buffer and an upload buffer holding data, and records
// the copy between them on the open command list. The upload buffer stays referenced by the
// command list until it is reset.
func (r *renderer) createDefaultBuffer(label string, data []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	size := gpu.AlignUp(uint64(len(data)), 4)
	dst, err := r.device.CreateBuffer(gpu.BufferDesc{
		Label: label,
		Size:  size,
		Heap:  gpu.HeapTypeDefault,
		Usage: usage | gpu.BufferUsageCopyDest,
	})
	if err != nil {
		return nil, err
	}
	upload, err := r.device.CreateBuffer(gpu.BufferDesc{
		Label: label + " upload",
		Size:  size,
		Heap:  gpu.HeapTypeUpload,
		Usage: gpu.BufferUsageCopySource,
	})
	if err != nil {
		return nil, err
	}
	if err := upload.Write(0, data); err != nil {
		return nil, err
	}

	r.cmd.ResourceBarrier(gpu.Barrier{Resource: dst, Before: gpu.ResourceStateCommon, After: gpu.ResourceStateCopyDest})
	r.cmd.CopyBufferRegion(dst, 0, upload, 0, size)
	r.cmd.ResourceBarrier(gpu.Barrier{Resource: dst, Before: gpu.ResourceStateCopyDest, After: gpu.ResourceStateGenericRead})
	return dst, nil
}
