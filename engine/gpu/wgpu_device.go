package gpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUOptions configures NewWGPUDevice.
type WGPUOptions struct {
	// Width and Height are the initial swap chain size in pixels.
	Width, Height int

	// VSync selects FIFO presentation; otherwise presentation is immediate.
	VSync bool

	// ForceFallbackAdapter requests the software adapter.
	ForceFallbackAdapter bool

	// BufferCount is the number of logical back buffers. Zero means two.
	BufferCount int
}

type wgpuDevice struct {
	mu       sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	surface  *wgpu.Surface
	limits   wgpu.Limits

	tracker        *StateTracker
	queue          *wgpuQueue
	swapChain      *wgpuSwapChain
	rootSignatures []*wgpuRootSignature

	released []interface{ Release() }
}

var _ Device = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU device that presents into the given surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, typically from Window.SurfaceDescriptor
//   - opts: the swap chain and adapter options
//
// Returns:
//   - Device: the new device
//   - error: an error if no adapter or device could be acquired
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, opts WGPUOptions) (Device, error) {
	runtime.LockOSThread()

	d := &wgpuDevice{
		instance: wgpu.CreateInstance(nil),
		tracker:  NewStateTracker(),
	}
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	d.adapter = a

	// four RGBA32Float targets need 64 bytes per sample, above the default of 32
	d.limits = wgpu.DefaultLimits()
	supported := a.GetLimits()
	d.limits.MaxColorAttachmentBytesPerSample = max(d.limits.MaxColorAttachmentBytesPerSample, supported.Limits.MaxColorAttachmentBytesPerSample)
	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: d.limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	d.device = dev
	d.queue = &wgpuQueue{dev: d, queue: dev.GetQueue()}

	presentMode := wgpu.PresentModeImmediate
	if opts.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	count := opts.BufferCount
	if count <= 0 {
		count = 2
	}
	d.swapChain = newWGPUSwapChain(d, count, presentMode)
	d.swapChain.configure(opts.Width, opts.Height)

	return d, nil
}

func (d *wgpuDevice) CreateBuffer(desc BufferDesc) (Buffer, error) {
	usage := wgpu.BufferUsageCopyDst
	if desc.Heap == HeapTypeUpload {
		usage |= wgpu.BufferUsageCopySrc
	}
	if desc.Usage&BufferUsageVertex != 0 {
		usage |= wgpu.BufferUsageVertex
	}
	if desc.Usage&BufferUsageIndex != 0 {
		usage |= wgpu.BufferUsageIndex
	}
	if desc.Usage&BufferUsageConstant != 0 {
		usage |= wgpu.BufferUsageUniform
	}
	if desc.Usage&BufferUsageCopySource != 0 {
		usage |= wgpu.BufferUsageCopySrc
	}

	// Copies and queue writes operate on multiples of four bytes.
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             AlignUp(desc.Size, 4),
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", desc.Label, err)
	}
	b := &wgpuBuffer{desc: desc, buffer: buf, queue: d.queue.queue}
	d.track(buf)
	d.tracker.Register(b, ResourceStateCommon)
	return b, nil
}

func (d *wgpuDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	if !desc.Usage.Allows(desc.InitialState) {
		return nil, fmt.Errorf("%w: texture %q created in %s", ErrInvalidState, desc.Label, desc.InitialState)
	}
	format, err := toWGPUTextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	var usage wgpu.TextureUsage
	if desc.Usage&(TextureUsageRenderTarget|TextureUsageDepthStencil) != 0 {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	if desc.Usage&TextureUsageShaderResource != 0 {
		usage |= wgpu.TextureUsageTextureBinding
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create view of %q: %w", desc.Label, err)
	}
	t := &wgpuTexture{desc: desc, texture: tex, textureView: view}
	d.track(view)
	d.track(tex)
	d.tracker.Register(t, desc.InitialState)
	return t, nil
}

func (d *wgpuDevice) CreateDescriptorHeap(kind DescriptorHeapType, capacity int) (DescriptorHeap, error) {
	return NewDescriptorHeap(kind, capacity)
}

func (d *wgpuDevice) CreateRootSignature(desc RootSignatureDesc) (RootSignature, error) {
	rs := &wgpuRootSignature{desc: desc, groups: make(map[bindGroupKey]*cachedBindGroup)}

	for i, table := range desc.Tables {
		entries := make([]wgpu.BindGroupLayoutEntry, table.Count)
		for n := range entries {
			entries[n] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(n),
				Visibility: toWGPUStages(table.Visibility),
			}
			switch table.Type {
			case DescriptorRangeCBV:
				entries[n].Buffer.Type = wgpu.BufferBindingTypeUniform
			case DescriptorRangeSRV:
				entries[n].Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
				entries[n].Texture.ViewDimension = wgpu.TextureViewDimension2D
			}
		}
		layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s table %d", desc.Label, i),
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: root signature %q table %d: %w", desc.Label, i, err)
		}
		d.track(layout)
		rs.layouts = append(rs.layouts, layout)
	}

	if len(desc.StaticSamplers) > 0 {
		entries := make([]wgpu.BindGroupLayoutEntry, len(desc.StaticSamplers))
		groupEntries := make([]wgpu.BindGroupEntry, len(desc.StaticSamplers))
		for n, s := range desc.StaticSamplers {
			entries[n] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(n),
				Visibility: toWGPUStages(s.Visibility),
			}
			entries[n].Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
			if s.Filter == FilterLinear {
				entries[n].Sampler.Type = wgpu.SamplerBindingTypeFiltering
			}
			samp, err := d.device.CreateSampler(toWGPUSampler(desc.Label, s))
			if err != nil {
				return nil, fmt.Errorf("gpu: root signature %q sampler %d: %w", desc.Label, n, err)
			}
			d.track(samp)
			groupEntries[n] = wgpu.BindGroupEntry{Binding: uint32(n), Sampler: samp}
		}
		layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   desc.Label + " samplers",
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: root signature %q sampler layout: %w", desc.Label, err)
		}
		d.track(layout)
		group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   desc.Label + " samplers",
			Layout:  layout,
			Entries: groupEntries,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: root signature %q sampler group: %w", desc.Label, err)
		}
		d.track(group)
		rs.samplerLayout = layout
		rs.samplerGroup = group
	}
	d.mu.Lock()
	d.rootSignatures = append(d.rootSignatures, rs)
	d.mu.Unlock()
	return rs, nil
}

func (d *wgpuDevice) CreateGraphicsPipeline(desc GraphicsPipelineDesc) (Pipeline, error) {
	rs, ok := desc.RootSignature.(*wgpuRootSignature)
	if !ok {
		return nil, fmt.Errorf("gpu: pipeline %q needs a root signature from this device", desc.Label)
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Shader.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Shader.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %q: %w", desc.Shader.Label, err)
	}
	d.track(module)

	groups := rs.usedGroups(desc.UnusedTables)
	layouts := append([]*wgpu.BindGroupLayout(nil), rs.layouts[:groups]...)
	if groups == len(rs.layouts) && rs.samplerLayout != nil {
		layouts = append(layouts, rs.samplerLayout)
	}
	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: pipeline layout %q: %w", desc.Label, err)
	}
	d.track(pipelineLayout)

	attributes := make([]wgpu.VertexAttribute, len(desc.InputLayout))
	for i, el := range desc.InputLayout {
		f, err := toWGPUVertexFormat(el.Format)
		if err != nil {
			return nil, fmt.Errorf("gpu: pipeline %q attribute %s: %w", desc.Label, el.Semantic, err)
		}
		attributes[i] = wgpu.VertexAttribute{Format: f, Offset: uint64(el.Offset), ShaderLocation: uint32(i)}
	}

	targets := make([]wgpu.ColorTargetState, len(desc.RenderTargetFormats))
	for i, f := range desc.RenderTargetFormats {
		tf, err := toWGPUTextureFormat(f)
		if err != nil {
			return nil, fmt.Errorf("gpu: pipeline %q target %d: %w", desc.Label, i, err)
		}
		targets[i] = wgpu.ColorTargetState{Format: tf, WriteMask: wgpu.ColorWriteMaskAll}
	}

	var depth *wgpu.DepthStencilState
	if desc.DepthFormat != FormatUnknown {
		df, err := toWGPUTextureFormat(desc.DepthFormat)
		if err != nil {
			return nil, fmt.Errorf("gpu: pipeline %q depth: %w", desc.Label, err)
		}
		depth = &wgpu.DepthStencilState{
			Format:              df,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.SlopeScaledDepthBias,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.Shader.VertexEntry,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(desc.VertexStride),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attributes,
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.Shader.FragmentEntry,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  toWGPUCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depth,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline %q: %w", desc.Label, err)
	}
	d.track(created)
	return &wgpuPipeline{desc: desc, pipeline: created, rootSignature: rs, groups: groups}, nil
}

func (d *wgpuDevice) CreateCommandList(label string) (CommandList, error) {
	return NewCommandList(label), nil
}

func (d *wgpuDevice) CreateFence(initial uint64) (Fence, error) {
	return &wgpuFence{dev: d, completed: initial, signaled: initial}, nil
}

func (d *wgpuDevice) Queue() Queue { return d.queue }

func (d *wgpuDevice) SwapChain() SwapChain { return d.swapChain }

func (d *wgpuDevice) ConstantBufferAlignment() uint64 {
	return uint64(d.limits.MinUniformBufferOffsetAlignment)
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.swapChain.release()
	for _, rs := range d.rootSignatures {
		rs.release()
	}
	d.rootSignatures = nil
	for i := len(d.released) - 1; i >= 0; i-- {
		d.released[i].Release()
	}
	d.released = nil
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Resize reconfigures the swap chain. It must only be called while the GPU is idle.
func (d *wgpuDevice) Resize(width, height int) {
	d.swapChain.configure(width, height)
}

func (d *wgpuDevice) track(r interface{ Release() }) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = append(d.released, r)
}
