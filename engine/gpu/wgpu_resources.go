package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	desc   BufferDesc
	buffer *wgpu.Buffer
	queue  *wgpu.Queue
}

func (b *wgpuBuffer) Label() string  { return b.desc.Label }
func (b *wgpuBuffer) Size() uint64   { return b.desc.Size }
func (b *wgpuBuffer) Heap() HeapType { return b.desc.Heap }

func (b *wgpuBuffer) Write(offset uint64, data []byte) error {
	if b.desc.Heap != HeapTypeUpload {
		return fmt.Errorf("%w: %q", ErrNotMappable, b.desc.Label)
	}
	if offset+uint64(len(data)) > b.desc.Size {
		return fmt.Errorf("gpu: write of %d bytes at %d exceeds %q size %d", len(data), offset, b.desc.Label, b.desc.Size)
	}
	if offset%4 != 0 {
		return fmt.Errorf("gpu: write offset %d into %q is not 4-byte aligned", offset, b.desc.Label)
	}
	if pad := AlignUp(uint64(len(data)), 4); pad != uint64(len(data)) {
		padded := make([]byte, pad)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(b.buffer, offset, data)
	return nil
}

// wgpuViewer is implemented by textures that can be bound as attachments or shader resources.
type wgpuViewer interface {
	Texture
	view() (*wgpu.TextureView, error)
}

type wgpuTexture struct {
	desc        TextureDesc
	texture     *wgpu.Texture
	textureView *wgpu.TextureView
}

func (t *wgpuTexture) Label() string     { return t.desc.Label }
func (t *wgpuTexture) Desc() TextureDesc { return t.desc }

func (t *wgpuTexture) view() (*wgpu.TextureView, error) {
	return t.textureView, nil
}

type bindGroupKey struct {
	table int
	heap  DescriptorHeap
	index int
}

type cachedBindGroup struct {
	descriptors []Descriptor
	group       *wgpu.BindGroup
}

type wgpuRootSignature struct {
	desc          RootSignatureDesc
	layouts       []*wgpu.BindGroupLayout
	samplerLayout *wgpu.BindGroupLayout
	samplerGroup  *wgpu.BindGroup

	groups map[bindGroupKey]*cachedBindGroup
}

func (r *wgpuRootSignature) Label() string           { return r.desc.Label }
func (r *wgpuRootSignature) Desc() RootSignatureDesc { return r.desc }

// usedGroups returns how many leading tables a pipeline that skips unused reads.
func (r *wgpuRootSignature) usedGroups(unused []int) int {
	n := len(r.layouts)
	for _, u := range unused {
		if u >= 0 && u < n {
			n = u
		}
	}
	return n
}

// bindGroup returns the bind group for a root table whose first descriptor is base. Groups are
// cached per base slot and rebuilt when the slot contents change.
func (r *wgpuRootSignature) bindGroup(device *wgpu.Device, table int, base DescriptorHandle) (*wgpu.BindGroup, error) {
	count := r.desc.Tables[table].Count
	descs := make([]Descriptor, count)
	for n := range descs {
		d, err := base.Offset(n).Descriptor()
		if err != nil {
			return nil, err
		}
		descs[n] = d
	}

	key := bindGroupKey{table: table, heap: base.Heap(), index: base.Index()}
	if cached, ok := r.groups[key]; ok && sameDescriptors(cached.descriptors, descs) {
		return cached.group, nil
	}

	entries := make([]wgpu.BindGroupEntry, count)
	for n, d := range descs {
		switch d.Kind {
		case DescriptorCBV:
			buf, ok := d.Buffer.(*wgpuBuffer)
			if !ok {
				return nil, fmt.Errorf("gpu: constant buffer %q is not a WebGPU buffer", d.Buffer.Label())
			}
			entries[n] = wgpu.BindGroupEntry{
				Binding: uint32(n),
				Buffer:  buf.buffer,
				Offset:  d.Offset,
				Size:    d.Size,
			}
		case DescriptorSRV:
			tex, ok := d.Texture.(wgpuViewer)
			if !ok {
				return nil, fmt.Errorf("gpu: texture %q is not a WebGPU texture", d.Texture.Label())
			}
			view, err := tex.view()
			if err != nil {
				return nil, err
			}
			entries[n] = wgpu.BindGroupEntry{
				Binding:     uint32(n),
				TextureView: view,
			}
		default:
			return nil, fmt.Errorf("gpu: descriptor kind %d cannot be bound in a table", d.Kind)
		}
	}

	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s table %d @%d", r.desc.Label, table, base.Index()),
		Layout:  r.layouts[table],
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	if cached, ok := r.groups[key]; ok {
		cached.group.Release()
	}
	r.groups[key] = &cachedBindGroup{descriptors: descs, group: group}
	return group, nil
}

func (r *wgpuRootSignature) release() {
	for k, g := range r.groups {
		g.group.Release()
		delete(r.groups, k)
	}
}

func sameDescriptors(a, b []Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type wgpuPipeline struct {
	desc          GraphicsPipelineDesc
	pipeline      *wgpu.RenderPipeline
	rootSignature *wgpuRootSignature
	groups        int
}

func (p *wgpuPipeline) Label() string              { return p.desc.Label }
func (p *wgpuPipeline) Desc() GraphicsPipelineDesc { return p.desc }

func toWGPUTextureFormat(f Format) (wgpu.TextureFormat, error) {
	switch f {
	case FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, nil
	case FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float, nil
	case FormatDepth16Unorm:
		return wgpu.TextureFormatDepth16Unorm, nil
	case FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("gpu: format %s has no texture equivalent", f)
	}
}

func fromWGPUTextureFormat(f wgpu.TextureFormat) Format {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return FormatRGBA8Unorm
	case wgpu.TextureFormatBGRA8Unorm:
		return FormatBGRA8Unorm
	case wgpu.TextureFormatRGBA32Float:
		return FormatRGBA32Float
	default:
		return FormatUnknown
	}
}

func toWGPUVertexFormat(f Format) (wgpu.VertexFormat, error) {
	switch f {
	case FormatRGB32Float:
		return wgpu.VertexFormatFloat32x3, nil
	case FormatRGBA32Float:
		return wgpu.VertexFormatFloat32x4, nil
	default:
		return wgpu.VertexFormatUndefined, fmt.Errorf("gpu: format %s has no vertex equivalent", f)
	}
}

func toWGPUStages(v ShaderVisibility) wgpu.ShaderStage {
	var s wgpu.ShaderStage
	if v&ShaderVisibilityVertex != 0 {
		s |= wgpu.ShaderStageVertex
	}
	if v&ShaderVisibilityPixel != 0 {
		s |= wgpu.ShaderStageFragment
	}
	return s
}

func toWGPUCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullFront:
		return wgpu.CullModeFront
	case CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

// toWGPUSampler maps a static sampler. WebGPU has no border addressing, so AddressModeBorder
// clamps to edge and shaders treat out-of-range coordinates as the border color.
func toWGPUSampler(label string, s StaticSamplerDesc) *wgpu.SamplerDescriptor {
	address := wgpu.AddressModeClampToEdge
	if s.Address == AddressModeWrap {
		address = wgpu.AddressModeRepeat
	}
	filter := wgpu.FilterModeNearest
	mip := wgpu.MipmapFilterModeNearest
	if s.Filter == FilterLinear {
		filter = wgpu.FilterModeLinear
		mip = wgpu.MipmapFilterModeLinear
	}
	return &wgpu.SamplerDescriptor{
		Label:         label + " static sampler",
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mip,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}
