package model

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/gpu"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches the GPUVertex attribute offsets (position at 0, normal at 16).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Size: 32 bytes, with each attribute starting on a 16-byte boundary.
type GPUVertex struct {
	Position [3]float32 // offset  0: position in model space (12 bytes)
	_        float32    // offset 12: padding (4 bytes)
	Normal   [3]float32 // offset 16: unit normal in model space (12 bytes)
	_        float32    // offset 28: padding (4 bytes)
}

// GPUVertexSize is the byte stride between consecutive vertices.
const GPUVertexSize = uint32(unsafe.Sizeof(GPUVertex{}))

// NewGPUVertex builds a vertex from a position and normal.
func NewGPUVertex(position, normal [3]float32) GPUVertex {
	return GPUVertex{Position: position, Normal: normal}
}

// InputLayout returns the vertex attributes in shader location order.
//
// Returns:
//   - []gpu.InputElement: POSITION at offset 0 and NORMAL at offset 16
func InputLayout() []gpu.InputElement {
	return []gpu.InputElement{
		{Semantic: "POSITION", Format: gpu.FormatRGB32Float, Offset: 0},
		{Semantic: "NORMAL", Format: gpu.FormatRGB32Float, Offset: 16},
	}
}

// VerticesToBytes returns the raw bytes of a vertex slice.
func VerticesToBytes(v []GPUVertex) []byte {
	return common.SliceToBytes(v)
}

// IndicesToBytes returns the raw bytes of a 16-bit index slice.
func IndicesToBytes(i []uint16) []byte {
	return common.SliceToBytes(i)
}
