package renderer

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// PassConstantsSource is the WGSL definition of the PassConstants struct.
//
//go:embed assets/pass_constants.wgsl
var PassConstantsSource string

// ModelConstantsSource is the WGSL definition of the ModelConstants struct.
//
//go:embed assets/model_constants.wgsl
var ModelConstantsSource string

// PassConstants is the per-frame constant block shared by both passes.
// Size: 576 bytes. Every vec3 is followed by a scalar so each row stays on a 16-byte boundary.
type PassConstants struct {
	View          mgl32.Mat4 // offset   0
	InvView       mgl32.Mat4 // offset  64
	Proj          mgl32.Mat4 // offset 128
	InvProj       mgl32.Mat4 // offset 192
	LightView     mgl32.Mat4 // offset 256
	InvLightView  mgl32.Mat4 // offset 320
	LightOrtho    mgl32.Mat4 // offset 384
	InvLightOrtho mgl32.Mat4 // offset 448

	LightFlux      mgl32.Vec3 // offset 512
	LightZNear     float32    // offset 524
	LightDirection mgl32.Vec3 // offset 528
	LightZFar      float32    // offset 540
	LightPos       mgl32.Vec3 // offset 544
	Width          float32    // offset 556
	Height         float32    // offset 560
	RSMSize        float32    // offset 564
	TimeElapsed    float32    // offset 568
	_              float32    // offset 572: struct padding
}

// ModelConstants is the per-item constant block. Size: 144 bytes; each slot in the model
// constant buffer is padded up to the device constant buffer alignment.
type ModelConstants struct {
	Model    mgl32.Mat4 // offset   0
	InvModel mgl32.Mat4 // offset  64
	Color    [4]float32 // offset 128: albedo in rgb, reflectance in a
}

// Host sizes of the constant blocks.
const (
	PassConstantsSize  = uint64(unsafe.Sizeof(PassConstants{}))
	ModelConstantsSize = uint64(unsafe.Sizeof(ModelConstants{}))
)

// Bytes returns the raw bytes of the constants.
func (p *PassConstants) Bytes() []byte {
	return common.SliceToBytes([]PassConstants{*p})
}

// Bytes returns the raw bytes of the constants.
func (m *ModelConstants) Bytes() []byte {
	return common.SliceToBytes([]ModelConstants{*m})
}

// NewPreProcessor returns a shader pre-processor with the constant blocks of both passes
// registered.
func NewPreProcessor() shader.PreProcessor {
	return shader.NewPreProcessor(
		shader.WithStruct(shader.AnnotationArgPassConstants, "PassConstants", PassConstantsSource),
		shader.WithStruct(shader.AnnotationArgModelConstants, "ModelConstants", ModelConstantsSource),
	)
}
