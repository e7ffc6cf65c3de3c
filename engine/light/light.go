package light

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default values used by NewDirectionalLight.
var (
	DefaultPosition      = mgl32.Vec3{6, 6, -6}
	DefaultDirection     = mgl32.Vec3{-1, -1, 1}
	DefaultColor         = mgl32.Vec3{1, 1, 1}
	DefaultWidth         = float32(15)
	DefaultHeight        = float32(15)
	DefaultAffectedDepth = float32(50)
	DefaultEpsilon       = float32(0.01)
)

// directionalLight is the implementation of the DirectionalLight interface.
type directionalLight struct {
	position      mgl32.Vec3
	direction     mgl32.Vec3
	color         mgl32.Vec3
	width         float32
	height        float32
	affectedDepth float32
	epsilon       float32
}

// DirectionalLight is a light with parallel rays, modelled as an oriented box: a width x height
// cross-section centred on Position, extending AffectedDepth along Direction starting Epsilon in
// front of it. The box is the volume the reflective shadow map captures.
type DirectionalLight interface {
	// Position returns the world-space origin of the light volume.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the direction the light travels, as set. It need not be normalized.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the light flux per color channel.
	//
	// Returns:
	//   - mgl32.Vec3: the flux as (r, g, b)
	Color() mgl32.Vec3

	// Extent returns the width and height of the light volume cross-section.
	//
	// Returns:
	//   - float32: the width
	//   - float32: the height
	Extent() (float32, float32)

	// AffectedDepth returns the depth of the light volume.
	AffectedDepth() float32

	// Epsilon returns the near-plane distance in front of Position.
	Epsilon() float32

	// ZNear returns the near plane distance, equal to Epsilon.
	ZNear() float32

	// ZFar returns the far plane distance, Epsilon + AffectedDepth.
	ZFar() float32

	// ViewMatrix returns the world-to-light transform looking from Position along the normalized
	// Direction with +Y up.
	//
	// Returns:
	//   - mgl32.Mat4: the light view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the orthographic projection of the light volume, mapping
	// [ZNear, ZFar] to clip depth [0, 1].
	//
	// Returns:
	//   - mgl32.Mat4: the light projection matrix
	ProjectionMatrix() mgl32.Mat4

	// SetPosition sets the world-space origin of the light volume.
	//
	// Parameters:
	//   - p: the position
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the light direction. Zero vectors are ignored.
	//
	// Parameters:
	//   - d: the direction
	SetDirection(d mgl32.Vec3)

	// SetColor sets the light flux.
	//
	// Parameters:
	//   - c: the flux as (r, g, b)
	SetColor(c mgl32.Vec3)
}

var _ DirectionalLight = &directionalLight{}

// NewDirectionalLight creates a DirectionalLight with the default volume and applies the options.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - DirectionalLight: a new light
func NewDirectionalLight(opts ...LightBuilderOption) DirectionalLight {
	l := &directionalLight{
		position:      DefaultPosition,
		direction:     DefaultDirection,
		color:         DefaultColor,
		width:         DefaultWidth,
		height:        DefaultHeight,
		affectedDepth: DefaultAffectedDepth,
		epsilon:       DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *directionalLight) Position() mgl32.Vec3 {
	return l.position
}

func (l *directionalLight) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *directionalLight) Color() mgl32.Vec3 {
	return l.color
}

func (l *directionalLight) Extent() (float32, float32) {
	return l.width, l.height
}

func (l *directionalLight) AffectedDepth() float32 {
	return l.affectedDepth
}

func (l *directionalLight) Epsilon() float32 {
	return l.epsilon
}

func (l *directionalLight) ZNear() float32 {
	return l.epsilon
}

func (l *directionalLight) ZFar() float32 {
	return l.epsilon + l.affectedDepth
}

func (l *directionalLight) ViewMatrix() mgl32.Mat4 {
	return common.LookToLH(l.position, l.direction.Normalize(), mgl32.Vec3{0, 1, 0})
}

func (l *directionalLight) ProjectionMatrix() mgl32.Mat4 {
	return common.OrthographicLH(l.width, l.height, l.ZNear(), l.ZFar())
}

func (l *directionalLight) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *directionalLight) SetDirection(d mgl32.Vec3) {
	if d.LenSqr() == 0 {
		return
	}
	l.direction = d
}

func (l *directionalLight) SetColor(c mgl32.Vec3) {
	l.color = c
}
