package material

import "github.com/go-gl/mathgl/mgl32"

// Diffuse describes a Lambertian surface. It is copied by value into every render item that uses
// it, so items never share mutable material state.
type Diffuse struct {
	// Name identifies the material in logs.
	Name string

	// Albedo is the linear RGB fraction of incoming light the surface reflects diffusely.
	// It is uploaded as the item color and multiplies the light flux stored in the flux target.
	Albedo mgl32.Vec3

	// Reflectance scales how much of the reflected flux reaches other surfaces as indirect light.
	Reflectance float32
}

// Default values used by NewDiffuse.
var (
	DefaultAlbedo      = mgl32.Vec3{0.8, 0.8, 0.8}
	DefaultReflectance = float32(0.8)
)

// NewDiffuse creates a Diffuse material with the default grey albedo and reflectance and then
// applies the options in order.
//
// Parameters:
//   - options: the MaterialBuilderOptions to apply
//
// Returns:
//   - Diffuse: the configured material value
func NewDiffuse(options ...MaterialBuilderOption) Diffuse {
	d := Diffuse{
		Name:        "diffuse",
		Albedo:      DefaultAlbedo,
		Reflectance: DefaultReflectance,
	}
	for _, opt := range options {
		opt(&d)
	}
	return d
}

// Color returns the 4-component item color uploaded to the GPU: albedo in rgb and reflectance in a.
func (d Diffuse) Color() [4]float32 {
	return [4]float32{d.Albedo[0], d.Albedo[1], d.Albedo[2], d.Reflectance}
}

// Flux returns the flux the surface re-emits when lit with the given light flux.
func (d Diffuse) Flux(lightFlux mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		lightFlux[0] * d.Albedo[0] * d.Reflectance,
		lightFlux[1] * d.Albedo[1] * d.Reflectance,
		lightFlux[2] * d.Albedo[2] * d.Reflectance,
	}
}
