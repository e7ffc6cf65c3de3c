package material

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a Diffuse material during construction.
type MaterialBuilderOption func(*Diffuse)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(d *Diffuse) {
		d.Name = name
	}
}

// WithAlbedo is an option builder that sets the diffuse albedo of the material.
//
// Parameters:
//   - albedo: the linear RGB albedo
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedo(albedo mgl32.Vec3) MaterialBuilderOption {
	return func(d *Diffuse) {
		d.Albedo = albedo
	}
}

// WithColor is an option builder that sets the albedo from a color, ignoring alpha.
//
// Parameters:
//   - c: the color to take the RGB albedo from
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(c common.Color) MaterialBuilderOption {
	return func(d *Diffuse) {
		d.Albedo = c.RGB()
	}
}

// WithReflectance is an option builder that sets the reflectance of the material, clamped to [0, 1].
//
// Parameters:
//   - reflectance: the fraction of reflected flux that contributes indirect light
//
// Returns:
//   - MaterialBuilderOption: a function that applies the reflectance option to a material
func WithReflectance(reflectance float32) MaterialBuilderOption {
	return func(d *Diffuse) {
		d.Reflectance = common.Clamp(reflectance, 0, 1)
	}
}
