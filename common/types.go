// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Color is a linear RGBA color used for clear values, material albedo and light flux.
type Color struct {
	R, G, B, A float32
}

// Opaque returns an opaque color from its red, green and blue components.
func Opaque(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGB returns the color's red, green and blue components as a vector.
func (c Color) RGB() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Array returns the color as a 4-element array in RGBA order.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

var (
	// Black is opaque black.
	Black = Opaque(0, 0, 0)

	// White is opaque white.
	White = Opaque(1, 1, 1)
)
