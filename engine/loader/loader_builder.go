package loader

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithLeftHanded controls whether loaded meshes are mirrored along Z to convert right-handed
// source data into the renderer's left-handed space. Enabled by default.
//
// Parameters:
//   - enabled: whether to mirror Z
//
// Returns:
//   - LoaderBuilderOption: a function that applies the handedness option to a Loader
func WithLeftHanded(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.leftHanded = enabled
	}
}

// WithFlipWinding controls whether the vertex order of every triangle is reversed so that
// counter-clockwise source faces become clockwise front faces. Enabled by default.
//
// Parameters:
//   - enabled: whether to flip the winding order
//
// Returns:
//   - LoaderBuilderOption: a function that applies the winding option to a Loader
func WithFlipWinding(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flipWinding = enabled
	}
}
