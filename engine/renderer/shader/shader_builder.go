package shader

// ShaderBuilderOption is a functional option for configuring a Shader via NewShader.
type ShaderBuilderOption func(*shader)

// WithPreProcessor is an option builder that sets the PreProcessor used to expand annotations.
// The default pre-processor only knows the vertex input struct.
//
// Parameters:
//   - pp: the pre-processor with every struct the source includes registered
//
// Returns:
//   - ShaderBuilderOption: a function that applies the pre-processor option to a shader
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}
