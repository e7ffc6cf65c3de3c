package model

// RectXZ returns a quad of spanX by spanZ centred on the origin in the XZ plane, facing +Y.
// The two triangles are wound clockwise when seen from above.
//
// Parameters:
//   - spanX: the extent along X
//   - spanZ: the extent along Z
//
// Returns:
//   - Mesh: four vertices and six indices
func RectXZ(spanX, spanZ float32) Mesh {
	hx, hz := 0.5*spanX, 0.5*spanZ
	up := [3]float32{0, 1, 0}
	return Mesh{
		Name: "rect_xz",
		Vertices: []GPUVertex{
			NewGPUVertex([3]float32{-hx, 0, hz}, up),
			NewGPUVertex([3]float32{hx, 0, hz}, up),
			NewGPUVertex([3]float32{-hx, 0, -hz}, up),
			NewGPUVertex([3]float32{hx, 0, -hz}, up),
		},
		Indices: []uint16{0, 1, 2, 2, 1, 3},
	}
}
