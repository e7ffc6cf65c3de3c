package loader

import "fmt"

// extractFirstMesh merges every triangle primitive of the document's first mesh into one rawMesh.
// Primitives without indices are drawn as sequential triangles. If any primitive lacks normals,
// normals are generated for the whole mesh.
//
// Parameters:
//   - p: the parser holding the decoded document
//
// Returns:
//   - rawMesh: the merged mesh
//   - error: error if the document has no mesh or an accessor cannot be read
func extractFirstMesh(p *gltfParser) (rawMesh, error) {
	if len(p.doc.Meshes) == 0 {
		return rawMesh{}, fmt.Errorf("document has no meshes")
	}
	mesh := &p.doc.Meshes[0]

	out := rawMesh{name: mesh.Name}
	for i := range mesh.Primitives {
		prim, err := extractPrimitive(p, &mesh.Primitives[i])
		if err != nil {
			return rawMesh{}, fmt.Errorf("mesh 0 primitive %d: %w", i, err)
		}
		out.append(prim)
	}
	return out, nil
}

// extractPrimitive reads the positions, normals and indices of a triangle primitive.
func extractPrimitive(p *gltfParser, prim *gltfPrimitive) (rawMesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return rawMesh{}, fmt.Errorf("unsupported primitive mode %d (only triangles)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return rawMesh{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := p.readVec3(posAccessor)
	if err != nil {
		return rawMesh{}, fmt.Errorf("failed to read positions: %w", err)
	}
	out := rawMesh{positions: positions}

	if nrmAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := p.readVec3(nrmAccessor)
		if err != nil {
			return rawMesh{}, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals) != len(positions) {
			return rawMesh{}, fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
		}
		out.normals = normals
	}

	if prim.Indices != nil {
		if out.indices, err = p.readIndices(*prim.Indices); err != nil {
			return rawMesh{}, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		out.indices = make([]uint32, len(positions))
		for i := range out.indices {
			out.indices[i] = uint32(i)
		}
	}
	return out, nil
}
