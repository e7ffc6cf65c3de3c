package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func rawLoader() Loader {
	return NewLoader(WithLeftHanded(false), WithFlipWinding(false))
}

func TestLoadReader_OBJFanAndGeneratedNormals(t *testing.T) {
	m, err := rawLoader().LoadReader("quad", strings.NewReader(quadOBJ), ".obj")
	require.NoError(t, err)

	mesh := m.Mesh()
	assert.Equal(t, "quad", mesh.Name)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, mesh.Indices)
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 1, v.Normal[2], 1e-6)
	}
}

func TestLoadReader_OBJLeftHandedConversion(t *testing.T) {
	m, err := NewLoader().LoadReader("quad", strings.NewReader(quadOBJ), ".obj")
	require.NoError(t, err)

	mesh := m.Mesh()
	assert.Equal(t, []uint16{0, 2, 1, 0, 3, 2}, mesh.Indices)
	for _, v := range mesh.Vertices {
		assert.InDelta(t, -1, v.Normal[2], 1e-6, "normals are mirrored with the positions")
	}
}

func TestLoadReader_OBJNormalsAndSharing(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vn 0 1 0
f 1//1 2//1 3//1
f 1//1 3//1 4//1
f -4//-1 -3//-1 -2//-1
`
	m, err := rawLoader().LoadReader("shared", strings.NewReader(src), ".obj")
	require.NoError(t, err)

	mesh := m.Mesh()
	assert.Len(t, mesh.Vertices, 7, "corners with the same position and normal are shared")
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6}, mesh.Indices)
	assert.Equal(t, [3]float32{0, 1, 0}, mesh.Vertices[4].Normal)
}

func TestLoadReader_OBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rawLoader().LoadReader(tt.name, strings.NewReader(tt.src), ".obj")
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileAndCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	l := NewLoader()
	first, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.SourcePath())

	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Nil(t, l.Get("missing"))
}

func TestLoad_Errors(t *testing.T) {
	l := NewLoader()

	_, err := l.Load("bunny.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func TestRawMesh_TooManyVertices(t *testing.T) {
	raw := rawMesh{
		name:      "big",
		positions: make([][3]float32, math.MaxUint16+2),
		normals:   make([][3]float32, math.MaxUint16+2),
		indices:   []uint32{0, 1, 2},
	}
	_, err := raw.toMesh(false, false)
	assert.ErrorIs(t, err, model.ErrTooManyVertices)
}

func TestRawMesh_Append(t *testing.T) {
	a := rawMesh{positions: make([][3]float32, 3), normals: make([][3]float32, 3), indices: []uint32{0, 1, 2}}
	b := rawMesh{positions: make([][3]float32, 3), indices: []uint32{0, 2, 1}}

	var merged rawMesh
	merged.append(a)
	assert.Len(t, merged.normals, 3)
	merged.append(b)
	assert.Len(t, merged.positions, 6)
	assert.Nil(t, merged.normals, "normals are dropped when a part has none")
	assert.Equal(t, []uint32{0, 1, 2, 3, 5, 4}, merged.indices)
}

// triangleBuffer returns three positions in the XY plane followed by three uint16 indices,
// padded to a multiple of four bytes.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		_ = binary.Write(&buf, binary.LittleEndian, p)
	}
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return buf.Bytes()
}

func triangleDocument(bufferJSON string) string {
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [%s]
}`, bufferJSON)
}

func TestLoadReader_GLTFDataURI(t *testing.T) {
	data := triangleBuffer()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
	doc := triangleDocument(fmt.Sprintf(`{"uri": %q, "byteLength": %d}`, uri, len(data)))

	m, err := rawLoader().LoadReader("tri", strings.NewReader(doc), ".gltf")
	require.NoError(t, err)

	mesh := m.Mesh()
	assert.Equal(t, "tri", mesh.Name)
	assert.Equal(t, []uint16{0, 1, 2}, mesh.Indices)
	assert.Equal(t, [3]float32{1, 0, 0}, mesh.Vertices[1].Position)
	assert.InDelta(t, 1, mesh.Vertices[0].Normal[2], 1e-6)
}

func TestLoadReader_GLB(t *testing.T) {
	data := triangleBuffer()
	jsonChunk := []byte(triangleDocument(fmt.Sprintf(`{"byteLength": %d}`, len(data))))
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}

	var glb bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(data)
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	glb.Write(jsonChunk)
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(data)), ChunkType: gltfGLBChunkBIN})
	glb.Write(data)

	m, err := rawLoader().LoadReader("tri.glb", &glb, ".glb")
	require.NoError(t, err)
	assert.Len(t, m.Mesh().Vertices, 3)
}

func TestLoadReader_GLTFErrors(t *testing.T) {
	data := triangleBuffer()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data[:20])
	short := triangleDocument(fmt.Sprintf(`{"uri": %q, "byteLength": 20}`, uri))

	tests := []struct {
		name string
		doc  string
	}{
		{"bad version", `{"asset": {"version": "1.0"}}`},
		{"no meshes", `{"asset": {"version": "2.0"}}`},
		{"accessor past buffer", short},
		{"external buffer from stream", triangleDocument(`{"uri": "tri.bin", "byteLength": 44}`)},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rawLoader().LoadReader(tt.name, strings.NewReader(tt.doc), ".gltf")
			assert.Error(t, err)
		})
	}

	_, err := rawLoader().LoadReader("bad.glb", strings.NewReader("not a glb file"), ".glb")
	assert.ErrorIs(t, err, errInvalidGLB)
}
