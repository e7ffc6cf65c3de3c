package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var errOBJNoFaces = errors.New("obj: no faces")

// objLoaderBackend decodes Wavefront OBJ files. Only positions, normals and faces are read;
// texture coordinates, materials and groups are ignored. Polygons are triangulated as fans.
type objLoaderBackend struct{}

var _ loaderBackend = objLoaderBackend{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - loaderBackend: the loader backend for .obj files
func newOBJLoaderBackend() loaderBackend {
	return objLoaderBackend{}
}

func (b objLoaderBackend) Load(path string) (rawMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return rawMesh{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return b.LoadReader(f, false)
}

// objCorner is one face corner: a position index and an optional normal index (-1 if absent).
type objCorner struct {
	pos int
	nrm int
}

// objDecoder holds the state of one decode.
type objDecoder struct {
	line      int
	name      string
	positions [][3]float32
	normals   [][3]float32
	faces     [][]objCorner
}

func (objLoaderBackend) LoadReader(r io.Reader, _ bool) (rawMesh, error) {
	dec := &objDecoder{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return rawMesh{}, fmt.Errorf("obj line %d: %w", dec.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return rawMesh{}, fmt.Errorf("failed to read obj: %w", err)
	}
	return dec.build()
}

// parseLine dispatches one OBJ statement.
func (d *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		d.positions = append(d.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		d.normals = append(d.normals, v)
	case "f":
		return d.parseFace(fields[1:])
	case "o":
		if d.name == "" && len(fields) > 1 {
			d.name = fields[1]
		}
	}
	return nil
}

// parseFace reads a face of at least three corners in any of the forms v, v/vt, v//vn, v/vt/vn.
func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face has %d corners, need at least 3", len(fields))
	}
	face := make([]objCorner, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		pos, err := resolveOBJIndex(parts[0], len(d.positions))
		if err != nil {
			return fmt.Errorf("face position: %w", err)
		}
		face[i] = objCorner{pos: pos, nrm: -1}
		if len(parts) == 3 && parts[2] != "" {
			nrm, err := resolveOBJIndex(parts[2], len(d.normals))
			if err != nil {
				return fmt.Errorf("face normal: %w", err)
			}
			face[i].nrm = nrm
		}
	}
	d.faces = append(d.faces, face)
	return nil
}

// build joins identical corners into shared vertices and triangulates every face as a fan.
// If any corner lacks a normal the normals are dropped so they can be generated.
func (d *objDecoder) build() (rawMesh, error) {
	if len(d.faces) == 0 {
		return rawMesh{}, errOBJNoFaces
	}

	withNormals := true
	for _, face := range d.faces {
		for _, c := range face {
			if c.nrm < 0 {
				withNormals = false
			}
		}
	}

	m := rawMesh{name: d.name}
	if withNormals {
		m.normals = [][3]float32{}
	}
	lookup := make(map[objCorner]uint32)
	vertex := func(c objCorner) uint32 {
		if !withNormals {
			c.nrm = -1
		}
		if idx, ok := lookup[c]; ok {
			return idx
		}
		idx := uint32(len(m.positions))
		lookup[c] = idx
		m.positions = append(m.positions, d.positions[c.pos])
		if withNormals {
			m.normals = append(m.normals, d.normals[c.nrm])
		}
		return idx
	}

	for _, face := range d.faces {
		first := vertex(face[0])
		for i := 2; i < len(face); i++ {
			m.indices = append(m.indices, first, vertex(face[i-1]), vertex(face[i]))
		}
	}
	return m, nil
}

// resolveOBJIndex converts a 1-based or negative (relative) OBJ index into a 0-based index.
func resolveOBJIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return i, nil
}

// parseVec3 parses the first three fields as floats.
func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, fmt.Errorf("invalid float %q", fields[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}
