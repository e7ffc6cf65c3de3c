package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLB         = errors.New("invalid GLB container")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorRange      = errors.New("accessor reads past its buffer")
)

// gltfParser decodes a glTF or GLB document and reads typed accessor data from its buffers.
type gltfParser struct {
	baseDir string
	doc     gltfDocument
}

// parseGLTFFile reads and decodes the file at path. External buffer URIs resolve relative to it.
//
// Parameters:
//   - path: path to a .gltf or .glb file
//
// Returns:
//   - *gltfParser: the parser holding the decoded document
//   - error: error if reading or decoding fails
func parseGLTFFile(path string) (*gltfParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	isGLB := len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic
	return parseGLTF(data, isGLB, filepath.Dir(path))
}

// parseGLTF decodes a document held in memory.
//
// Parameters:
//   - data: the JSON or GLB bytes
//   - isGLB: whether data is a GLB container
//   - baseDir: the directory external buffers resolve against, empty to forbid external buffers
//
// Returns:
//   - *gltfParser: the parser holding the decoded document
//   - error: error if decoding fails
func parseGLTF(data []byte, isGLB bool, baseDir string) (*gltfParser, error) {
	p := &gltfParser{baseDir: baseDir}

	jsonData, binChunk := data, []byte(nil)
	if isGLB {
		var err error
		if jsonData, binChunk, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(jsonData, &p.doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(p.doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}
	if err := p.loadBuffers(binChunk); err != nil {
		return nil, fmt.Errorf("failed to load buffers: %w", err)
	}
	return p, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
func splitGLB(data []byte) (jsonData, binData []byte, err error) {
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errInvalidGLB, err)
	}
	if header.Magic != gltfGLBMagic || header.Version != gltfGLBVersion {
		return nil, nil, fmt.Errorf("%w: magic %#x version %d", errInvalidGLB, header.Magic, header.Version)
	}

	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("%w: chunk header: %v", errInvalidGLB, err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("%w: chunk body: %v", errInvalidGLB, err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			binData = body
		}
	}

	if jsonData == nil {
		return nil, nil, fmt.Errorf("%w: missing JSON chunk", errInvalidGLB)
	}
	return jsonData, binData, nil
}

// loadBuffers fills every buffer from the GLB chunk, a data URI or an external file.
func (p *gltfParser) loadBuffers(binChunk []byte) error {
	for i := range p.doc.Buffers {
		buf := &p.doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && binChunk != nil:
			buf.Data = binChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		case p.baseDir == "":
			return fmt.Errorf("buffer %d: external URI %q cannot be resolved from a stream", i, buf.URI)
		default:
			data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// decodeDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URI")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding %q", header)
	}
	return base64.StdEncoding.DecodeString(payload)
}

// elements returns the tightly packed bytes of an accessor whose elements are elemSize bytes.
func (p *gltfParser) elements(index, elemSize int) ([]byte, *gltfAccessor, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, fmt.Errorf("accessor %d: sparse accessors are not supported", index)
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(p.doc.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d has no valid bufferView", index)
	}

	bv := &p.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.doc.Buffers) {
		return nil, nil, fmt.Errorf("bufferView %d: buffer %d out of range", *acc.BufferView, bv.Buffer)
	}
	data := p.doc.Buffers[bv.Buffer].Data

	stride := elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+elemSize > len(data) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errAccessorRange)
	}

	out := make([]byte, acc.Count*elemSize)
	for i := 0; i < acc.Count; i++ {
		src := start + i*stride
		copy(out[i*elemSize:(i+1)*elemSize], data[src:src+elemSize])
	}
	return out, acc, nil
}

// readVec3 reads a VEC3 FLOAT accessor.
func (p *gltfParser) readVec3(index int) ([][3]float32, error) {
	if index >= 0 && index < len(p.doc.Accessors) {
		acc := p.doc.Accessors[index]
		if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
			return nil, fmt.Errorf("accessor %d is not VEC3 FLOAT: type=%s componentType=%d", index, acc.Type, acc.ComponentType)
		}
	}
	raw, acc, err := p.elements(index, 12)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, acc.Count)
	for i := range out {
		for c := 0; c < 3; c++ {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*12+c*4:]))
		}
	}
	return out, nil
}

// readIndices reads a SCALAR accessor of unsigned byte, short or int indices.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := p.doc.Accessors[index]
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: type=%s", index, acc.Type)
	}

	var size int
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		size = 1
	case gltfComponentTypeUnsignedShort:
		size = 2
	case gltfComponentTypeUnsignedInt:
		size = 4
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}

	raw, _, err := p.elements(index, size)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		switch size {
		case 1:
			out[i] = uint32(raw[i])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
	}
	return out, nil
}
