package mapfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/osc-sim/simcore/internal/simerr"
)

const (
	minFileSize  = 30
	maxMapExtent = 4096
	maxCubemaps  = 128
	lightingBytes = 92
)

var magic = [4]byte{'M', 'a', 'p', 0x1a}

// Data is the subset of a parsed SCMAP file this core consumes: the
// heightmap grid and water parameters. Texture, decal and prop sections
// are intentionally left unparsed.
type Data struct {
	VersionMinor    int32
	MapWidth        int
	MapHeight       int
	HeightScale     float32
	Heightmap       *Heightmap
	HasWater        bool
	WaterElevation  float32
}

// binaryReader sequentially consumes little-endian values from a byte
// slice with bounds checking on every read, mirroring the original's
// private BinaryReader helper.
type binaryReader struct {
	buf []byte
	pos int
}

func (r *binaryReader) remaining() int { return len(r.buf) - r.pos }

func (r *binaryReader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("truncated at offset %d, need %d more bytes: %w", r.pos, n, simerr.ErrParse)
	}
	return nil
}

func (r *binaryReader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *binaryReader) readBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *binaryReader) readU8() (byte, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *binaryReader) readI32() (int32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *binaryReader) readF32() (float32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *binaryReader) readI16() (int16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// readCString reads bytes until (and consuming) a NUL terminator.
func (r *binaryReader) readCString() (string, error) {
	start := r.pos
	for {
		if r.remaining() == 0 {
			return "", fmt.Errorf("unterminated string at offset %d: %w", start, simerr.ErrParse)
		}
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
}

// Parse decodes an SCMAP file's header into a Data, failing on truncation
// or on dimensions outside (0, 4096].
func Parse(raw []byte) (*Data, error) {
	if len(raw) < minFileSize {
		return nil, fmt.Errorf("file too small (%d bytes): %w", len(raw), simerr.ErrParse)
	}

	r := &binaryReader{buf: raw}

	magicBytes, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	if magicBytes[0] != magic[0] || magicBytes[1] != magic[1] ||
		magicBytes[2] != magic[2] || magicBytes[3] != magic[3] {
		return nil, fmt.Errorf("bad magic bytes: %w", simerr.ErrParse)
	}

	if err := r.skip(4); err != nil { // version_major
		return nil, err
	}
	if err := r.skip(4 + 4); err != nil { // two 4-byte unknowns
		return nil, err
	}
	if _, err := r.readF32(); err != nil { // scaled width (unused)
		return nil, err
	}
	if _, err := r.readF32(); err != nil { // scaled height (unused)
		return nil, err
	}
	if err := r.skip(4); err != nil { // unknown
		return nil, err
	}
	if err := r.skip(2); err != nil { // unknown
		return nil, err
	}

	previewLen, err := r.readI32()
	if err != nil {
		return nil, err
	}
	if previewLen < 0 || int(previewLen) > r.remaining() {
		return nil, fmt.Errorf("invalid preview length %d: %w", previewLen, simerr.ErrParse)
	}
	if err := r.skip(int(previewLen)); err != nil {
		return nil, err
	}

	versionMinor, err := r.readI32()
	if err != nil {
		return nil, err
	}

	mapWidth, err := r.readI32()
	if err != nil {
		return nil, err
	}
	mapHeight, err := r.readI32()
	if err != nil {
		return nil, err
	}
	if mapWidth <= 0 || mapWidth > maxMapExtent || mapHeight <= 0 || mapHeight > maxMapExtent {
		return nil, fmt.Errorf("map dimensions out of range (%d x %d): %w", mapWidth, mapHeight, simerr.ErrParse)
	}

	heightScale, err := r.readF32()
	if err != nil {
		return nil, err
	}

	gridWidth := int(mapWidth) + 1
	gridHeight := int(mapHeight) + 1
	sampleCount := gridWidth * gridHeight
	if err := r.need(sampleCount * 2); err != nil {
		return nil, err
	}
	samples := make([]int16, sampleCount)
	for i := range samples {
		v, err := r.readI16()
		if err != nil {
			return nil, err
		}
		samples[i] = v
	}

	if err := r.skip(1); err != nil { // unknown flag byte
		return nil, err
	}

	if _, err := r.readCString(); err != nil { // shader
		return nil, err
	}
	if _, err := r.readCString(); err != nil { // background
		return nil, err
	}
	if _, err := r.readCString(); err != nil { // sky
		return nil, err
	}

	cubemapCount, err := r.readI32()
	if err != nil {
		return nil, err
	}
	if cubemapCount < 0 || cubemapCount > maxCubemaps {
		return nil, fmt.Errorf("invalid environment cubemap count %d: %w", cubemapCount, simerr.ErrParse)
	}
	for i := int32(0); i < cubemapCount; i++ {
		if _, err := r.readCString(); err != nil {
			return nil, err
		}
		if _, err := r.readCString(); err != nil {
			return nil, err
		}
	}

	if err := r.skip(lightingBytes); err != nil {
		return nil, err
	}

	hasWaterByte, err := r.readU8()
	if err != nil {
		return nil, err
	}
	hasWater := hasWaterByte != 0

	var waterElevation float32
	if hasWater && r.remaining() >= 12 {
		elev, err := r.readF32()
		if err != nil {
			return nil, err
		}
		if _, err := r.readF32(); err != nil { // elevation deep (unused)
			return nil, err
		}
		if _, err := r.readF32(); err != nil { // elevation abyss (unused)
			return nil, err
		}
		waterElevation = elev
	}

	hm := NewHeightmap(int(mapWidth), int(mapHeight), heightScale, samples)

	return &Data{
		VersionMinor:   versionMinor,
		MapWidth:       int(mapWidth),
		MapHeight:      int(mapHeight),
		HeightScale:    heightScale,
		Heightmap:      hm,
		HasWater:       hasWater,
		WaterElevation: waterElevation,
	}, nil
}
