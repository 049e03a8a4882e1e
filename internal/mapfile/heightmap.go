// Package mapfile parses the binary SCMAP header and exposes the
// resulting heightmap with bilinear height queries. Grounded on
// original_source/src/map/heightmap.{hpp,cpp} and
// original_source/src/map/scmap_parser.{hpp,cpp}.
package mapfile

// Heightmap is a (mapWidth+1) x (mapHeight+1) grid of scaled height
// samples with bilinear interpolation between grid points.
type Heightmap struct {
	mapWidth, mapHeight int
	scale                float32
	gridWidth, gridHeight int
	data                 []int16
}

// NewHeightmap wraps raw i16 samples read from a map file.
func NewHeightmap(mapWidth, mapHeight int, scale float32, raw []int16) *Heightmap {
	return &Heightmap{
		mapWidth:   mapWidth,
		mapHeight:  mapHeight,
		scale:      scale,
		gridWidth:  mapWidth + 1,
		gridHeight: mapHeight + 1,
		data:       raw,
	}
}

func (h *Heightmap) GridWidth() int  { return h.gridWidth }
func (h *Heightmap) GridHeight() int { return h.gridHeight }
func (h *Heightmap) MapWidth() int   { return h.mapWidth }
func (h *Heightmap) MapHeight() int  { return h.mapHeight }

// HeightAtGrid returns the scaled height sample at exact grid coordinates.
func (h *Heightmap) HeightAtGrid(gx, gz int) float32 {
	return float32(h.data[gz*h.gridWidth+gx]) * h.scale
}

// GetHeight bilinearly interpolates the height at world coordinates
// (x, z), clamping out-of-range coordinates to the grid bounds.
func (h *Heightmap) GetHeight(x, z float32) float32 {
	if x < 0 {
		x = 0
	}
	if x > float32(h.gridWidth-1) {
		x = float32(h.gridWidth - 1)
	}
	if z < 0 {
		z = 0
	}
	if z > float32(h.gridHeight-1) {
		z = float32(h.gridHeight - 1)
	}

	gx := int(x)
	gz := int(z)
	if gx >= h.gridWidth-1 {
		gx = h.gridWidth - 2
	}
	if gz >= h.gridHeight-1 {
		gz = h.gridHeight - 2
	}
	if gx < 0 {
		gx = 0
	}
	if gz < 0 {
		gz = 0
	}

	fx := x - float32(gx)
	fz := z - float32(gz)

	h00 := h.HeightAtGrid(gx, gz)
	h10 := h.HeightAtGrid(gx+1, gz)
	h01 := h.HeightAtGrid(gx, gz+1)
	h11 := h.HeightAtGrid(gx+1, gz+1)

	top := h00 + (h10-h00)*fx
	bottom := h01 + (h11-h01)*fx
	return top + (bottom-top)*fz
}
