// Package pathing implements the passability grid and the A* pathfinder
// that searches it. Grounded on
// original_source/src/map/pathfinding_grid.{hpp,cpp} and
// original_source/src/map/pathfinder.{hpp,cpp}.
package pathing

import (
	"github.com/osc-sim/simcore/internal/spatial"
	"github.com/osc-sim/simcore/internal/terrain"
)

// Passability classifies a single grid cell.
type Passability uint8

const (
	Passable Passability = iota
	Impassable
	Water
	Obstacle
)

// Layer is the movement domain a unit occupies, mirroring Entity.layer.
type Layer string

const (
	LayerLand   Layer = "Land"
	LayerWater  Layer = "Water"
	LayerSub    Layer = "Sub"
	LayerSeabed Layer = "Seabed"
	LayerAir    Layer = "Air"
)

const (
	defaultCellSize     = 2
	defaultSlopeThresh  = 0.75
)

// Grid is the classified passability grid built once from a terrain and
// mutated at runtime by mark/clear obstacle as structures are built and
// destroyed.
type Grid struct {
	cols, rows   int
	cellSize     float32
	slopeThresh  float32
	cells        []Passability
	baseCells    []Passability // immutable terrain classification
}

// NewGrid classifies a grid over the given terrain at the default cell
// size and slope threshold.
func NewGrid(t *terrain.Terrain, mapWidth, mapHeight int) *Grid {
	return NewGridWithParams(t, mapWidth, mapHeight, defaultCellSize, defaultSlopeThresh)
}

// NewGridWithParams allows overriding cell size and slope threshold, used
// by tests that want small, hand-checkable grids.
func NewGridWithParams(t *terrain.Terrain, mapWidth, mapHeight int, cellSize, slopeThreshold float32) *Grid {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	cols := int(ceilDiv(mapWidth, cellSize))
	rows := int(ceilDiv(mapHeight, cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g := &Grid{cols: cols, rows: rows, cellSize: cellSize, slopeThresh: slopeThreshold}
	g.cells = make([]Passability, cols*rows)

	hm := t.Heightmap()
	for cz := 0; cz < rows; cz++ {
		for cx := 0; cx < cols; cx++ {
			x0 := float32(cx) * cellSize
			z0 := float32(cz) * cellSize
			x1 := x0 + cellSize
			z1 := z0 + cellSize

			h00 := hm.GetHeight(x0, z0)
			h10 := hm.GetHeight(x1, z0)
			h01 := hm.GetHeight(x0, z1)
			h11 := hm.GetHeight(x1, z1)

			maxSlope := absF32(h10 - h00)
			maxSlope = maxF32(maxSlope, absF32(h01-h00))
			maxSlope = maxF32(maxSlope, absF32(h11-h10))
			maxSlope = maxF32(maxSlope, absF32(h11-h01))

			var p Passability
			switch {
			case maxSlope > slopeThreshold*cellSize:
				p = Impassable
			case t.HasWater() && (h00+h10+h01+h11)/4 < t.WaterElevation():
				p = Water
			default:
				p = Passable
			}
			g.cells[cz*cols+cx] = p
		}
	}

	g.baseCells = append([]Passability(nil), g.cells...)
	return g
}

func ceilDiv(extent int, cellSize float32) int {
	n := float32(extent) / cellSize
	i := int(n)
	if float32(i) < n {
		i++
	}
	return i
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (g *Grid) Cols() int          { return g.cols }
func (g *Grid) Rows() int          { return g.rows }
func (g *Grid) CellSize() float32  { return g.cellSize }

func (g *Grid) inBounds(cx, cz int) bool {
	return cx >= 0 && cx < g.cols && cz >= 0 && cz < g.rows
}

// CellAt returns the passability of a grid cell, or Impassable if out of
// bounds.
func (g *Grid) CellAt(cx, cz int) Passability {
	if !g.inBounds(cx, cz) {
		return Impassable
	}
	return g.cells[cz*g.cols+cx]
}

// WorldToGrid converts a world position to the grid cell containing it.
func (g *Grid) WorldToGrid(x, z float32) (int, int) {
	return int(x / g.cellSize), int(z / g.cellSize)
}

// GridToWorld returns the world-space centre of a grid cell.
func (g *Grid) GridToWorld(cx, cz int) spatial.Vector3 {
	return spatial.Vector3{
		X: (float32(cx) + 0.5) * g.cellSize,
		Z: (float32(cz) + 0.5) * g.cellSize,
	}
}

// IsPassableForLayer reports whether a cell may be entered by a unit on
// the given layer. Air always passes; Water/Sub/Seabed require a Water
// cell; Land (and anything else) requires a Passable cell. Obstacle
// blocks every ground layer.
func (g *Grid) IsPassableForLayer(cx, cz int, layer Layer) bool {
	if layer == LayerAir {
		return true
	}
	cell := g.CellAt(cx, cz)
	switch layer {
	case LayerWater, LayerSub, LayerSeabed:
		return cell == Water
	default:
		return cell == Passable
	}
}

// MarkObstacle sets every cell intersecting the world-space rectangle
// centred at (x, z) with the given footprint to Obstacle. A cell that only
// touches the rectangle's far edge is not marked.
func (g *Grid) MarkObstacle(x, z, sizeX, sizeZ float32) {
	g.forEachRectCell(x, z, sizeX, sizeZ, func(idx int) {
		g.cells[idx] = Obstacle
	})
}

// ClearObstacle restores every cell intersecting the rectangle to its
// original terrain classification.
func (g *Grid) ClearObstacle(x, z, sizeX, sizeZ float32) {
	g.forEachRectCell(x, z, sizeX, sizeZ, func(idx int) {
		g.cells[idx] = g.baseCells[idx]
	})
}

func (g *Grid) forEachRectCell(x, z, sizeX, sizeZ float32, fn func(idx int)) {
	minX, minZ := x-sizeX/2, z-sizeZ/2
	maxX, maxZ := x+sizeX/2, z+sizeZ/2

	minCX, minCZ := g.WorldToGrid(minX, minZ)
	maxCX, maxCZ := g.WorldToGrid(maxX, maxZ)
	// A far edge lying exactly on a cell boundary only touches the next
	// cell, so that cell is excluded.
	if maxCX > minCX && float32(maxCX)*g.cellSize == maxX {
		maxCX--
	}
	if maxCZ > minCZ && float32(maxCZ)*g.cellSize == maxZ {
		maxCZ--
	}

	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			if !g.inBounds(cx, cz) {
				continue
			}
			fn(cz*g.cols + cx)
		}
	}
}
