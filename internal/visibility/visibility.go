// Package visibility implements the per-army bitflag fog-of-war grid:
// vision/radar/sonar/omni painting with terrain line-of-sight occlusion.
// Grounded on original_source/src/map/visibility_grid.{hpp,cpp}.
package visibility

import (
	"math"

	"github.com/osc-sim/simcore/internal/terrain"
)

// Flag is a bitmask of visibility sources for a single cell/army pair.
type Flag uint8

const (
	None Flag = 0
	// Vision is direct line-of-sight.
	Vision Flag = 1 << iota
	Radar
	Sonar
	Omni
	// EverSeen is sticky: set once a cell gains Vision, never cleared by
	// ClearTransient.
	EverSeen
)

// Has reports whether flags contains every bit in test.
func Has(flags, test Flag) bool {
	return flags&test == test
}

const (
	// CellSize is the world-unit width/height of a visibility cell.
	CellSize = 16
	// MaxArmies bounds the number of per-army grids kept.
	MaxArmies = 16
	// EyeOffset is added to terrain height to get a unit's eye height for
	// line-of-sight checks.
	EyeOffset = 2.0
)

// Grid tracks Vision/Radar/Sonar/Omni/EverSeen per cell per army. Pure data
// structure with no simulation dependencies beyond a pre-sampled height
// grid for line-of-sight checks.
type Grid struct {
	gridWidth, gridHeight int
	cells                 [MaxArmies][]Flag
	heightGrid            []float32
}

// New builds an empty grid sized to cover a map_width x map_height map.
func New(mapWidth, mapHeight int) *Grid {
	gw := mapWidth / CellSize
	gh := mapHeight / CellSize
	if gw == 0 {
		gw = 1
	}
	if gh == 0 {
		gh = 1
	}
	g := &Grid{gridWidth: gw, gridHeight: gh}
	for a := range g.cells {
		g.cells[a] = make([]Flag, gw*gh)
	}
	return g
}

func (g *Grid) GridWidth() int  { return g.gridWidth }
func (g *Grid) GridHeight() int { return g.gridHeight }

// WorldToGrid converts a world position to grid coordinates, clamped to
// the grid bounds.
func (g *Grid) WorldToGrid(wx, wz float32) (int, int) {
	fx := wx / CellSize
	fz := wz / CellSize
	gx := clampInt(int(fx), 0, g.gridWidth-1)
	gz := clampInt(int(fz), 0, g.gridHeight-1)
	return gx, gz
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClearTransient drops Vision/Radar/Sonar/Omni on every cell for every
// army, keeping only EverSeen.
func (g *Grid) ClearTransient() {
	for a := 0; a < MaxArmies; a++ {
		for i, c := range g.cells[a] {
			g.cells[a][i] = c & EverSeen
		}
	}
}

// PaintCircle ORs flag into every cell within radius of (wx, wz) for the
// given army. Painting Vision also sets EverSeen.
func (g *Grid) PaintCircle(army int, wx, wz, radius float32, flag Flag) {
	if army < 0 || army >= MaxArmies || radius <= 0 {
		return
	}
	gxMin, gzMin := g.WorldToGrid(wx-radius, wz-radius)
	gxMax, gzMax := g.WorldToGrid(wx+radius, wz+radius)
	rSq := radius * radius

	for gz := gzMin; gz <= gzMax; gz++ {
		for gx := gxMin; gx <= gxMax; gx++ {
			cx := (float32(gx) + 0.5) * CellSize
			cz := (float32(gz) + 0.5) * CellSize
			dx := cx - wx
			dz := cz - wz
			if dx*dx+dz*dz > rSq {
				continue
			}
			idx := gz*g.gridWidth + gx
			g.cells[army][idx] |= flag
			if Has(flag, Vision) {
				g.cells[army][idx] |= EverSeen
			}
		}
	}
}

// MergeArmies ORs every flag from army src into army dst, for alliance
// vision sharing.
func (g *Grid) MergeArmies(dst, src int) {
	if dst < 0 || dst >= MaxArmies || src < 0 || src >= MaxArmies {
		return
	}
	total := g.gridWidth * g.gridHeight
	for i := 0; i < total; i++ {
		g.cells[dst][i] |= g.cells[src][i]
	}
}

// Get returns the raw flags at a grid coordinate for an army, or None if
// out of range.
func (g *Grid) Get(gx, gz, army int) Flag {
	if army < 0 || army >= MaxArmies || gx < 0 || gx >= g.gridWidth || gz < 0 || gz >= g.gridHeight {
		return None
	}
	return g.cells[army][gz*g.gridWidth+gx]
}

func (g *Grid) query(wx, wz float32, army int, flag Flag) bool {
	gx, gz := g.WorldToGrid(wx, wz)
	return Has(g.Get(gx, gz, army), flag)
}

func (g *Grid) HasVision(wx, wz float32, army int) bool { return g.query(wx, wz, army, Vision) }
func (g *Grid) HasRadar(wx, wz float32, army int) bool  { return g.query(wx, wz, army, Radar) }
func (g *Grid) HasSonar(wx, wz float32, army int) bool  { return g.query(wx, wz, army, Sonar) }
func (g *Grid) HasOmni(wx, wz float32, army int) bool   { return g.query(wx, wz, army, Omni) }
func (g *Grid) EverSeen(wx, wz float32, army int) bool  { return g.query(wx, wz, army, EverSeen) }

// BuildHeightGrid pre-samples terrain height at every cell centre. Must be
// called once after construction, before PaintCircleLOS.
func (g *Grid) BuildHeightGrid(t *terrain.Terrain) {
	g.heightGrid = make([]float32, g.gridWidth*g.gridHeight)
	for gz := 0; gz < g.gridHeight; gz++ {
		for gx := 0; gx < g.gridWidth; gx++ {
			cx := (float32(gx) + 0.5) * CellSize
			cz := (float32(gz) + 0.5) * CellSize
			g.heightGrid[gz*g.gridWidth+gx] = t.GetTerrainHeight(cx, cz)
		}
	}
}

// PaintCircleLOS paints Vision (plus EverSeen) within radius of (wx, wz)
// for army, occluded by terrain: a cell is lit only if no intermediate
// cell along the Bresenham line from the source blocks the sightline.
func (g *Grid) PaintCircleLOS(army int, wx, wz, radius, eyeHeight float32) {
	if army < 0 || army >= MaxArmies || radius <= 0 || len(g.heightGrid) == 0 {
		return
	}
	srcGX, srcGZ := g.WorldToGrid(wx, wz)
	gxMin, gzMin := g.WorldToGrid(wx-radius, wz-radius)
	gxMax, gzMax := g.WorldToGrid(wx+radius, wz+radius)
	rSq := radius * radius

	for gz := gzMin; gz <= gzMax; gz++ {
		for gx := gxMin; gx <= gxMax; gx++ {
			cx := (float32(gx) + 0.5) * CellSize
			cz := (float32(gz) + 0.5) * CellSize
			dx := cx - wx
			dz := cz - wz
			if dx*dx+dz*dz > rSq {
				continue
			}

			if gx == srcGX && gz == srcGZ {
				idx := gz*g.gridWidth + gx
				g.cells[army][idx] |= Vision | EverSeen
				continue
			}

			if g.checkLOS(srcGX, srcGZ, gx, gz, eyeHeight) {
				idx := gz*g.gridWidth + gx
				g.cells[army][idx] |= Vision | EverSeen
			}
		}
	}
}

// checkLOS walks a Bresenham line from the source cell to the target
// cell, tracking the maximum signed-squared slope seen so far. The target
// is visible only if its own slope is at least as steep (i.e. nothing
// along the way rises high enough to block it). Using the signed square
// of the slope instead of the slope itself avoids a sqrt per step while
// preserving ordering, since distance along the ray is always positive.
func (g *Grid) checkLOS(srcGX, srcGZ, tgtGX, tgtGZ int, eyeHeight float32) bool {
	if srcGX == tgtGX && srcGZ == tgtGZ {
		return true
	}

	srcWX := (float32(srcGX) + 0.5) * CellSize
	srcWZ := (float32(srcGZ) + 0.5) * CellSize

	dx := tgtGX - srcGX
	dz := tgtGZ - srcGZ
	sx, sz := sign(dx), sign(dz)
	dx, dz = absInt(dx), absInt(dz)

	x, z := srcGX, srcGZ
	maxSSQ := float32(math.Inf(-1))

	visit := func(x, z int) (blocked bool, isTarget bool) {
		if x == srcGX && z == srcGZ {
			return false, false
		}
		cwx := (float32(x) + 0.5) * CellSize
		cwz := (float32(z) + 0.5) * CellSize
		ddx := cwx - srcWX
		ddz := cwz - srcWZ
		distSq := ddx*ddx + ddz*ddz
		h := g.heightGrid[z*g.gridWidth+x]
		ssq := signedSlopeSq(h-eyeHeight, distSq)
		if x == tgtGX && z == tgtGZ {
			return ssq < maxSSQ, true
		}
		if ssq > maxSSQ {
			maxSSQ = ssq
		}
		return false, false
	}

	if dx >= dz {
		err := dx / 2
		for i := 0; i <= dx; i++ {
			if blocked, isTarget := visit(x, z); isTarget {
				return !blocked
			}
			err -= dz
			if err < 0 {
				z += sz
				err += dx
			}
			x += sx
		}
	} else {
		err := dz / 2
		for i := 0; i <= dz; i++ {
			if blocked, isTarget := visit(x, z); isTarget {
				return !blocked
			}
			err -= dx
			if err < 0 {
				x += sx
				err += dz
			}
			z += sz
		}
	}
	return true
}

func signedSlopeSq(hDiff, distSq float32) float32 {
	return hDiff * absF32(hDiff) / distSq
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
