package pathing

import (
	"container/heap"
	"math"

	"github.com/osc-sim/simcore/internal/spatial"
)

const (
	maxExpansions  = 50000
	maxSpiralRadius = 20
	sqrt2           = math.Sqrt2
)

type cellCoord struct{ x, z int }

// Pathfinder runs A* searches over a Grid.
type Pathfinder struct {
	grid *Grid
}

// NewPathfinder binds a pathfinder to a grid.
func NewPathfinder(g *Grid) *Pathfinder {
	return &Pathfinder{grid: g}
}

// FindPath searches from start to goal (world coordinates) for the given
// layer, returning world-space waypoints at cell centres with the final
// waypoint's XZ snapped to the exact goal. Returns (nil, false) if no path
// exists.
func (pf *Pathfinder) FindPath(start, goal spatial.Vector3, layer Layer) ([]spatial.Vector3, bool) {
	startCX, startCZ := pf.grid.WorldToGrid(start.X, start.Z)
	goalCX, goalCZ := pf.grid.WorldToGrid(goal.X, goal.Z)

	if startCX == goalCX && startCZ == goalCZ {
		return []spatial.Vector3{{X: goal.X, Y: goal.Y, Z: goal.Z}}, true
	}

	if !pf.grid.IsPassableForLayer(goalCX, goalCZ, layer) {
		newCX, newCZ, found := pf.findNearestPassable(goalCX, goalCZ, layer)
		if !found {
			return nil, false
		}
		goalCX, goalCZ = newCX, newCZ
	}

	cellPath, ok := pf.astar(cellCoord{startCX, startCZ}, cellCoord{goalCX, goalCZ}, layer)
	if !ok {
		return nil, false
	}

	smoothed := pf.smoothPath(cellPath, layer)

	waypoints := make([]spatial.Vector3, len(smoothed))
	for i, c := range smoothed {
		waypoints[i] = pf.grid.GridToWorld(c.x, c.z)
	}
	if len(waypoints) > 0 {
		last := len(waypoints) - 1
		waypoints[last].X = goal.X
		waypoints[last].Z = goal.Z
	}
	return waypoints, true
}

// findNearestPassable spirals outward in Chebyshev rings from (cx, cz),
// checking only the perimeter of each ring, and returns the first
// passable cell found.
func (pf *Pathfinder) findNearestPassable(cx, cz int, layer Layer) (int, int, bool) {
	for radius := 1; radius <= maxSpiralRadius; radius++ {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dz) != radius {
					continue // interior of ring, already checked at smaller radius
				}
				nx, nz := cx+dx, cz+dz
				if pf.grid.IsPassableForLayer(nx, nz, layer) {
					return nx, nz, true
				}
			}
		}
	}
	return 0, 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type openEntry struct {
	coord cellCoord
	f     float64
	index int
}

type openHeap []*openEntry

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *openHeap) Push(x interface{}) {
	e := x.(*openEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

var neighborOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// octileHeuristic computes the admissible octile distance estimate in
// world units between two cells.
func octileHeuristic(a, b cellCoord, cellSize float32) float64 {
	dx := math.Abs(float64(a.x - b.x))
	dz := math.Abs(float64(a.z - b.z))
	maxD := math.Max(dx, dz)
	minD := math.Min(dx, dz)
	return (maxD + (sqrt2-1)*minD) * float64(cellSize)
}

// astar performs a standard A* search with a lazy-deletion binary heap:
// stale open-set entries (superseded by a cheaper g-score) are left in
// the heap and discarded when popped rather than updated in place.
func (pf *Pathfinder) astar(start, goal cellCoord, layer Layer) ([]cellCoord, bool) {
	gScore := map[cellCoord]float64{start: 0}
	parent := map[cellCoord]cellCoord{}
	closed := map[cellCoord]bool{}

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openEntry{coord: start, f: octileHeuristic(start, goal, pf.grid.cellSize)})

	expansions := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openEntry)
		if closed[cur.coord] {
			continue
		}
		if cur.coord == goal {
			return reconstructPath(parent, start, goal), true
		}
		closed[cur.coord] = true

		expansions++
		if expansions > maxExpansions {
			return nil, false
		}

		curG := gScore[cur.coord]
		for _, off := range neighborOffsets {
			next := cellCoord{cur.coord.x + off[0], cur.coord.z + off[1]}
			if closed[next] {
				continue
			}
			if !pf.grid.IsPassableForLayer(next.x, next.z, layer) {
				continue
			}

			isDiagonal := off[0] != 0 && off[1] != 0
			if isDiagonal {
				// Corner-cut prevention: both cardinal neighbours of the
				// diagonal step must be passable.
				if !pf.grid.IsPassableForLayer(cur.coord.x+off[0], cur.coord.z, layer) ||
					!pf.grid.IsPassableForLayer(cur.coord.x, cur.coord.z+off[1], layer) {
					continue
				}
			}

			stepCost := float64(pf.grid.cellSize)
			if isDiagonal {
				stepCost *= sqrt2
			}
			tentativeG := curG + stepCost

			if existing, ok := gScore[next]; !ok || tentativeG < existing {
				gScore[next] = tentativeG
				parent[next] = cur.coord
				f := tentativeG + octileHeuristic(next, goal, pf.grid.cellSize)
				heap.Push(open, &openEntry{coord: next, f: f})
			}
		}
	}
	return nil, false
}

func reconstructPath(parent map[cellCoord]cellCoord, start, goal cellCoord) []cellCoord {
	path := []cellCoord{goal}
	cur := goal
	for cur != start {
		prev, ok := parent[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// smoothPath greedily keeps the farthest later cell reachable by an
// unobstructed line of sight from the current anchor, repeating until the
// end of the path is reached.
func (pf *Pathfinder) smoothPath(path []cellCoord, layer Layer) []cellCoord {
	if len(path) <= 2 {
		return path
	}

	smoothed := []cellCoord{path[0]}
	anchor := 0
	for anchor < len(path)-1 {
		farthest := anchor + 1
		for candidate := len(path) - 1; candidate > anchor+1; candidate-- {
			if pf.hasLineOfSight(path[anchor], path[candidate], layer) {
				farthest = candidate
				break
			}
		}
		smoothed = append(smoothed, path[farthest])
		anchor = farthest
	}
	return smoothed
}

// hasLineOfSight walks an integer Bresenham line between two cells,
// returning true only if every touched cell is passable for the layer.
func (pf *Pathfinder) hasLineOfSight(a, b cellCoord, layer Layer) bool {
	x0, z0 := a.x, a.z
	x1, z1 := b.x, b.z

	dx := abs(x1 - x0)
	dz := -abs(z1 - z0)
	sx, sz := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if z0 > z1 {
		sz = -1
	}
	err := dx + dz

	for {
		if !pf.grid.IsPassableForLayer(x0, z0, layer) {
			return false
		}
		if x0 == x1 && z0 == z1 {
			break
		}
		e2 := 2 * err
		if e2 >= dz {
			err += dz
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			z0 += sz
		}
	}
	return true
}
