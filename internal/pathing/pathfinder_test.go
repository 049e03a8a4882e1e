package pathing

import (
	"testing"
)

func TestFindPathStraightLine(t *testing.T) {
	tr := flatTerrain(0, false, 0, 20, 20)
	g := NewGridWithParams(tr, 20, 20, 2, 0.75)
	pf := NewPathfinder(g)

	start := g.GridToWorld(0, 0)
	goal := g.GridToWorld(8, 0)

	path, ok := pf.FindPath(start, goal, LayerLand)
	if !ok {
		t.Fatal("expected path to be found")
	}
	if len(path) == 0 {
		t.Fatal("expected non-empty path")
	}
	last := path[len(path)-1]
	if last.X != goal.X || last.Z != goal.Z {
		t.Errorf("last waypoint = %+v, want exact goal %+v", last, goal)
	}
}

func TestFindPathSameCellShortcut(t *testing.T) {
	tr := flatTerrain(0, false, 0, 8, 8)
	g := NewGridWithParams(tr, 8, 8, 2, 0.75)
	pf := NewPathfinder(g)

	start := g.GridToWorld(2, 2)
	path, ok := pf.FindPath(start, start, LayerLand)
	if !ok {
		t.Fatal("expected trivial path")
	}
	if len(path) != 1 {
		t.Fatalf("expected single waypoint for same-cell path, got %d", len(path))
	}
}

func TestFindPathAroundObstacleWall(t *testing.T) {
	tr := flatTerrain(0, false, 0, 10, 10)
	g := NewGridWithParams(tr, 10, 10, 2, 0.75)
	pf := NewPathfinder(g)

	// Build a wall across the middle column, leaving a gap at one row.
	for cz := 0; cz < g.Rows(); cz++ {
		if cz == g.Rows()-1 {
			continue // leave a gap
		}
		wp := g.GridToWorld(g.Cols()/2, cz)
		g.MarkObstacle(wp.X, wp.Z, 2, 2)
	}

	start := g.GridToWorld(0, 0)
	goal := g.GridToWorld(g.Cols()-1, 0)

	path, ok := pf.FindPath(start, goal, LayerLand)
	if !ok {
		t.Fatal("expected a path around the wall through the gap")
	}
	if len(path) == 0 {
		t.Fatal("expected non-empty path")
	}
}

func TestFindPathNoPathWhenFullyEnclosed(t *testing.T) {
	tr := flatTerrain(0, false, 0, 6, 6)
	g := NewGridWithParams(tr, 6, 6, 2, 0.75)
	pf := NewPathfinder(g)

	// Seal off the entire middle column so left and right halves can't connect.
	for cz := 0; cz < g.Rows(); cz++ {
		wp := g.GridToWorld(g.Cols()/2, cz)
		g.MarkObstacle(wp.X, wp.Z, 2, 2)
	}

	start := g.GridToWorld(0, 0)
	goal := g.GridToWorld(g.Cols()-1, g.Rows()-1)

	if _, ok := pf.FindPath(start, goal, LayerLand); ok {
		t.Error("expected no path when grid is fully partitioned")
	}
}

func TestFindPathSnapsImpassableGoalToNearestPassable(t *testing.T) {
	tr := flatTerrain(0, false, 0, 10, 10)
	g := NewGridWithParams(tr, 10, 10, 2, 0.75)
	pf := NewPathfinder(g)

	goalCenter := g.GridToWorld(5, 5)
	g.MarkObstacle(goalCenter.X, goalCenter.Z, 2, 2)

	start := g.GridToWorld(0, 0)
	path, ok := pf.FindPath(start, goalCenter, LayerLand)
	if !ok {
		t.Fatal("expected path to a nearby passable cell even though the goal cell is blocked")
	}
	if len(path) == 0 {
		t.Fatal("expected non-empty path")
	}
}

func TestDiagonalCornerCutPrevented(t *testing.T) {
	tr := flatTerrain(0, false, 0, 10, 10)
	g := NewGridWithParams(tr, 10, 10, 2, 0.75)
	pf := NewPathfinder(g)

	// Block the two cardinal neighbours around a diagonal step so the
	// corner cannot be cut; a path must route the long way around.
	blockA := g.GridToWorld(2, 1)
	blockB := g.GridToWorld(1, 2)
	g.MarkObstacle(blockA.X, blockA.Z, 2, 2)
	g.MarkObstacle(blockB.X, blockB.Z, 2, 2)

	start := g.GridToWorld(1, 1)
	goal := g.GridToWorld(2, 2)

	path, ok := pf.FindPath(start, goal, LayerLand)
	if !ok {
		t.Fatal("expected an alternate path even with corner-cutting blocked")
	}
	// Smoothing may straighten the returned waypoints back to start and
	// goal, so at least those two are expected; the detour itself is
	// checked on the raw A* cell path.
	if len(path) < 2 {
		t.Errorf("expected a detour path, got %d waypoints", len(path))
	}
	cells, ok := pf.astar(cellCoord{1, 1}, cellCoord{2, 2}, LayerLand)
	if !ok || len(cells) <= 2 {
		t.Errorf("expected the A* cell path to detour instead of cutting the corner, got %v", cells)
	}
}

func TestOctileHeuristicAdmissible(t *testing.T) {
	a := cellCoord{0, 0}
	b := cellCoord{3, 4}
	h := octileHeuristic(a, b, 1.0)
	// True diagonal-aware distance for (3,4) is 3*sqrt2 + 1 ~= 5.24.
	if h <= 0 || h > 7 {
		t.Errorf("octileHeuristic = %v, out of expected sane range", h)
	}
}
