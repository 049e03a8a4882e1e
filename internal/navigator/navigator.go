// Package navigator drives a single unit's movement toward a goal,
// consuming pathfinder output waypoint-by-waypoint. Grounded on
// original_source/src/sim/navigator.{hpp,cpp}.
package navigator

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/spatial"
	"github.com/osc-sim/simcore/internal/terrain"
)

const (
	arrivalTolerance = 0.5
	waypointTolerance = 1.5
)

// Status is whether a navigator currently has an active move.
type Status int

const (
	Idle Status = iota
	Moving
)

// Mover is the narrow surface a navigator needs from whatever it's
// steering — just enough to avoid entity importing navigator and
// navigator importing entity.
type Mover interface {
	Position() spatial.Vector3
	SetPosition(spatial.Vector3)
}

// Navigator advances a single mover along a sequence of waypoints toward
// a goal, snapping to terrain surface height on each step.
type Navigator struct {
	goal           spatial.Vector3
	waypoints      []spatial.Vector3
	waypointIndex  int
	status         Status
}

func (n *Navigator) Goal() spatial.Vector3 { return n.goal }
func (n *Navigator) Status() Status        { return n.status }
func (n *Navigator) IsMoving() bool        { return n.status == Moving }

// SetGoal plans a path with the pathfinder (skipped for the Air layer,
// which always goes straight-line) and falls back to a direct line if no
// path is found.
func (n *Navigator) SetGoal(pos spatial.Vector3, pf *pathing.Pathfinder, currentPos spatial.Vector3, layer pathing.Layer, log *slog.Logger) {
	n.goal = pos
	n.waypoints = nil
	n.waypointIndex = 0

	if layer == pathing.LayerAir || pf == nil {
		n.waypoints = []spatial.Vector3{pos}
		n.status = Moving
		return
	}

	waypoints, found := pf.FindPath(currentPos, pos, layer)
	if found && len(waypoints) > 0 {
		n.waypoints = waypoints
		if log != nil {
			log.Debug("navigator path found", "waypoints", len(waypoints))
		}
	} else {
		n.waypoints = []spatial.Vector3{pos}
		if log != nil {
			log.Debug("navigator no path found, falling back to straight line")
		}
	}
	n.status = Moving
}

// SetGoalDirect sets a straight-line goal with no pathfinding, used for
// short moves (e.g. guard-range repositioning) where a full search is
// unnecessary.
func (n *Navigator) SetGoalDirect(pos spatial.Vector3) {
	n.goal = pos
	n.waypoints = []spatial.Vector3{pos}
	n.waypointIndex = 0
	n.status = Moving
}

// AbortMove cancels any in-progress move.
func (n *Navigator) AbortMove() {
	n.status = Idle
	n.waypoints = nil
	n.waypointIndex = 0
}

// Update steps the mover toward its current waypoint by maxSpeed*dt,
// possibly advancing through several waypoints in one tick if moving
// fast enough. Returns true if still moving after this step.
func (n *Navigator) Update(m Mover, maxSpeed float32, dt float64, t *terrain.Terrain) bool {
	if n.status == Idle || maxSpeed <= 0 {
		return false
	}
	if len(n.waypoints) == 0 || n.waypointIndex >= len(n.waypoints) {
		n.status = Idle
		return false
	}

	pos := m.Position()
	step := maxSpeed * float32(dt)

	for n.waypointIndex < len(n.waypoints) {
		isFinal := n.waypointIndex == len(n.waypoints)-1
		wp := n.waypoints[n.waypointIndex]
		tolerance := float32(waypointTolerance)
		if isFinal {
			tolerance = arrivalTolerance
		}

		dx := wp.X - pos.X
		dz := wp.Z - pos.Z
		dist2 := dx*dx + dz*dz

		if dist2 <= tolerance*tolerance {
			if isFinal {
				pos.X, pos.Z = wp.X, wp.Z
				n.snapAndFinish(m, pos, t)
				return false
			}
			n.waypointIndex++
			continue
		}

		dist := spatial.DistanceXZ(wp, pos)

		if step >= dist {
			pos.X, pos.Z = wp.X, wp.Z
			step -= dist
			if isFinal {
				n.snapAndFinish(m, pos, t)
				return false
			}
			n.waypointIndex++
			continue
		}

		invDist := 1.0 / dist
		pos.X += dx * invDist * step
		pos.Z += dz * invDist * step
		if t != nil {
			pos.Y = t.GetSurfaceHeight(pos.X, pos.Z)
		}
		m.SetPosition(pos)
		return true
	}

	n.snapAndFinish(m, pos, t)
	return false
}

func (n *Navigator) snapAndFinish(m Mover, pos spatial.Vector3, t *terrain.Terrain) {
	if t != nil {
		pos.Y = t.GetSurfaceHeight(pos.X, pos.Z)
	}
	m.SetPosition(pos)
	n.status = Idle
	n.waypoints = nil
	n.waypointIndex = 0
}
