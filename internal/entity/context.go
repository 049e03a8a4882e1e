package entity

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/terrain"
)

// maxEfficiencyArmies bounds the per-army efficiency table carried in
// Context, matching the pathing/visibility packages' MAX_ARMIES=16
// convention for fixed-size, allocation-free per-army arrays.
const maxEfficiencyArmies = 16

// Efficiency is the economy back-pressure multiplier for one army for the
// current tick: ε = min(mass_eff, energy_eff), computed once per tick by
// army.UpdateEconomy and read by every unit's command processing.
type Efficiency struct {
	Mass   float64
	Energy float64
}

// Combined returns ε = min(mass, energy), the single scalar that scales
// all work rates (build, reclaim, repair, capture, enhance).
func (e Efficiency) Combined() float32 {
	if e.Mass < e.Energy {
		return float32(e.Mass)
	}
	return float32(e.Energy)
}

// Context bundles everything a unit's per-tick update needs to reach
// outside itself: the registry for target lookups, the scripting VM
// boundary, the blueprint store for build/repair/capture costs, the
// pathfinding subsystem for navigation, and the current tick's per-army
// efficiency. Grounded on original_source/src/sim/unit.cpp's SimContext.
type Context struct {
	Registry   *Registry
	Host       script.Host
	Blueprints *blueprint.Store
	Pathfinder *pathing.Pathfinder
	Grid       *pathing.Grid
	Terrain    *terrain.Terrain
	Efficiency [maxEfficiencyArmies]Efficiency
	Log        *slog.Logger
}

// EfficiencyFor returns the efficiency for an army index, or a neutral
// 1.0/1.0 if out of range (e.g. army -1, unassigned).
func (c *Context) EfficiencyFor(army int32) Efficiency {
	if army < 0 || int(army) >= maxEfficiencyArmies {
		return Efficiency{Mass: 1, Energy: 1}
	}
	return c.Efficiency[army]
}
