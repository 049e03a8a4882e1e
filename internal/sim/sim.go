// Package sim composes every simulation subsystem into the single fixed-
// tick loop described in spec.md §4.N: resume the scripted-task scheduler,
// update every army's economy, then update every entity from an id
// snapshot so spawns/destroys mid-pass never invalidate iteration.
// Grounded on spec.md §4.N directly; no dedicated original source file
// covers the driver loop in isolation (it is main.cpp's loop body).
package sim

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/army"
	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/scheduler"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/terrain"
)

// DT is the fixed simulation timestep in seconds, matching the original
// engine's fixed 10Hz tick rate.
const DT = 0.1

// State owns every live subsystem for one running session: the entity
// registry, the per-army brains, the scripted-task scheduler, and the
// world geometry every per-tick update reads.
type State struct {
	Registry   *entity.Registry
	Scheduler  *scheduler.Scheduler
	Armies     []*army.Brain
	Host       script.Host
	Blueprints *blueprint.Store
	Pathfinder *pathing.Pathfinder
	Grid       *pathing.Grid
	Terrain    *terrain.Terrain
	Log        *slog.Logger

	TickCount uint64
}

// New wires a fresh State around an already-loaded map/grid/host/
// blueprint store. The scheduler's watchdog budget and the army seat list
// are supplied by the caller (session orchestration), since both depend
// on boot-time configuration this package has no opinion about.
func New(host script.Host, blueprints *blueprint.Store, grid *pathing.Grid, t *terrain.Terrain, armies []*army.Brain, sched *scheduler.Scheduler, log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{
		Registry:   entity.NewRegistry(),
		Scheduler:  sched,
		Armies:     armies,
		Host:       host,
		Blueprints: blueprints,
		Pathfinder: pathing.NewPathfinder(grid),
		Grid:       grid,
		Terrain:    t,
		Log:        log,
	}
}

// GameTime returns tick_count × DT, the simulation's elapsed wall time.
func (s *State) GameTime() float64 {
	return float64(s.TickCount) * DT
}

// Tick advances the simulation by one fixed step: resume scripted tasks,
// settle every army's economy for this tick, then update every entity
// from a stable id snapshot.
func (s *State) Tick() {
	s.TickCount++

	s.Scheduler.ResumeAll(s.TickCount)

	ctx := &entity.Context{
		Registry:   s.Registry,
		Host:       s.Host,
		Blueprints: s.Blueprints,
		Pathfinder: s.Pathfinder,
		Grid:       s.Grid,
		Terrain:    s.Terrain,
		Log:        s.Log,
	}
	for _, brain := range s.Armies {
		eff := brain.UpdateEconomy(s.Registry, DT)
		if idx := brain.ArmyIndex; idx >= 0 && int(idx) < len(ctx.Efficiency) {
			ctx.Efficiency[idx] = eff
		}
	}

	snapshot := s.Registry.SortedIDs()
	for _, id := range snapshot {
		e, ok := s.Registry.Find(id)
		if !ok || e.Info().Destroyed {
			continue
		}
		switch v := e.(type) {
		case *entity.Unit:
			v.Update(ctx, DT)
		case *entity.Projectile:
			v.Update(DT, s.Registry, s.Host, s.Log)
		}
	}
}

// Run calls Tick exactly n times.
func (s *State) Run(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// BrainForArmy returns the brain owning armyIndex, or nil if no seat was
// created for it.
func (s *State) BrainForArmy(armyIndex int32) *army.Brain {
	for _, b := range s.Armies {
		if b.ArmyIndex == armyIndex {
			return b
		}
	}
	return nil
}
