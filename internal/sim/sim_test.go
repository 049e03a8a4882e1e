package sim

import (
	"testing"

	"github.com/osc-sim/simcore/internal/army"
	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/mapfile"
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/scheduler"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/terrain"
)

func newTestState() *State {
	hm := mapfile.NewHeightmap(32, 32, 1, make([]int16, 33*33))
	ter := terrain.New(hm, false, 0)
	grid := pathing.NewGrid(ter, 32, 32)
	armies := []*army.Brain{army.New(0, "seat0", nil), army.New(1, "seat1", nil)}
	store := blueprint.New(script.NullHost{}, nil)
	return New(script.NullHost{}, store, grid, ter, armies, scheduler.New(0, nil), nil)
}

func TestTickAdvancesCountAndGameTime(t *testing.T) {
	s := newTestState()
	s.Tick()
	if s.TickCount != 1 {
		t.Fatalf("expected tick count 1, got %v", s.TickCount)
	}
	if s.GameTime() != DT {
		t.Errorf("expected game time %v, got %v", DT, s.GameTime())
	}
}

func TestTickResumesSchedulerBeforeEntityUpdates(t *testing.T) {
	s := newTestState()
	var order []string
	s.Scheduler.Fork(func(args []any, yield func(int) []any) {
		order = append(order, "scheduler")
	}, "test")

	u := entity.NewUnit()
	s.Registry.Register(u)

	s.Tick()
	if len(order) != 1 || order[0] != "scheduler" {
		t.Errorf("expected the forked task to run during the tick, order=%v", order)
	}
}

func TestTickUpdatesEconomyBeforeUnitWork(t *testing.T) {
	s := newTestState()
	u := entity.NewUnit()
	u.Army = 0
	u.Economy.ProductionMass = 100
	u.Economy.ProductionActive = true
	s.Registry.Register(u)

	s.Tick()

	brain := s.BrainForArmy(0)
	if brain.StoredMass() == 0 {
		t.Error("expected army economy to have accumulated stored mass by the end of the tick")
	}
}

func TestTickSkipsDestroyedEntitiesInSnapshot(t *testing.T) {
	s := newTestState()
	u := entity.NewUnit()
	id := s.Registry.Register(u)
	u.Destroyed = true

	// should not panic despite a destroyed entity still present in the registry
	s.Tick()

	if _, ok := s.Registry.Find(id); !ok {
		t.Error("expected tick to not itself unregister an already-destroyed entity")
	}
}

func TestTickExpiresProjectiles(t *testing.T) {
	s := newTestState()
	p := entity.NewProjectile()
	p.Lifetime = 0.05
	id := s.Registry.Register(p)

	s.Tick()

	if _, ok := s.Registry.Find(id); ok {
		t.Error("expected the short-lived projectile to expire within one DT tick")
	}
}

func TestRunCallsTickNTimes(t *testing.T) {
	s := newTestState()
	s.Run(5)
	if s.TickCount != 5 {
		t.Errorf("expected 5 ticks run, got %v", s.TickCount)
	}
}

func TestBrainForArmyReturnsNilForUnknownSeat(t *testing.T) {
	s := newTestState()
	if s.BrainForArmy(99) != nil {
		t.Error("expected nil for an army index with no seat")
	}
}
