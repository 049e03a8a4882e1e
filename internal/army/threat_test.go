package army

import (
	"testing"

	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/spatial"
)

func armedUnit(army int32, pos spatial.Vector3, damage, rof float32) *entity.Unit {
	u := entity.NewUnit()
	u.Army = army
	u.Position = pos
	u.AddWeapon(&entity.Weapon{Enabled: true, MaxRange: 50, Damage: damage, RateOfFire: rof})
	return u
}

func TestGetThreatAtPositionSumsEnemyDPSWithinRadius(t *testing.T) {
	reg := entity.NewRegistry()
	reg.Register(armedUnit(1, spatial.Vector3{X: 0}, 10, 2))  // 20 dps, enemy, in range
	reg.Register(armedUnit(1, spatial.Vector3{X: 100}, 10, 2)) // out of radius
	reg.Register(armedUnit(0, spatial.Vector3{X: 0}, 10, 2))   // own army, excluded

	b := New(0, "test", nil)
	threat, err := b.GetThreatAtPosition(reg, spatial.Vector3{X: 0}, 20, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threat != 20 {
		t.Errorf("expected 20 dps of threat, got %v", threat)
	}
}

func TestGetThreatAtPositionHonoursFilter(t *testing.T) {
	reg := entity.NewRegistry()
	structure := armedUnit(1, spatial.Vector3{X: 0}, 10, 1)
	structure.AddCategory("STRUCTURE")
	reg.Register(structure)
	mobile := armedUnit(1, spatial.Vector3{X: 0}, 10, 1)
	reg.Register(mobile)

	b := New(0, "test", nil)
	threat, err := b.GetThreatAtPosition(reg, spatial.Vector3{X: 0}, 20, `!Category("STRUCTURE")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threat != 10 {
		t.Errorf("expected only the non-structure unit's 10 dps counted, got %v", threat)
	}
}

func TestGetThreatsAroundPositionReturnsPerUnitBreakdown(t *testing.T) {
	reg := entity.NewRegistry()
	u := armedUnit(1, spatial.Vector3{X: 0}, 5, 1)
	id := reg.Register(u)

	b := New(0, "test", nil)
	breakdown, err := b.GetThreatsAroundPosition(reg, spatial.Vector3{X: 0}, 20, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown[id] != 5 {
		t.Errorf("expected breakdown[%v]=5, got %v", id, breakdown[id])
	}
}

func TestGetHighestThreatPositionPicksStrongestEnemy(t *testing.T) {
	reg := entity.NewRegistry()
	reg.Register(armedUnit(1, spatial.Vector3{X: 1}, 5, 1))
	strongest := armedUnit(1, spatial.Vector3{X: 99}, 50, 1)
	reg.Register(strongest)

	b := New(0, "test", nil)
	pos, ok, err := b.GetHighestThreatPosition(reg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || pos.X != 99 {
		t.Errorf("expected the highest-threat unit's position (99), got %+v ok=%v", pos, ok)
	}
}

func TestCalculatePlatoonThreatSumsOwnUnits(t *testing.T) {
	reg := entity.NewRegistry()
	a := armedUnit(0, spatial.Vector3{}, 10, 1)
	reg.Register(a)
	bU := armedUnit(0, spatial.Vector3{}, 5, 2)
	reg.Register(bU)

	brain := New(0, "test", nil)
	p := brain.CreatePlatoon("alpha")
	p.AddUnit(a.EntityID)
	p.AddUnit(bU.EntityID)

	threat := brain.CalculatePlatoonThreat(reg, p)
	if threat != 20 { // 10 + 5*2
		t.Errorf("expected platoon threat 20, got %v", threat)
	}
}

func TestGetNumUnitsAroundPointCountsMatches(t *testing.T) {
	reg := entity.NewRegistry()
	reg.Register(armedUnit(1, spatial.Vector3{X: 0}, 1, 1))
	reg.Register(armedUnit(1, spatial.Vector3{X: 5}, 1, 1))
	reg.Register(armedUnit(1, spatial.Vector3{X: 500}, 1, 1))

	b := New(0, "test", nil)
	n, err := b.GetNumUnitsAroundPoint(reg, spatial.Vector3{X: 0}, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 units within radius, got %v", n)
	}
}

func TestFindClosestUnitReturnsNearest(t *testing.T) {
	reg := entity.NewRegistry()
	far := armedUnit(1, spatial.Vector3{X: 8}, 1, 1)
	reg.Register(far)
	near := armedUnit(1, spatial.Vector3{X: 2}, 1, 1)
	reg.Register(near)

	b := New(0, "test", nil)
	found, err := b.FindClosestUnit(reg, spatial.Vector3{X: 0}, 20, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.EntityID != near.EntityID {
		t.Errorf("expected the nearer unit, got %+v", found)
	}
}

func TestFindPrioritizedUnitFavoursNearbyHighThreat(t *testing.T) {
	reg := entity.NewRegistry()
	distantStrong := armedUnit(1, spatial.Vector3{X: 50}, 100, 1) // score 100/51
	reg.Register(distantStrong)
	nearWeak := armedUnit(1, spatial.Vector3{X: 1}, 10, 1) // score 10/2 = 5
	reg.Register(nearWeak)

	b := New(0, "test", nil)
	found, err := b.FindPrioritizedUnit(reg, spatial.Vector3{X: 0}, 100, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.EntityID != nearWeak.EntityID {
		t.Errorf("expected the near, higher-priority-score unit to win, got %+v", found)
	}
}

func TestThreatQueriesExcludeDestroyedUnits(t *testing.T) {
	reg := entity.NewRegistry()
	dead := armedUnit(1, spatial.Vector3{}, 50, 1)
	dead.Destroyed = true
	reg.Register(dead)

	b := New(0, "test", nil)
	threat, err := b.GetThreatAtPosition(reg, spatial.Vector3{}, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threat != 0 {
		t.Errorf("expected destroyed units to contribute no threat, got %v", threat)
	}
}
