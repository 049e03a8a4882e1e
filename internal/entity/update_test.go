package entity

import (
	"testing"

	"github.com/osc-sim/simcore/internal/spatial"
)

func TestMoveCommandPopsOnArrival(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	u := NewUnit()
	u.MaxSpeed = 100
	reg.Register(u)
	u.PushCommand(UnitCommand{Type: CommandMove, TargetPosition: spatial.Vector3{X: 5}}, false)

	u.Update(ctx, 1)

	if len(u.CommandQueue) != 0 {
		t.Errorf("expected Move to pop after arrival, queue=%+v", u.CommandQueue)
	}
	if u.Position.X != 5 {
		t.Errorf("expected unit to arrive at X=5, got %v", u.Position.X)
	}
}

func TestStopCommandAbortsAndPops(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	u := NewUnit()
	u.MaxSpeed = 1
	reg.Register(u)
	u.PushCommand(UnitCommand{Type: CommandMove, TargetPosition: spatial.Vector3{X: 1000}}, false)
	u.Update(ctx, 1) // start moving
	u.PushCommand(UnitCommand{Type: CommandStop}, true)

	u.Update(ctx, 1)

	if len(u.CommandQueue) != 0 {
		t.Errorf("expected Stop to pop immediately, queue=%+v", u.CommandQueue)
	}
	if u.Navigator.IsMoving() {
		t.Error("expected navigator idle after Stop")
	}
}

func TestPatrolCyclesCommandToTail(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	u := NewUnit()
	u.MaxSpeed = 1000
	reg.Register(u)
	u.PushCommand(UnitCommand{Type: CommandPatrol, TargetPosition: spatial.Vector3{X: 5}}, false)

	u.Update(ctx, 1)

	if len(u.CommandQueue) != 1 || u.CommandQueue[0].Type != CommandPatrol {
		t.Fatalf("expected patrol re-queued at tail, queue=%+v", u.CommandQueue)
	}
}

func TestAttackCommandDropsOnSameArmyTarget(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	attacker := NewUnit()
	attacker.Army = 0
	reg.Register(attacker)
	ally := NewUnit()
	ally.Army = 0
	reg.Register(ally)

	attacker.PushCommand(UnitCommand{Type: CommandAttack, TargetEntityID: ally.EntityID}, false)
	attacker.Update(ctx, 1)

	if len(attacker.CommandQueue) != 0 {
		t.Error("expected Attack on a friendly target to be dropped")
	}
}

func TestAttackCommandAssignsWeaponTarget(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	attacker := NewUnit()
	attacker.Army = 0
	attacker.AddWeapon(&Weapon{MaxRange: 20, Damage: 10, RateOfFire: 1, Enabled: true})
	reg.Register(attacker)

	enemy := NewUnit()
	enemy.Army = 1
	enemy.Position = spatial.Vector3{X: 5}
	reg.Register(enemy)

	attacker.PushCommand(UnitCommand{Type: CommandAttack, TargetEntityID: enemy.EntityID}, false)
	attacker.Update(ctx, 1)

	if attacker.Weapons[0].TargetEntityID != enemy.EntityID {
		t.Errorf("expected weapon target set to enemy, got %d", attacker.Weapons[0].TargetEntityID)
	}
	if len(attacker.CommandQueue) != 1 {
		t.Error("expected Attack to remain sticky while target is alive")
	}
}

func TestDiveTogglesLayerAndFiresCallback(t *testing.T) {
	host := newFakeHost()
	ctx, reg, _ := newTestContext(host)

	u := NewUnit()
	u.Layer = LayerWater
	u.ScriptHandle = 99
	reg.Register(u)
	u.PushCommand(UnitCommand{Type: CommandDive}, false)

	u.Update(ctx, 1)

	if u.Layer != LayerSub {
		t.Errorf("expected layer toggled to Sub, got %v", u.Layer)
	}
	if host.callCount("OnLayerChange:Water->Sub") != 1 {
		t.Errorf("expected OnLayerChange callback, calls=%v", host.calls)
	}
}

func TestGuardAssistsPrimaryBuilder(t *testing.T) {
	host := newFakeHost()
	ctx, reg, store := newTestContext(host)
	registerUnitBlueprint(store, host, 70, "guarded-build", 10, 0, 0)

	primary := NewUnit()
	primary.BuildRate = 10
	reg.Register(primary)
	primary.StartBuild(ctx, "guarded-build", 0)
	targetID := primary.build.targetID

	assister := NewUnit()
	assister.BuildRate = 10
	reg.Register(assister)
	assister.PushCommand(UnitCommand{Type: CommandGuard, TargetEntityID: primary.EntityID}, false)

	assister.Update(ctx, 1)

	target, _ := reg.FindUnit(targetID)
	if target.FractionComplete <= 0 {
		t.Error("expected guard-assist to have contributed build progress")
	}
}

func TestGuardAutoRepairsDamagedTarget(t *testing.T) {
	host := newFakeHost()
	ctx, reg, store := newTestContext(host)
	registerUnitBlueprint(store, host, 71, "guarded-unit", 10, 0, 0)

	guard := NewUnit()
	guard.BuildRate = 10
	reg.Register(guard)

	ward := NewUnit()
	ward.BlueprintID = "guarded-unit"
	ward.MaxHealth = 100
	ward.Health = 50
	reg.Register(ward)

	guard.PushCommand(UnitCommand{Type: CommandGuard, TargetEntityID: ward.EntityID}, false)
	guard.Update(ctx, 1)

	if ward.Health <= 50 {
		t.Error("expected guard to auto-repair the damaged ward")
	}
}
