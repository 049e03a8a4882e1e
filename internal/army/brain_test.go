package army

import (
	"testing"

	"github.com/osc-sim/simcore/internal/entity"
)

func registerUnit(reg *entity.Registry, army int32, eco entity.Economy) *entity.Unit {
	u := entity.NewUnit()
	u.Army = army
	u.Economy = eco
	reg.Register(u)
	return u
}

func TestUpdateEconomyFullyCoversDemandWithinIncome(t *testing.T) {
	reg := entity.NewRegistry()
	registerUnit(reg, 0, entity.Economy{
		ProductionMass: 10, ProductionActive: true,
	})
	registerUnit(reg, 0, entity.Economy{
		ConsumptionMass: 4, ConsumptionActive: true,
	})

	b := New(0, "test", nil)
	eff := b.UpdateEconomy(reg, 1)

	if eff.Mass != 1 {
		t.Errorf("expected full mass efficiency when income exceeds demand, got %v", eff.Mass)
	}
	// avail = 10*1 + 0 = 10; consumed = 4; stored = 6
	if b.StoredMass() != 6 {
		t.Errorf("expected 6 stored mass left over, got %v", b.StoredMass())
	}
}

func TestUpdateEconomyStarvesWhenDemandExceedsIncomeAndStorage(t *testing.T) {
	reg := entity.NewRegistry()
	registerUnit(reg, 0, entity.Economy{
		ProductionMass: 2, ProductionActive: true,
	})
	registerUnit(reg, 0, entity.Economy{
		ConsumptionMass: 10, ConsumptionActive: true,
	})

	b := New(0, "test", nil)
	eff := b.UpdateEconomy(reg, 1)

	// avail = 2, need = 10, consumed = 2, efficiency = 2/10 = 0.2
	if eff.Mass != 0.2 {
		t.Errorf("expected 0.2 mass efficiency, got %v", eff.Mass)
	}
	if b.StoredMass() != 0 {
		t.Errorf("expected stored mass drained to 0, got %v", b.StoredMass())
	}
}

func TestUpdateEconomyStorageClampsToMaxStorage(t *testing.T) {
	reg := entity.NewRegistry()
	registerUnit(reg, 0, entity.Economy{
		ProductionEnergy: 10000, ProductionActive: true,
	})

	b := New(0, "test", nil)
	b.UpdateEconomy(reg, 1)

	// no storage-providing units, so max_storage = baseStorage = 200
	if b.StoredEnergy() != baseStorage {
		t.Errorf("expected energy storage clamped to %v, got %v", baseStorage, b.StoredEnergy())
	}
}

func TestUpdateEconomyIgnoresOtherArmiesAndDestroyedUnits(t *testing.T) {
	reg := entity.NewRegistry()
	registerUnit(reg, 1, entity.Economy{ProductionMass: 100, ProductionActive: true})
	dead := registerUnit(reg, 0, entity.Economy{ProductionMass: 100, ProductionActive: true})
	dead.Destroyed = true

	b := New(0, "test", nil)
	b.UpdateEconomy(reg, 1)

	if b.StoredMass() != 0 {
		t.Errorf("expected no income credited from other armies or destroyed units, got %v", b.StoredMass())
	}
}

func TestUpdateEconomyWithNoDemandIsFullEfficiency(t *testing.T) {
	reg := entity.NewRegistry()
	b := New(0, "test", nil)
	eff := b.UpdateEconomy(reg, 1)
	if eff.Mass != 1 || eff.Energy != 1 {
		t.Errorf("expected efficiency 1/1 with no demand, got %+v", eff)
	}
}

func TestAllianceDefaultsToEnemyExceptSelf(t *testing.T) {
	b := New(0, "test", nil)
	if b.AllianceTo(0) != AllianceAlly {
		t.Error("expected self to be an ally")
	}
	if b.AllianceTo(3) != AllianceEnemy {
		t.Error("expected an unset army to default to Enemy")
	}
}

func TestSetAllianceOverridesDefault(t *testing.T) {
	b := New(0, "test", nil)
	b.SetAlliance(2, AllianceAlly)
	if b.AllianceTo(2) != AllianceAlly {
		t.Error("expected explicit override to make army 2 an ally")
	}
	if b.IsEnemy(2) {
		t.Error("expected IsEnemy to reflect the override")
	}
}

func TestIsEnemyRejectsNegativeArmy(t *testing.T) {
	b := New(0, "test", nil)
	if b.IsEnemy(-1) {
		t.Error("expected unassigned army (-1) to never count as an enemy")
	}
}
