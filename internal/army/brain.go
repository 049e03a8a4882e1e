// Package army implements the per-seat ArmyBrain: storage-buffered
// economy aggregation, the ally/enemy alliance table, platoon management,
// and the spatial threat-query surface AI scripts drive combat decisions
// from. Grounded on original_source/src/sim/army_brain.{hpp,cpp} and, for
// the expr-lang-compiled threat filter predicates, on the teacher's
// rules.Engine/RuleEnv pattern (see internal/threatquery).
package army

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/spatial"
)

// baseStorage is the flat resource-storage floor every army gets before
// storage-providing units contribute, per the spec's "max_storage = 200 +
// Σ storage" formula.
const baseStorage = 200

// Alliance classifies one army's standing relative to another.
type Alliance int

const (
	AllianceEnemy Alliance = iota
	AllianceAlly
	AllianceNeutral
)

// Brain is one seat's army state: the economy ledger, alliance overrides,
// platoons and the monotonic platoon/command id counters.
type Brain struct {
	ArmyIndex int32
	Name      string

	alliances map[int32]Alliance

	storedMass   float64
	storedEnergy float64
	EffMass      float64
	EffEnergy    float64

	platoons      []*Platoon
	nextPlatoonID uint32
	nextCommandID uint64

	log *slog.Logger
}

// New returns a brain for armyIndex with neutral starting efficiency
// (1.0/1.0, matching the first-tick default used before any economy has
// run) and an empty alliance table (every other army defaults to Enemy
// until set otherwise).
func New(armyIndex int32, name string, log *slog.Logger) *Brain {
	if log == nil {
		log = slog.Default()
	}
	return &Brain{
		ArmyIndex: armyIndex,
		Name:      name,
		EffMass:   1,
		EffEnergy: 1,
		log:       log,
	}
}

// SetAlliance records an explicit alliance override for other relative to
// this brain's army.
func (b *Brain) SetAlliance(other int32, a Alliance) {
	if b.alliances == nil {
		b.alliances = make(map[int32]Alliance)
	}
	b.alliances[other] = a
}

// AllianceTo reports this army's standing toward other: always Ally to
// itself, an explicit override if one was set, otherwise Enemy by
// default.
func (b *Brain) AllianceTo(other int32) Alliance {
	if other == b.ArmyIndex {
		return AllianceAlly
	}
	if a, ok := b.alliances[other]; ok {
		return a
	}
	return AllianceEnemy
}

// IsEnemy reports whether other is an enemy of this army, the filter
// weapon targeting and every threat query use.
func (b *Brain) IsEnemy(other int32) bool {
	return other >= 0 && b.AllianceTo(other) == AllianceEnemy
}

// UpdateEconomy aggregates every living unit of this army's production,
// consumption and storage, applies the storage-buffered efficiency
// formula per-resource, and returns the entity.Efficiency the tick loop
// writes into ctx.Efficiency[b.ArmyIndex] for the *next* tick's unit
// updates to read (the formula's back-pressure is deliberately one tick
// stale — see the spec's update_economy description).
func (b *Brain) UpdateEconomy(reg *entity.Registry, dt float64) entity.Efficiency {
	var incomeMass, incomeEnergy float64
	var needMass, needEnergy float64
	var storageMass, storageEnergy float64

	reg.ForEach(func(e entity.Entity) {
		u, ok := e.(*entity.Unit)
		if !ok || u.Destroyed || u.Army != b.ArmyIndex {
			return
		}
		if u.Economy.ProductionActive {
			incomeMass += u.Economy.ProductionMass
			incomeEnergy += u.Economy.ProductionEnergy
		}
		if u.Economy.ConsumptionActive {
			needMass += u.Economy.ConsumptionMass
			needEnergy += u.Economy.ConsumptionEnergy
		}
		storageMass += u.Economy.StorageMass
		storageEnergy += u.Economy.StorageEnergy
	})

	massEff := b.bufferResource(&b.storedMass, incomeMass, needMass, baseStorage+storageMass, dt)
	energyEff := b.bufferResource(&b.storedEnergy, incomeEnergy, needEnergy, baseStorage+storageEnergy, dt)

	b.EffMass = massEff
	b.EffEnergy = energyEff
	return entity.Efficiency{Mass: massEff, Energy: energyEff}
}

// bufferResource applies the storage-buffered efficiency formula to one
// resource, mutating *stored in place and returning this tick's
// efficiency for it.
func (b *Brain) bufferResource(stored *float64, income, need, maxStorage, dt float64) float64 {
	avail := income*dt + *stored
	var consumed float64
	if need > 0 {
		consumed = avail
		if need < avail {
			consumed = need
		}
	}
	*stored = spatial.ClampF64(avail-consumed, 0, maxStorage)
	if need > 0 {
		return consumed / need
	}
	return 1
}

// StoredMass and StoredEnergy expose the current resource buffers, e.g.
// for diagnostic console reporting.
func (b *Brain) StoredMass() float64   { return b.storedMass }
func (b *Brain) StoredEnergy() float64 { return b.storedEnergy }
