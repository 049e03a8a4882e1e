package army

import (
	"github.com/expr-lang/expr/vm"

	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/spatial"
	"github.com/osc-sim/simcore/internal/threatquery"
)

// unitThreat is a unit's threat contribution: summed DPS across its
// enabled, armed weapon slots. Disabled, unarmed or rangeless weapons
// contribute nothing.
func unitThreat(u *entity.Unit) float64 {
	var total float64
	for _, w := range u.Weapons {
		if !w.Enabled || w.Damage <= 0 || w.MaxRange <= 0 {
			continue
		}
		dps := float64(w.Damage)
		if w.RateOfFire > 0 {
			dps *= float64(w.RateOfFire)
		}
		total += dps
	}
	return total
}

// matchesFilter evaluates an optional compiled threat query filter
// against one candidate unit's snapshot Env.
func matchesFilter(program *vm.Program, u *entity.Unit) bool {
	ok, err := threatquery.Eval(program, threatquery.NewEnv(
		u.Army, u.BlueprintID, u.Health, u.MaxHealth,
		u.Position.X, u.Position.Z, u.FractionComplete, u.Categories,
	))
	return err == nil && ok
}

// enemyUnitsAround collects every living unit within radius of (x, z)
// that this brain considers an enemy and that satisfies the optional
// filter program, in ascending entity id order.
func (b *Brain) enemyUnitsAround(reg *entity.Registry, x, z, radius float32, program *vm.Program) []*entity.Unit {
	var out []*entity.Unit
	for _, id := range reg.CollectInRadius(x, z, radius) {
		e, ok := reg.Find(id)
		if !ok || e.Kind() != entity.KindUnit {
			continue
		}
		u := e.(*entity.Unit)
		if u.Destroyed || !b.IsEnemy(u.Army) {
			continue
		}
		if !matchesFilter(program, u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// GetThreatAtPosition sums the threat of every enemy unit matching filter
// within radius of pos.
func (b *Brain) GetThreatAtPosition(reg *entity.Registry, pos spatial.Vector3, radius float32, filter string) (float64, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, u := range b.enemyUnitsAround(reg, pos.X, pos.Z, radius, program) {
		total += unitThreat(u)
	}
	return total, nil
}

// GetThreatsAroundPosition returns the per-unit threat breakdown, keyed
// by entity id, for every enemy unit matching filter within radius.
func (b *Brain) GetThreatsAroundPosition(reg *entity.Registry, pos spatial.Vector3, radius float32, filter string) (map[uint32]float64, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]float64)
	for _, u := range b.enemyUnitsAround(reg, pos.X, pos.Z, radius, program) {
		out[u.EntityID] = unitThreat(u)
	}
	return out, nil
}

// GetHighestThreatPosition scans every live enemy unit on the map (no
// radius bound) matching filter and returns the position of the single
// highest-threat match.
func (b *Brain) GetHighestThreatPosition(reg *entity.Registry, filter string) (spatial.Vector3, bool, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return spatial.Vector3{}, false, err
	}

	var best *entity.Unit
	var bestThreat float64
	reg.ForEach(func(e entity.Entity) {
		if e.Kind() != entity.KindUnit {
			return
		}
		u := e.(*entity.Unit)
		if u.Destroyed || !b.IsEnemy(u.Army) || !matchesFilter(program, u) {
			return
		}
		if t := unitThreat(u); best == nil || t > bestThreat {
			best, bestThreat = u, t
		}
	})
	if best == nil {
		return spatial.Vector3{}, false, nil
	}
	return best.Position, true, nil
}

// CalculatePlatoonThreat sums the threat of the platoon's own living
// units, used by AI scripts to size a force before committing it.
func (b *Brain) CalculatePlatoonThreat(reg *entity.Registry, p *Platoon) float64 {
	var total float64
	for _, id := range p.UnitIDs {
		if u, ok := reg.FindUnit(id); ok {
			total += unitThreat(u)
		}
	}
	return total
}

// GetNumUnitsAroundPoint counts enemy units matching filter within radius
// of pos.
func (b *Brain) GetNumUnitsAroundPoint(reg *entity.Registry, pos spatial.Vector3, radius float32, filter string) (int, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return 0, err
	}
	return len(b.enemyUnitsAround(reg, pos.X, pos.Z, radius, program)), nil
}

// FindClosestUnit returns the nearest enemy unit matching filter within
// radius of pos, or nil if none match.
func (b *Brain) FindClosestUnit(reg *entity.Registry, pos spatial.Vector3, radius float32, filter string) (*entity.Unit, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return nil, err
	}
	var best *entity.Unit
	var bestDist2 float32
	for _, u := range b.enemyUnitsAround(reg, pos.X, pos.Z, radius, program) {
		if d2 := spatial.DistanceXZ2(u.Position, pos); best == nil || d2 < bestDist2 {
			best, bestDist2 = u, d2
		}
	}
	return best, nil
}

// FindPrioritizedUnit returns the enemy unit matching filter within
// radius that maximizes threat discounted by distance (threat/(1+dist)),
// favouring nearby high-threat targets over distant ones of equal threat.
func (b *Brain) FindPrioritizedUnit(reg *entity.Registry, pos spatial.Vector3, radius float32, filter string) (*entity.Unit, error) {
	program, err := threatquery.Compile(filter)
	if err != nil {
		return nil, err
	}
	var best *entity.Unit
	var bestScore float64
	for _, u := range b.enemyUnitsAround(reg, pos.X, pos.Z, radius, program) {
		dist := float64(spatial.DistanceXZ(u.Position, pos))
		score := unitThreat(u) / (1 + dist)
		if best == nil || score > bestScore {
			best, bestScore = u, score
		}
	}
	return best, nil
}
