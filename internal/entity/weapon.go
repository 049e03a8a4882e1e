package entity

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/spatial"
)

// FireState mirrors Unit.fire_state: how aggressively a unit's weapons
// engage targets of opportunity.
type FireState int

const (
	FireStateReturnFire FireState = iota
	FireStateHoldFire
	FireStateHoldGround
)

// Weapon is cached blueprint data plus per-tick runtime targeting state
// for a single weapon slot on a unit.
type Weapon struct {
	Label          string
	MaxRange       float32
	MinRange       float32
	RateOfFire     float32 // shots per second
	Damage         float32
	DamageRadius   float32
	DamageType     script.DamageType
	MuzzleVelocity float32
	FireOnDeath    bool
	ManualFire     bool
	WeaponIndex    int

	TargetEntityID uint32
	Enabled        bool
	FireCooldown   float32
}

// NewWeapon returns a weapon with the original's blueprint defaults.
func NewWeapon() *Weapon {
	return &Weapon{
		RateOfFire:     1,
		DamageType:     "Normal",
		MuzzleVelocity: 25,
		Enabled:        true,
	}
}

// Update scans for a target and fires if ready. fire_on_death and
// manual_fire weapons never auto-fire; HoldFire suppresses both targeting
// and firing entirely.
func (w *Weapon) Update(dt float64, owner *Unit, reg *Registry, host script.Host, log *slog.Logger) {
	if !w.Enabled || w.FireOnDeath || w.ManualFire {
		return
	}
	if w.MaxRange <= 0 || w.Damage <= 0 {
		return
	}
	if owner.FireState == FireStateHoldFire {
		return
	}

	w.FireCooldown = spatial.MaxF32(0, w.FireCooldown-float32(dt))

	w.updateTargeting(owner, reg)
	if w.TargetEntityID == 0 {
		return
	}

	if w.FireCooldown <= 0 {
		if w.tryFire(owner, reg, host, log) {
			if w.RateOfFire > 0 {
				w.FireCooldown = 1.0 / w.RateOfFire
			} else {
				w.FireCooldown = 1
			}
		}
	}
}

func (w *Weapon) updateTargeting(owner *Unit, reg *Registry) {
	if w.TargetEntityID != 0 {
		if target, ok := reg.FindUnit(w.TargetEntityID); ok {
			dist2 := spatial.DistanceXZ2(target.Position, owner.Position)
			max2 := w.MaxRange * w.MaxRange
			min2 := w.MinRange * w.MinRange
			if dist2 <= max2 && dist2 >= min2 && target.Army != owner.Army {
				return
			}
		}
		w.TargetEntityID = 0
	}

	candidates := reg.CollectInRadius(owner.Position.X, owner.Position.Z, w.MaxRange)
	bestDist2 := w.MaxRange*w.MaxRange + 1
	var bestID uint32
	min2 := w.MinRange * w.MinRange

	for _, id := range candidates {
		e, ok := reg.Find(id)
		if !ok || e.Info().Destroyed || e.Kind() != KindUnit {
			continue
		}
		u := e.(*Unit)
		if u.Army == owner.Army || u.Army < 0 {
			continue
		}
		if u.EntityID == owner.EntityID {
			continue
		}
		dist2 := spatial.DistanceXZ2(u.Position, owner.Position)
		if dist2 < min2 {
			continue
		}
		if dist2 < bestDist2 {
			bestDist2 = dist2
			bestID = id
		}
	}

	w.TargetEntityID = bestID
}

func (w *Weapon) tryFire(owner *Unit, reg *Registry, host script.Host, log *slog.Logger) bool {
	target, ok := reg.Find(w.TargetEntityID)
	if !ok || target.Info().Destroyed {
		w.TargetEntityID = 0
		return false
	}

	dx := target.Info().Position.X - owner.Position.X
	dz := target.Info().Position.Z - owner.Position.Z
	dist := spatial.DistanceXZ(target.Info().Position, owner.Position)
	if dist < 0.001 {
		dist = 0.001
	}
	invDist := 1.0 / dist

	proj := NewProjectile()
	proj.Position = owner.Position
	proj.Army = owner.Army
	proj.Velocity = spatial.Vector3{
		X: dx * invDist * w.MuzzleVelocity,
		Z: dz * invDist * w.MuzzleVelocity,
	}
	proj.TargetEntityID = w.TargetEntityID
	proj.TargetPosition = target.Info().Position
	proj.LauncherID = owner.EntityID
	proj.DamageAmount = w.Damage
	proj.DamageRadius = w.DamageRadius
	proj.DamageType = w.DamageType
	proj.Lifetime = dist/w.MuzzleVelocity + 2

	projID := reg.Register(proj)

	if handle, err := host.CreateEntityProxy(projID); err == nil {
		proj.ScriptHandle = handle
	}

	if log != nil {
		log.Debug("weapon fired", "weapon", w.Label, "projectile", projID, "target", w.TargetEntityID)
	}
	return true
}
