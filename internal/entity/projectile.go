package entity

import (
	"log/slog"
	"math"

	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/spatial"
)

// hitRadius is the extra slack added to the per-tick travel distance when
// testing for a collision, so fast projectiles don't tunnel through their
// target between ticks.
const hitRadius = 1.5

// Projectile is a fired shot in flight: moves by velocity each tick,
// checks for a hit against its bound target or ground-target position,
// and dispatches damage through the scripting VM on impact.
type Projectile struct {
	Base

	Velocity       spatial.Vector3
	TargetEntityID uint32
	TargetPosition spatial.Vector3
	LauncherID     uint32
	DamageAmount   float32
	DamageRadius   float32
	DamageType     script.DamageType
	Lifetime       float32
}

var _ Entity = (*Projectile)(nil)

func (p *Projectile) ID() uint32   { return p.EntityID }
func (p *Projectile) Kind() Kind   { return KindProjectile }
func (p *Projectile) Info() *Base  { return &p.Base }

// NewProjectile builds a projectile with the original's defaults
// (10-second fallback lifetime, "Normal" damage type).
func NewProjectile() *Projectile {
	return &Projectile{Base: NewBase(), DamageType: "Normal", Lifetime: 10}
}

// Update advances the projectile one tick: decrements lifetime, moves by
// velocity, and checks for impact against its bound target (falling back
// to the ground-target position if the target is gone).
func (p *Projectile) Update(dt float64, reg *Registry, host script.Host, log *slog.Logger) {
	if p.Destroyed {
		return
	}

	p.Lifetime -= float32(dt)
	if p.Lifetime <= 0 {
		p.destroy(host)
		reg.Unregister(p.EntityID)
		return
	}

	p.Position.X += p.Velocity.X * float32(dt)
	p.Position.Y += p.Velocity.Y * float32(dt)
	p.Position.Z += p.Velocity.Z * float32(dt)

	speed := float32(math.Sqrt(float64(p.Velocity.X*p.Velocity.X + p.Velocity.Z*p.Velocity.Z)))
	step := speed * float32(dt)

	if p.TargetEntityID != 0 {
		if target, ok := reg.Find(p.TargetEntityID); ok && !target.Info().Destroyed {
			if spatial.DistanceXZ(target.Info().Position, p.Position) < step+hitRadius {
				p.onImpact(host, target, reg, log)
				return
			}
		}
	}

	if spatial.DistanceXZ(p.TargetPosition, p.Position) < step+hitRadius {
		p.onImpact(host, nil, reg, log)
	}
}

func (p *Projectile) onImpact(host script.Host, target Entity, reg *Registry, log *slog.Logger) {
	pos := p.Position

	var launcher Entity
	if p.LauncherID != 0 {
		if l, ok := reg.Find(p.LauncherID); ok && !l.Info().Destroyed {
			launcher = l
		}
	}
	launcherHandle := script.NoHandle
	if launcher != nil {
		launcherHandle = launcher.Info().ScriptHandle
	}

	if p.DamageRadius > 0 {
		if err := host.DamageArea(launcherHandle, pos.X, pos.Y, pos.Z, p.DamageRadius, float64(p.DamageAmount), p.DamageType, false); err != nil {
			log.Warn("projectile DamageArea error", "err", err)
		}
	} else if target != nil && !target.Info().Destroyed {
		if err := host.Damage(launcherHandle, target.Info().ScriptHandle, float64(p.DamageAmount), p.DamageType); err != nil {
			log.Warn("projectile Damage error", "err", err)
		}
	}

	p.destroy(host)
	reg.Unregister(p.EntityID)
}

func (p *Projectile) destroy(host script.Host) {
	p.MarkDestroyed()
	if p.ScriptHandle != script.NoHandle {
		host.ReleaseHandle(p.ScriptHandle)
		p.ScriptHandle = script.NoHandle
	}
}
