// Package entity holds every simulated world object — units, projectiles,
// props and shields — plus the registry that owns them and the command
// state machines that drive unit behaviour each tick. These all live in
// one package, mirroring the original engine's flat sim/ directory, to
// avoid an import cycle between Unit and Registry. Grounded on
// original_source/src/sim/entity.{hpp}, entity_registry.{hpp,cpp},
// unit.{hpp,cpp}, weapon.{hpp,cpp}, projectile.{hpp,cpp}, shield.{hpp,cpp}.
package entity

import (
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/spatial"
)

// Kind tags which concrete variant an Entity is.
type Kind int

const (
	KindUnit Kind = iota
	KindProjectile
	KindProp
	KindShield
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindProjectile:
		return "Projectile"
	case KindProp:
		return "Prop"
	case KindShield:
		return "Shield"
	default:
		return "Unknown"
	}
}

// Base carries every field common to all entity variants. Unit,
// Projectile, Prop and Shield embed it.
type Base struct {
	EntityID   uint32
	Army       int32 // -1 = unassigned
	Position   spatial.Vector3
	Orientation spatial.Quaternion
	Health     float32
	MaxHealth  float32
	// FractionComplete is in [0,1]; 1 means fully built/spawned.
	FractionComplete float32
	Destroyed        bool
	BlueprintID      string
	ScriptHandle     script.Handle
}

// NewBase returns a Base with the same defaults the original entity
// constructor uses: full orientation quaternion, fraction_complete = 1
// (a plain spawn, not mid-construction), army unassigned.
func NewBase() Base {
	return Base{
		Army:             -1,
		Orientation:      spatial.IdentityQuaternion,
		FractionComplete: 1,
		ScriptHandle:     script.NoHandle,
	}
}

// SetHealth clamps to zero, mirroring the original's set_health.
func (b *Base) SetHealth(h float32) {
	if h < 0 {
		h = 0
	}
	b.Health = h
}

func (b *Base) MarkDestroyed() { b.Destroyed = true }

// Entity is any object the registry can own and the tick loop can update.
type Entity interface {
	ID() uint32
	Kind() Kind
	Info() *Base
}
