package entity

// Shield is a unit-attached damage-absorbing entity. Grounded on
// original_source/src/sim/shield.hpp: owner_id, is_on, size and
// shield_type are the only fields the original adds over the base
// Entity.
type Shield struct {
	Base

	OwnerID    uint32
	IsOn       bool
	Size       float32
	ShieldType string
}

var _ Entity = (*Shield)(nil)

func (s *Shield) ID() uint32  { return s.EntityID }
func (s *Shield) Kind() Kind  { return KindShield }
func (s *Shield) Info() *Base { return &s.Base }

// NewShield returns an off shield of the default "Bubble" type and a
// 10-unit radius, matching the original's field defaults.
func NewShield(ownerID uint32) *Shield {
	return &Shield{
		Base:       NewBase(),
		OwnerID:    ownerID,
		Size:       10,
		ShieldType: "Bubble",
	}
}

// AbsorbDamage reduces incoming damage by up to the shield's remaining
// health while it is on, returning the leftover damage to apply to the
// owner. An off or destroyed shield absorbs nothing.
func (s *Shield) AbsorbDamage(amount float32) float32 {
	if !s.IsOn || s.Destroyed {
		return amount
	}
	if amount <= s.Health {
		s.SetHealth(s.Health - amount)
		return 0
	}
	leftover := amount - s.Health
	s.SetHealth(0)
	s.Destroyed = true
	return leftover
}
