package entity

import "github.com/osc-sim/simcore/internal/spatial"

// Prop is scenery: rocks, trees, wrecks. It has no commands or weapons
// but can be reclaimed and, for wrecks, damaged. Grounded on
// original_source/src/sim/entity.hpp's is_prop() base-class hook — the
// original carries no dedicated Prop subclass, only a flag plus the
// shared Entity fields, which Base already provides.
type Prop struct {
	Base
}

var _ Entity = (*Prop)(nil)

func (p *Prop) ID() uint32  { return p.EntityID }
func (p *Prop) Kind() Kind  { return KindProp }
func (p *Prop) Info() *Base { return &p.Base }

// NewProp returns a prop at the given position, fully built and
// reclaimable by default.
func NewProp(blueprintID string, pos spatial.Vector3) *Prop {
	p := &Prop{Base: NewBase()}
	p.BlueprintID = blueprintID
	p.Position = pos
	p.FractionComplete = 1
	return p
}
