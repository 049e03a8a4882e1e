package army

import (
	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/spatial"
)

// Platoon is a named, stable-identity grouping of unit ids belonging to
// one brain. Destroy never erases the entry so AI script tables holding a
// *Platoon reference stay valid (they just see Destroyed=true); this
// mirrors the original's tombstone pattern for platoon handles.
type Platoon struct {
	ID        uint32
	Name      string
	Destroyed bool
	UnitIDs   []uint32
}

// CreatePlatoon assigns the next monotonic platoon id and registers an
// empty platoon under name.
func (b *Brain) CreatePlatoon(name string) *Platoon {
	b.nextPlatoonID++
	p := &Platoon{ID: b.nextPlatoonID, Name: name}
	b.platoons = append(b.platoons, p)
	return p
}

// DestroyPlatoon flags p as destroyed without removing it from the
// brain's platoon list, per the tombstone contract.
func (b *Brain) DestroyPlatoon(p *Platoon) {
	p.Destroyed = true
}

// Platoons returns every platoon this brain has ever created, live or
// tombstoned.
func (b *Brain) Platoons() []*Platoon { return b.platoons }

// AddUnit appends a unit id to the platoon's roster.
func (p *Platoon) AddUnit(id uint32) {
	p.UnitIDs = append(p.UnitIDs, id)
}

// Position returns the centroid of the platoon's living units. ok is
// false if no member is currently alive.
func (p *Platoon) Position(reg *entity.Registry) (pos spatial.Vector3, ok bool) {
	var sumX, sumY, sumZ float32
	n := 0
	for _, id := range p.UnitIDs {
		u, found := reg.FindUnit(id)
		if !found {
			continue
		}
		sumX += u.Position.X
		sumY += u.Position.Y
		sumZ += u.Position.Z
		n++
	}
	if n == 0 {
		return spatial.Vector3{}, false
	}
	inv := 1 / float32(n)
	return spatial.Vector3{X: sumX * inv, Y: sumY * inv, Z: sumZ * inv}, true
}

// MoveToLocation issues a plain move order (weapons held, no engaging
// targets of opportunity) to every living unit in the platoon and returns
// a monotonic command id IsCommandsActive can later poll.
func (b *Brain) MoveToLocation(reg *entity.Registry, p *Platoon, dest spatial.Vector3) uint64 {
	return b.issuePlatoonMove(reg, p, dest, entity.FireStateHoldFire)
}

// AggressiveMoveToLocation issues a move order that still engages targets
// of opportunity along the way (return-fire stance), matching the
// original's distinct aggressive-move order.
func (b *Brain) AggressiveMoveToLocation(reg *entity.Registry, p *Platoon, dest spatial.Vector3) uint64 {
	return b.issuePlatoonMove(reg, p, dest, entity.FireStateReturnFire)
}

func (b *Brain) issuePlatoonMove(reg *entity.Registry, p *Platoon, dest spatial.Vector3, stance entity.FireState) uint64 {
	b.nextCommandID++
	id := b.nextCommandID
	for _, unitID := range p.UnitIDs {
		u, ok := reg.FindUnit(unitID)
		if !ok {
			continue
		}
		u.FireState = stance
		u.PushCommand(entity.UnitCommand{
			Type:           entity.CommandMove,
			TargetPosition: dest,
			CommandID:      id,
		}, true)
	}
	return id
}

// IsCommandsActive reports whether any living platoon member still
// carries the command id returned by MoveToLocation /
// AggressiveMoveToLocation.
func (b *Brain) IsCommandsActive(reg *entity.Registry, p *Platoon, commandID uint64) bool {
	for _, unitID := range p.UnitIDs {
		u, ok := reg.FindUnit(unitID)
		if !ok {
			continue
		}
		if u.HasCommandID(commandID) {
			return true
		}
	}
	return false
}
