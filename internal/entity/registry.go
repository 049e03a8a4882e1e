package entity

import "sort"

// Registry is the id-assigning container of every live entity. Entity ids
// are monotonic and never reused within a session, matching the
// original's next_id_ counter.
type Registry struct {
	entities map[uint32]Entity
	nextID   uint32
}

// NewRegistry returns an empty registry with id allocation starting at 1.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[uint32]Entity), nextID: 1}
}

// Register assigns the next id to an entity not yet carrying one, stores
// it, and returns the assigned id.
func (r *Registry) Register(e Entity) uint32 {
	id := r.nextID
	r.nextID++
	e.Info().EntityID = id
	r.entities[id] = e
	return id
}

// Unregister removes an entity by id.
func (r *Registry) Unregister(id uint32) {
	delete(r.entities, id)
}

// Find looks up an entity by id, returning (nil, false) if it is gone.
func (r *Registry) Find(id uint32) (Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Count returns the number of live entities.
func (r *Registry) Count() int { return len(r.entities) }

// SortedIDs returns every live entity id in ascending order. Used for
// deterministic iteration when a tick must snapshot ids before dispatching
// updates that might spawn or destroy entities.
func (r *Registry) SortedIDs() []uint32 {
	ids := make([]uint32, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CollectInRadius returns, in ascending id order, every non-destroyed
// entity within radius of (x, z) using 2D distance (ignoring Y).
func (r *Registry) CollectInRadius(x, z, radius float32) []uint32 {
	r2 := radius * radius
	var result []uint32
	for id, e := range r.entities {
		info := e.Info()
		if info.Destroyed {
			continue
		}
		dx := info.Position.X - x
		dz := info.Position.Z - z
		if dx*dx+dz*dz <= r2 {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// CollectInRect returns, in ascending id order, every non-destroyed
// entity within the axis-aligned rectangle [x0,x1] x [z0,z1] (normalised
// internally so callers need not pre-sort the corners).
func (r *Registry) CollectInRect(x0, z0, x1, z1 float32) []uint32 {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}
	var result []uint32
	for id, e := range r.entities {
		info := e.Info()
		if info.Destroyed {
			continue
		}
		if info.Position.X >= x0 && info.Position.X <= x1 &&
			info.Position.Z >= z0 && info.Position.Z <= z1 {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ForEach visits every entity in ascending id order.
func (r *Registry) ForEach(fn func(Entity)) {
	for _, id := range r.SortedIDs() {
		fn(r.entities[id])
	}
}

// FindUnit is a convenience wrapper returning a live, non-destroyed Unit.
func (r *Registry) FindUnit(id uint32) (*Unit, bool) {
	e, ok := r.Find(id)
	if !ok {
		return nil, false
	}
	u, ok := e.(*Unit)
	if !ok || u.Destroyed {
		return nil, false
	}
	return u, true
}
