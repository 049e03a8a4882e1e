package entity

// AttachToTransport loads cargoID onto this transport, guarded by
// remaining capacity, and notifies the VM. Returns false if full.
func (u *Unit) AttachToTransport(ctx *Context, cargoID uint32) bool {
	if u.TransportCapacity > 0 && int32(len(u.CargoIDs)) >= u.TransportCapacity {
		return false
	}
	cargo, ok := ctx.Registry.FindUnit(cargoID)
	if !ok {
		return false
	}
	u.AddCargo(cargoID)
	cargo.TransportID = u.EntityID
	cargo.Navigator.AbortMove()
	ctx.Host.OnTransportAttach(u.ScriptHandle, cargo.ScriptHandle)
	return true
}

// DetachAllCargo unloads every passenger at the transport's current
// position. Cargo ids are snapshotted before iterating since
// OnTransportDetach callbacks may mutate CargoIDs (e.g. a script-side
// chain reaction unloading further units).
func (u *Unit) DetachAllCargo(ctx *Context) {
	ids := make([]uint32, len(u.CargoIDs))
	copy(ids, u.CargoIDs)
	u.CargoIDs = nil

	dropAt := u.Position
	for _, id := range ids {
		cargo, ok := ctx.Registry.FindUnit(id)
		if !ok {
			continue
		}
		cargo.TransportID = 0
		cargo.Position = dropAt
		ctx.Host.OnTransportDetach(u.ScriptHandle, cargo.ScriptHandle)
	}
}
