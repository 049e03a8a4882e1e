// Package script defines the boundary between the simulation core and the
// embedded scripting VM that hosts the original game's scripted assets.
// The VM itself is an external collaborator out of scope for this module;
// this package only fixes the shape of the contract described in spec
// section 6 so the rest of the core can be written and tested against it.
package script

// Handle is an opaque reference to a VM-pinned object: a blueprint table,
// an entity's script-side proxy, or a forked coroutine. The core never
// interprets its value — it is round-tripped back into Host calls.
type Handle int64

// NoHandle is the zero value meaning "no VM object is pinned here".
const NoHandle Handle = 0

// DamageType distinguishes how the VM should apply incoming damage;
// passed through verbatim from weapon/projectile.
type DamageType string

// Host is everything the simulation core needs from the scripting VM.
// All callback methods are optional from the VM's perspective: a NullHost
// or a Host backed by a VM missing a given script function must treat the
// call as a no-op rather than an error, mirroring the original's
// pcall-and-ignore-missing-function behaviour.
type Host interface {
	// RegisterBlueprintTable pins the table at the given opaque
	// descriptor (constructed host-side during blueprint loading) and
	// returns a handle to it. The returned handle is stored in
	// blueprint.Entry.
	RegisterBlueprintTable(descriptor any) (Handle, error)

	// ExposeBlueprints projects id -> blueprint table as a VM-visible
	// global, once loading completes.
	ExposeBlueprints(entries map[string]Handle) error

	// GetStringField and GetNumberField read a field off a pinned
	// table (a blueprint table or an entity's script-side proxy).
	GetStringField(h Handle, field string) (string, bool)
	GetNumberField(h Handle, field string) (float64, bool)

	// CreateEntityProxy pins a new script-side object for an entity and
	// returns a handle for it. ReleaseHandle unpins it.
	CreateEntityProxy(entityID uint32) (Handle, error)
	ReleaseHandle(h Handle)

	// Entity lifecycle / command callbacks. All are fire-and-forget: an
	// error return logs and is swallowed by the caller, per the
	// tick-never-aborts error policy.
	OnStartBuild(builder, target Handle, order string) error
	OnStopBuild(builder, target Handle) error
	OnStartBeingBuilt(target, builder Handle, layer string) error
	OnStopBeingBuilt(target, builder Handle, layer string) error
	OnFailedToBuild(target Handle) error
	OnReclaimed(target, reclaimer Handle) error
	OnStartCapture(capturer, target Handle) error
	OnStopCapture(capturer, target Handle) error
	OnFailedCapture(capturer, target Handle) error
	OnStartBeingCaptured(target, capturer Handle) error
	OnStopBeingCaptured(target, capturer Handle) error
	OnFailedBeingCaptured(target, capturer Handle) error
	OnCaptured(target, capturer Handle) error
	OnTransportAttach(transport, cargo Handle) error
	OnTransportDetach(transport, cargo Handle) error
	OnLayerChange(target Handle, newLayer, oldLayer string) error
	OnWorkBegin(target Handle, workType string) error
	OnWorkEnd(target Handle, workType string) error
	OnWorkFail(target Handle, workType string) error

	// Damage dispatch.
	Damage(instigator, target Handle, amount float64, damageType DamageType) error
	DamageArea(instigator Handle, x, y, z float32, radius float32, amount float64, damageType DamageType, damageFriendly bool) error

	// Session lifecycle.
	OnCreateArmyBrain(armyIndex int, brain Handle) error
	SetupSession() error
	BeginSession() error
	LoadBlueprints() error
}

// NullHost implements Host with every callback a no-op and every query
// reporting "missing". Used directly by tests that exercise core logic
// without a real VM attached, and embedded by session.DiagHost, which
// overrides the handful of calls a diagnostic scenario actually needs to
// observe (Damage/DamageArea, blueprint field reads).
type NullHost struct{}

var _ Host = NullHost{}

func (NullHost) RegisterBlueprintTable(any) (Handle, error)     { return NoHandle, nil }
func (NullHost) ExposeBlueprints(map[string]Handle) error       { return nil }
func (NullHost) GetStringField(Handle, string) (string, bool)   { return "", false }
func (NullHost) GetNumberField(Handle, string) (float64, bool)  { return 0, false }
func (NullHost) CreateEntityProxy(uint32) (Handle, error)       { return NoHandle, nil }
func (NullHost) ReleaseHandle(Handle)                           {}
func (NullHost) OnStartBuild(Handle, Handle, string) error      { return nil }
func (NullHost) OnStopBuild(Handle, Handle) error               { return nil }
func (NullHost) OnStartBeingBuilt(Handle, Handle, string) error { return nil }
func (NullHost) OnStopBeingBuilt(Handle, Handle, string) error  { return nil }
func (NullHost) OnFailedToBuild(Handle) error                   { return nil }
func (NullHost) OnReclaimed(Handle, Handle) error                { return nil }
func (NullHost) OnStartCapture(Handle, Handle) error             { return nil }
func (NullHost) OnStopCapture(Handle, Handle) error              { return nil }
func (NullHost) OnFailedCapture(Handle, Handle) error            { return nil }
func (NullHost) OnStartBeingCaptured(Handle, Handle) error       { return nil }
func (NullHost) OnStopBeingCaptured(Handle, Handle) error        { return nil }
func (NullHost) OnFailedBeingCaptured(Handle, Handle) error      { return nil }
func (NullHost) OnCaptured(Handle, Handle) error                 { return nil }
func (NullHost) OnTransportAttach(Handle, Handle) error          { return nil }
func (NullHost) OnTransportDetach(Handle, Handle) error          { return nil }
func (NullHost) OnLayerChange(Handle, string, string) error      { return nil }
func (NullHost) OnWorkBegin(Handle, string) error                { return nil }
func (NullHost) OnWorkEnd(Handle, string) error                  { return nil }
func (NullHost) OnWorkFail(Handle, string) error                 { return nil }
func (NullHost) Damage(Handle, Handle, float64, DamageType) error { return nil }
func (NullHost) DamageArea(Handle, float32, float32, float32, float32, float64, DamageType, bool) error {
	return nil
}
func (NullHost) OnCreateArmyBrain(int, Handle) error { return nil }
func (NullHost) SetupSession() error                 { return nil }
func (NullHost) BeginSession() error                 { return nil }
func (NullHost) LoadBlueprints() error                { return nil }
