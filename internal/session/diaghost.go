package session

import (
	"log/slog"

	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/script"
)

// DiagHost is a minimal stand-in for the scripting VM, used only by the
// diagnostic test modes: it pins blueprint/entity handles in plain Go maps
// and actually applies Damage/DamageArea to a unit's health instead of
// forwarding the call to a VM that isn't there. Every other Host callback
// (build/capture/transport lifecycle notifications, session setup) is the
// inherited NullHost no-op, since no diagnostic scenario needs a script
// side reacting to them.
//
// Grounded on original_source/src/main.cpp's test harness, which drives
// the same scenarios through `state.do_string` calls against the real Lua
// VM (e.g. `Damage(nil, e, 99999, nil, 'Normal')`); DiagHost reproduces
// just enough of that VM surface in Go for the scenario to run standalone.
type DiagHost struct {
	script.NullHost

	reg *entity.Registry
	log *slog.Logger

	nextHandle script.Handle
	proxies    map[script.Handle]uint32
	tables     map[script.Handle]map[string]any
}

// NewDiagHost returns a DiagHost bound to reg, the registry the session's
// sim.State will use. reg is filled in by the caller once sim.State
// exists, since Boot constructs the registry internally — see
// diagHost.bind.
func NewDiagHost(log *slog.Logger) *DiagHost {
	if log == nil {
		log = slog.Default()
	}
	return &DiagHost{
		log:     log,
		proxies: make(map[script.Handle]uint32),
		tables:  make(map[script.Handle]map[string]any),
	}
}

// bind attaches the registry a scenario will spawn entities into, once it
// exists (after Boot returns).
func (h *DiagHost) bind(reg *entity.Registry) { h.reg = reg }

func (h *DiagHost) alloc() script.Handle {
	h.nextHandle++
	return h.nextHandle
}

// RegisterBlueprintTable pins descriptor (a map[string]any of dotted
// field names to string/float64 values, built by a scenario's
// registerBlueprint helper) and returns a handle GetStringField/
// GetNumberField can read back through.
func (h *DiagHost) RegisterBlueprintTable(descriptor any) (script.Handle, error) {
	handle := h.alloc()
	fields, _ := descriptor.(map[string]any)
	h.tables[handle] = fields
	return handle, nil
}

func (h *DiagHost) GetStringField(handle script.Handle, field string) (string, bool) {
	v, ok := h.tables[handle][field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (h *DiagHost) GetNumberField(handle script.Handle, field string) (float64, bool) {
	v, ok := h.tables[handle][field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// CreateEntityProxy pins entityID behind a fresh handle; scenarios call
// this directly (the way build.go/weapon.go do mid-tick) to wire a
// spawned unit up for Damage/DamageArea delivery.
func (h *DiagHost) CreateEntityProxy(entityID uint32) (script.Handle, error) {
	handle := h.alloc()
	h.proxies[handle] = entityID
	return handle, nil
}

func (h *DiagHost) ReleaseHandle(handle script.Handle) {
	delete(h.proxies, handle)
	delete(h.tables, handle)
}

// Damage reduces the proxied unit's health directly, applying the same
// clamp-to-zero SetHealth every other damage path uses, and marks it
// destroyed at zero health.
func (h *DiagHost) Damage(instigator, target script.Handle, amount float64, damageType script.DamageType) error {
	id, ok := h.proxies[target]
	if !ok {
		return nil
	}
	u, ok := h.reg.FindUnit(id)
	if !ok {
		return nil
	}
	u.SetHealth(u.Health - float32(amount))
	if u.Health <= 0 {
		u.MarkDestroyed()
	}
	return nil
}

// DamageArea applies amount to every living unit within radius of
// (x,z), ignoring damageFriendly since no diagnostic scenario needs
// friendly-fire exemption.
func (h *DiagHost) DamageArea(instigator script.Handle, x, y, z, radius float32, amount float64, damageType script.DamageType, damageFriendly bool) error {
	for _, id := range h.reg.CollectInRadius(x, z, radius) {
		u, ok := h.reg.FindUnit(id)
		if !ok {
			continue
		}
		u.SetHealth(u.Health - float32(amount))
		if u.Health <= 0 {
			u.MarkDestroyed()
		}
	}
	return nil
}

func (h *DiagHost) OnFailedToBuild(target script.Handle) error {
	h.log.Debug("diagnostic scenario: build failed", "target", target)
	return nil
}
