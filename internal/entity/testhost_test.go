package entity

import (
	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/script"
)

// fakeHost is a script.Host test double recording every callback
// invocation by name plus a settable table of numeric/string fields
// keyed by handle, used across the command-processing test files.
type fakeHost struct {
	script.NullHost

	numbers map[script.Handle]map[string]float64
	strs    map[script.Handle]map[string]string
	calls   []string
	nextH   script.Handle
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		numbers: make(map[script.Handle]map[string]float64),
		strs:    make(map[script.Handle]map[string]string),
		nextH:   1,
	}
}

func (h *fakeHost) setNumber(handle script.Handle, field string, v float64) {
	if h.numbers[handle] == nil {
		h.numbers[handle] = make(map[string]float64)
	}
	h.numbers[handle][field] = v
}

func (h *fakeHost) setString(handle script.Handle, field, v string) {
	if h.strs[handle] == nil {
		h.strs[handle] = make(map[string]string)
	}
	h.strs[handle][field] = v
}

func (h *fakeHost) GetNumberField(handle script.Handle, field string) (float64, bool) {
	v, ok := h.numbers[handle][field]
	return v, ok
}

func (h *fakeHost) GetStringField(handle script.Handle, field string) (string, bool) {
	v, ok := h.strs[handle][field]
	return v, ok
}

func (h *fakeHost) CreateEntityProxy(entityID uint32) (script.Handle, error) {
	h.nextH++
	return h.nextH, nil
}

func (h *fakeHost) ReleaseHandle(script.Handle) {}

func (h *fakeHost) callCount(name string) int {
	n := 0
	for _, c := range h.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (h *fakeHost) OnStartBuild(builder, target script.Handle, order string) error {
	h.calls = append(h.calls, "OnStartBuild")
	return nil
}
func (h *fakeHost) OnStopBuild(builder, target script.Handle) error {
	h.calls = append(h.calls, "OnStopBuild")
	return nil
}
func (h *fakeHost) OnStartBeingBuilt(target, builder script.Handle, layer string) error {
	h.calls = append(h.calls, "OnStartBeingBuilt")
	return nil
}
func (h *fakeHost) OnStopBeingBuilt(target, builder script.Handle, layer string) error {
	h.calls = append(h.calls, "OnStopBeingBuilt")
	return nil
}
func (h *fakeHost) OnFailedToBuild(target script.Handle) error {
	h.calls = append(h.calls, "OnFailedToBuild")
	return nil
}
func (h *fakeHost) OnReclaimed(target, reclaimer script.Handle) error {
	h.calls = append(h.calls, "OnReclaimed")
	return nil
}
func (h *fakeHost) OnStartCapture(capturer, target script.Handle) error {
	h.calls = append(h.calls, "OnStartCapture")
	return nil
}
func (h *fakeHost) OnStopCapture(capturer, target script.Handle) error {
	h.calls = append(h.calls, "OnStopCapture")
	return nil
}
func (h *fakeHost) OnFailedCapture(capturer, target script.Handle) error {
	h.calls = append(h.calls, "OnFailedCapture")
	return nil
}
func (h *fakeHost) OnStartBeingCaptured(target, capturer script.Handle) error {
	h.calls = append(h.calls, "OnStartBeingCaptured")
	return nil
}
func (h *fakeHost) OnStopBeingCaptured(target, capturer script.Handle) error {
	h.calls = append(h.calls, "OnStopBeingCaptured")
	return nil
}
func (h *fakeHost) OnFailedBeingCaptured(target, capturer script.Handle) error {
	h.calls = append(h.calls, "OnFailedBeingCaptured")
	return nil
}
func (h *fakeHost) OnCaptured(target, capturer script.Handle) error {
	h.calls = append(h.calls, "OnCaptured")
	return nil
}
func (h *fakeHost) OnTransportAttach(transport, cargo script.Handle) error {
	h.calls = append(h.calls, "OnTransportAttach")
	return nil
}
func (h *fakeHost) OnTransportDetach(transport, cargo script.Handle) error {
	h.calls = append(h.calls, "OnTransportDetach")
	return nil
}
func (h *fakeHost) OnLayerChange(target script.Handle, newLayer, oldLayer string) error {
	h.calls = append(h.calls, "OnLayerChange:"+oldLayer+"->"+newLayer)
	return nil
}
func (h *fakeHost) OnWorkBegin(target script.Handle, workType string) error {
	h.calls = append(h.calls, "OnWorkBegin:"+workType)
	return nil
}
func (h *fakeHost) OnWorkEnd(target script.Handle, workType string) error {
	h.calls = append(h.calls, "OnWorkEnd:"+workType)
	return nil
}
func (h *fakeHost) OnWorkFail(target script.Handle, workType string) error {
	h.calls = append(h.calls, "OnWorkFail:"+workType)
	return nil
}
func (h *fakeHost) Damage(instigator, target script.Handle, amount float64, damageType script.DamageType) error {
	h.calls = append(h.calls, "Damage")
	return nil
}
func (h *fakeHost) DamageArea(instigator script.Handle, x, y, z float32, radius float32, amount float64, damageType script.DamageType, damageFriendly bool) error {
	h.calls = append(h.calls, "DamageArea")
	return nil
}

// newTestContext wires a registry, blueprint store and this fake host
// into a Context with neutral (1.0/1.0) efficiency for every army and no
// pathfinder/terrain (commands that need movement use SetGoalDirect-style
// straight lines since pf==nil makes the navigator skip pathfinding).
func newTestContext(host *fakeHost) (*Context, *Registry, *blueprint.Store) {
	reg := NewRegistry()
	store := blueprint.New(host, nil)
	ctx := &Context{Registry: reg, Host: host, Blueprints: store}
	for i := range ctx.Efficiency {
		ctx.Efficiency[i] = Efficiency{Mass: 1, Energy: 1}
	}
	return ctx, reg, store
}
