package entity

import "github.com/osc-sim/simcore/internal/script"

// StartCapture begins capturing targetID. capture_time is half the
// target's normal build time, consuming energy only (no mass), and the
// target must allow capture and belong to an army other than this unit's.
// Alliances are not checked, so a target from an allied army is
// accepted. Fires the
// Start/StartBeingCaptured pair and re-validates both parties by id
// afterward since either callback may destroy them.
func (u *Unit) StartCapture(ctx *Context, targetID uint32) bool {
	target, ok := ctx.Registry.FindUnit(targetID)
	if !ok || !target.Capturable || target.Army == u.Army {
		return false
	}
	bp, ok := ctx.Blueprints.Find(target.BlueprintID)
	if !ok {
		return false
	}
	buildTime, _, costEnergy := buildEconomy(ctx, bp)
	captureTime := buildTime / float64(u.BuildRate) / 2

	u.capture.targetID = targetID
	u.capture.captureTime = captureTime
	u.capture.energyCost = costEnergy
	u.capture.originalArmy = target.Army
	u.Busy = true

	capturerHandle, targetHandle := u.ScriptHandle, target.ScriptHandle
	ctx.Host.OnStartCapture(capturerHandle, targetHandle)
	if _, ok := ctx.Registry.FindUnit(u.EntityID); !ok {
		return true
	}
	if _, ok := ctx.Registry.FindUnit(targetID); !ok {
		u.StopCapturing(ctx, false)
		return true
	}
	ctx.Host.OnStartBeingCaptured(targetHandle, capturerHandle)
	return true
}

// ProgressCapture advances capture progress by dt/capture_time,
// consuming energy proportionally. Returns true once complete.
func (u *Unit) ProgressCapture(ctx *Context, dt float64) bool {
	target, ok := ctx.Registry.FindUnit(u.capture.targetID)
	if !ok {
		u.StopCapturing(ctx, false)
		return false
	}

	eff := ctx.EfficiencyFor(u.Army).Combined()
	rate := 1 / u.capture.captureTime
	u.Economy.ConsumptionEnergy = u.capture.energyCost * rate * float64(eff)
	u.Economy.ConsumptionActive = true

	u.WorkProgress += float32(rate * dt * float64(eff))
	if u.WorkProgress >= 1 {
		u.finishCapture(ctx, target)
		return true
	}
	return false
}

// finishCapture fires the Stop/Captured callback chain, zeroing work
// state first per the re-entrancy contract, then falls back to a direct
// army transfer if OnCaptured didn't already reassign the target's army
// (matching the original's C++-side safety net for scripts that forget
// to do it themselves).
func (u *Unit) finishCapture(ctx *Context, target *Unit) {
	capturerHandle, targetHandle := u.ScriptHandle, target.ScriptHandle
	capturerArmy := u.Army
	originalArmy := u.capture.originalArmy
	targetID := target.EntityID
	u.StopCapturing(ctx, false)

	ctx.Host.OnStopCapture(capturerHandle, targetHandle)
	if _, ok := ctx.Registry.FindUnit(targetID); !ok {
		return
	}
	ctx.Host.OnStopBeingCaptured(targetHandle, capturerHandle)

	target, ok := ctx.Registry.FindUnit(targetID)
	if !ok {
		return
	}
	ctx.Host.OnCaptured(targetHandle, capturerHandle)

	target, ok = ctx.Registry.FindUnit(targetID)
	if !ok {
		return
	}
	if target.Army == originalArmy {
		target.Army = capturerArmy
	}
}

// FailCapture aborts an in-progress capture, e.g. because the target left
// capture range or the capturer was reassigned a new order.
func (u *Unit) FailCapture(ctx *Context) {
	target, ok := ctx.Registry.FindUnit(u.capture.targetID)
	capturerHandle := u.ScriptHandle
	var targetHandle script.Handle
	if ok {
		targetHandle = target.ScriptHandle
	}
	u.StopCapturing(ctx, false)
	ctx.Host.OnFailedCapture(capturerHandle, targetHandle)
	if ok {
		ctx.Host.OnFailedBeingCaptured(targetHandle, capturerHandle)
	}
}

// StopCapturing zeroes work state. invokeCallback is accepted for call
// symmetry with the other Stop* methods but capture's callbacks are
// always driven explicitly by finishCapture/FailCapture since the chain
// differs by outcome.
func (u *Unit) StopCapturing(ctx *Context, _ bool) {
	u.capture.targetID = 0
	u.capture.captureTime = 0
	u.capture.energyCost = 0
	u.capture.originalArmy = 0
	u.WorkProgress = 0
	u.Busy = false
	u.Economy.ConsumptionActive = false
	u.Economy.ConsumptionEnergy = 0
}
