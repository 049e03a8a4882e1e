package entity

// StartEnhance begins an upgrade-in-place; slot carries the enhancement's
// name, and only its BuildTime is read from the blueprint's
// Enhancements.<name> sub-table. No mass or energy cost is read.
func (u *Unit) StartEnhance(ctx *Context, slot string) bool {
	bp, ok := ctx.Blueprints.Find(u.BlueprintID)
	if !ok {
		return false
	}
	buildTime, _ := ctx.Host.GetNumberField(bp.Handle, "Enhancements."+slot+".BuildTime")
	if buildTime <= 0 {
		return false
	}
	u.enhance.name = slot
	u.enhance.buildTime = buildTime
	u.Busy = true
	u.WorkProgress = 0
	ctx.Host.OnWorkBegin(u.ScriptHandle, "Enhance")
	return true
}

// ProgressEnhance advances the upgrade by dt*build_rate/build_time scaled
// by efficiency. Returns true once complete.
func (u *Unit) ProgressEnhance(ctx *Context, dt float64) bool {
	if u.enhance.buildTime <= 0 {
		return false
	}
	eff := ctx.EfficiencyFor(u.Army).Combined()
	rate := float64(u.BuildRate) / u.enhance.buildTime
	u.WorkProgress += float32(rate * dt * float64(eff))
	if u.WorkProgress >= 1 {
		u.FinishEnhance(ctx)
		return true
	}
	return false
}

// FinishEnhance reads the Enhancements.<name>.Slot field to key the
// enhancement by its equipment slot (not its name), matching the
// original's finish_enhance, then fires OnWorkEnd.
func (u *Unit) FinishEnhance(ctx *Context) {
	name := u.enhance.name
	handle := u.ScriptHandle
	bp, ok := ctx.Blueprints.Find(u.BlueprintID)
	slot := name
	if ok {
		if s, found := ctx.Host.GetStringField(bp.Handle, "Enhancements."+name+".Slot"); found && s != "" {
			slot = s
		}
	}
	u.Enhancements[slot] = name
	u.enhance.name = ""
	u.enhance.buildTime = 0
	u.WorkProgress = 0
	u.Busy = false
	ctx.Host.OnWorkEnd(handle, "Enhance")
}

// CancelEnhance aborts an in-progress upgrade with no credit given.
func (u *Unit) CancelEnhance(ctx *Context) {
	handle := u.ScriptHandle
	u.enhance.name = ""
	u.enhance.buildTime = 0
	u.WorkProgress = 0
	u.Busy = false
	ctx.Host.OnWorkFail(handle, "Enhance")
}
