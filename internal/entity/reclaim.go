package entity

// reclaimDuration is the total time to fully reclaim a target at a given
// build rate: time_reclaim * max(mass, energy) / build_rate / 10. The /10
// divisor is taken from the single worked example in the reclaim scenario (mass=100,
// build_rate=10, time_reclaim=1 => duration=1s); generalised to use
// whichever of mass/energy is larger so an energy-heavy wreck doesn't
// reclaim instantly.
func reclaimDuration(mass, energy, timeReclaim float64, buildRate float32) float64 {
	largest := mass
	if energy > largest {
		largest = energy
	}
	if buildRate <= 0 {
		buildRate = 1
	}
	return timeReclaim * largest / float64(buildRate) / 10
}

// StartReclaim begins the primary reclaim on targetID: this unit's
// command issuer owns the resulting production rates.
func (u *Unit) StartReclaim(ctx *Context, targetID uint32) {
	target, ok := ctx.Registry.Find(targetID)
	if !ok {
		return
	}
	info := target.Info()
	mass, energy, timeReclaim := reclaimEconomyByBlueprint(ctx, info.BlueprintID)
	duration := reclaimDuration(mass, energy, timeReclaim, u.BuildRate)
	u.reclaim.targetID = targetID
	u.reclaim.rate = 1 / duration
	u.Busy = true

	// Reclaim income is deliberately not scaled by economy efficiency,
	// unlike build/repair/capture/enhance: reclaiming generates
	// resources rather than consuming them, so it is exempt from the
	// back-pressure throttle.
	u.Economy.ProductionMass = mass / duration
	u.Economy.ProductionEnergy = energy / duration
	u.Economy.ProductionActive = true
}

func reclaimEconomyByBlueprint(ctx *Context, blueprintID string) (mass, energy, timeReclaim float64) {
	bp, ok := ctx.Blueprints.Find(blueprintID)
	if !ok {
		return 0, 0, 1
	}
	mass, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.MaxMassReclaim")
	energy, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.MaxEnergyReclaim")
	timeReclaim, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.TimeReclaim")
	if timeReclaim <= 0 {
		timeReclaim = 1
	}
	return mass, energy, timeReclaim
}

// ProgressReclaim decrements the target's fraction_complete as the
// primary reclaimer. Returns true once the target is fully reclaimed.
func (u *Unit) ProgressReclaim(ctx *Context, dt float64) bool {
	target, ok := ctx.Registry.Find(u.reclaim.targetID)
	if !ok {
		u.StopReclaiming(ctx)
		return false
	}
	info := target.Info()
	info.FractionComplete -= float32(u.reclaim.rate * dt)
	if info.FractionComplete <= 0 {
		reclaimerHandle := u.ScriptHandle
		targetHandle := info.ScriptHandle
		u.StopReclaiming(ctx)
		ctx.Host.OnReclaimed(targetHandle, reclaimerHandle)
		info.Destroyed = true
		ctx.Host.ReleaseHandle(targetHandle)
		ctx.Registry.Unregister(target.ID())
		return true
	}
	return false
}

// ProgressReclaimAssist accelerates an in-progress reclaim without
// touching production rates, per the primary/assisting asymmetry: only
// the command issuer's StartReclaim sets Economy.Production*.
func (u *Unit) ProgressReclaimAssist(ctx *Context, primary *Unit, dt float64) {
	if primary.reclaim.targetID == 0 {
		return
	}
	target, ok := ctx.Registry.Find(primary.reclaim.targetID)
	if !ok {
		return
	}
	mass, energy, timeReclaim := reclaimEconomyByBlueprint(ctx, target.Info().BlueprintID)
	assistDuration := reclaimDuration(mass, energy, timeReclaim, u.BuildRate)
	target.Info().FractionComplete -= float32(dt / assistDuration)
}

// StopReclaiming zeroes work state, matching the re-entrancy contract of
// clearing before any callback that might reach back into this unit.
func (u *Unit) StopReclaiming(ctx *Context) {
	u.reclaim.targetID = 0
	u.reclaim.rate = 0
	u.Busy = false
	u.Economy.ProductionActive = false
	u.Economy.ProductionMass = 0
	u.Economy.ProductionEnergy = 0
}
