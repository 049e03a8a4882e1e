package entity

// StartRepair begins healing targetID, using the same Economy.BuildTime/
// BuildCostMass/BuildCostEnergy fields a fresh build would, since repair
// is a construction-rate activity against an already-complete unit.
func (u *Unit) StartRepair(ctx *Context, targetID uint32) bool {
	target, ok := ctx.Registry.FindUnit(targetID)
	if !ok || target.Health >= target.MaxHealth {
		return false
	}
	bp, ok := ctx.Blueprints.Find(target.BlueprintID)
	if !ok {
		return false
	}
	buildTime, costMass, costEnergy := buildEconomy(ctx, bp)
	u.repair = buildState{targetID: targetID, buildTime: buildTime, costMass: costMass, costEnergy: costEnergy}
	u.Busy = true
	ctx.Host.OnWorkBegin(u.ScriptHandle, "Repair")
	return true
}

// ProgressRepair heals the target by heal_rate*max_health*dt*efficiency,
// where heal_rate = build_rate/build_time, consuming resources at the
// same proportional rate a build would. Returns true once full health is
// restored.
func (u *Unit) ProgressRepair(ctx *Context, dt float64) bool {
	target, ok := ctx.Registry.FindUnit(u.repair.targetID)
	if !ok {
		u.StopRepairing(ctx)
		return false
	}

	eff := ctx.EfficiencyFor(u.Army).Combined()
	healRate := float64(u.BuildRate) / u.repair.buildTime
	healAmount := float32(healRate * float64(target.MaxHealth) * dt * float64(eff))

	u.Economy.ConsumptionMass = u.repair.costMass * healRate * float64(eff)
	u.Economy.ConsumptionEnergy = u.repair.costEnergy * healRate * float64(eff)
	u.Economy.ConsumptionActive = true

	target.Health += healAmount
	if target.Health >= target.MaxHealth {
		target.Health = target.MaxHealth
		u.StopRepairing(ctx)
		ctx.Host.OnWorkEnd(u.ScriptHandle, "Repair")
		return true
	}
	return false
}

// StopRepairing zeroes work state without invoking a callback.
func (u *Unit) StopRepairing(ctx *Context) {
	u.repair = buildState{}
	u.Busy = false
	u.Economy.ConsumptionActive = false
	u.Economy.ConsumptionMass = 0
	u.Economy.ConsumptionEnergy = 0
}
