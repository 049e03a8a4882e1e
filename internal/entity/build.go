package entity

import "github.com/osc-sim/simcore/internal/blueprint"

// buildEconomy reads a blueprint's Economy.BuildTime/BuildCostMass/
// BuildCostEnergy fields through the script host. Dotted field names are
// this module's convention for reaching a nested Lua sub-table through
// the flat GetNumberField boundary (script.Host never exposes table
// structure directly).
func buildEconomy(ctx *Context, bp *blueprint.Entry) (buildTime, costMass, costEnergy float64) {
	buildTime, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.BuildTime")
	costMass, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.BuildCostMass")
	costEnergy, _ = ctx.Host.GetNumberField(bp.Handle, "Economy.BuildCostEnergy")
	if buildTime <= 0 {
		buildTime = 1
	}
	return buildTime, costMass, costEnergy
}

// StartBuild begins constructing a new unit of blueprintID, or assisting
// an existing under-construction target if targetID already names one.
// Mirrors unit.cpp's start_build: the builder always drives its own
// fraction-based cost stream; a target that is already fully built fails
// the order immediately via OnFailedToBuild.
func (u *Unit) StartBuild(ctx *Context, blueprintID string, targetID uint32) {
	if target, ok := ctx.Registry.FindUnit(targetID); ok {
		if target.FractionComplete >= 1 {
			ctx.Host.OnFailedToBuild(u.ScriptHandle)
			return
		}
		bp, ok := ctx.Blueprints.Find(target.BlueprintID)
		if !ok {
			ctx.Host.OnFailedToBuild(u.ScriptHandle)
			return
		}
		buildTime, costMass, costEnergy := buildEconomy(ctx, bp)
		u.build = buildState{targetID: targetID, buildTime: buildTime, costMass: costMass, costEnergy: costEnergy}
		u.Busy = true
		ctx.Host.OnStartBuild(u.ScriptHandle, target.ScriptHandle, "")
		return
	}

	bp, ok := ctx.Blueprints.Find(blueprintID)
	if !ok {
		ctx.Host.OnFailedToBuild(u.ScriptHandle)
		return
	}
	buildTime, costMass, costEnergy := buildEconomy(ctx, bp)

	nu := NewUnit()
	nu.BlueprintID = bp.ID
	nu.Army = u.Army
	nu.Position = u.Position
	nu.FractionComplete = 0
	nu.Health = 1
	nu.MaxHealth = 1
	nu.IsBeingBuilt = true
	id := ctx.Registry.Register(nu)
	if handle, err := ctx.Host.CreateEntityProxy(id); err == nil {
		nu.ScriptHandle = handle
	}

	u.build = buildState{targetID: id, buildTime: buildTime, costMass: costMass, costEnergy: costEnergy}
	u.Busy = true
	ctx.Host.OnStartBuild(u.ScriptHandle, nu.ScriptHandle, blueprintID)
	ctx.Host.OnStartBeingBuilt(nu.ScriptHandle, u.ScriptHandle, string(u.Layer))
}

// ProgressBuild advances one tick of construction, draining mass/energy
// scaled by the tick's economy efficiency and the builder's build rate.
// Returns true once the target reaches full completion.
func (u *Unit) ProgressBuild(ctx *Context, dt float64) bool {
	targetID := u.build.targetID
	target, ok := ctx.Registry.FindUnit(targetID)
	if !ok {
		ctx.Host.OnFailedToBuild(u.ScriptHandle)
		u.StopBuild(ctx)
		return false
	}

	eff := ctx.EfficiencyFor(u.Army).Combined()
	rate := float64(u.BuildRate) * float64(eff) / u.build.buildTime

	u.Economy.ConsumptionMass = u.build.costMass * rate
	u.Economy.ConsumptionEnergy = u.build.costEnergy * rate
	u.Economy.ConsumptionActive = true

	delta := float32(rate * dt)
	target.FractionComplete += delta
	if target.FractionComplete >= 1 {
		target.FractionComplete = 1
		target.Health = target.MaxHealth
		target.IsBeingBuilt = false
		u.FinishBuild(ctx, target)
		return true
	}
	target.Health = target.MaxHealth * target.FractionComplete
	return false
}

// FinishBuild fires the completion callback chain, zeroing work state
// first since either callback may destroy the builder or the target. A
// completed STRUCTURE with a non-zero footprint is marked as a
// pathfinding obstacle once the target is confirmed to have survived
// OnStopBeingBuilt.
func (u *Unit) FinishBuild(ctx *Context, target *Unit) {
	builderHandle := u.ScriptHandle
	targetHandle := target.ScriptHandle
	targetID := target.EntityID
	targetLayer := target.Layer
	u.StopBuild(ctx)

	ctx.Host.OnStopBeingBuilt(targetHandle, builderHandle, string(targetLayer))

	target, ok := ctx.Registry.FindUnit(targetID)
	if ok && ctx.Grid != nil && target.FootprintX > 0 && target.FootprintZ > 0 {
		if bp, ok := ctx.Blueprints.Find(target.BlueprintID); ok && bp.MatchesCategory("STRUCTURE") {
			ctx.Grid.MarkObstacle(target.Position.X, target.Position.Z, float32(target.FootprintX), float32(target.FootprintZ))
		}
	}

	ctx.Host.OnStopBuild(builderHandle, targetHandle)
}

// StopBuild clears build work-state without invoking any callback, used
// both on completion (after the chain fires) and on cancellation.
func (u *Unit) StopBuild(ctx *Context) {
	u.build = buildState{}
	u.Busy = false
	u.Economy.ConsumptionActive = false
	u.Economy.ConsumptionMass = 0
	u.Economy.ConsumptionEnergy = 0
}
