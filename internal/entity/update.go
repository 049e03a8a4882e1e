package entity

import (
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/spatial"
)

const (
	buildRange     = 6.0
	reclaimRange   = 5.0
	repairRange    = 6.0
	captureRange   = 6.0
	guardRange     = 10.0
	transportRange = 5.0
)

func (l Layer) toPathing() pathing.Layer { return pathing.Layer(l) }

// Update advances one tick of command processing for this unit: cargo
// follows its transport and skips command processing; otherwise the head
// of the command queue is processed per its move-into-range/work/finish
// template. In both cases every weapon then gets a targeting-and-fire
// pass.
func (u *Unit) Update(ctx *Context, dt float64) {
	if u.Destroyed {
		return
	}

	if u.TransportID != 0 {
		if transport, ok := ctx.Registry.FindUnit(u.TransportID); ok {
			u.Position = transport.Position
		} else {
			u.TransportID = 0
		}
	} else if len(u.CommandQueue) > 0 {
		u.processCommand(ctx, dt)
	}

	for _, w := range u.Weapons {
		w.Update(dt, u, ctx.Registry, ctx.Host, ctx.Log)
	}
}

func (u *Unit) navigateTo(ctx *Context, target spatial.Vector3) {
	if u.Navigator.Goal() != target || !u.Navigator.IsMoving() {
		u.Navigator.SetGoal(target, ctx.Pathfinder, u.Position, u.Layer.toPathing(), ctx.Log)
	}
}

func withinRange(a, b spatial.Vector3, r float32) bool {
	return spatial.DistanceXZ2(a, b) <= r*r
}

func (u *Unit) popCommand() UnitCommand {
	cmd := u.CommandQueue[0]
	u.CommandQueue = u.CommandQueue[1:]
	return cmd
}

// processCommand dispatches the head of the queue. Each case is
// responsible for popping itself on completion (or, for sticky commands,
// leaving itself at the head until done).
func (u *Unit) processCommand(ctx *Context, dt float64) {
	cmd := u.CommandQueue[0]

	switch cmd.Type {
	case CommandStop:
		u.Navigator.AbortMove()
		u.popCommand()

	case CommandMove:
		u.navigateTo(ctx, cmd.TargetPosition)
		if !u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain) {
			u.popCommand()
		}

	case CommandAttack:
		u.processAttack(ctx, dt)

	case CommandPatrol:
		u.navigateTo(ctx, cmd.TargetPosition)
		if !u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain) {
			u.popCommand()
			u.CommandQueue = append(u.CommandQueue, cmd)
		}

	case CommandBuildMobile, CommandBuildFactory, CommandUpgrade:
		u.processBuild(ctx, dt, cmd)

	case CommandReclaim:
		u.processReclaim(ctx, dt, cmd)

	case CommandRepair:
		u.processRepair(ctx, dt, cmd)

	case CommandCapture:
		u.processCapture(ctx, dt, cmd)

	case CommandGuard:
		u.processGuard(ctx, dt, cmd)

	case CommandDive:
		u.processDive(ctx)

	case CommandEnhance:
		u.processEnhance(ctx, dt, cmd)

	case CommandTransportLoad:
		u.processTransportLoad(ctx, dt, cmd)

	case CommandTransportUnload:
		u.processTransportUnload(ctx, dt, cmd)

	default:
		u.popCommand()
	}
}

func (u *Unit) processAttack(ctx *Context, dt float64) {
	cmd := u.CommandQueue[0]
	target, ok := ctx.Registry.FindUnit(cmd.TargetEntityID)
	if !ok || target.Army == u.Army {
		u.popCommand()
		u.Navigator.AbortMove()
		return
	}

	bestRange := float32(0)
	for _, w := range u.Weapons {
		if w.MaxRange > bestRange {
			bestRange = w.MaxRange
		}
	}
	if bestRange == 0 {
		u.popCommand()
		return
	}

	if !withinRange(u.Position, target.Position, bestRange) {
		u.navigateTo(ctx, target.Position)
		u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
	} else {
		u.Navigator.AbortMove()
	}

	for _, w := range u.Weapons {
		if w.TargetEntityID == 0 {
			w.TargetEntityID = cmd.TargetEntityID
		}
	}
}

func (u *Unit) processBuild(ctx *Context, dt float64, cmd UnitCommand) {
	if u.build.targetID == 0 {
		if cmd.Type == CommandBuildMobile && !withinRange(u.Position, cmd.TargetPosition, buildRange) {
			u.navigateTo(ctx, cmd.TargetPosition)
			u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
			return
		}
		u.Navigator.AbortMove()
		u.StartBuild(ctx, cmd.BlueprintID, cmd.TargetEntityID)
		if u.build.targetID == 0 {
			u.popCommand()
			return
		}
	}
	if u.ProgressBuild(ctx, dt) {
		u.popCommand()
	}
}

func (u *Unit) processReclaim(ctx *Context, dt float64, cmd UnitCommand) {
	if u.reclaim.targetID == 0 {
		target, ok := ctx.Registry.Find(cmd.TargetEntityID)
		if !ok {
			u.popCommand()
			return
		}
		if !withinRange(u.Position, target.Info().Position, reclaimRange) {
			u.navigateTo(ctx, target.Info().Position)
			u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
			return
		}
		u.Navigator.AbortMove()
		u.StartReclaim(ctx, cmd.TargetEntityID)
	}
	if u.ProgressReclaim(ctx, dt) {
		u.popCommand()
	}
}

func (u *Unit) processRepair(ctx *Context, dt float64, cmd UnitCommand) {
	if u.repair.targetID == 0 {
		target, ok := ctx.Registry.FindUnit(cmd.TargetEntityID)
		if !ok || target.IsBeingBuilt || target.Health >= target.MaxHealth {
			u.popCommand()
			return
		}
		if !withinRange(u.Position, target.Position, repairRange) {
			u.navigateTo(ctx, target.Position)
			u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
			return
		}
		u.Navigator.AbortMove()
		if !u.StartRepair(ctx, cmd.TargetEntityID) {
			u.popCommand()
			return
		}
	}
	if u.ProgressRepair(ctx, dt) {
		u.popCommand()
	}
}

func (u *Unit) processCapture(ctx *Context, dt float64, cmd UnitCommand) {
	if u.capture.targetID == 0 {
		target, ok := ctx.Registry.FindUnit(cmd.TargetEntityID)
		if !ok || target.Army == u.Army || target.IsBeingBuilt || !target.Capturable {
			u.popCommand()
			return
		}
		if !withinRange(u.Position, target.Position, captureRange) {
			u.navigateTo(ctx, target.Position)
			u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
			return
		}
		u.Navigator.AbortMove()
		if !u.StartCapture(ctx, cmd.TargetEntityID) {
			u.popCommand()
			return
		}
	}
	if u.ProgressCapture(ctx, dt) {
		u.popCommand()
	}
}

// processGuard keeps station near the target and mirrors its active
// work: assisting a build, assisting a reclaim, or auto-repairing it.
// Sticky until explicitly cleared.
func (u *Unit) processGuard(ctx *Context, dt float64, cmd UnitCommand) {
	target, ok := ctx.Registry.FindUnit(cmd.TargetEntityID)
	if !ok {
		u.popCommand()
		return
	}
	if !withinRange(u.Position, target.Position, guardRange) {
		u.navigateTo(ctx, target.Position)
		u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
		return
	}
	u.Navigator.AbortMove()

	switch {
	case target.build.targetID != 0:
		u.ProgressBuildAssist(ctx, target, dt)
	case target.reclaim.targetID != 0:
		u.ProgressReclaimAssist(ctx, target, dt)
	case target.Health < target.MaxHealth && !target.IsBeingBuilt:
		if u.repair.targetID != target.EntityID {
			u.StartRepair(ctx, target.EntityID)
		}
		if u.repair.targetID == target.EntityID {
			u.ProgressRepair(ctx, dt)
		}
	}
}

// ProgressBuildAssist contributes build rate to the primary builder's
// active target and carries its own consumption — unlike reclaim-assist,
// the original credits build assisters' resource drain individually, so
// this unit runs its own ProgressBuild against the shared target.
func (u *Unit) ProgressBuildAssist(ctx *Context, primary *Unit, dt float64) {
	if primary.build.targetID == 0 {
		return
	}
	if u.build.targetID != primary.build.targetID {
		target, ok := ctx.Registry.FindUnit(primary.build.targetID)
		if !ok {
			return
		}
		bp, ok := ctx.Blueprints.Find(target.BlueprintID)
		if !ok {
			return
		}
		buildTime, costMass, costEnergy := buildEconomy(ctx, bp)
		u.build = buildState{targetID: primary.build.targetID, buildTime: buildTime, costMass: costMass, costEnergy: costEnergy}
	}
	u.ProgressBuild(ctx, dt)
}

func (u *Unit) processDive(ctx *Context) {
	switch u.Layer {
	case LayerWater:
		u.SetLayerWithCallback(LayerSub, ctx.Host)
	case LayerSub, LayerSeabed:
		u.SetLayerWithCallback(LayerWater, ctx.Host)
	}
	u.popCommand()
}

func (u *Unit) processEnhance(ctx *Context, dt float64, cmd UnitCommand) {
	if u.enhance.name == "" {
		if !u.StartEnhance(ctx, cmd.BlueprintID) {
			u.popCommand()
			return
		}
	}
	if u.ProgressEnhance(ctx, dt) {
		u.popCommand()
	}
}

func (u *Unit) processTransportLoad(ctx *Context, dt float64, cmd UnitCommand) {
	transport, ok := ctx.Registry.FindUnit(cmd.TargetEntityID)
	if !ok {
		u.popCommand()
		return
	}
	if !withinRange(u.Position, transport.Position, transportRange) {
		u.navigateTo(ctx, transport.Position)
		u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
		return
	}
	u.Navigator.AbortMove()
	transport.AttachToTransport(ctx, u.EntityID)
	u.popCommand()
}

func (u *Unit) processTransportUnload(ctx *Context, dt float64, cmd UnitCommand) {
	if !withinRange(u.Position, cmd.TargetPosition, transportRange) {
		u.navigateTo(ctx, cmd.TargetPosition)
		u.Navigator.Update(unitMover{u}, u.MaxSpeed, dt, ctx.Terrain)
		return
	}
	u.Navigator.AbortMove()
	u.DetachAllCargo(ctx)
	u.popCommand()
}
