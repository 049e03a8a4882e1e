package entity

import "github.com/osc-sim/simcore/internal/spatial"

// CommandType enumerates the orders a unit's command queue can carry.
// Values follow the original's numbering where it matters for log
// parity; gaps are deliberate.
type CommandType int

const (
	CommandStop            CommandType = 1
	CommandMove            CommandType = 2
	CommandAttack          CommandType = 10
	CommandGuard           CommandType = 15
	CommandPatrol          CommandType = 16
	CommandBuildMobile     CommandType = 20
	CommandBuildFactory    CommandType = 21
	CommandReclaim         CommandType = 25
	CommandUpgrade         CommandType = 26
	CommandRepair          CommandType = 27
	CommandCapture         CommandType = 28
	CommandDive            CommandType = 29
	CommandEnhance         CommandType = 30
	CommandTransportLoad   CommandType = 31
	CommandTransportUnload CommandType = 32
)

// UnitCommand is a single queued order.
type UnitCommand struct {
	Type           CommandType
	TargetPosition spatial.Vector3
	TargetEntityID uint32
	// BlueprintID carries the build/enhancement id for Build* and
	// Enhance commands; empty otherwise.
	BlueprintID string
	// CommandID tags a command issued by a platoon-level move order so
	// army.Brain.IsCommandsActive can report whether any unit in the
	// platoon still carries it. Zero means untracked.
	CommandID uint64
}

// HasCommandID reports whether any queued command still carries id,
// used by army.Brain to answer IsCommandsActive.
func (u *Unit) HasCommandID(id uint64) bool {
	if id == 0 {
		return false
	}
	for _, cmd := range u.CommandQueue {
		if cmd.CommandID == id {
			return true
		}
	}
	return false
}

// PushCommand appends (or, if clearExisting, replaces) the command queue.
// Clearing also aborts any in-flight navigation, matching the original's
// push_command behaviour of not leaving a stale move goal behind a fresh
// order.
func (u *Unit) PushCommand(cmd UnitCommand, clearExisting bool) {
	if clearExisting {
		u.ClearCommands()
	}
	u.CommandQueue = append(u.CommandQueue, cmd)
}

// ClearCommands empties the queue and aborts any active navigation.
func (u *Unit) ClearCommands() {
	u.CommandQueue = nil
	u.Navigator.AbortMove()
}
