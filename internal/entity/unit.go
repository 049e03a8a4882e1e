package entity

import (
	"github.com/osc-sim/simcore/internal/navigator"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/spatial"
)

// Layer mirrors pathing.Layer without importing it, so this package
// doesn't need to depend on pathing just to name the five movement
// domains a unit can occupy; unit.Layer values round-trip into pathing
// calls as strings at the navigator/pathfinder boundary.
type Layer string

const (
	LayerLand   Layer = "Land"
	LayerWater  Layer = "Water"
	LayerSub    Layer = "Sub"
	LayerSeabed Layer = "Seabed"
	LayerAir    Layer = "Air"
)

// Economy is a unit's contribution to (or drain on) its army's resource
// pool, aggregated every tick by army.UpdateEconomy.
type Economy struct {
	ProductionMass    float64
	ProductionEnergy  float64
	ConsumptionMass   float64
	ConsumptionEnergy float64
	StorageMass       float64
	StorageEnergy     float64

	ProductionActive  bool
	ConsumptionActive bool
	MaintenanceActive bool
}

// IntelState is the enabled/radius pair tracked per intel type (vision,
// radar, sonar, omni).
type IntelState struct {
	Radius  float32
	Enabled bool
}

// buildState holds the target and cost data of a build or a repair (the
// Unit's build and repair fields); reclaim, capture and enhance keep their
// own state blocks.
type buildState struct {
	targetID  uint32
	buildTime float64
	costMass  float64
	costEnergy float64
}

// Unit is a controllable simulated object: a mobile or stationary entity
// with commands, an economy footprint, weapons and optional cargo.
type Unit struct {
	Base

	UnitID      string
	Layer       Layer
	MaxSpeed    float32
	BuildRate   float32
	Categories  map[string]struct{}
	FootprintX  uint32
	FootprintZ  uint32

	Navigator navigator.Navigator
	Economy   Economy
	Weapons   []*Weapon

	CommandQueue []UnitCommand

	IsBeingBuilt bool

	build   buildState
	reclaim struct {
		targetID uint32
		rate     float64
	}
	repair  buildState
	capture struct {
		targetID     uint32
		captureTime  float64
		energyCost   float64
		originalArmy int32
	}
	enhance struct {
		name      string
		buildTime float64
	}

	WorkProgress float32

	TransportID      uint32
	CargoIDs         []uint32
	TransportCapacity int32

	IntelStates map[string]IntelState

	RallyPoint    spatial.Vector3
	HasRallyPoint bool

	Enhancements map[string]string

	Busy               bool
	BlockCommandQueue  bool
	FireState          FireState

	Capturable bool
}

var _ Entity = (*Unit)(nil)

func (u *Unit) ID() uint32  { return u.EntityID }
func (u *Unit) Kind() Kind  { return KindUnit }
func (u *Unit) Info() *Base { return &u.Base }

// unitMover adapts *Unit to navigator.Mover without naming its own
// Position/SetPosition methods, which would shadow the embedded Base.Position
// field that the rest of this package reads and writes directly.
type unitMover struct{ u *Unit }

func (m unitMover) Position() spatial.Vector3     { return m.u.Base.Position }
func (m unitMover) SetPosition(p spatial.Vector3) { m.u.Base.Position = p }

// NewUnit returns a unit with the original's field defaults: Land layer,
// build rate 1, return-fire stance, capturable by default.
func NewUnit() *Unit {
	return &Unit{
		Base:        NewBase(),
		Layer:       LayerLand,
		BuildRate:   1,
		Categories:  make(map[string]struct{}),
		IntelStates: make(map[string]IntelState),
		Enhancements: make(map[string]string),
		FireState:   FireStateReturnFire,
		Capturable:  true,
	}
}

func (u *Unit) HasCategory(name string) bool {
	_, ok := u.Categories[name]
	return ok
}

func (u *Unit) AddCategory(name string) { u.Categories[name] = struct{}{} }

// AddWeapon appends a weapon slot, assigning it the next index.
func (u *Unit) AddWeapon(w *Weapon) {
	w.WeaponIndex = len(u.Weapons)
	u.Weapons = append(u.Weapons, w)
}

func (u *Unit) AddCargo(id uint32) { u.CargoIDs = append(u.CargoIDs, id) }

func (u *Unit) RemoveCargo(id uint32) {
	out := u.CargoIDs[:0]
	for _, c := range u.CargoIDs {
		if c != id {
			out = append(out, c)
		}
	}
	u.CargoIDs = out
}

func (u *Unit) HasEnhancement(name string) bool {
	for _, v := range u.Enhancements {
		if v == name {
			return true
		}
	}
	return false
}

// SetLayerWithCallback changes layer and notifies the VM, used by the
// Dive command to toggle between Water and Sub/Seabed.
func (u *Unit) SetLayerWithCallback(newLayer Layer, host script.Host) {
	old := u.Layer
	u.Layer = newLayer
	if u.ScriptHandle != script.NoHandle {
		host.OnLayerChange(u.ScriptHandle, string(newLayer), string(old))
	}
}
