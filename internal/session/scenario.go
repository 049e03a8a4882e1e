package session

import (
	"fmt"
	"log/slog"

	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/config"
	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/sim"
	"github.com/osc-sim/simcore/internal/simerr"
	"github.com/osc-sim/simcore/internal/spatial"
)

// scenario is one diagnostic test flag's self-contained run: construct
// entities, issue commands, tick, assert, and return a short report line
// for the caller to log. Grounded on original_source/src/main.cpp, which
// drives the equivalent scenarios through Lua `do_string` calls against a
// real VM — here the scenario talks to the entity/army API directly,
// since DiagHost stands in for the VM.
type scenario func(state *sim.State, host *DiagHost, log *slog.Logger) (string, error)

// RunDiagnostics runs every diagnostic test flag set in cfg against state,
// in the fixed order the original's main.cpp runs them. host must be the
// same DiagHost the session was booted with. The first scenario to fail
// its assertions aborts the remaining ones and returns its error.
func RunDiagnostics(cfg *config.Config, state *sim.State, host *DiagHost, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	host.bind(state.Registry)

	steps := []struct {
		name string
		on   bool
		run  scenario
	}{
		{"damage-test", cfg.DamageTest, runDamageTest},
		{"move-test", cfg.MoveTest, runMoveTest},
		{"build-test", cfg.BuildTest, runBuildTest},
		{"chain-test", cfg.ChainTest, runChainTest},
		{"ai-test", cfg.AITest, runAITest},
		{"reclaim-test", cfg.ReclaimTest, runReclaimTest},
		{"platoon-test", cfg.PlatoonTest, runPlatoonTest},
		{"threat-test", cfg.ThreatTest, runThreatTest},
		{"combat-test", cfg.CombatTest, runCombatTest},
		{"fire-test", cfg.FireTest, runFireTest},
		{"economy-test", cfg.EconomyTest, runEconomyTest},
	}

	for _, s := range steps {
		if !s.on {
			continue
		}
		log.Info("diagnostic scenario starting", "scenario", s.name)
		report, err := s.run(state, host, log)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		log.Info("diagnostic scenario passed", "scenario", s.name, "report", report)
	}
	return nil
}

// --- scenario construction helpers ---

func spawnUnit(state *sim.State, army int32, pos spatial.Vector3, blueprintID string) *entity.Unit {
	u := entity.NewUnit()
	u.Army = army
	u.Position = pos
	u.BlueprintID = blueprintID
	u.Health = 500
	u.MaxHealth = 500
	state.Registry.Register(u)
	return u
}

// proxyUnit pins u behind a DiagHost handle, the way StartBuild/weapon
// firing do for real, so host.Damage/DamageArea can find it.
func proxyUnit(host *DiagHost, u *entity.Unit) {
	handle, _ := host.CreateEntityProxy(u.EntityID)
	u.ScriptHandle = handle
}

// registerBlueprint pins a synthetic field table behind a handle and
// registers it in state.Blueprints, standing in for what a real VM-backed
// blueprint load would do.
func registerBlueprint(state *sim.State, host *DiagHost, t blueprint.Type, id, categories string, fields map[string]any) error {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["BlueprintId"] = id
	if categories != "" {
		fields["Categories"] = categories
	}
	handle, _ := host.RegisterBlueprintTable(fields)
	_, err := state.Blueprints.Register(t, id, handle)
	return err
}

// tickUntil ticks state until done reports true or maxTicks is reached,
// returning whether done ever became true.
func tickUntil(state *sim.State, maxTicks int, done func() bool) bool {
	if done() {
		return true
	}
	for i := 0; i < maxTicks; i++ {
		state.Tick()
		if done() {
			return true
		}
	}
	return false
}

func findUnitByBlueprint(state *sim.State, blueprintID string) (*entity.Unit, bool) {
	var found *entity.Unit
	state.Registry.ForEach(func(e entity.Entity) {
		if found != nil {
			return
		}
		if u, ok := e.(*entity.Unit); ok && !u.Destroyed && u.BlueprintID == blueprintID {
			found = u
		}
	})
	return found, found != nil
}

// --- scenarios ---

// runDamageTest mirrors main.cpp's damage test: deal lethal damage to a
// live unit and run a handful more ticks to confirm it stays destroyed.
func runDamageTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	u := spawnUnit(state, 0, spatial.Vector3{}, "diag_damage_target")
	proxyUnit(host, u)
	log.Info("dealing lethal damage", "entity", u.EntityID, "health", u.Health, "max_health", u.MaxHealth)

	if err := host.Damage(script.NoHandle, u.ScriptHandle, 99999, "Normal"); err != nil {
		return "", fmt.Errorf("apply damage: %w", err)
	}
	state.Run(10)

	if _, ok := state.Registry.FindUnit(u.EntityID); ok {
		return "", fmt.Errorf("entity %d survived lethal damage: %w", u.EntityID, simerr.ErrInvariant)
	}
	return fmt.Sprintf("entity %d destroyed by lethal damage", u.EntityID), nil
}

// runMoveTest mirrors main.cpp's move test: issue a long-distance move
// and confirm the unit actually arrives.
func runMoveTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	u := spawnUnit(state, 0, spatial.Vector3{}, "diag_move_target")
	u.MaxSpeed = 5
	dest := spatial.Vector3{X: 50, Z: 50}
	u.PushCommand(entity.UnitCommand{Type: entity.CommandMove, TargetPosition: dest}, true)
	log.Info("issuing move order", "entity", u.EntityID, "from", u.Position, "to", dest)

	state.Run(200)

	dist := spatial.DistanceXZ(u.Position, dest)
	if dist > 2 {
		return "", fmt.Errorf("entity %d stopped %.1f units short of (%.0f,%.0f): %w", u.EntityID, dist, dest.X, dest.Z, simerr.ErrInvariant)
	}
	return fmt.Sprintf("entity %d arrived within %.2f units of (%.0f,%.0f)", u.EntityID, dist, dest.X, dest.Z), nil
}

// runBuildTest mirrors main.cpp's build test: have a commander build a
// single structure near itself and confirm it completes.
func runBuildTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	const pgenID = "diag_build_pgen"
	if err := registerBlueprint(state, host, blueprint.TypeUnit, pgenID, "STRUCTURE ENERGY", map[string]any{
		"Economy.BuildTime":      2.0,
		"Economy.BuildCostMass":  200.0,
		"Economy.BuildCostEnergy": 500.0,
	}); err != nil {
		return "", fmt.Errorf("register blueprint: %w", err)
	}

	acu := spawnUnit(state, 0, spatial.Vector3{}, "diag_build_acu")
	acu.PushCommand(entity.UnitCommand{Type: entity.CommandBuildMobile, TargetPosition: acu.Position, BlueprintID: pgenID}, true)
	log.Info("issuing build order", "builder", acu.EntityID, "blueprint", pgenID)

	if !tickUntil(state, 60, func() bool {
		u, ok := findUnitByBlueprint(state, pgenID)
		return ok && u.FractionComplete >= 1
	}) {
		return "", fmt.Errorf("%s never completed construction: %w", pgenID, simerr.ErrInvariant)
	}
	pgen, _ := findUnitByBlueprint(state, pgenID)
	return fmt.Sprintf("entity %d (%s) completed construction, health=%.0f/%.0f", pgen.EntityID, pgenID, pgen.Health, pgen.MaxHealth), nil
}

// runChainTest mirrors main.cpp's chain test: ACU builds a factory, the
// factory builds an engineer, the engineer builds a power generator.
func runChainTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	const (
		factoryID  = "diag_chain_factory"
		engineerID = "diag_chain_engineer"
		pgenID     = "diag_chain_pgen"
	)
	stages := []struct{ id, categories string }{
		{factoryID, "STRUCTURE FACTORY"},
		{engineerID, "MOBILE ENGINEER"},
		{pgenID, "STRUCTURE ENERGY"},
	}
	for _, s := range stages {
		if err := registerBlueprint(state, host, blueprint.TypeUnit, s.id, s.categories, map[string]any{
			"Economy.BuildTime":      2.0,
			"Economy.BuildCostMass":  100.0,
			"Economy.BuildCostEnergy": 100.0,
		}); err != nil {
			return "", fmt.Errorf("register blueprint %s: %w", s.id, err)
		}
	}

	acu := spawnUnit(state, 0, spatial.Vector3{}, "diag_chain_acu")
	acu.PushCommand(entity.UnitCommand{Type: entity.CommandBuildFactory, TargetPosition: acu.Position, BlueprintID: factoryID}, true)
	log.Info("chain test: ACU building factory", "builder", acu.EntityID)
	if !tickUntil(state, 60, func() bool {
		u, ok := findUnitByBlueprint(state, factoryID)
		return ok && u.FractionComplete >= 1
	}) {
		return "", fmt.Errorf("%s never completed: %w", factoryID, simerr.ErrInvariant)
	}
	factory, _ := findUnitByBlueprint(state, factoryID)

	factory.PushCommand(entity.UnitCommand{Type: entity.CommandBuildMobile, TargetPosition: factory.Position, BlueprintID: engineerID}, true)
	log.Info("chain test: factory building engineer", "builder", factory.EntityID)
	if !tickUntil(state, 60, func() bool {
		u, ok := findUnitByBlueprint(state, engineerID)
		return ok && u.FractionComplete >= 1
	}) {
		return "", fmt.Errorf("%s never completed: %w", engineerID, simerr.ErrInvariant)
	}
	engineer, _ := findUnitByBlueprint(state, engineerID)

	engineer.PushCommand(entity.UnitCommand{Type: entity.CommandBuildMobile, TargetPosition: engineer.Position, BlueprintID: pgenID}, true)
	log.Info("chain test: engineer building power generator", "builder", engineer.EntityID)
	if !tickUntil(state, 60, func() bool {
		u, ok := findUnitByBlueprint(state, pgenID)
		return ok && u.FractionComplete >= 1
	}) {
		return "", fmt.Errorf("%s never completed: %w", pgenID, simerr.ErrInvariant)
	}

	count := 0
	state.Registry.ForEach(func(entity.Entity) { count++ })
	return fmt.Sprintf("build chain ACU->factory->engineer->pgen completed, %d entities total", count), nil
}

// runAITest mirrors main.cpp's AI test, trimmed to its core claim: an
// AI-controlled army (seat 1) completes a structure with one engineer
// guard-assisting the builder.
func runAITest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	const pgenID = "diag_ai_pgen"
	if err := registerBlueprint(state, host, blueprint.TypeUnit, pgenID, "STRUCTURE ENERGY", map[string]any{
		"Economy.BuildTime":      4.0,
		"Economy.BuildCostMass":  200.0,
		"Economy.BuildCostEnergy": 500.0,
	}); err != nil {
		return "", fmt.Errorf("register blueprint: %w", err)
	}

	builder := spawnUnit(state, 1, spatial.Vector3{}, "diag_ai_builder")
	guard := spawnUnit(state, 1, spatial.Vector3{X: 3}, "diag_ai_guard")

	builder.PushCommand(entity.UnitCommand{Type: entity.CommandBuildMobile, TargetPosition: builder.Position, BlueprintID: pgenID}, true)
	guard.PushCommand(entity.UnitCommand{Type: entity.CommandGuard, TargetEntityID: builder.EntityID}, true)
	log.Info("ai test: ARMY_2 engineer pair building and guarding", "builder", builder.EntityID, "guard", guard.EntityID)

	if !tickUntil(state, 80, func() bool {
		u, ok := findUnitByBlueprint(state, pgenID)
		return ok && u.FractionComplete >= 1
	}) {
		return "", fmt.Errorf("ARMY_2 never completed its power generator: %w", simerr.ErrInvariant)
	}
	if dist := spatial.DistanceXZ(guard.Position, builder.Position); dist > 12 {
		return "", fmt.Errorf("guard unit %d strayed %.1f units from its charge: %w", guard.EntityID, dist, simerr.ErrInvariant)
	}
	return fmt.Sprintf("ARMY_2 completed its power generator with guard assist from entity %d", guard.EntityID), nil
}

// runReclaimTest mirrors main.cpp's reclaim test: create a prop, have an
// engineer reclaim it, and verify mass was actually gained.
func runReclaimTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	const wreckID = "diag_reclaim_wreck"
	if err := registerBlueprint(state, host, blueprint.TypeProp, wreckID, "", map[string]any{
		"Economy.MaxMassReclaim": 100.0,
		"Economy.TimeReclaim":    1.0,
	}); err != nil {
		return "", fmt.Errorf("register blueprint: %w", err)
	}

	wreck := entity.NewProp(wreckID, spatial.Vector3{X: 4})
	wreckID32 := state.Registry.Register(wreck)

	engineer := spawnUnit(state, 0, spatial.Vector3{}, "diag_reclaimer")
	engineer.BuildRate = 10
	engineer.PushCommand(entity.UnitCommand{Type: entity.CommandReclaim, TargetEntityID: wreckID32}, true)
	log.Info("reclaim test: engineer reclaiming prop", "engineer", engineer.EntityID, "prop", wreckID32)

	brain := state.BrainForArmy(0)
	beforeMass := brain.StoredMass()

	if !tickUntil(state, 60, func() bool {
		_, ok := state.Registry.Find(wreckID32)
		return !ok
	}) {
		return "", fmt.Errorf("prop %d was never fully reclaimed: %w", wreckID32, simerr.ErrInvariant)
	}
	afterMass := brain.StoredMass()
	if afterMass <= beforeMass {
		return "", fmt.Errorf("reclaiming prop %d produced no mass income (before=%.1f after=%.1f): %w", wreckID32, beforeMass, afterMass, simerr.ErrInvariant)
	}
	return fmt.Sprintf("prop %d fully reclaimed, army mass %.1f -> %.1f", wreckID32, beforeMass, afterMass), nil
}

// runPlatoonTest exercises the full platoon lifecycle: create, assign,
// move, and disband.
func runPlatoonTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	brain := state.BrainForArmy(0)
	u1 := spawnUnit(state, 0, spatial.Vector3{}, "diag_platoon_a")
	u2 := spawnUnit(state, 0, spatial.Vector3{X: 2}, "diag_platoon_b")
	u1.MaxSpeed, u2.MaxSpeed = 5, 5

	p := brain.CreatePlatoon("diag-platoon")
	p.AddUnit(u1.EntityID)
	p.AddUnit(u2.EntityID)

	dest := spatial.Vector3{X: 40, Z: 40}
	cmdID := brain.MoveToLocation(state.Registry, p, dest)
	log.Info("platoon test: moving platoon", "platoon", p.ID, "dest", dest)

	if !tickUntil(state, 200, func() bool { return !brain.IsCommandsActive(state.Registry, p, cmdID) }) {
		return "", fmt.Errorf("platoon %d never finished its move order: %w", p.ID, simerr.ErrInvariant)
	}
	pos, ok := p.Position(state.Registry)
	if !ok {
		return "", fmt.Errorf("platoon %d has no living members: %w", p.ID, simerr.ErrInvariant)
	}
	if dist := spatial.DistanceXZ(pos, dest); dist > 3 {
		return "", fmt.Errorf("platoon %d centroid %.1f units from destination: %w", p.ID, dist, simerr.ErrInvariant)
	}

	brain.DestroyPlatoon(p)
	if !p.Destroyed {
		return "", fmt.Errorf("platoon %d not marked destroyed: %w", p.ID, simerr.ErrInvariant)
	}
	return fmt.Sprintf("platoon %d created, moved to (%.0f,%.0f), disbanded", p.ID, dest.X, dest.Z), nil
}

// runThreatTest exercises the threat-query surface: category filtering,
// closest-unit lookup, and highest-threat-position lookup.
func runThreatTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	brain0 := state.BrainForArmy(0)

	enemy := spawnUnit(state, 1, spatial.Vector3{X: 10}, "diag_threat_enemy")
	enemy.AddCategory("LAND")
	w := entity.NewWeapon()
	w.Damage, w.MaxRange, w.RateOfFire = 10, 20, 2
	enemy.AddWeapon(w)

	threat, err := brain0.GetThreatAtPosition(state.Registry, spatial.Vector3{}, 50, "")
	if err != nil {
		return "", fmt.Errorf("GetThreatAtPosition: %w", err)
	}
	if threat <= 0 {
		return "", fmt.Errorf("expected nonzero threat near entity %d, got %.1f: %w", enemy.EntityID, threat, simerr.ErrInvariant)
	}

	filtered, err := brain0.GetThreatAtPosition(state.Registry, spatial.Vector3{}, 50, `Category("AIR")`)
	if err != nil {
		return "", fmt.Errorf("GetThreatAtPosition with filter: %w", err)
	}
	if filtered != 0 {
		return "", fmt.Errorf("AIR-category filter unexpectedly matched a LAND unit: %w", simerr.ErrInvariant)
	}

	closest, err := brain0.FindClosestUnit(state.Registry, spatial.Vector3{}, 50, "")
	if err != nil {
		return "", fmt.Errorf("FindClosestUnit: %w", err)
	}
	if closest == nil || closest.EntityID != enemy.EntityID {
		return "", fmt.Errorf("FindClosestUnit did not return entity %d: %w", enemy.EntityID, simerr.ErrInvariant)
	}

	pos, found, err := brain0.GetHighestThreatPosition(state.Registry, "")
	if err != nil {
		return "", fmt.Errorf("GetHighestThreatPosition: %w", err)
	}
	if !found || spatial.DistanceXZ(pos, enemy.Position) > 0.01 {
		return "", fmt.Errorf("GetHighestThreatPosition did not locate entity %d: %w", enemy.EntityID, simerr.ErrInvariant)
	}

	return fmt.Sprintf("threat %.1f from entity %d; category filter and position queries consistent", threat, enemy.EntityID), nil
}

// runCombatTest mirrors main.cpp's combat test: a platoon advances into
// an enemy force and both sides take casualties.
func runCombatTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	brain0 := state.BrainForArmy(0)

	var attackers, defenders []uint32
	for i := 0; i < 3; i++ {
		u := spawnUnit(state, 0, spatial.Vector3{X: float32(i) * 2, Z: 10}, "diag_combat_attacker")
		proxyUnit(host, u)
		u.MaxSpeed = 5
		w := entity.NewWeapon()
		w.Damage, w.MaxRange, w.RateOfFire = 20, 15, 2
		u.AddWeapon(w)
		attackers = append(attackers, u.EntityID)
	}
	for i := 0; i < 3; i++ {
		u := spawnUnit(state, 1, spatial.Vector3{X: 40 + float32(i)*2, Z: 10}, "diag_combat_defender")
		proxyUnit(host, u)
		w := entity.NewWeapon()
		w.Damage, w.MaxRange, w.RateOfFire = 20, 15, 2
		u.AddWeapon(w)
		defenders = append(defenders, u.EntityID)
	}

	p := brain0.CreatePlatoon("diag-attack-force")
	for _, id := range attackers {
		p.AddUnit(id)
	}
	dest := spatial.Vector3{X: 40, Z: 10}
	brain0.AggressiveMoveToLocation(state.Registry, p, dest)
	log.Info("combat test: attack platoon advancing", "platoon", p.ID, "dest", dest)

	state.Run(400)

	survivingAttackers, survivingDefenders := 0, 0
	for _, id := range attackers {
		if _, ok := state.Registry.FindUnit(id); ok {
			survivingAttackers++
		}
	}
	for _, id := range defenders {
		if _, ok := state.Registry.FindUnit(id); ok {
			survivingDefenders++
		}
	}
	if survivingAttackers == len(attackers) && survivingDefenders == len(defenders) {
		return "", fmt.Errorf("no casualties on either side after 400 combat ticks: %w", simerr.ErrInvariant)
	}
	return fmt.Sprintf("combat resolved: attackers %d/%d survived, defenders %d/%d survived",
		survivingAttackers, len(attackers), survivingDefenders, len(defenders)), nil
}

// runFireTest mirrors main.cpp's fire test: teleport two enemy units
// close together and let their weapons engage.
func runFireTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	u1 := spawnUnit(state, 0, spatial.Vector3{X: 20, Z: 20}, "diag_fire_a")
	u2 := spawnUnit(state, 1, spatial.Vector3{X: 40, Z: 20}, "diag_fire_b")
	proxyUnit(host, u1)
	proxyUnit(host, u2)

	w1 := entity.NewWeapon()
	w1.Damage, w1.MaxRange, w1.RateOfFire = 20, 25, 2
	u1.AddWeapon(w1)
	w2 := entity.NewWeapon()
	w2.Damage, w2.MaxRange, w2.RateOfFire = 20, 25, 2
	u2.AddWeapon(w2)

	log.Info("fire test: two armed units in range", "a", u1.EntityID, "b", u2.EntityID)
	state.Run(100)

	var aAlive, bAlive bool
	var aHealth, bHealth float32
	if a, ok := state.Registry.FindUnit(u1.EntityID); ok {
		aAlive, aHealth = true, a.Health
	}
	if b, ok := state.Registry.FindUnit(u2.EntityID); ok {
		bAlive, bHealth = true, b.Health
	}
	if aAlive && bAlive && aHealth == 500 && bHealth == 500 {
		return "", fmt.Errorf("neither unit took damage after 100 combat ticks: %w", simerr.ErrInvariant)
	}
	return fmt.Sprintf("after combat: a alive=%v health=%.0f, b alive=%v health=%.0f", aAlive, aHealth, bAlive, bHealth), nil
}

// runEconomyTest gives one army a producer and a consumer and verifies
// storage actually accumulates.
func runEconomyTest(state *sim.State, host *DiagHost, log *slog.Logger) (string, error) {
	producer := spawnUnit(state, 0, spatial.Vector3{}, "diag_econ_producer")
	producer.Economy.ProductionMass = 50
	producer.Economy.ProductionEnergy = 500
	producer.Economy.ProductionActive = true

	consumer := spawnUnit(state, 0, spatial.Vector3{}, "diag_econ_consumer")
	consumer.Economy.ConsumptionMass = 10
	consumer.Economy.ConsumptionActive = true

	state.Run(20)

	brain := state.BrainForArmy(0)
	log.Info("economy test: army state", "army", brain.ArmyIndex,
		"mass", brain.StoredMass(), "energy", brain.StoredEnergy(),
		"mass_eff", brain.EffMass, "energy_eff", brain.EffEnergy)

	if brain.StoredMass() <= 0 {
		return "", fmt.Errorf("army %d accumulated no stored mass after 20 ticks: %w", brain.ArmyIndex, simerr.ErrInvariant)
	}
	if brain.EffMass < 0.99 {
		return "", fmt.Errorf("army %d mass efficiency %.2f indicates unexpected back-pressure: %w", brain.ArmyIndex, brain.EffMass, simerr.ErrInvariant)
	}
	return fmt.Sprintf("army %d: stored mass=%.1f energy=%.1f, mass_eff=%.2f energy_eff=%.2f",
		brain.ArmyIndex, brain.StoredMass(), brain.StoredEnergy(), brain.EffMass, brain.EffEnergy), nil
}
