// Package session performs the two-phase boot sequence described in
// spec.md §4.O: mount discovery, blueprint loading, map load, and
// sim.State construction, one army.Brain per seat. Grounded on
// original_source/src/session/session.{hpp,cpp} and the teacher's own
// main.go initialisation order (mount filesystem, then load content,
// then bind the listener) translated from IPC-server bootstrap to
// simulation bootstrap.
package session

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/osc-sim/simcore/internal/army"
	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/config"
	"github.com/osc-sim/simcore/internal/mapfile"
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/scheduler"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/sim"
	"github.com/osc-sim/simcore/internal/simerr"
	"github.com/osc-sim/simcore/internal/terrain"
	"github.com/osc-sim/simcore/internal/vfs"
)

// blueprintSuffixes maps a VFS filename suffix to the blueprint.Type it
// declares, mirroring the original loader's three scanned extensions.
var blueprintSuffixes = map[string]blueprint.Type{
	"_unit.bp": blueprint.TypeUnit,
	"_prop.bp": blueprint.TypeProp,
	"_proj.bp": blueprint.TypeProjectile,
}

// NumSeats is the fixed army count a freshly booted session starts with
// when the init file doesn't declare more; diagnostic scenarios spawn
// against these two seats directly.
const NumSeats = 2

// Boot mounts content, loads blueprints, loads the named map, and wires a
// sim.State with one army.Brain per seat. host is a DiagHost in
// diagnostic-scenario mode (see RunDiagnostics) and a bare script.NullHost{}
// otherwise, since no real scripting VM is wired into this binary.
func Boot(cfg *config.Config, host script.Host, log *slog.Logger) (*sim.State, error) {
	if log == nil {
		log = slog.Default()
	}

	if name := scenarioName(cfg); name != "" {
		log.Info("booting in diagnostic scenario mode", "scenario", name)
	}

	fs := vfs.New()
	if err := mountContent(fs, cfg); err != nil {
		return nil, err
	}

	store := blueprint.New(host, log)
	if err := loadBlueprints(fs, store, host); err != nil {
		return nil, err
	}
	if err := store.Expose(); err != nil {
		return nil, fmt.Errorf("expose blueprints: %w", err)
	}
	store.LogStatistics()

	grid, ter, err := loadMap(fs, cfg.MapPath)
	if err != nil {
		return nil, err
	}

	armies := make([]*army.Brain, NumSeats)
	for i := range armies {
		armies[i] = army.New(int32(i), fmt.Sprintf("army%d", i), log)
	}

	sched := scheduler.New(0, log)
	state := sim.New(host, store, grid, ter, armies, sched, log)

	if err := host.SetupSession(); err != nil {
		return nil, fmt.Errorf("setup session: %w", err)
	}
	for _, brain := range armies {
		if err := host.OnCreateArmyBrain(int(brain.ArmyIndex), script.NoHandle); err != nil {
			log.Warn("OnCreateArmyBrain callback failed", "army", brain.ArmyIndex, "error", err)
		}
	}
	if err := host.BeginSession(); err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}

	return state, nil
}

// mountContent layers --fa-path beneath --faf-data, matching the base-
// content-then-patches overlay order spec.md §4.O describes; both flags
// are optional, independently, for diagnostic scenarios that need no
// real content roots at all.
func mountContent(fs *vfs.FileSystem, cfg *config.Config) error {
	if cfg.FAFData != "" {
		fs.Mount("/", vfs.NewDirectoryMount(cfg.FAFData))
	}
	if cfg.FAPath != "" {
		fs.Mount("/", vfs.NewDirectoryMount(cfg.FAPath))
	}
	if cfg.InitPath != "" && !fs.FileExists(cfg.InitPath) {
		return fmt.Errorf("init file %s not found in mounted content: %w", cfg.InitPath, simerr.ErrNotFound)
	}
	return nil
}

// loadBlueprints walks the mounted filesystem for every recognised
// blueprint suffix and registers each one, handing the VM the raw file
// bytes as the opaque descriptor to parse into a pinned table.
func loadBlueprints(fs *vfs.FileSystem, store *blueprint.Store, host script.Host) error {
	for suffix, t := range blueprintSuffixes {
		for _, path := range fs.FindFiles("/", "*"+suffix) {
			raw, err := fs.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read blueprint %s: %w", path, err)
			}
			handle, err := host.RegisterBlueprintTable(raw)
			if err != nil {
				return fmt.Errorf("register blueprint %s: %w", path, err)
			}
			if _, err := store.Register(t, path, handle); err != nil {
				return fmt.Errorf("store blueprint %s: %w", path, err)
			}
		}
	}
	if err := host.LoadBlueprints(); err != nil {
		return fmt.Errorf("load blueprints: %w", err)
	}
	return nil
}

// loadMap reads and parses the named map through the VFS, builds its
// terrain, and derives the pathing grid from it. An empty path yields a
// minimal flat 64x64 map, used by diagnostic scenarios that don't name a
// real map file.
func loadMap(fs *vfs.FileSystem, mapPath string) (*pathing.Grid, *terrain.Terrain, error) {
	if mapPath == "" {
		hm := mapfile.NewHeightmap(64, 64, 1, make([]int16, 65*65))
		ter := terrain.New(hm, false, 0)
		return pathing.NewGrid(ter, 64, 64), ter, nil
	}

	raw, err := fs.ReadFile(mapPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read map %s: %w", mapPath, err)
	}
	data, err := mapfile.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse map %s: %w", mapPath, err)
	}
	ter := terrain.New(data.Heightmap, data.HasWater, data.WaterElevation)
	grid := pathing.NewGrid(ter, data.MapWidth, data.MapHeight)
	return grid, ter, nil
}

// scenarioName maps a diagnostic flag name to its Config accessor for
// logging which single scenario, if any, is active.
func scenarioName(cfg *config.Config) string {
	names := map[string]bool{
		"damage-test":  cfg.DamageTest,
		"move-test":    cfg.MoveTest,
		"build-test":   cfg.BuildTest,
		"chain-test":   cfg.ChainTest,
		"ai-test":      cfg.AITest,
		"reclaim-test": cfg.ReclaimTest,
		"platoon-test": cfg.PlatoonTest,
		"threat-test":  cfg.ThreatTest,
		"combat-test":  cfg.CombatTest,
		"fire-test":    cfg.FireTest,
		"economy-test": cfg.EconomyTest,
	}
	var active []string
	for name, on := range names {
		if on {
			active = append(active, name)
		}
	}
	return strings.Join(active, ",")
}
