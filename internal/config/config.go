// Package config parses the command-line surface named in spec.md §6 into
// a typed Config, using the standard library flag package directly in the
// caller's style rather than a CLI framework — grounded on the teacher's
// own "everything wired in main()" convention (vimy-core/main.go has no
// flag surface of its own, so the flag *names* are grounded on
// original_source/src/main.cpp's CLI handling instead, expressed the
// idiomatic Go way).
package config

import (
	"flag"
	"fmt"

	"github.com/osc-sim/simcore/internal/simerr"
)

// Config is the fully-parsed CLI surface.
type Config struct {
	InitPath string // --init
	FAPath   string // --fa-path
	FAFData  string // --faf-data
	MapPath  string // --map
	Ticks    int    // --ticks
	DiagSock string // --diag-sock

	DamageTest  bool
	MoveTest    bool
	BuildTest   bool
	ChainTest   bool
	AITest      bool
	ReclaimTest bool
	PlatoonTest bool
	ThreatTest  bool
	CombatTest  bool
	FireTest    bool
	EconomyTest bool
}

// Parse builds a Config from args (typically os.Args[1:]).
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("simcore", flag.ContinueOnError)
	cfg := &Config{}

	fs.StringVar(&cfg.InitPath, "init", "", "path to the session init file")
	fs.StringVar(&cfg.FAPath, "fa-path", "", "FA installation root to mount")
	fs.StringVar(&cfg.FAFData, "faf-data", "", "FAF data root to mount")
	fs.StringVar(&cfg.MapPath, "map", "", "VFS path of the map to load")
	fs.IntVar(&cfg.Ticks, "ticks", 0, "number of ticks to run before exiting")
	fs.StringVar(&cfg.DiagSock, "diag-sock", "", "Unix socket path for the diagnostic console")

	fs.BoolVar(&cfg.DamageTest, "damage-test", false, "run the damage diagnostic scenario")
	fs.BoolVar(&cfg.MoveTest, "move-test", false, "run the move diagnostic scenario")
	fs.BoolVar(&cfg.BuildTest, "build-test", false, "run the build diagnostic scenario")
	fs.BoolVar(&cfg.ChainTest, "chain-test", false, "run the build-chain diagnostic scenario")
	fs.BoolVar(&cfg.AITest, "ai-test", false, "run the AI brain diagnostic scenario")
	fs.BoolVar(&cfg.ReclaimTest, "reclaim-test", false, "run the reclaim diagnostic scenario")
	fs.BoolVar(&cfg.PlatoonTest, "platoon-test", false, "run the platoon diagnostic scenario")
	fs.BoolVar(&cfg.ThreatTest, "threat-test", false, "run the threat-query diagnostic scenario")
	fs.BoolVar(&cfg.CombatTest, "combat-test", false, "run the combat diagnostic scenario")
	fs.BoolVar(&cfg.FireTest, "fire-test", false, "run the weapon-fire diagnostic scenario")
	fs.BoolVar(&cfg.EconomyTest, "economy-test", false, "run the economy diagnostic scenario")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.InitPath == "" && cfg.MapPath == "" && !cfg.AnyDiagnostic() {
		return nil, fmt.Errorf("%w: one of --init, --map, or a diagnostic test flag is required", simerr.ErrConfig)
	}
	return cfg, nil
}

// AnyDiagnostic reports whether any of the eleven --*-test flags are set.
// The caller uses this to decide whether to boot against a session.DiagHost
// (which actually runs the named scripted scenarios) instead of a bare
// script.NullHost.
func (c *Config) AnyDiagnostic() bool {
	return c.DamageTest || c.MoveTest || c.BuildTest || c.ChainTest || c.AITest ||
		c.ReclaimTest || c.PlatoonTest || c.ThreatTest || c.CombatTest || c.FireTest || c.EconomyTest
}
