package session

import (
	"testing"

	"github.com/osc-sim/simcore/internal/config"
	"github.com/osc-sim/simcore/internal/script"
)

func TestBootWithNoContentProducesAFlatDefaultMap(t *testing.T) {
	cfg := &config.Config{EconomyTest: true}
	state, err := Boot(cfg, script.NullHost{}, nil)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if state.Grid == nil || state.Terrain == nil {
		t.Fatal("expected a default grid/terrain when no --map is given")
	}
	if len(state.Armies) != NumSeats {
		t.Fatalf("len(Armies) = %d, want %d", len(state.Armies), NumSeats)
	}
	for i, brain := range state.Armies {
		if brain.ArmyIndex != int32(i) {
			t.Errorf("army %d has ArmyIndex %d", i, brain.ArmyIndex)
		}
	}
}

func TestBootRejectsMissingInitFile(t *testing.T) {
	cfg := &config.Config{InitPath: "/does/not/exist.init"}
	if _, err := Boot(cfg, script.NullHost{}, nil); err == nil {
		t.Fatal("expected an error for a missing init file")
	}
}

func TestBootTicksAdvanceTheReturnedState(t *testing.T) {
	cfg := &config.Config{MoveTest: true}
	state, err := Boot(cfg, script.NullHost{}, nil)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	state.Run(5)
	if state.TickCount != 5 {
		t.Errorf("TickCount = %d, want 5", state.TickCount)
	}
}

func TestScenarioNameJoinsActiveFlags(t *testing.T) {
	cfg := &config.Config{}
	if got := scenarioName(cfg); got != "" {
		t.Errorf("scenarioName with no flags set = %q, want empty", got)
	}
	cfg.FireTest = true
	if got := scenarioName(cfg); got != "fire-test" {
		t.Errorf("scenarioName = %q, want %q", got, "fire-test")
	}
}
