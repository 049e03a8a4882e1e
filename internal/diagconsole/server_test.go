package diagconsole

import (
	"encoding/json"
	"testing"

	"github.com/osc-sim/simcore/internal/army"
	"github.com/osc-sim/simcore/internal/blueprint"
	"github.com/osc-sim/simcore/internal/entity"
	"github.com/osc-sim/simcore/internal/mapfile"
	"github.com/osc-sim/simcore/internal/pathing"
	"github.com/osc-sim/simcore/internal/scheduler"
	"github.com/osc-sim/simcore/internal/script"
	"github.com/osc-sim/simcore/internal/sim"
	"github.com/osc-sim/simcore/internal/terrain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	hm := mapfile.NewHeightmap(16, 16, 1, make([]int16, 17*17))
	ter := terrain.New(hm, false, 0)
	grid := pathing.NewGrid(ter, 16, 16)
	armies := []*army.Brain{army.New(0, "seat0", nil)}
	store := blueprint.New(script.NullHost{}, nil)
	state := sim.New(script.NullHost{}, store, grid, ter, armies, scheduler.New(0, nil), nil)
	return NewServer(state, nil)
}

func envelopeFor(t *testing.T, msgType string, data any) Envelope {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func TestHandleTickAdvancesState(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.handleTick(envelopeFor(t, "tick", TickRequest{N: 3}))
	if err != nil {
		t.Fatalf("handleTick: %v", err)
	}
	var out TickResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.TickCount != 3 {
		t.Errorf("TickCount = %v, want 3", out.TickCount)
	}
}

func TestHandleTickDefaultsToOneTick(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.handleTick(envelopeFor(t, "tick", TickRequest{N: 0}))
	if err != nil {
		t.Fatalf("handleTick: %v", err)
	}
	var out TickResponse
	json.Unmarshal(resp.Data, &out)
	if out.TickCount != 1 {
		t.Errorf("TickCount = %v, want 1 for N=0", out.TickCount)
	}
}

func TestHandleSpawnRegistersUnit(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.handleSpawn(envelopeFor(t, "spawn", SpawnRequest{Army: 0, BlueprintID: "ual0001", X: 5, Z: 7}))
	if err != nil {
		t.Fatalf("handleSpawn: %v", err)
	}
	var out SpawnResponse
	json.Unmarshal(resp.Data, &out)
	if out.EntityID == 0 {
		t.Fatal("expected a non-zero entity id")
	}
	u, ok := s.state.Registry.FindUnit(out.EntityID)
	if !ok {
		t.Fatal("expected the spawned unit to be registered")
	}
	if u.Position.X != 5 || u.Position.Z != 7 {
		t.Errorf("expected spawned position (5,7), got %+v", u.Position)
	}
}

func TestHandleIssueQueuesCommandOnExistingUnit(t *testing.T) {
	s := newTestServer(t)
	u := entity.NewUnit()
	id := s.state.Registry.Register(u)

	resp, err := s.handleIssue(envelopeFor(t, "issue", IssueRequest{
		EntityID: id, Command: entity.CommandMove, X: 3, Z: 4,
	}))
	if err != nil {
		t.Fatalf("handleIssue: %v", err)
	}
	var out IssueResponse
	json.Unmarshal(resp.Data, &out)
	if !out.OK {
		t.Error("expected OK=true for an existing unit")
	}
	if len(u.CommandQueue) != 1 || u.CommandQueue[0].Type != entity.CommandMove {
		t.Errorf("expected a queued move command, got %+v", u.CommandQueue)
	}
}

func TestHandleIssueReportsNotOKForMissingUnit(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.handleIssue(envelopeFor(t, "issue", IssueRequest{EntityID: 999, Command: entity.CommandMove}))
	if err != nil {
		t.Fatalf("handleIssue: %v", err)
	}
	var out IssueResponse
	json.Unmarshal(resp.Data, &out)
	if out.OK {
		t.Error("expected OK=false for a nonexistent entity id")
	}
}

func TestHandleStatusReportsCounts(t *testing.T) {
	s := newTestServer(t)
	s.state.Registry.Register(entity.NewUnit())
	s.state.Registry.Register(entity.NewUnit())
	s.state.Tick()

	resp, err := s.handleStatus(Envelope{})
	if err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	var out StatusResponse
	json.Unmarshal(resp.Data, &out)
	if out.EntityCount != 2 {
		t.Errorf("EntityCount = %v, want 2", out.EntityCount)
	}
	if out.TickCount != 1 {
		t.Errorf("TickCount = %v, want 1", out.TickCount)
	}
}
