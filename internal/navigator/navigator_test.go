package navigator

import (
	"testing"

	"github.com/osc-sim/simcore/internal/spatial"
)

type fakeMover struct {
	pos spatial.Vector3
}

func (m *fakeMover) Position() spatial.Vector3     { return m.pos }
func (m *fakeMover) SetPosition(p spatial.Vector3) { m.pos = p }

func TestSetGoalDirectMovesTowardGoal(t *testing.T) {
	var n Navigator
	m := &fakeMover{pos: spatial.Vector3{}}
	n.SetGoalDirect(spatial.Vector3{X: 10})

	if !n.IsMoving() {
		t.Fatal("expected navigator to be moving after SetGoalDirect")
	}

	still := n.Update(m, 2, 1.0, nil) // 2 units/s * 1s = 2 units of travel
	if !still {
		t.Error("expected still moving after a partial step")
	}
	if m.Position().X <= 0 || m.Position().X >= 10 {
		t.Errorf("expected partial progress, got X=%v", m.Position().X)
	}
}

func TestArrivesAtGoalAndStops(t *testing.T) {
	var n Navigator
	m := &fakeMover{}
	n.SetGoalDirect(spatial.Vector3{X: 5})

	// Huge speed overshoots in one tick.
	still := n.Update(m, 1000, 1.0, nil)
	if still {
		t.Error("expected arrival (not still moving) after overshooting step")
	}
	if !n.IsMoving() == false && n.Status() != Idle {
		t.Error("expected navigator to be idle after arrival")
	}
	if m.Position().X != 5 {
		t.Errorf("expected exact snap to goal X=5, got %v", m.Position().X)
	}
}

func TestAbortMoveStopsImmediately(t *testing.T) {
	var n Navigator
	m := &fakeMover{}
	n.SetGoalDirect(spatial.Vector3{X: 5})
	n.AbortMove()

	if n.IsMoving() {
		t.Error("expected navigator idle after AbortMove")
	}
	if still := n.Update(m, 10, 1.0, nil); still {
		t.Error("expected Update to no-op after AbortMove")
	}
}

func TestZeroSpeedNeverMoves(t *testing.T) {
	var n Navigator
	m := &fakeMover{}
	n.SetGoalDirect(spatial.Vector3{X: 5})

	if still := n.Update(m, 0, 1.0, nil); still {
		t.Error("expected zero max speed to report not-moving")
	}
	if m.Position().X != 0 {
		t.Error("expected no movement at zero speed")
	}
}
