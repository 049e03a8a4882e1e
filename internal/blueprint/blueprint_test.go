package blueprint

import (
	"testing"

	"github.com/osc-sim/simcore/internal/script"
)

type fakeHost struct {
	script.NullHost
	strings  map[script.Handle]map[string]string
	released []script.Handle
	exposed  map[string]script.Handle
}

func newFakeHost() *fakeHost {
	return &fakeHost{strings: make(map[script.Handle]map[string]string)}
}

func (h *fakeHost) setString(handle script.Handle, field, value string) {
	if h.strings[handle] == nil {
		h.strings[handle] = make(map[string]string)
	}
	h.strings[handle][field] = value
}

func (h *fakeHost) GetStringField(handle script.Handle, field string) (string, bool) {
	v, ok := h.strings[handle][field]
	return v, ok
}

func (h *fakeHost) ReleaseHandle(handle script.Handle) {
	h.released = append(h.released, handle)
}

func (h *fakeHost) ExposeBlueprints(entries map[string]script.Handle) error {
	h.exposed = entries
	return nil
}

func TestRegisterReadsIdAndLowercases(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "UEL0001")
	s := New(host, nil)

	entry, err := s.Register(TypeUnit, "/units/uel0001.bp", 1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if entry.ID != "uel0001" {
		t.Errorf("ID = %q, want lowercase uel0001", entry.ID)
	}
}

func TestRegisterFallsBackToSourceWhenIdMissing(t *testing.T) {
	host := newFakeHost()
	s := New(host, nil)

	entry, err := s.Register(TypeProp, "/props/Some_Prop.bp", 2)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if entry.ID != "/props/some_prop.bp" {
		t.Errorf("ID = %q, want lowercased source fallback", entry.ID)
	}
}

func TestRegisterDuplicateReleasesPriorHandle(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "uel0001")
	host.setString(2, "BlueprintId", "uel0001")
	s := New(host, nil)

	s.Register(TypeUnit, "a", 1)
	s.Register(TypeUnit, "b", 2)

	if len(host.released) != 1 || host.released[0] != 1 {
		t.Errorf("released = %v, want [1]", host.released)
	}
	entry, ok := s.Find("uel0001")
	if !ok || entry.Handle != 2 {
		t.Errorf("expected duplicate registration to win with handle 2")
	}
}

func TestFindIsCaseInsensitive(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "uel0001")
	s := New(host, nil)
	s.Register(TypeUnit, "a", 1)

	if _, ok := s.Find("UEL0001"); !ok {
		t.Error("expected case-insensitive lookup to find the entry")
	}
}

func TestAllAndCountFilterByType(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "uel0001")
	host.setString(2, "BlueprintId", "ueb0001")
	host.setString(3, "BlueprintId", "proj01")
	s := New(host, nil)
	s.Register(TypeUnit, "a", 1)
	s.Register(TypeUnit, "b", 2)
	s.Register(TypeProjectile, "c", 3)

	units := s.All(TypeUnit)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].ID > units[1].ID {
		t.Error("expected All() to return ids sorted ascending")
	}
	if s.Count(TypeProjectile) != 1 {
		t.Errorf("Count(Projectile) = %d, want 1", s.Count(TypeProjectile))
	}
	if s.TotalCount() != 3 {
		t.Errorf("TotalCount = %d, want 3", s.TotalCount())
	}
}

func TestCategoriesParsedFromField(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "uel0001")
	host.setString(1, "Categories", "STRUCTURE NAVAL DEFENSE")
	s := New(host, nil)
	entry, _ := s.Register(TypeUnit, "a", 1)

	if !entry.MatchesCategory("structure") {
		t.Error("expected case-insensitive category match")
	}
	if entry.MatchesCategory("MOBILE") {
		t.Error("did not expect MOBILE category")
	}
}

func TestExposeForwardsAllHandles(t *testing.T) {
	host := newFakeHost()
	host.setString(1, "BlueprintId", "uel0001")
	s := New(host, nil)
	s.Register(TypeUnit, "a", 1)

	if err := s.Expose(); err != nil {
		t.Fatalf("Expose: %v", err)
	}
	if host.exposed["uel0001"] != 1 {
		t.Errorf("exposed[uel0001] = %v, want handle 1", host.exposed["uel0001"])
	}
}
