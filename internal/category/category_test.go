package category

import "testing"

func catSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func TestNameMatchesMember(t *testing.T) {
	e := Name("STRUCTURE")
	if !e.Match(catSet("STRUCTURE", "NAVAL")) {
		t.Error("expected STRUCTURE to match")
	}
	if e.Match(catSet("MOBILE")) {
		t.Error("expected STRUCTURE not to match a unit without it")
	}
}

func TestAllUnitsAlwaysMatches(t *testing.T) {
	e := Name("allunits")
	if !e.Match(catSet()) {
		t.Error("expected ALLUNITS to match an empty category set")
	}
}

func TestUnionMatchesEither(t *testing.T) {
	e := Combine(Union, Name("LAND"), Name("NAVAL"))
	if !e.Match(catSet("NAVAL")) {
		t.Error("expected union to match on right operand")
	}
	if !e.Match(catSet("LAND")) {
		t.Error("expected union to match on left operand")
	}
	if e.Match(catSet("AIR")) {
		t.Error("expected union not to match neither operand")
	}
}

func TestIntersectionRequiresBoth(t *testing.T) {
	e := Combine(Intersection, Name("STRUCTURE"), Name("NAVAL"))
	if !e.Match(catSet("STRUCTURE", "NAVAL")) {
		t.Error("expected intersection to match when both present")
	}
	if e.Match(catSet("STRUCTURE")) {
		t.Error("expected intersection not to match when only one present")
	}
}

func TestDifferenceExcludesRight(t *testing.T) {
	e := Combine(Difference, Name("MOBILE"), Name("NAVAL"))
	if !e.Match(catSet("MOBILE")) {
		t.Error("expected difference to match MOBILE without NAVAL")
	}
	if e.Match(catSet("MOBILE", "NAVAL")) {
		t.Error("expected difference to exclude units that also have NAVAL")
	}
}

func TestNestedCompoundExpression(t *testing.T) {
	// (LAND union NAVAL) difference EXPERIMENTAL
	e := Combine(Difference,
		Combine(Union, Name("LAND"), Name("NAVAL")),
		Name("EXPERIMENTAL"))

	if !e.Match(catSet("LAND")) {
		t.Error("expected LAND to match")
	}
	if e.Match(catSet("LAND", "EXPERIMENTAL")) {
		t.Error("expected EXPERIMENTAL to exclude the unit")
	}
}

func TestDepthGuardFailsClosedOnDeepNesting(t *testing.T) {
	e := Name("STRUCTURE")
	for i := 0; i < maxDepth+5; i++ {
		e = Combine(Union, e, Name("NAVAL"))
	}
	// Should not panic or infinite loop; the only matching leaf lies past
	// the depth guard, so the match fails closed.
	if e.Match(catSet("STRUCTURE")) {
		t.Error("expected a match beyond the depth guard to fail closed")
	}
}

func TestNilExprDoesNotMatch(t *testing.T) {
	var e *Expr
	if e.Match(catSet("STRUCTURE")) {
		t.Error("expected nil expression not to match")
	}
}
