// Package category implements the unit-category matching grammar used to
// select units by blueprint categories (e.g. "STRUCTURE - NAVAL"). Grounded
// on original_source/src/lua/category_utils.{hpp,cpp}.
package category

import "strings"

// maxDepth bounds recursive descent into compound expressions, matching
// the original's depth guard against pathological or malformed category
// tables.
const maxDepth = 16

// allUnits is the wildcard category name that matches every unit
// regardless of its actual category set.
const allUnits = "ALLUNITS"

// Op is a compound category combinator.
type Op int

const (
	Union Op = iota
	Intersection
	Difference
)

// Expr is a category expression: either a single category name or a
// compound operation over two sub-expressions.
//
// It is a tagged sum rather than an interface hierarchy: Name is read
// when IsName is true, otherwise Op/Left/Right apply. This mirrors the
// shape of the table the original parses from Lua ({__name=...} versus
// {__op, __left, __right}) without needing a type switch per node.
type Expr struct {
	IsName bool
	Name   string

	CatOp Op
	Left  *Expr
	Right *Expr
}

// Name builds a leaf category expression.
func Name(name string) *Expr {
	return &Expr{IsName: true, Name: strings.ToUpper(name)}
}

// Combine builds a compound category expression.
func Combine(op Op, left, right *Expr) *Expr {
	return &Expr{CatOp: op, Left: left, Right: right}
}

// Match reports whether the unit's category set satisfies the expression.
// ALLUNITS always matches. Depth beyond maxDepth is treated as
// non-matching, the same fail-closed behaviour as the original's guard.
func (e *Expr) Match(categories map[string]struct{}) bool {
	return e.matchAt(categories, 0)
}

func (e *Expr) matchAt(categories map[string]struct{}, depth int) bool {
	if e == nil || depth > maxDepth {
		return false
	}
	if e.IsName {
		if e.Name == allUnits {
			return true
		}
		_, ok := categories[e.Name]
		return ok
	}

	switch e.CatOp {
	case Union:
		return e.Left.matchAt(categories, depth+1) || e.Right.matchAt(categories, depth+1)
	case Intersection:
		return e.Left.matchAt(categories, depth+1) && e.Right.matchAt(categories, depth+1)
	case Difference:
		return e.Left.matchAt(categories, depth+1) && !e.Right.matchAt(categories, depth+1)
	default:
		return false
	}
}
