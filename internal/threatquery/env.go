// Package threatquery compiles and evaluates the optional boolean
// predicate strings army-brain threat queries accept (e.g.
// `Category("LAND") && !Category("STRUCTURE")`), reusing expr-lang/expr
// exactly the way the teacher's rules package compiles rule conditions
// against a typed environment struct: one program compiled from source,
// then run per candidate entity. Grounded on
// _examples/nstehr-vimy/vimy-core/rules/engine.go's compileRules/Evaluate
// and rules/env.go's RuleEnv.
package threatquery

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the per-candidate-entity evaluation context a compiled filter
// program runs against. One Env is built per spatial-query candidate; its
// exported methods are what a filter string can call (e.g. `Army`,
// `Category("AIR")`).
type Env struct {
	Army             int32
	BlueprintID      string
	Health           float32
	MaxHealth        float32
	PositionX        float32
	PositionZ        float32
	FractionComplete float32

	categories map[string]struct{}
}

// NewEnv builds an Env snapshot for one candidate entity.
func NewEnv(army int32, blueprintID string, health, maxHealth, x, z, fraction float32, categories map[string]struct{}) Env {
	return Env{
		Army:             army,
		BlueprintID:      blueprintID,
		Health:           health,
		MaxHealth:        maxHealth,
		PositionX:        x,
		PositionZ:        z,
		FractionComplete: fraction,
		categories:       categories,
	}
}

// Category reports whether the candidate's blueprint category set
// contains name, callable from filter source as `Category("STRUCTURE")`.
func (e Env) Category(name string) bool {
	_, ok := e.categories[name]
	return ok
}

// HealthFraction returns Health/MaxHealth, or 1 if MaxHealth is unset.
func (e Env) HealthFraction() float32 {
	if e.MaxHealth <= 0 {
		return 1
	}
	return e.Health / e.MaxHealth
}

// Compile compiles a filter predicate source string into a reusable
// program, exactly as rules.compileRules calls expr.Compile with
// expr.AsBool(). An empty source compiles to a nil program, which Eval
// treats as "always matches".
func Compile(source string) (*vm.Program, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile threat query filter %q: %w", source, err)
	}
	return program, nil
}

// Eval runs a compiled filter program against one candidate's Env. A nil
// program (no filter given) always matches.
func Eval(program *vm.Program, env Env) (bool, error) {
	if program == nil {
		return true, nil
	}
	result, err := vm.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run threat query filter: %w", err)
	}
	match, _ := result.(bool)
	return match, nil
}
