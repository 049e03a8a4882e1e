// Package blueprint is the central registry of asset descriptors loaded
// from scripts: units, projectiles, props and associated visual effects.
// Blueprints are stored as opaque VM handles, never parsed into Go
// structs — the core reads individual fields on demand through the
// script.Host boundary. Grounded on
// original_source/src/blueprints/blueprint_store.{hpp,cpp}.
package blueprint

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/osc-sim/simcore/internal/category"
	"github.com/osc-sim/simcore/internal/script"
)

// Type enumerates the kinds of asset a blueprint can describe.
type Type int

const (
	TypeUnit Type = iota
	TypeProjectile
	TypeProp
	TypeMesh
	TypeBeam
	TypeEmitter
	TypeTrailEmitter
)

func (t Type) String() string {
	switch t {
	case TypeUnit:
		return "Unit"
	case TypeProjectile:
		return "Projectile"
	case TypeProp:
		return "Prop"
	case TypeMesh:
		return "Mesh"
	case TypeBeam:
		return "Beam"
	case TypeEmitter:
		return "Emitter"
	case TypeTrailEmitter:
		return "TrailEmitter"
	default:
		return "Unknown"
	}
}

// Entry is a single registered blueprint.
type Entry struct {
	Type Type
	// ID is the lowercase blueprint id, e.g. "uel0001".
	ID string
	// Source is the originating file path, used for diagnostics.
	Source string
	// Handle is the opaque VM-pinned reference to the blueprint table.
	Handle script.Handle

	// categories is parsed from the blueprint's Categories field at
	// Register time and cached here so repeated category.Expr.Match
	// calls don't re-read the VM table.
	categories map[string]struct{}

	// exprCache memoizes compiled category.Expr trees by source text, so
	// a given filter string (e.g. a threat-query or diagnostic category
	// filter run against this blueprint every tick) is parsed once per
	// entry and reused rather than re-parsed on every call.
	exprCache map[string]*category.Expr
}

// Store is the registry of every loaded blueprint, keyed by lowercase id.
type Store struct {
	host        script.Host
	blueprints  map[string]*Entry
	log         *slog.Logger
}

// New creates an empty store bound to a script host.
func New(host script.Host, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{host: host, blueprints: make(map[string]*Entry), log: log}
}

// Register reads the BlueprintId field (falling back to Source if empty)
// off the pinned table, lowercases it, and stores the entry. A duplicate
// id releases the prior entry's VM handle before being overwritten.
func (s *Store) Register(t Type, source string, tableHandle script.Handle) (*Entry, error) {
	id, _ := s.host.GetStringField(tableHandle, "BlueprintId")
	if id == "" {
		id = source
	}
	id = strings.ToLower(id)

	if prior, ok := s.blueprints[id]; ok {
		s.host.ReleaseHandle(prior.Handle)
	}

	entry := &Entry{Type: t, ID: id, Source: source, Handle: tableHandle}
	entry.categories = s.readCategories(tableHandle)
	s.blueprints[id] = entry
	return entry, nil
}

func (s *Store) readCategories(h script.Handle) map[string]struct{} {
	cats := make(map[string]struct{})
	// Categories are exposed as a space-separated string field on the
	// blueprint table (e.g. "STRUCTURE NAVAL DEFENSE"); the original
	// stores them as a Lua table of string keys, which the Go side
	// reads by joining through the Host boundary.
	raw, ok := s.host.GetStringField(h, "Categories")
	if !ok || raw == "" {
		return cats
	}
	for _, name := range strings.Fields(raw) {
		cats[strings.ToUpper(name)] = struct{}{}
	}
	return cats
}

// Categories returns the entry's own flat category set, e.g. the result
// of parsing a "STRUCTURE NAVAL DEFENSE" blueprint field.
func (e *Entry) Categories() map[string]struct{} { return e.categories }

// MatchesCategory compiles expr (a bare name or a compound
// `+`/`|`/`&`/`-`/parenthesised category.Parse expression, e.g.
// "STRUCTURE - NAVAL") against this entry's category set, caching the
// compiled Expr by source text so a filter reused across ticks is only
// parsed once. An expression that fails to parse never matches.
func (e *Entry) MatchesCategory(expr string) bool {
	compiled, err := e.compileExpr(expr)
	if err != nil {
		return false
	}
	return compiled.Match(e.categories)
}

func (e *Entry) compileExpr(expr string) (*category.Expr, error) {
	if compiled, ok := e.exprCache[expr]; ok {
		return compiled, nil
	}
	compiled, err := category.Parse(expr)
	if err != nil {
		return nil, err
	}
	if e.exprCache == nil {
		e.exprCache = make(map[string]*category.Expr)
	}
	e.exprCache[expr] = compiled
	return compiled, nil
}

// Find looks up a blueprint by id, case-insensitively.
func (s *Store) Find(id string) (*Entry, bool) {
	e, ok := s.blueprints[strings.ToLower(id)]
	return e, ok
}

// All returns every blueprint of a given type, sorted by id for
// deterministic iteration.
func (s *Store) All(t Type) []*Entry {
	var out []*Entry
	for _, e := range s.blueprints {
		if e.Type == t {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of blueprints of a given type.
func (s *Store) Count(t Type) int {
	n := 0
	for _, e := range s.blueprints {
		if e.Type == t {
			n++
		}
	}
	return n
}

// TotalCount returns the number of blueprints of any type.
func (s *Store) TotalCount() int { return len(s.blueprints) }

// LogStatistics emits per-type counts at info level.
func (s *Store) LogStatistics() {
	for t := TypeUnit; t <= TypeTrailEmitter; t++ {
		if n := s.Count(t); n > 0 {
			s.log.Info("blueprint count", "type", t.String(), "count", n)
		}
	}
	s.log.Info("blueprint store loaded", "total", s.TotalCount())
}

// Expose projects id -> handle as a VM-visible global, once loading
// completes. Must be called after every Register call.
func (s *Store) Expose() error {
	handles := make(map[string]script.Handle, len(s.blueprints))
	for id, e := range s.blueprints {
		handles[id] = e.Handle
	}
	return s.host.ExposeBlueprints(handles)
}
