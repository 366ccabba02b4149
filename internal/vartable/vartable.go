// Package vartable implements the scoped, branch-aware variable-to-type
// mapping the variable-type visitor drives across a document: a stack
// of scopes, each itself a stack of branch sets, so that control-flow
// joins (if/else, switch, instanceof narrowing) can be modeled as
// push/pop/prune over the active scope's branches.
package vartable

import (
	"slices"
	"strings"
)

// union merges two "|"-separated type strings, dropping empty and
// duplicate atoms and keeping first-seen order (the same rule as
// typeinfer.Union, which imports this package and so cannot be imported
// from it).
func union(a, b string) string {
	var out []string
	for _, atom := range strings.Split(a+"|"+b, "|") {
		if atom != "" && !slices.Contains(out, atom) {
			out = append(out, atom)
		}
	}
	return strings.Join(out, "|")
}

// branch maps variable name to its accumulated type string within one
// control-flow arm.
type branch map[string]string

// scope is a stack of branches; the top is always the active branch.
// completed holds branches popped by PopBranch since the last
// PruneBranches, kept around so their bindings still contribute to the
// eventual join instead of being lost.
type scope struct {
	branches  []branch
	completed []branch
}

func newScope() *scope {
	return &scope{branches: []branch{make(branch)}}
}

func (s *scope) active() branch {
	return s.branches[len(s.branches)-1]
}

// Table is the variable-type stack described in §3/§4.G. It is not
// safe for concurrent use; it is driven by exactly one traversal at a
// time, matching the single-threaded cooperative model.
type Table struct {
	scopes []*scope
}

// New returns a table with a single root scope.
func New() *Table {
	return &Table{scopes: []*scope{newScope()}}
}

func (t *Table) active() *scope {
	return t.scopes[len(t.scopes)-1]
}

// SetType unions typ's atoms into name's entry in the active branch.
func (t *Table) SetType(name, typ string) {
	b := t.active().active()
	b[name] = union(b[name], typ)
}

// SetTypeMany applies SetType to every name in names, for list
// destructuring of a single right-hand-side type.
func (t *Table) SetTypeMany(names []string, typ string) {
	for _, n := range names {
		t.SetType(n, typ)
	}
}

// GetType reads name, searching from the active branch down through the
// rest of the active scope's branch stack so a binding made in an outer
// branch stays visible inside a nested one until shadowed. "$this" and
// "static" substitute className when it is non-empty. Unbound names
// (and $this outside a class context, when className is empty) yield
// "".
func (t *Table) GetType(name, className string) string {
	if (name == "$this" || name == "static") && className != "" {
		return className
	}
	s := t.active()
	for i := len(s.branches) - 1; i >= 0; i-- {
		if typ, ok := s.branches[i][name]; ok {
			return typ
		}
	}
	return ""
}

// PushScope pushes a new scope containing a single empty branch,
// copying the current resolved type of each name in carry into it —
// used for closure `use` clauses. ($this needs no carry: GetType
// substitutes the class name for it.)
func (t *Table) PushScope(carry []string) {
	s := newScope()
	for _, name := range carry {
		s.active()[name] = t.GetType(name, "")
	}
	t.scopes = append(t.scopes, s)
}

// PopScope discards the active scope. It is a no-op on the root scope,
// which is never popped.
func (t *Table) PopScope() {
	if len(t.scopes) <= 1 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// PushBranch pushes a fresh empty branch onto the active scope, for
// entering a control-flow arm (an if/elseif/else body, a switch case,
// an instanceof-narrowed then-branch).
func (t *Table) PushBranch() {
	s := t.active()
	s.branches = append(s.branches, make(branch))
}

// PopBranch ends the top branch of the active scope and sets it aside
// in completed, for an arm whose own narrowing must not leak into its
// sibling arms (e.g. an if-arm's bindings must not be visible while
// processing the else-arm) but whose bindings still belong in the
// eventual PruneBranches join. It is a no-op if only one branch
// remains.
func (t *Table) PopBranch() {
	s := t.active()
	if len(s.branches) <= 1 {
		return
	}
	popped := s.branches[len(s.branches)-1]
	s.branches = s.branches[:len(s.branches)-1]
	s.completed = append(s.completed, popped)
}

// Names returns every variable name currently bound anywhere in the
// active scope's branch stack, for completion candidates.
func (t *Table) Names() []string {
	s := t.active()
	seen := make(map[string]bool)
	for _, b := range s.branches {
		for name := range b {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}

// PruneBranches consolidates every branch of the active scope — the
// branches still on the stack plus any set aside by PopBranch since the
// last join — into a single branch by per-name union of type atoms,
// implementing PHP's "after an if/else, both arms contribute" join.
func (t *Table) PruneBranches() {
	s := t.active()
	if len(s.branches) == 1 && len(s.completed) == 0 {
		return
	}
	merged := make(branch)
	for _, b := range s.branches {
		for name, typ := range b {
			merged[name] = union(merged[name], typ)
		}
	}
	for _, b := range s.completed {
		for name, typ := range b {
			merged[name] = union(merged[name], typ)
		}
	}
	s.branches = []branch{merged}
	s.completed = nil
}
