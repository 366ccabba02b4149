package symbol

import (
	"sort"
	"strings"
	"sync"

	"github.com/whit3rabbit/go-phpintel/internal/search"
)

// indexEntry is one row of the sorted, lowercased name index used for
// prefix queries. Keeping this as a flat sorted slice and reusing
// internal/search's rank/exact binary search avoids hand-rolling a
// node-based trie: a sorted slice plus a prefix-bound comparator gives
// the same O(log n) entry point, for less code.
type indexEntry struct {
	lower string
	sym   *Symbol
}

// Store is the workspace-wide symbol index. It exclusively owns every
// indexed Symbol (§3 Ownership); callers only ever receive borrowed
// pointers back out of Find/Match/LookupMembers.
type Store struct {
	mu sync.RWMutex

	byFQN map[string]*Symbol   // exact FQN -> symbol
	byURI map[string][]*Symbol // declaring URI -> root symbols added for it

	names      []indexEntry // sorted by lower, for prefix Match
	namesDirty bool

	cyclesMu sync.Mutex
	cycles   []CycleNotice
}

// CycleNotice records one cyclic-inheritance chain LookupMembers
// refused to follow: fqn is the container encountered a second time
// while walking its own ancestors.
type CycleNotice struct {
	FQN string
}

// NewStore returns an empty symbol store.
func NewStore() *Store {
	return &Store{
		byFQN: make(map[string]*Symbol),
		byURI: make(map[string][]*Symbol),
	}
}

// Add indexes root and every descendant reachable through Children,
// recording root itself against its URI for SymbolsForDocument and
// Remove.
func (s *Store) Add(root *Symbol) {
	if root == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byURI[root.URI] = append(s.byURI[root.URI], root)
	s.indexTree(root)
	s.namesDirty = true
}

func (s *Store) indexTree(sym *Symbol) {
	if sym.FQN != "" {
		s.byFQN[sym.FQN] = sym
	}
	for _, c := range sym.Children {
		s.indexTree(c)
	}
}

// Remove drops every symbol declared in uri from every index.
func (s *Store) Remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots := s.byURI[uri]
	delete(s.byURI, uri)
	for _, root := range roots {
		s.unindexTree(root)
	}
	s.namesDirty = true
}

func (s *Store) unindexTree(sym *Symbol) {
	if sym.FQN != "" {
		delete(s.byFQN, sym.FQN)
	}
	for _, c := range sym.Children {
		s.unindexTree(c)
	}
}

// Find returns the symbol with exact FQN fqn, if its Kind is in mask.
func (s *Store) Find(fqn string, mask Mask) (*Symbol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sym, ok := s.byFQN[fqn]
	if !ok || !mask.Match(sym.Kind) {
		return nil, false
	}
	return sym, true
}

// Count returns the number of distinctly-addressable (non-empty FQN)
// symbols currently indexed, across every declaring URI.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byFQN)
}

// SymbolsForDocument returns the root symbols indexed against uri.
func (s *Store) SymbolsForDocument(uri string) []*Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Symbol, len(s.byURI[uri]))
	copy(out, s.byURI[uri])
	return out
}

// Match returns every indexed symbol whose name (case-insensitively)
// starts with prefix and whose Kind is in mask, used by completions and
// workspace-symbol search.
func (s *Store) Match(prefix string, mask Mask) []*Symbol {
	s.mu.Lock() // rebuild of the name index, if dirty, mutates state
	s.rebuildNameIndexLocked()
	lower := strings.ToLower(prefix)
	lo, hi := search.Range(len(s.names),
		func(i int) int { return strings.Compare(s.names[i].lower, lower) },
		func(i int) int {
			if s.names[i].lower < lower || strings.HasPrefix(s.names[i].lower, lower) {
				return -1
			}
			return 1
		},
	)
	var out []*Symbol
	for _, e := range s.names[lo:hi] {
		if mask.Match(e.sym.Kind) {
			out = append(out, e.sym)
		}
	}
	s.mu.Unlock()
	return out
}

func (s *Store) rebuildNameIndexLocked() {
	if !s.namesDirty {
		return
	}
	names := make([]indexEntry, 0, len(s.byFQN))
	for _, sym := range s.byFQN {
		names = append(names, indexEntry{lower: strings.ToLower(sym.Name), sym: sym})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].lower < names[j].lower })
	s.names = names
	s.namesDirty = false
}

// LookupMode selects whether LookupMembers stops at the first matching
// member (non-static dispatch: `$obj->method()` resolves to exactly one
// declaration) or collects every candidate along the walk (static
// dispatch and "all members" queries, e.g. for completion lists).
type LookupMode int

const (
	FirstMatch LookupMode = iota
	AllMatches
)

// LookupMembers walks containerFQN's inheritance/trait closure in
// MRO-style order — the container itself (with trait-imported members
// already flattened in), then the parent chain recursively, then each
// implemented interface — collecting members whose Kind is in mask,
// name matches memberName (when non-empty), and whose Modifiers satisfy
// required and avoid forbidden.
func (s *Store) LookupMembers(containerFQN, memberName string, mask Mask, required, forbidden Modifier, mode LookupMode) []*Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Symbol
	visited := make(map[string]bool)
	s.walkMembers(containerFQN, memberName, mask, required, forbidden, mode, visited, &out)
	return out
}

func (s *Store) walkMembers(fqn, memberName string, mask Mask, required, forbidden Modifier, mode LookupMode, visited map[string]bool, out *[]*Symbol) bool {
	if fqn == "" {
		return false // absent parent: stop this branch silently
	}
	if visited[fqn] {
		s.recordCycle(fqn)
		return false
	}
	visited[fqn] = true

	container, ok := s.byFQN[fqn]
	if !ok {
		return false
	}

	for _, m := range s.resolvedChildrenLocked(container) {
		if !mask.Match(m.Kind) {
			continue
		}
		if memberName != "" && m.Name != memberName {
			continue
		}
		if !m.Modifiers.Has(required) || m.Modifiers.HasAny(forbidden) {
			continue
		}
		*out = append(*out, m)
		if mode == FirstMatch {
			return true
		}
	}

	if container.ParentFQN != "" {
		if s.walkMembers(container.ParentFQN, memberName, mask, required, forbidden, mode, visited, out) && mode == FirstMatch {
			return true
		}
	}
	for _, iface := range container.ImplementedFQNs {
		if s.walkMembers(iface, memberName, mask, required, forbidden, mode, visited, out) && mode == FirstMatch {
			return true
		}
	}
	return len(*out) > 0
}

func (s *Store) recordCycle(fqn string) {
	s.cyclesMu.Lock()
	defer s.cyclesMu.Unlock()
	s.cycles = append(s.cycles, CycleNotice{FQN: fqn})
}

// CycleDiagnostics returns every cyclic-inheritance chain LookupMembers
// has detected so far, oldest first. Cyclic inheritance is a defect in
// the indexed project itself (`class A extends B` closing a loop back
// to `A`), not a per-document parse condition, so it is surfaced
// through this separate channel rather than through
// internal/diagnostics, which is scoped to one document's parse
// errors.
func (s *Store) CycleDiagnostics() []CycleNotice {
	s.cyclesMu.Lock()
	defer s.cyclesMu.Unlock()
	out := make([]CycleNotice, len(s.cycles))
	copy(out, s.cycles)
	return out
}

// resolvedChildrenLocked returns container's own declared Children plus
// its trait-imported members, flattened per trait declaration order
// with "later use wins" on name conflicts (§9 design note). The merge
// is recomputed on every call rather than cached on the Symbol so a
// trait added to the store after its user's class is still picked up.
func (s *Store) resolvedChildrenLocked(container *Symbol) []*Symbol {
	if len(container.UsedFQNs) == 0 {
		return container.Children
	}

	byName := make(map[string]*Symbol, len(container.Children))
	order := make([]string, 0, len(container.Children))
	for _, c := range container.Children {
		if _, seen := byName[c.Name]; !seen {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}

	for _, traitFQN := range container.UsedFQNs {
		trait, ok := s.byFQN[traitFQN]
		if !ok {
			continue
		}
		for _, m := range trait.Children {
			prior, exists := byName[m.Name]
			if exists && !prior.Imported {
				continue // the class's own declaration always wins over a trait import
			}
			imported := *m
			imported.Imported = true
			if exists && prior.Imported {
				imported.TraitConflict = "overrides member \"" + m.Name + "\" imported from an earlier trait use"
			}
			if !exists {
				order = append(order, m.Name)
			}
			byName[m.Name] = &imported
		}
	}

	out := make([]*Symbol, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
