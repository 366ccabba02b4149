// Package service implements the external-interface façade (§6): the
// single entry point a transport (an LSP server, a CLI, an embedding
// host) drives to open/edit/close documents and query symbols,
// completions, and diagnostics. It owns the document registry, the
// workspace symbol store, and the diagnostics coordinator, and wires
// them together.
package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/whit3rabbit/go-phpintel/internal/analysis"
	"github.com/whit3rabbit/go-phpintel/internal/config"
	"github.com/whit3rabbit/go-phpintel/internal/diagnostics"
	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/internal/resolve"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
	"github.com/whit3rabbit/go-phpintel/internal/vartable"
)

// InvariantError reports a structural contract violation (§7's
// InternalInvariantViolation): scope-stack underflow, re-entrant
// mutation, or any other condition the core treats as a programming
// error rather than a data-dependent failure. Callers catch it at the
// service boundary, log it, and leave global state untouched, rather
// than propagating it to a user-facing query.
type InvariantError struct {
	Op      string
	Message string
}

func (e *InvariantError) Error() string { return "phpintel: " + e.Op + ": " + e.Message }

// SymbolInfo is the flat, transport-facing projection of a symbol.Symbol
// used by documentSymbols and workspaceSymbols.
type SymbolInfo struct {
	Name   string
	Kind   symbol.Kind
	FQN    string
	URI    string
	Range  symbol.Range
	Detail string // declared type
	Doc    string
}

// CompletionItem is one candidate returned by Completions.
type CompletionItem struct {
	Label         string
	Kind          symbol.Kind
	Detail        string // declared type
	Documentation string
}

// Service is the façade described by §6. It is not safe for concurrent
// use: per §5, mutating operations and queries alike run on one
// logical task, and the façade is where a re-entrancy guard would be
// enforced if a caller violated that.
type Service struct {
	cfg      *config.Config
	registry *document.Registry
	store    *symbol.Store
	diag     *diagnostics.Coordinator

	known map[string]bool // URIs ever discovered or opened, not yet forgotten

	entered bool // re-entrancy guard (§5: "fail fast if re-entrancy is detected")
}

// NewService builds a façade over a fresh registry and symbol store,
// wiring the diagnostics coordinator per cfg's debounce settings.
func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	reg := document.NewRegistry()
	s := &Service{
		cfg:      cfg,
		registry: reg,
		store:    symbol.NewStore(),
		known:    make(map[string]bool),
	}
	s.diag = diagnostics.NewCoordinator(reg, diagnostics.Options{
		Wait:     cfg.DiagnosticsWait(),
		MaxItems: cfg.DiagnosticsMaxItems,
	})
	return s
}

// OnDiagnostics registers the handler invoked at the end of each
// debounced diagnostics run (onDiagnosticsEnd in §6's event list).
func (s *Service) OnDiagnostics(start func(uri string), end func(uri string, diags []diagnostics.Diagnostic)) {
	s.diag.OnStart = start
	s.diag.OnEnd = end
}

// guard runs fn under the re-entrancy guard, recovering any panic
// (re-entrancy itself, or a scope/branch-stack underflow surfaced from
// deeper in the analysis visitors) into an *InvariantError rather than
// letting it cross the façade boundary and crash the process. The
// recovered error is logged the way the rest of this codebase gates
// informational output, through cfg.Silent, and then returned to fn's
// caller.
func (s *Service) guard(op string, fn func() error) (err error) {
	if s.entered {
		return &InvariantError{Op: op, Message: "re-entrant call into the service façade"}
	}
	s.entered = true
	defer func() {
		s.entered = false
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
			} else {
				err = &InvariantError{Op: op, Message: fmt.Sprint(r)}
			}
			if !s.cfg.Silent {
				fmt.Printf("phpintel: recovered from invariant violation in %s: %v\n", op, err)
			}
		}
	}()
	return fn()
}

// OpenDocument adds uri to the registry, parses it, indexes its
// symbols, and begins debounced diagnostics. languageId and version are
// accepted for interface parity with an LSP transport; this service
// does not branch on either. An invariant violation is recovered and
// logged (unless cfg.Silent), not returned: a re-entrant call leaves
// uri unopened, while a panic after the registry has opened uri leaves
// it open but possibly not indexed or watched.
func (s *Service) OpenDocument(uri, languageId string, version int, text string) {
	s.guard("openDocument", func() error {
		doc := s.registry.Open(uri, text, s.cfg.ParserVersion())
		s.indexDocument(doc)
		s.diag.Watch(doc)
		return nil
	})
}

// CloseDocument removes uri from the registry and drops every symbol
// declared in it from the store.
func (s *Service) CloseDocument(uri string) {
	s.guard("closeDocument", func() error {
		s.diag.Unwatch(uri)
		s.registry.Close(uri)
		s.store.Remove(uri)
		delete(s.known, uri)
		return nil
	})
}

// EditDocument applies changes to uri's open document, reparsing and
// firing its change event (which the diagnostics coordinator's
// subscription picks up), and re-indexes its symbols. A recovered
// invariant violation is returned like any other edit error.
func (s *Service) EditDocument(uri string, version int, changes []document.Change) error {
	return s.guard("editDocument", func() error {
		if err := s.registry.Edit(uri, changes); err != nil {
			return err
		}
		doc, ok := s.registry.Peek(uri)
		if !ok {
			return nil
		}
		s.indexDocument(doc)
		return nil
	})
}

// Discover indexes text under uri without opening it as a live,
// diagnosable document — for workspace-wide symbol ingestion (e.g. a
// vendor library file) rather than an editor buffer. It returns the
// number of symbols ingested, or 0 if a recovered invariant violation
// aborted the attempt.
func (s *Service) Discover(uri, text string) int {
	count := 0
	s.guard("discover", func() error {
		doc := document.New(uri, text, s.cfg.ParserVersion())
		count = s.indexDocument(doc)
		return nil
	})
	return count
}

// Forget removes every symbol declared under uri from the store,
// independent of whether uri is (or ever was) open, and returns the
// number removed, or 0 if a recovered invariant violation aborted the
// attempt.
func (s *Service) Forget(uri string) int {
	count := 0
	s.guard("forget", func() error {
		for _, root := range s.store.SymbolsForDocument(uri) {
			count += countTree(root)
		}
		s.store.Remove(uri)
		delete(s.known, uri)
		return nil
	})
	return count
}

func (s *Service) indexDocument(doc *document.Document) int {
	s.store.Remove(doc.URI)
	if doc.Root == nil {
		delete(s.known, doc.URI)
		return 0
	}
	roots := analysis.Index(doc.Root, doc.URI)
	count := 0
	for _, root := range roots {
		s.store.Add(root)
		count += countTree(root)
	}
	s.known[doc.URI] = true
	return count
}

func countTree(sym *symbol.Symbol) int {
	n := 1
	for _, c := range sym.Children {
		n += countTree(c)
	}
	return n
}

// DocumentSymbols returns a flat, depth-first list of every symbol
// declared in uri.
func (s *Service) DocumentSymbols(uri string) []SymbolInfo {
	var out []SymbolInfo
	for _, root := range s.store.SymbolsForDocument(uri) {
		flatten(root, &out)
	}
	return out
}

func flatten(sym *symbol.Symbol, out *[]SymbolInfo) {
	*out = append(*out, toSymbolInfo(sym))
	for _, c := range sym.Children {
		flatten(c, out)
	}
}

func toSymbolInfo(sym *symbol.Symbol) SymbolInfo {
	return SymbolInfo{
		Name:   sym.Name,
		Kind:   sym.Kind,
		FQN:    sym.FQN,
		URI:    sym.URI,
		Range:  sym.Range,
		Detail: sym.Type,
		Doc:    sym.Doc,
	}
}

// WorkspaceSymbols returns every indexed symbol whose name starts with
// query (case-insensitively), ranked by name length ascending then FQN
// lexicographically ascending (§8 scenario 6).
func (s *Service) WorkspaceSymbols(query string) []SymbolInfo {
	matches := s.store.Match(query, symbol.AnyKind)
	rankSymbols(matches)
	out := make([]SymbolInfo, len(matches))
	for i, m := range matches {
		out[i] = toSymbolInfo(m)
	}
	return out
}

func rankSymbols(syms []*symbol.Symbol) {
	sort.SliceStable(syms, func(i, j int) bool {
		if len(syms[i].Name) != len(syms[j].Name) {
			return len(syms[i].Name) < len(syms[j].Name)
		}
		return syms[i].FQN < syms[j].FQN
	})
}

// Completions returns candidates for the identifier fragment ending at
// byte offset position in uri's current text, capped to the
// configured maximum. A "$"-prefixed fragment completes against
// currently bound local variables (recomputed by halting a fresh
// analysis pass at position); any other fragment completes against the
// workspace symbol store.
func (s *Service) Completions(uri string, position int) []CompletionItem {
	doc, ok := s.registry.Find(uri)
	if !ok || doc.Root == nil {
		return nil
	}
	prefix := completionPrefix(doc.Text, position)
	if prefix == "" {
		return nil
	}

	var items []CompletionItem
	if strings.HasPrefix(prefix, "$") {
		items = s.variableCompletions(doc, position, prefix)
	} else {
		items = s.symbolCompletions(prefix)
	}
	if len(items) > s.cfg.MaxCompletions {
		items = items[:s.cfg.MaxCompletions]
	}
	return items
}

func (s *Service) symbolCompletions(prefix string) []CompletionItem {
	matches := s.store.Match(prefix, symbol.AnyKind)
	rankSymbols(matches)
	out := make([]CompletionItem, len(matches))
	for i, m := range matches {
		out[i] = CompletionItem{Label: m.Name, Kind: m.Kind, Detail: m.Type, Documentation: m.Doc}
	}
	return out
}

func (s *Service) variableCompletions(doc *document.Document, position int, prefix string) []CompletionItem {
	r := resolve.New()
	vars := vartable.New()
	nsV := analysis.NewNamespaceVisitor(r)
	varV := analysis.NewVariableVisitor(r, s.store, vars)
	varV.HaltAtOffset(position)
	tree.Traverse(doc.Root, tree.NewMultiVisitor(nsV, varV))

	lower := strings.ToLower(prefix)
	var out []CompletionItem
	for _, name := range vars.Names() {
		if !strings.HasPrefix(strings.ToLower(name), lower) {
			continue
		}
		out = append(out, CompletionItem{
			Label:  name,
			Kind:   symbol.KindVariable,
			Detail: vars.GetType(name, r.ClassName()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// completionPrefix returns the identifier fragment ending at byte
// offset pos in text: a run of identifier characters, plus a leading
// "$" if one immediately precedes that run (a variable fragment).
func completionPrefix(text string, pos int) string {
	if pos < 0 || pos > len(text) {
		return ""
	}
	start := pos
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	if start > 0 && text[start-1] == '$' {
		start--
	}
	return text[start:pos]
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}

// NumberDocumentsOpen reports how many documents are currently open in
// the registry.
func (s *Service) NumberDocumentsOpen() int { return s.registry.Count() }

// NumberDocumentsKnown reports how many URIs have been opened or
// discovered and not since forgotten — a superset of NumberDocumentsOpen
// when discover has indexed files that were never opened as buffers.
func (s *Service) NumberDocumentsKnown() int { return len(s.known) }

// NumberSymbolsKnown reports the total number of distinctly-addressable
// symbols currently indexed across the workspace.
func (s *Service) NumberSymbolsKnown() int { return s.store.Count() }

// CycleDiagnostics reports every cyclic-inheritance chain detected
// while resolving member lookups across the workspace so far.
func (s *Service) CycleDiagnostics() []symbol.CycleNotice { return s.store.CycleDiagnostics() }
