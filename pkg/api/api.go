// Package api provides the public entry point for embedding the PHP
// language intelligence service as a library.
//
// This package lets a host process (an editor plugin, an LSP server, a
// build-time linter) drive document lifecycle, symbol queries, and
// completions programmatically, the same operations a transport layer
// would otherwise expose over a wire protocol.
//
// Basic usage example:
//
//	svc, err := api.NewService(api.Options{ConfigPath: "phpintel.yaml"})
//	if err != nil {
//	    log.Fatalf("Failed to create service: %v", err)
//	}
//
//	svc.OpenDocument("file:///hello.php", "php", 1, "<?php echo 'Hello World'; ?>")
//	symbols := svc.DocumentSymbols("file:///hello.php")
package api

import (
	"fmt"

	"github.com/whit3rabbit/go-phpintel/internal/config"
	"github.com/whit3rabbit/go-phpintel/internal/diagnostics"
	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/internal/service"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
)

// PrintInfo prints formatted information to stdout, respecting the Testing flag.
// If Testing mode is active, no output will be generated.
// This function forwards to the internal config.PrintInfo function.
func PrintInfo(format string, args ...interface{}) {
	config.PrintInfo(format, args...)
}

// Service is the embeddable façade over the language intelligence core.
// It owns one workspace's open documents, indexed symbols, and
// debounced diagnostics.
type Service struct {
	inner *service.Service
}

// Options configures a new Service.
type Options struct {
	// ConfigPath is the path to a YAML configuration file. If empty,
	// LoadConfig's own default-file search and fallback-to-defaults
	// behavior applies.
	ConfigPath string

	// Silent suppresses informational messages during indexing and
	// diagnostics.
	Silent bool
}

// NewService loads configuration per options and returns a ready Service.
func NewService(options Options) (*Service, error) {
	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if options.Silent {
		cfg.Silent = true
	}
	return &Service{inner: service.NewService(cfg)}, nil
}

// OnDiagnostics registers the callbacks fired when a document's
// debounced diagnostics run starts and ends. end receives diagnostics
// for the triggering document concatenated with every other
// currently-open document's most recent diagnostics, truncated to the
// configured maximum.
func (s *Service) OnDiagnostics(start func(uri string), end func(uri string, diags []diagnostics.Diagnostic)) {
	s.inner.OnDiagnostics(start, end)
}

// OpenDocument adds uri to the workspace, parses it, indexes its
// symbols, and begins debounced diagnostics.
func (s *Service) OpenDocument(uri, languageID string, version int, text string) {
	s.inner.OpenDocument(uri, languageID, version, text)
}

// CloseDocument removes uri from the workspace and drops every symbol
// declared in it.
func (s *Service) CloseDocument(uri string) {
	s.inner.CloseDocument(uri)
}

// EditDocument applies changes to uri's open document, reparsing and
// re-indexing its symbols.
func (s *Service) EditDocument(uri string, version int, changes []document.Change) error {
	return s.inner.EditDocument(uri, version, changes)
}

// Discover indexes text under uri without opening it as a diagnosable
// document, for ingesting workspace-wide symbols (e.g. a vendor
// library). It returns the number of symbols ingested.
func (s *Service) Discover(uri, text string) int {
	return s.inner.Discover(uri, text)
}

// Forget removes every symbol declared under uri, independent of
// whether uri is or ever was open, and returns the number removed.
func (s *Service) Forget(uri string) int {
	return s.inner.Forget(uri)
}

// DocumentSymbols returns a flat, depth-first list of every symbol
// declared in uri.
func (s *Service) DocumentSymbols(uri string) []service.SymbolInfo {
	return s.inner.DocumentSymbols(uri)
}

// WorkspaceSymbols returns every indexed symbol whose name starts with
// query (case-insensitively), ranked by name length then fully
// qualified name.
func (s *Service) WorkspaceSymbols(query string) []service.SymbolInfo {
	return s.inner.WorkspaceSymbols(query)
}

// Completions returns candidates for the identifier fragment ending at
// byte offset position in uri's current text.
func (s *Service) Completions(uri string, position int) []service.CompletionItem {
	return s.inner.Completions(uri, position)
}

// NumberDocumentsOpen reports how many documents are currently open.
func (s *Service) NumberDocumentsOpen() int {
	return s.inner.NumberDocumentsOpen()
}

// NumberDocumentsKnown reports how many URIs have been opened or
// discovered and not since forgotten.
func (s *Service) NumberDocumentsKnown() int {
	return s.inner.NumberDocumentsKnown()
}

// NumberSymbolsKnown reports the total number of distinctly-addressable
// symbols currently indexed across the workspace.
func (s *Service) NumberSymbolsKnown() int {
	return s.inner.NumberSymbolsKnown()
}

// CycleDiagnostics reports every cyclic-inheritance chain detected
// while resolving member lookups across the workspace so far.
func (s *Service) CycleDiagnostics() []symbol.CycleNotice {
	return s.inner.CycleDiagnostics()
}
