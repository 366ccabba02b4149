// Package diagnostics implements the per-document debounced diagnostics
// coordinator: it watches each open document's change event, walks the
// tree for attached parse errors after a quiescence window, and
// publishes a capped, cross-document diagnostic payload.
package diagnostics

import (
	"strings"
	"time"

	perrors "github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/position"

	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/internal/event"
)

// Severity mirrors an LSP-style diagnostic severity. Only Error is
// produced today, since the only diagnostic source is a parse error,
// but the type is kept open for later sources.
type Severity int

const (
	SeverityError Severity = 1
)

// String renders a Severity as its LSP-style name, for log and CLI output.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, shaped per the external
// interface's parse-error diagnostics.
type Diagnostic struct {
	Range    document.Range
	Severity Severity
	Source   string
	Message  string
}

const defaultSource = "intelephense"

// Options configures a Coordinator. A zero Options uses the documented
// defaults.
type Options struct {
	Wait     time.Duration // debounce quiescence window; default 1s
	MaxItems int           // cap on the published payload; default 100
}

func (o Options) withDefaults() Options {
	if o.Wait <= 0 {
		o.Wait = time.Second
	}
	if o.MaxItems <= 0 {
		o.MaxItems = 100
	}
	return o
}

// Coordinator debounces document change events and publishes
// aggregated diagnostics. It is driven by the same single-threaded
// cooperative model as the rest of the service; it is not safe for
// concurrent use.
type Coordinator struct {
	registry *document.Registry
	opts     Options

	watches map[string]*watch // uri -> subscription + debouncer
	cache   map[string][]Diagnostic

	OnStart func(uri string)
	OnEnd   func(uri string, diagnostics []Diagnostic)
}

type watch struct {
	token    event.Token
	debounce *event.Debounce[*document.Document]
}

// NewCoordinator returns a coordinator over registry's open documents.
func NewCoordinator(registry *document.Registry, opts Options) *Coordinator {
	return &Coordinator{
		registry: registry,
		opts:     opts.withDefaults(),
		watches:  make(map[string]*watch),
		cache:    make(map[string][]Diagnostic),
	}
}

// Watch subscribes to doc's change event and runs one immediate,
// undebounced diagnostic pass so a freshly opened document is covered
// without waiting out the quiescence window. Call on openDocument.
func (c *Coordinator) Watch(doc *document.Document) {
	uri := doc.URI
	c.Unwatch(uri)

	db := event.NewDebounce(func(d *document.Document) { c.refreshAndPublish(d) }, c.opts.Wait)
	tok := doc.Changed.Subscribe(func(d *document.Document) { db.Handle(d) })
	c.watches[uri] = &watch{token: tok, debounce: db}

	c.refreshAndPublish(doc)
}

// Unwatch cancels uri's debouncer and subscription and drops its
// cached diagnostics. Call on closeDocument.
func (c *Coordinator) Unwatch(uri string) {
	w, ok := c.watches[uri]
	if !ok {
		return
	}
	w.debounce.Clear()
	if doc, ok := c.registry.Peek(uri); ok {
		doc.Changed.Unsubscribe(w.token)
	}
	delete(c.watches, uri)
	delete(c.cache, uri)
}

// Flush forces any pending debounced run for uri to fire immediately.
// Mainly useful for tests that don't want to wait out the real window.
func (c *Coordinator) Flush(uri string) {
	if w, ok := c.watches[uri]; ok {
		w.debounce.Flush()
	}
}

func (c *Coordinator) refreshAndPublish(doc *document.Document) {
	if c.OnStart != nil {
		c.OnStart(doc.URI)
	}
	c.cache[doc.URI] = fromParseErrors(doc, c.opts.MaxItems)
	if c.OnEnd != nil {
		c.OnEnd(doc.URI, c.aggregate())
	}
}

// aggregate concatenates cached per-URI diagnostics across every
// document the registry currently has open, most-recently-touched
// first, truncated to the configured cap (§4.J: "the published payload
// is the concatenation across all open documents, truncated to
// maxItems").
func (c *Coordinator) aggregate() []Diagnostic {
	var out []Diagnostic
	for _, doc := range c.registry.MostRecent() {
		diags, ok := c.cache[doc.URI]
		if !ok {
			continue
		}
		remaining := c.opts.MaxItems - len(out)
		if remaining <= 0 {
			break
		}
		if len(diags) > remaining {
			diags = diags[:remaining]
		}
		out = append(out, diags...)
	}
	return out
}

// fromParseErrors converts a document's attached parse errors into
// diagnostics, capped to max.
func fromParseErrors(doc *document.Document, max int) []Diagnostic {
	errs := doc.ParseErrors
	if len(errs) > max {
		errs = errs[:max]
	}
	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, Diagnostic{
			Range:    rangeOf(e),
			Severity: SeverityError,
			Source:   defaultSource,
			Message:  formatMessage(e.Msg),
		})
	}
	return out
}

// formatMessage tightens a raw php-parser error message toward this
// service's documented "Unexpected <tokenName>" diagnostic shape. The
// underlying parser reports syntax errors as free-form text (e.g.
// "syntax error, unexpected '}'") rather than a separate structured
// token-name field, so this trims everything up to and including the
// word "unexpected" and re-prefixes it, rather than discarding the
// parser's own wording. Messages that don't mention "unexpected" at all
// (a different error class) are passed through unchanged.
func formatMessage(raw string) string {
	idx := strings.Index(strings.ToLower(raw), "unexpected")
	if idx == -1 {
		return raw
	}
	return "Unexpected" + raw[idx+len("unexpected"):]
}

// positioned is satisfied by a parse error carrying the unexpected
// token's source position, mirroring every positioned AST vertex
// (internal/phrase.positioned). No vendored parser source was
// available to confirm errors.Error exposes this; callers that get a
// zero range back are hitting that best-effort fallback, not a bug in
// the offset arithmetic.
type positioned interface {
	GetPosition() *position.Position
}

// rangeOf recovers the byte-offset range of a parse error's unexpected
// token.
func rangeOf(e *perrors.Error) document.Range {
	p, ok := any(e).(positioned)
	if !ok {
		return document.Range{}
	}
	pos := p.GetPosition()
	if pos == nil {
		return document.Range{}
	}
	return document.Range{Start: pos.StartPos, End: pos.EndPos}
}
