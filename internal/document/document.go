// Package document keeps the set of open PHP files, their current text,
// and their parsed phrase trees. Documents are parsed with php-parser's
// parser.Parse configured with a conf.Config{Version, ErrorHandlerFunc}
// that collects recoverable errors instead of discarding them.
package document

import (
	"fmt"
	"strings"

	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"

	"github.com/whit3rabbit/go-phpintel/internal/event"
	"github.com/whit3rabbit/go-phpintel/internal/phrase"
)

// Range is a half-open byte-offset span within a document's text. A nil
// *Range on a Change means "replace the whole document".
type Range struct {
	Start, End int
}

// Change describes one edit to apply to a document's text, in the
// order the caller supplies it.
type Change struct {
	Range *Range
	Text  string
}

// Document owns one file's text, its most recent parse tree, and the
// parse errors attached to that parse. Per the single-threaded
// cooperative model, a Document is not safe for concurrent use.
type Document struct {
	URI  string
	Text string

	Root        *phrase.Node
	ParseErrors []*errors.Error

	// Changed fires after every reparse done by Apply (an edit), carrying
	// the document itself so subscribers can re-read Root. The initial
	// parse in New does not fire it.
	Changed *event.Event[*Document]

	version *version.Version
}

// New parses text and returns an open Document. ver selects the PHP
// dialect php-parser targets; nil defaults to PHP 8.1, matching the
// teacher's obfuscator default.
func New(uri, text string, ver *version.Version) *Document {
	if ver == nil {
		ver = &version.Version{Major: 8, Minor: 1}
	}
	d := &Document{
		URI:     uri,
		version: ver,
		Changed: event.New[*Document](),
	}
	d.Text = text
	d.reparse()
	return d
}

// Apply applies edits in order, reparses once at the end, and fires
// Changed. A range edit whose bounds fall outside the current text
// returns an error and leaves the document untouched.
func (d *Document) Apply(edits []Change) error {
	text := d.Text
	for _, e := range edits {
		if e.Range == nil {
			text = e.Text
			continue
		}
		r := e.Range
		if r.Start < 0 || r.End < r.Start || r.End > len(text) {
			return &RangeError{URI: d.URI, Start: r.Start, End: r.End, Len: len(text)}
		}
		var b strings.Builder
		b.Grow(len(text) - (r.End - r.Start) + len(e.Text))
		b.WriteString(text[:r.Start])
		b.WriteString(e.Text)
		b.WriteString(text[r.End:])
		text = b.String()
	}
	d.Text = text
	d.reparse()
	d.Changed.Trigger(d)
	return nil
}

func (d *Document) reparse() {
	var parseErrors []*errors.Error
	cfg := conf.Config{
		Version:          d.version,
		ErrorHandlerFunc: func(e *errors.Error) { parseErrors = append(parseErrors, e) },
	}
	root, err := parser.Parse([]byte(d.Text), cfg)
	if err != nil {
		parseErrors = append(parseErrors, &errors.Error{Msg: err.Error()})
	}
	d.ParseErrors = parseErrors
	if root != nil {
		d.Root = phrase.From(root)
	} else {
		d.Root = nil
	}
}

// RangeError reports an out-of-bounds range edit.
type RangeError struct {
	URI        string
	Start, End int
	Len        int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("document: edit range [%d,%d) out of bounds for %s (length %d)",
		e.Start, e.End, e.URI, e.Len)
}
