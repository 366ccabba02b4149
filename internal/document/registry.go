package document

import "github.com/VKCOM/php-parser/pkg/version"

// node is one entry in the registry's intrusive doubly-linked MRU
// list; head is most recently touched, tail least recently touched.
type node struct {
	doc  *Document
	prev *node
	next *node
}

// Registry maps URI to an open Document and keeps them ordered by
// recency of access for the diagnostics coordinator, which wants to
// process the most recently touched document first. Every lookup that
// finds a document promotes it to the front, replacing the source's
// destructive pop-and-rebuild with an O(1) splice.
type Registry struct {
	byURI map[string]*node
	head  *node
	tail  *node
}

// NewRegistry returns an empty document registry.
func NewRegistry() *Registry {
	return &Registry{byURI: make(map[string]*node)}
}

// Open parses text under uri and registers it, promoting it to the
// front. Opening an already-open URI replaces its document.
func (r *Registry) Open(uri, text string, ver *version.Version) *Document {
	doc := New(uri, text, ver)
	n, exists := r.byURI[uri]
	if exists {
		n.doc = doc
		r.moveToFront(n)
		return doc
	}
	n = &node{doc: doc}
	r.byURI[uri] = n
	r.pushFront(n)
	return doc
}

// Close removes uri from the registry. It is a no-op if uri is not open.
func (r *Registry) Close(uri string) {
	n, ok := r.byURI[uri]
	if !ok {
		return
	}
	r.unlink(n)
	delete(r.byURI, uri)
}

// Edit applies edits to the document open at uri and promotes it to
// the front. It returns an error if uri is not open or the edit itself
// fails.
func (r *Registry) Edit(uri string, edits []Change) error {
	n, ok := r.byURI[uri]
	if !ok {
		return &NotOpenError{URI: uri}
	}
	if err := n.doc.Apply(edits); err != nil {
		return err
	}
	r.moveToFront(n)
	return nil
}

// Find returns the document open at uri, promoting it to the front,
// and whether it was found.
func (r *Registry) Find(uri string) (*Document, bool) {
	n, ok := r.byURI[uri]
	if !ok {
		return nil, false
	}
	r.moveToFront(n)
	return n.doc, true
}

// Peek returns the document open at uri without affecting MRU order.
func (r *Registry) Peek(uri string) (*Document, bool) {
	n, ok := r.byURI[uri]
	if !ok {
		return nil, false
	}
	return n.doc, true
}

// MostRecent returns open documents ordered most- to least-recently
// touched.
func (r *Registry) MostRecent() []*Document {
	out := make([]*Document, 0, len(r.byURI))
	for n := r.head; n != nil; n = n.next {
		out = append(out, n.doc)
	}
	return out
}

// Count returns the number of currently open documents.
func (r *Registry) Count() int { return len(r.byURI) }

func (r *Registry) pushFront(n *node) {
	n.prev = nil
	n.next = r.head
	if r.head != nil {
		r.head.prev = n
	}
	r.head = n
	if r.tail == nil {
		r.tail = n
	}
}

func (r *Registry) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		r.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		r.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (r *Registry) moveToFront(n *node) {
	if n == r.head {
		return
	}
	r.unlink(n)
	r.pushFront(n)
}

// NotOpenError reports an operation on a URI the registry does not
// have open.
type NotOpenError struct{ URI string }

func (e *NotOpenError) Error() string { return "document: " + e.URI + " is not open" }
