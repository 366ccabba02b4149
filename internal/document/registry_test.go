package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whit3rabbit/go-phpintel/internal/document"
)

func uris(docs []*document.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.URI
	}
	return out
}

func TestOpenOrdersMostRecentFirst(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php", nil)
	r.Open("file:///b.php", "<?php", nil)
	r.Open("file:///c.php", "<?php", nil)

	assert.Equal(t, []string{"file:///c.php", "file:///b.php", "file:///a.php"}, uris(r.MostRecent()))
	assert.Equal(t, 3, r.Count())
}

func TestFindPromotesToFront(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php", nil)
	r.Open("file:///b.php", "<?php", nil)
	r.Open("file:///c.php", "<?php", nil)

	_, ok := r.Find("file:///a.php")
	require.True(t, ok)

	assert.Equal(t, []string{"file:///a.php", "file:///c.php", "file:///b.php"}, uris(r.MostRecent()))
}

func TestPeekDoesNotReorder(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php", nil)
	r.Open("file:///b.php", "<?php", nil)

	_, ok := r.Peek("file:///a.php")
	require.True(t, ok)
	assert.Equal(t, []string{"file:///b.php", "file:///a.php"}, uris(r.MostRecent()))
}

func TestCloseRemovesDocument(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php", nil)
	r.Close("file:///a.php")

	_, ok := r.Find("file:///a.php")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestCloseOfUnknownURIIsNoop(t *testing.T) {
	r := document.NewRegistry()
	r.Close("file:///never-opened.php")
	assert.Equal(t, 0, r.Count())
}

func TestEditPromotesToFrontAndReparsess(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php", nil)
	r.Open("file:///b.php", "<?php class Foo {}", nil)

	err := r.Edit("file:///a.php", []document.Change{{Text: "<?php class Bar {}"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"file:///a.php", "file:///b.php"}, uris(r.MostRecent()))
	doc, _ := r.Peek("file:///a.php")
	assert.Contains(t, doc.Text, "Bar")
}

func TestEditOfUnknownURIReturnsError(t *testing.T) {
	r := document.NewRegistry()
	err := r.Edit("file:///missing.php", []document.Change{{Text: "<?php"}})
	require.Error(t, err)
}

func TestReopenReplacesDocumentWithoutDuplicatingEntry(t *testing.T) {
	r := document.NewRegistry()
	r.Open("file:///a.php", "<?php class Foo {}", nil)
	r.Open("file:///a.php", "<?php class Bar {}", nil)

	assert.Equal(t, 1, r.Count())
	doc, _ := r.Peek("file:///a.php")
	assert.Contains(t, doc.Text, "Bar")
}
