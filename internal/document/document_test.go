package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/internal/tree"
)

func TestNewParsesValidSource(t *testing.T) {
	d := document.New("file:///a.php", "<?php class Foo {}", nil)
	require.NotNil(t, d.Root)
	assert.Empty(t, d.ParseErrors)
}

func TestNewRecordsParseErrors(t *testing.T) {
	d := document.New("file:///bad.php", "<?php class {", nil)
	assert.NotEmpty(t, d.ParseErrors)
}

func TestApplyFullReplaceReparsesAndFires(t *testing.T) {
	d := document.New("file:///a.php", "<?php class Foo {}", nil)
	fired := false
	d.Changed.Subscribe(func(*document.Document) { fired = true })

	err := d.Apply([]document.Change{{Text: "<?php class Bar {}"}})
	require.NoError(t, err)
	assert.True(t, fired)

	class := tree.Find(d.Root, func(n tree.Node) bool { return n.Kind() == "StmtClass" })
	require.NotNil(t, class)
}

func TestApplyRangeReplace(t *testing.T) {
	d := document.New("file:///a.php", "<?php $x = 1;", nil)
	// replace the literal 1 (offset 11..12) with 42
	err := d.Apply([]document.Change{{
		Range: &document.Range{Start: 11, End: 12},
		Text:  "42",
	}})
	require.NoError(t, err)
	assert.Equal(t, "<?php $x = 42;", d.Text)
}

func TestApplyRangeOutOfBoundsReturnsError(t *testing.T) {
	d := document.New("file:///a.php", "<?php $x = 1;", nil)
	err := d.Apply([]document.Change{{
		Range: &document.Range{Start: 100, End: 200},
		Text:  "x",
	}})
	require.Error(t, err)
}

func TestApplyAppliesMultipleEditsInOrder(t *testing.T) {
	d := document.New("file:///a.php", "abc", nil)
	err := d.Apply([]document.Change{
		{Range: &document.Range{Start: 0, End: 1}, Text: "X"},
		{Range: &document.Range{Start: 1, End: 2}, Text: "Y"},
	})
	require.NoError(t, err)
	assert.Equal(t, "XYc", d.Text)
}
