package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/go-phpintel/internal/config"
	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/internal/service"
	"github.com/whit3rabbit/go-phpintel/internal/symbol"
)

const sampleSource = `<?php
namespace App;

class Greeter {
    public function greet($name) {
        $message = "hello " . $name;
        return $message;
    }
}

function greetAll() {
}
`

func newTestService() *service.Service {
	cfg := config.DefaultConfig()
	return service.NewService(cfg)
}

func TestOpenDocumentIndexesSymbols(t *testing.T) {
	s := newTestService()
	s.OpenDocument("file:///greeter.php", "php", 1, sampleSource)

	assert.Equal(t, 1, s.NumberDocumentsOpen())
	assert.Equal(t, 1, s.NumberDocumentsKnown())
	assert.Greater(t, s.NumberSymbolsKnown(), 0)

	syms := s.DocumentSymbols("file:///greeter.php")
	require.NotEmpty(t, syms)

	var sawClass, sawFunction bool
	for _, si := range syms {
		if si.Kind == symbol.KindClass && si.Name == "Greeter" {
			sawClass = true
			assert.Equal(t, `\App\Greeter`, si.FQN)
		}
		if si.Kind == symbol.KindFunction && si.Name == "greetAll" {
			sawFunction = true
		}
	}
	assert.True(t, sawClass, "expected Greeter class symbol")
	assert.True(t, sawFunction, "expected greetAll function symbol")
}

func TestCloseDocumentForgetsSymbols(t *testing.T) {
	s := newTestService()
	s.OpenDocument("file:///greeter.php", "php", 1, sampleSource)
	require.Greater(t, s.NumberSymbolsKnown(), 0)

	s.CloseDocument("file:///greeter.php")

	assert.Equal(t, 0, s.NumberDocumentsOpen())
	assert.Equal(t, 0, s.NumberDocumentsKnown())
	assert.Equal(t, 0, s.NumberSymbolsKnown())
	assert.Empty(t, s.DocumentSymbols("file:///greeter.php"))
}

func TestDiscoverIndexesWithoutOpening(t *testing.T) {
	s := newTestService()
	n := s.Discover("file:///greeter.php", sampleSource)

	assert.Greater(t, n, 0)
	assert.Equal(t, 0, s.NumberDocumentsOpen())
	assert.Equal(t, 1, s.NumberDocumentsKnown())
	assert.NotEmpty(t, s.DocumentSymbols("file:///greeter.php"))
}

func TestForgetRemovesDiscoveredSymbols(t *testing.T) {
	s := newTestService()
	s.Discover("file:///greeter.php", sampleSource)

	removed := s.Forget("file:///greeter.php")

	assert.Greater(t, removed, 0)
	assert.Equal(t, 0, s.NumberDocumentsKnown())
	assert.Equal(t, 0, s.NumberSymbolsKnown())
}

func TestEditDocumentReindexes(t *testing.T) {
	s := newTestService()
	s.OpenDocument("file:///greeter.php", "php", 1, sampleSource)

	edited := sampleSource + "\nfunction extra() {}\n"
	err := s.EditDocument("file:///greeter.php", 2, []document.Change{{Text: edited}})
	require.NoError(t, err)

	var sawExtra bool
	for _, si := range s.DocumentSymbols("file:///greeter.php") {
		if si.Kind == symbol.KindFunction && si.Name == "extra" {
			sawExtra = true
		}
	}
	assert.True(t, sawExtra, "expected extra function symbol after edit")
}

func TestWorkspaceSymbolsRanksByNameLengthThenFQN(t *testing.T) {
	s := newTestService()
	s.Discover("file:///a.php", "<?php namespace Zeta; class Cat {}")
	s.Discover("file:///b.php", "<?php namespace Alpha; class Cat {}")
	s.Discover("file:///c.php", "<?php namespace Zeta; class Caterpillar {}")

	results := s.WorkspaceSymbols("cat")
	require.Len(t, results, 3)
	assert.Equal(t, `\Alpha\Cat`, results[0].FQN)
	assert.Equal(t, `\Zeta\Cat`, results[1].FQN)
	assert.Equal(t, `\Zeta\Caterpillar`, results[2].FQN)
}

func TestCompletionsSuggestsMatchingSymbols(t *testing.T) {
	s := newTestService()
	s.OpenDocument("file:///greeter.php", "php", 1, sampleSource)

	items := s.Completions("file:///greeter.php", lastIndexOf(sampleSource, "greetAll")+len("greetA"))
	require.NotEmpty(t, items)
	found := false
	for _, it := range items {
		if it.Label == "greetAll" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompletionsEmptyWhenNoFragment(t *testing.T) {
	s := newTestService()
	s.OpenDocument("file:///greeter.php", "php", 1, sampleSource)
	assert.Empty(t, s.Completions("file:///greeter.php", 0))
}

func lastIndexOf(s, sub string) int {
	idx := -1
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			idx = i
		}
	}
	return idx
}
