package api_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/go-phpintel/internal/document"
	"github.com/whit3rabbit/go-phpintel/pkg/api"
)

const sampleSource = `<?php
namespace Demo;

class Greeter {
    public function greet($name) {
        return "hello " . $name;
    }
}
`

func TestNewServiceDefaultOptions(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 0, svc.NumberDocumentsOpen())
}

func TestNewServiceMissingExplicitConfigIsAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := api.NewService(api.Options{ConfigPath: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestServiceOpenDocumentIndexesSymbols(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	svc.OpenDocument("file:///greeter.php", "php", 1, sampleSource)
	assert.Equal(t, 1, svc.NumberDocumentsOpen())
	assert.Greater(t, svc.NumberSymbolsKnown(), 0)

	symbols := svc.DocumentSymbols("file:///greeter.php")
	assert.NotEmpty(t, symbols)
}

func TestServiceCloseDocumentForgetsSymbols(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	svc.OpenDocument("file:///greeter.php", "php", 1, sampleSource)
	svc.CloseDocument("file:///greeter.php")

	assert.Equal(t, 0, svc.NumberDocumentsOpen())
	assert.Equal(t, 0, svc.NumberSymbolsKnown())
}

func TestServiceEditDocument(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	svc.OpenDocument("file:///greeter.php", "php", 1, sampleSource)
	edited := sampleSource + "\nfunction extra() {}\n"
	err = svc.EditDocument("file:///greeter.php", 2, []document.Change{{Text: edited}})
	require.NoError(t, err)

	var sawExtra bool
	for _, sym := range svc.DocumentSymbols("file:///greeter.php") {
		if sym.Name == "extra" {
			sawExtra = true
		}
	}
	assert.True(t, sawExtra)
}

func TestServiceDiscoverAndForget(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	n := svc.Discover("file:///greeter.php", sampleSource)
	assert.Greater(t, n, 0)
	assert.Equal(t, 1, svc.NumberDocumentsKnown())

	removed := svc.Forget("file:///greeter.php")
	assert.Equal(t, n, removed)
	assert.Equal(t, 0, svc.NumberDocumentsKnown())
}

func TestServiceWorkspaceSymbols(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	svc.Discover("file:///a.php", "<?php namespace Demo; class Widget {}")
	results := svc.WorkspaceSymbols("widget")
	require.Len(t, results, 1)
	assert.Equal(t, "Widget", results[0].Name)
}

func TestServiceDiagnosticsCallbacks(t *testing.T) {
	svc, err := api.NewService(api.Options{Silent: true})
	require.NoError(t, err)

	started := make(chan string, 1)
	svc.OnDiagnostics(func(uri string) {
		started <- uri
	}, nil)

	svc.OpenDocument("file:///broken.php", "php", 1, "<?php class {")
	select {
	case uri := <-started:
		assert.Equal(t, "file:///broken.php", uri)
	default:
		t.Fatal("expected OnDiagnostics start callback to fire on open")
	}
}
