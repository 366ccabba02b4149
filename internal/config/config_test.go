package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/go-phpintel/internal/config"
)

func TestLoadConfigFallsBackToDefaultsWhenFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phpintel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_completions: 5\nparser_mode: \"7.4\"\n"), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxCompletions)
	assert.Equal(t, "7.4", cfg.ParserMode)
}

func TestLoadConfigEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	t.Setenv("PHPINTEL_MAX_COMPLETIONS", "7")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxCompletions)
}

func TestLoadConfigMissingExplicitFileIsAnError(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParserVersionParsesDottedForm(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ParserMode = "7.2"
	v := cfg.ParserVersion()
	assert.EqualValues(t, 7, v.Major)
	assert.EqualValues(t, 2, v.Minor)
}

func TestParserVersionFallsBackOnMalformedMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ParserMode = "garbage"
	v := cfg.ParserVersion()
	assert.EqualValues(t, 8, v.Major)
	assert.EqualValues(t, 1, v.Minor)
}

func TestSaveConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "phpintel.yaml")
	require.NoError(t, config.SaveConfig(path))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}
