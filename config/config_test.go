package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/ingester/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParse(t *testing.T) {
	t.Setenv("TEST_OPENAI_TOKEN", "sk-test")

	cachePath := filepath.Join(t.TempDir(), "cache.json")

	path := writeConfig(t, `
address: ":9090"

authorizers:
  - type: static
    token: secret

providers:
  - type: openai
    token: ${TEST_OPENAI_TOKEN}
    models:
      gpt-4o:
      gpt-4o-mini:
        limit: 5

models:
  vision: gpt-4o
  text: gpt-4o-mini

detector:
  type: doclayout
  url: http://localhost:8000
  confidence: 0.3
  ignore:
    - abandon

cache:
  path: `+cachePath+`

workers: 4

mcp:
  name: docs
  files: true
`)

	cfg, err := config.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address)
	assert.Len(t, cfg.Authorizers, 1)

	assert.NotNil(t, cfg.Ingester)
	assert.NotNil(t, cfg.MCP)
	assert.NotNil(t, cfg.Cache)
	assert.Equal(t, 4, cfg.Pool.Stats().Width)

	first, err := cfg.Completer("")
	require.NoError(t, err)

	vision, err := cfg.Completer("gpt-4o")
	require.NoError(t, err)
	assert.Same(t, vision, first, "the first model is the default")

	_, err = cfg.Completer("gpt-5")
	require.Error(t, err)

	_, err = cfg.Detector()
	require.NoError(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Empty(t, cfg.Authorizers)

	assert.NotNil(t, cfg.Ingester)
	assert.NotNil(t, cfg.MCP)

	_, err = cfg.Completer("")
	require.Error(t, err)

	_, err = cfg.Detector()
	require.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "adress: \":80\"\n"},
		{"unknown provider", "providers:\n  - type: unknown\n    models:\n      m:\n"},
		{"provider without models", "providers:\n  - type: openai\n"},
		{"unknown detector", "detector:\n  type: yolo\n"},
		{"unknown converter", "converter:\n  type: pandoc\n"},
		{"missing role", "providers:\n  - type: openai\n    models:\n      m:\nmodels:\n  vision: other\n"},
		{"static without token", "authorizers:\n  - type: static\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}

	_, err := config.Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
