package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semshape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "GRAPH", cfg.Stream.Name)
	assert.True(t, cfg.Validator.IngestEntities)
	assert.Equal(t, "SEMSHAPE_SHAPES", cfg.Validator.ShapeBucket)
}

func TestLoadMissingDefaultFileYieldsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
nats:
  url: nats://nats.internal:4222
validator:
  parallel: true
  max_concurrency: 8
  unit_timeout: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://nats.internal:4222", cfg.NATS.URL)
	assert.Equal(t, "semshape", cfg.NATS.Name, "unset fields keep defaults")
	assert.Equal(t, "GRAPH", cfg.Stream.Name)
	assert.True(t, cfg.Validator.Parallel)
	assert.Equal(t, 8, cfg.Validator.MaxConcurrency)
	assert.Equal(t, "500ms", cfg.Validator.UnitTimeout)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("SEMSHAPE_TEST_NATS_URL", "nats://from-env:4222")
	path := writeConfig(t, `
nats:
  url: ${SEMSHAPE_TEST_NATS_URL}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://from-env:4222", cfg.NATS.URL)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "nats: [unclosed"},
		{"empty nats url", "nats:\n  url: \"\"\n"},
		{"empty stream name", "stream:\n  name: \"\"\n"},
		{"negative concurrency", "validator:\n  max_concurrency: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stream.Subjects = nil
	assert.Error(t, cfg.Validate())
}
