package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ivtree/pkg/config"
)

const (
	testSampleRatio     = 0.25
	testShutdownTimeout = 9
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ivtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultDomain, cfg.Tree.Domain)
	assert.Equal(t, config.DefaultValidate, cfg.Tree.Validate)
	assert.Equal(t, config.DefaultColor, cfg.Output.Color)
	assert.Equal(t, config.DefaultEvents, cfg.Output.Events)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.Tracing.ShutdownTimeout)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
logging:
  level: debug
  format: json
tree:
  domain: big
  validate: false
output:
  color: false
  events: true
metrics:
  addr: "127.0.0.1:9464"
tracing:
  endpoint: "localhost:4317"
  insecure: true
  headers: "a=b"
  sample_ratio: 0.25
  shutdown_timeout: 9
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, config.DomainBig, cfg.Tree.Domain)
	assert.False(t, cfg.Tree.Validate)
	assert.False(t, cfg.Output.Color)
	assert.True(t, cfg.Output.Events)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, "a=b", cfg.Tracing.Headers)
	assert.InDelta(t, testSampleRatio, cfg.Tracing.SampleRatio, 1e-9)
	assert.Equal(t, testShutdownTimeout, cfg.Tracing.ShutdownTimeout)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_InvalidValues_JoinsErrors(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
logging:
  level: loud
  format: xml
tree:
  domain: complex
tracing:
  sample_ratio: 2
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)

	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
	require.ErrorIs(t, err, config.ErrInvalidLogFormat)
	require.ErrorIs(t, err, config.ErrInvalidDomain)
	require.ErrorIs(t, err, config.ErrInvalidSampleRatio)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "tree: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("IVTREE_TREE_DOMAIN", "float")
	t.Setenv("IVTREE_LOGGING_LEVEL", "warn")

	cfg, err := config.LoadConfig(writeConfig(t, "tree:\n  domain: big\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DomainFloat, cfg.Tree.Domain)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateDomain(t *testing.T) {
	t.Parallel()

	for _, domain := range config.Domains() {
		require.NoError(t, config.ValidateDomain(domain))
	}

	err := config.ValidateDomain("int32")
	require.ErrorIs(t, err, config.ErrInvalidDomain)
	assert.Contains(t, err.Error(), "int64, big, float")
}
