package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, int64(1), cfg.Privacy.GroupSize)
	assert.True(t, cfg.Privacy.ProtectFloatingPoint)
	assert.Equal(t, 0.1, cfg.SGD.LearningRate)
	assert.Equal(t, 32, cfg.SGD.BatchSize)
	assert.Equal(t, 100, cfg.SGD.Iterations)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpvalidate.yaml")
	content := `
log:
  level: debug
  format: json
store:
  path: ledger.db
privacy:
  neighboring: add_remove
  group_size: 3
sgd:
  batch_size: 8
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "ledger.db", cfg.Store.Path)
	assert.Equal(t, "add_remove", cfg.Privacy.Neighboring)
	assert.Equal(t, int64(3), cfg.Privacy.GroupSize)
	assert.Equal(t, 8, cfg.SGD.BatchSize)
	assert.Equal(t, uint64(42), cfg.SGD.Seed)
	// untouched keys keep their defaults
	assert.Equal(t, 1.0, cfg.SGD.ClipNorm)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DPVALIDATE_LOG_LEVEL", "error")
	t.Setenv("DPVALIDATE_STORE_PATH", ":memory:")
	t.Setenv("DPVALIDATE_SGD_ITERATIONS", "7")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, ":memory:", cfg.Store.Path)
	assert.Equal(t, 7, cfg.SGD.Iterations)
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")
	flags.String("log-level", "warn", "")
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--format", "json", "--db", "runs.db"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "runs.db", cfg.Store.Path)
	// unchanged flags fall back to the flag default
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"DPVALIDATE_LOG_LEVEL": "loud"}},
		{"bad log format", map[string]string{"DPVALIDATE_LOG_FORMAT": "xml"}},
		{"bad output format", map[string]string{"DPVALIDATE_OUTPUT_FORMAT": "yaml"}},
		{"bad group size", map[string]string{"DPVALIDATE_PRIVACY_GROUP_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New(), "")
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(New(), filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "node", "binned")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"node":"binned"`)
}

func TestPrivacyDefinition(t *testing.T) {
	def := PrivacyConfig{Neighboring: "substitute", GroupSize: 2, ProtectFloatingPoint: true}.Definition()
	assert.Equal(t, "substitute", def.Neighboring)
	assert.Equal(t, int64(2), def.GroupSize)
	assert.True(t, def.ProtectFloatingPoint)
	assert.False(t, def.StrictParameterChecks)
}
