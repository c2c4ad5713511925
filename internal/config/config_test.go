package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want, cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "gridpathd.yaml", `
addr: 127.0.0.1:9000
allowOrigins: [https://example.com]
logLevel: debug
logFormat: json
workers: 3
expansionLimit: 5000
maxGridCells: 4096
maxBatchQueries: 32
maxSessions: 8
sessionTTL: 90s
grids:
  - name: arena
    path: maps/arena.txt
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 5000, cfg.ExpansionLimit)
	assert.Equal(t, 4096, cfg.MaxGridCells)
	assert.Equal(t, 32, cfg.MaxBatchQueries)
	assert.Equal(t, 8, cfg.MaxSessions)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, []GridFile{{Name: "arena", Path: "maps/arena.txt"}}, cfg.Grids)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeFile(t, "bad.yaml", "adress: :80\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "gridpathd.yaml", "addr: :7000\nworkers: 2\n")
	t.Setenv("GRIDPATH_ADDR", ":7100")
	t.Setenv("GRIDPATH_WORKERS", "6")
	t.Setenv("GRIDPATH_ALLOW_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("GRIDPATH_SESSION_TTL", "2m")
	t.Setenv("GRIDPATH_MAX_SESSIONS", "5")
	t.Setenv("GRIDPATH_MAX_BATCH_QUERIES", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Addr)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MaxSessions)
	assert.Equal(t, 12, cfg.MaxBatchQueries)
}

func TestEnvironmentRejectsGarbage(t *testing.T) {
	t.Setenv("GRIDPATH_WORKERS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "GRIDPATH_WORKERS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"negative limit", func(c *Config) { c.ExpansionLimit = -1 }, "expansionLimit"},
		{"zero cells", func(c *Config) { c.MaxGridCells = 0 }, "maxGridCells"},
		{"zero batch", func(c *Config) { c.MaxBatchQueries = 0 }, "maxBatchQueries"},
		{"zero sessions", func(c *Config) { c.MaxSessions = 0 }, "maxSessions"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "sessionTTL"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "logLevel"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "logFormat"},
		{"nameless grid", func(c *Config) { c.Grids = []GridFile{{Path: "a.txt"}} }, "grids[0]"},
		{"duplicate grid", func(c *Config) {
			c.Grids = []GridFile{{Name: "a", Path: "a.txt"}, {Name: "a", Path: "b.txt"}}
		}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.Int("n", 1))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
