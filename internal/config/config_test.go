package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SPECLIMITS_CD", "SPECLIMITS_CW", "SPECLIMITS_LIMITS", "SPECLIMITS_LOG_LEVEL", "SPECLIMITS_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "speclimits.yaml")
	content := `
sources:
  - process: cw
    path: /data/cw.xlsx
    sheet: Datos
limits:
  path: /data/limites.xlsx
  layout: dual_block
match:
  duplicates: unique
detection:
  numeric_threshold: 0.8
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []SourceConfig{{Process: "cw", Path: "/data/cw.xlsx", Sheet: "Datos"}}, cfg.Sources)
	assert.Equal(t, 0.8, cfg.Detection.NumericThreshold)
	assert.Equal(t, []string{"maquina", "machine", "line", "linea"}, cfg.Detection.MachineColumns)
	assert.Equal(t, "console", cfg.Logging.Format)

	opts := cfg.Options()
	require.Len(t, opts.Sources, 1)
	assert.Equal(t, models.ProcessCW, opts.Sources[0].Process)
	assert.Equal(t, "Datos", opts.Sources[0].Sheet)
	assert.Equal(t, models.LayoutDualBlock, opts.LimitsLayout)
	assert.Equal(t, match.DuplicatesUnique, opts.Duplicates)
	assert.Equal(t, "/data/limites.xlsx", opts.LimitsPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPECLIMITS_CW", "/tmp/cw.csv")
	t.Setenv("SPECLIMITS_LIMITS", "/tmp/lim.xlsx")
	t.Setenv("SPECLIMITS_LOG_LEVEL", "warn")
	t.Setenv("SPECLIMITS_ADDR", "127.0.0.1:9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "CD_unificado.csv", cfg.Sources[0].Path)
	assert.Equal(t, "/tmp/cw.csv", cfg.Sources[1].Path)
	assert.Equal(t, "/tmp/lim.xlsx", cfg.Limits.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestSetSourceAppends(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = cfg.Sources[:1]

	cfg.SetSource(models.ProcessCW, "cw.csv")
	cfg.SetSource(models.ProcessCD, "cd.csv")
	assert.Equal(t, []SourceConfig{
		{Process: "CD", Path: "cd.csv"},
		{Process: "CW", Path: "cw.csv"},
	}, cfg.Sources)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "speclimits.yaml")

	cfg := DefaultConfig()
	cfg.Limits.Sheet = "Hoja1"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no sources", func(c *Config) { c.Sources = nil }},
		{"bad process", func(c *Config) { c.Sources[0].Process = "CX" }},
		{"empty path", func(c *Config) { c.Sources[1].Path = "" }},
		{"bad layout", func(c *Config) { c.Limits.Layout = "wide" }},
		{"bad duplicates", func(c *Config) { c.Match.Duplicates = "last" }},
		{"bad threshold", func(c *Config) { c.Detection.NumericThreshold = 2 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
