package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sparc", cfg.Scheduler)
	assert.Equal(t, PolicyFilter, cfg.Policy)
	assert.False(t, cfg.ResetPerBlock)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sched.yaml")
	content := `
policy: observe
reset_per_block: true
log_format: json
trace_db: traces.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sparc", cfg.Scheduler)
	assert.Equal(t, PolicyObserve, cfg.Policy)
	assert.True(t, cfg.ResetPerBlock)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "traces.db", cfg.TraceDB)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sched.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: random\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid policy")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sched.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: [unclosed\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty scheduler", func(c *Config) { c.Scheduler = "" }, true},
		{"observe policy", func(c *Config) { c.Policy = PolicyObserve }, false},
		{"empty policy", func(c *Config) { c.Policy = "" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
