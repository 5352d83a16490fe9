package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, rest, err := Load([]string{"invoke", "get_all_cards"})
	require.NoError(t, err)

	assert.Equal(t, []string{"invoke", "get_all_cards"}, rest)
	assert.Equal(t, "testdeck.db", filepath.Base(cfg.DB))
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 30, cfg.Days)
	assert.Equal(t, 365, cfg.ExportDays)
	assert.Equal(t, 5000, cfg.BusyTimeout)
	assert.Equal(t, "sm2", cfg.Scheduler)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: /from/file.db\ndays: 14\nexport-days: 90\nenv: development\n"), 0o644))

	t.Setenv("TESTDECK_DAYS", "21")
	t.Setenv("TESTDECK_BUSY_TIMEOUT", "250")
	t.Setenv("TESTDECK_SCHEDULER", "fsrs")

	cfg, _, err := Load([]string{"--config", path, "--export-days", "60"})
	require.NoError(t, err)

	assert.Equal(t, "/from/file.db", cfg.DB, "file overrides flag defaults")
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 21, cfg.Days, "environment overrides file")
	assert.Equal(t, 250, cfg.BusyTimeout)
	assert.Equal(t, "fsrs", cfg.Scheduler)
	assert.Equal(t, 60, cfg.ExportDays, "explicit flags override everything")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid env", args: []string{"--env", "staging"}},
		{name: "zero days", args: []string{"--days", "0"}},
		{name: "unknown scheduler", args: []string{"--scheduler", "leitner"}},
		{name: "missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}},
		{name: "unknown flag", args: []string{"--verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.args)
			require.Error(t, err)
		})
	}

	_, _, err := Load([]string{"--help"})
	assert.True(t, IsHelp(err))
}
