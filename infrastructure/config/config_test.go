package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ".", cfg.ProjectDir)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 3, cfg.MergeWindowSeconds)
	assert.True(t, cfg.EnableMetrics)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("ENABLE_METRICS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.False(t, cfg.EnableMetrics)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 50\nlog_level: debug\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ServerAddress)
}

func TestLoadConfig_InvalidLimit(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "-5")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history limit")
}

func TestValidate(t *testing.T) {
	cfg := &Config{HistoryLimit: 10, MergeWindowSeconds: 3, ProjectDir: "."}
	require.NoError(t, cfg.Validate())

	cfg.ProjectDir = ""
	assert.Error(t, cfg.Validate())
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 100\n"), 0o644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *DynamicConfig, 1)
	w.OnChange(func(cfg *DynamicConfig) {
		select {
		case changed <- cfg:
		default:
		}
	})
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("history_limit: 40\nmerge_window_seconds: 5\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 40, cfg.HistoryLimit)
		assert.Equal(t, 5, cfg.MergeWindowSeconds)
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}

	assert.Equal(t, 40, w.Current().HistoryLimit)
}

func TestWatcher_KeepsCurrentOnInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 100\n"), 0o644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("history_limit: -1\n"), 0o644))
	w.reload()

	assert.Equal(t, 100, w.Current().HistoryLimit)
}

func TestDynamicConfig_DefaultsWhenFieldsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	cfg, err := loadDynamicConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 3, cfg.MergeWindowSeconds)
}
