package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Forecast.FreshnessWindow)
	assert.Equal(t, time.Hour, cfg.Forecast.HistoryDedupWindow)
	assert.Equal(t, time.Hour, cfg.Forecast.AlertCooldown)
	assert.Equal(t, 50, cfg.Forecast.HistoryLimit)
	assert.Equal(t, 30*time.Second, cfg.Price.PollInterval)
	assert.Len(t, cfg.Assets, 7)

	gold, ok := cfg.FindAsset("gold")
	require.True(t, ok)
	assert.Equal(t, "gold", gold.Kind)
	assert.True(t, gold.Alert)

	nvda, ok := cfg.FindAsset("NVDA")
	require.True(t, ok)
	assert.False(t, nvda.Alert)
	assert.Equal(t, "business", nvda.NewsCategory)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  driver: memory
forecast:
  freshness_window: 5m
assets:
  - symbol: GOLD
    name: Gold
    kind: gold
    news_category: gold
    alert: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Forecast.FreshnessWindow)
	assert.Len(t, cfg.Assets, 1)
}

func TestLoad_InvalidDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
