package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA", "SPY", "QQQ"}, cfg.Tickers)
	assert.Equal(t, 400, cfg.LookbackDays)
	assert.Equal(t, 14, cfg.RSIPeriod)
	assert.Equal(t, 120, cfg.Snapshot.WindowDays)
	assert.Equal(t, "data/market.db", cfg.Database.SQLitePath)
	assert.Equal(t, "yahoo", cfg.Feed.Source)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tickers: [spy, " qqq "]
lookback_days: 90
rsi_period: 10
database:
  sqlite_path: /tmp/test.db
feed:
  source: mock
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Tickers are trimmed and upper-cased at the boundary.
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Tickers)
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, 10, cfg.RSIPeriod)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
	assert.Equal(t, "mock", cfg.Feed.Source)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TICKERS", "nvda,amd")
	t.Setenv("LOOKBACK_DAYS", "30")
	t.Setenv("SQLITE_PATH", "/tmp/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Tickers)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLitePath)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg.Tickers = nil
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.LookbackDays = -1
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.RSIPeriod = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Feed.Source = "bloomberg"
	assert.Error(t, cfg.Validate())
}
