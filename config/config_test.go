package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtester/market"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "run.yaml", `
symbols: [SPY, QQQ]
interval: 1d
start_cash: 100000
data:
  cache_dir: ./cache
run:
  out_dir: ./runs
  heartbeat_every: 500
execution:
  slippage_bps: 10
  commission_fixed: 1.5
  participation_cap: 0.1
risk:
  max_gross_exposure: 500000
  per_symbol_notional_cap: 100000
  market_calendar: 24x5
  daily_loss_cap: 2500
strategy:
  name: ma_crossover
  params:
    fast: 10
    slow: 30
journal:
  type: sqlite
  db_path: ./journal.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Symbols)
	assert.Equal(t, market.Interval1d, cfg.Interval)
	assert.Equal(t, 10, cfg.Execution.SlippageBps)
	require.NotNil(t, cfg.Execution.ParticipationCap)
	assert.Equal(t, 0.1, *cfg.Execution.ParticipationCap)
	require.NotNil(t, cfg.Risk.DailyLossCap)
	assert.Equal(t, 2500.0, *cfg.Risk.DailyLossCap)
	assert.Equal(t, "24x5", cfg.Risk.MarketCalendar)
	assert.Equal(t, "ma_crossover", cfg.Strategy.Name)
}

func TestLoadFromFileJSONFallback(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "run.json", `{
		"symbols": ["SPY"],
		"interval": "1h",
		"start_cash": 50000,
		"data": {"cache_dir": "./cache"},
		"run": {"out_dir": "./runs"},
		"execution": {"slippage_bps": 0},
		"risk": {"max_gross_exposure": 100000, "per_symbol_notional_cap": 50000},
		"strategy": {"name": "noop"},
		"journal": {"type": "csv"}
	}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, market.Interval1h, cfg.Interval)
	assert.Equal(t, 50000.0, cfg.StartCash)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no_symbols", func(c *Config) { c.Symbols = nil }},
		{"empty_symbol", func(c *Config) { c.Symbols = []string{""} }},
		{"duplicate_symbol", func(c *Config) { c.Symbols = []string{"SPY", "SPY"} }},
		{"bad_interval", func(c *Config) { c.Interval = "5m" }},
		{"zero_cash", func(c *Config) { c.StartCash = 0 }},
		{"no_cache_dir", func(c *Config) { c.Data.CacheDir = "" }},
		{"negative_heartbeat", func(c *Config) { c.Run.HeartbeatEvery = -1 }},
		{"negative_slippage", func(c *Config) { c.Execution.SlippageBps = -5 }},
		{"cap_above_one", func(c *Config) { v := 1.5; c.Execution.ParticipationCap = &v }},
		{"cap_zero", func(c *Config) { v := 0.0; c.Execution.ParticipationCap = &v }},
		{"zero_gross", func(c *Config) { c.Risk.MaxGrossExposure = 0 }},
		{"zero_notional", func(c *Config) { c.Risk.PerSymbolNotionalCap = 0 }},
		{"unknown_calendar", func(c *Config) { c.Risk.MarketCalendar = "XMOON" }},
		{"no_strategy", func(c *Config) { c.Strategy.Name = "" }},
		{"bad_journal", func(c *Config) { c.Journal.Type = "parquet" }},
		{"sqlite_no_path", func(c *Config) { c.Journal.Type = "sqlite"; c.Journal.DBPath = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Symbols = []string{"SPY", "IWM"}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Symbols, got.Symbols)
	assert.Equal(t, cfg.Hash(), got.Hash())
}

func TestHashChangesWithConfig(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 16)

	b.Execution.SlippageBps = 25
	assert.NotEqual(t, a.Hash(), b.Hash())
}
