package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/backtester/market"
	"github.com/quantlab/backtester/risk"
)

// Config represents the complete run configuration
type Config struct {
	Symbols   []string        `json:"symbols" yaml:"symbols"`
	Interval  market.Interval `json:"interval" yaml:"interval"`
	StartCash float64         `json:"start_cash" yaml:"start_cash"`
	Data      DataConfig      `json:"data" yaml:"data"`
	Run       RunConfig       `json:"run" yaml:"run"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// DataConfig locates the bar cache
type DataConfig struct {
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// RunConfig controls run-level output and pacing
type RunConfig struct {
	OutDir         string `json:"out_dir" yaml:"out_dir"`
	HeartbeatEvery int    `json:"heartbeat_every" yaml:"heartbeat_every"`
}

// ExecutionConfig contains fill-model parameters
type ExecutionConfig struct {
	SlippageBps      int      `json:"slippage_bps" yaml:"slippage_bps"`
	CommissionFixed  float64  `json:"commission_fixed" yaml:"commission_fixed"`
	ParticipationCap *float64 `json:"participation_cap,omitempty" yaml:"participation_cap,omitempty"`
}

// RiskConfig contains the pre-trade gate limits
type RiskConfig struct {
	MaxGrossExposure     float64  `json:"max_gross_exposure" yaml:"max_gross_exposure"`
	PerSymbolNotionalCap float64  `json:"per_symbol_notional_cap" yaml:"per_symbol_notional_cap"`
	MarketCalendar       string   `json:"market_calendar,omitempty" yaml:"market_calendar,omitempty"`
	DailyLossCap         *float64 `json:"daily_loss_cap,omitempty" yaml:"daily_loss_cap,omitempty"`
	FailClosed           bool     `json:"fail_closed,omitempty" yaml:"fail_closed,omitempty"`
}

// StrategyConfig names the strategy and its parameters
type StrategyConfig struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("symbols must not contain empty entries")
		}
		if seen[s] {
			return fmt.Errorf("duplicate symbol: %s", s)
		}
		seen[s] = true
	}
	switch c.Interval {
	case market.Interval1d, market.Interval1h, market.Interval1m:
	default:
		return fmt.Errorf("unknown interval: %s", c.Interval)
	}
	if c.StartCash <= 0 {
		return fmt.Errorf("start_cash must be positive")
	}
	if c.Data.CacheDir == "" {
		return fmt.Errorf("data.cache_dir is required")
	}
	if c.Run.HeartbeatEvery < 0 {
		return fmt.Errorf("run.heartbeat_every must be non-negative")
	}
	if c.Execution.SlippageBps < 0 {
		return fmt.Errorf("execution.slippage_bps must be non-negative")
	}
	if c.Execution.CommissionFixed < 0 {
		return fmt.Errorf("execution.commission_fixed must be non-negative")
	}
	if cap := c.Execution.ParticipationCap; cap != nil && (*cap <= 0 || *cap > 1) {
		return fmt.Errorf("execution.participation_cap must be in (0, 1]")
	}
	if c.Risk.MaxGrossExposure <= 0 {
		return fmt.Errorf("risk.max_gross_exposure must be positive")
	}
	if c.Risk.PerSymbolNotionalCap <= 0 {
		return fmt.Errorf("risk.per_symbol_notional_cap must be positive")
	}
	if c.Risk.MarketCalendar != "" {
		if _, err := risk.LookupCalendar(c.Risk.MarketCalendar); err != nil {
			return err
		}
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// Hash returns a short digest of the canonical (JSON) form of the config.
// Two runs with the same hash ran with the same settings.
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Symbols:   []string{"SPY"},
		Interval:  market.Interval1d,
		StartCash: 100000,
		Data: DataConfig{
			CacheDir: "./cache",
		},
		Run: RunConfig{
			OutDir:         "./runs",
			HeartbeatEvery: 1000,
		},
		Execution: ExecutionConfig{
			SlippageBps:     5,
			CommissionFixed: 1,
		},
		Risk: RiskConfig{
			MaxGrossExposure:     1000000,
			PerSymbolNotionalCap: 250000,
			MarketCalendar:       "XNYS",
		},
		Strategy: StrategyConfig{
			Name: "ma_crossover",
		},
		Journal: JournalConfig{
			Type: "csv",
		},
	}
}
