package backtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantlab/backtester/metrics"
	"github.com/quantlab/backtester/obs"
)

// LoadError reports that no configured symbol had bar data in the cache.
type LoadError struct {
	Symbols []string
	Dir     string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("no bar data for any symbol (%s) in %s",
		strings.Join(e.Symbols, ", "), e.Dir)
}

// Summary is the run-level document written to the journal as summary.json.
type Summary struct {
	RunID      string `json:"run_id"`
	ConfigHash string `json:"config_hash"`
	GitSHA     string `json:"git_sha,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Symbols   []string `json:"symbols"`
	Interval  string   `json:"interval"`
	StartCash float64  `json:"start_cash"`
	Strategy  string   `json:"strategy"`

	Counters            obs.Counters     `json:"counters"`
	StepTimer           obs.TimerStats   `json:"step_timer"`
	MissingBarsBySymbol map[string]int   `json:"missing_bars_per_symbol"`
	Metrics             *metrics.Metrics `json:"metrics"`

	EndEquity         float64 `json:"end_equity"`
	RealizedPnL       float64 `json:"realized_pnl"`
	Turnover          float64 `json:"turnover"`
	TimeInMarket      float64 `json:"time_in_market"`
	PeakGrossExposure float64 `json:"peak_gross_exposure"`
}

// Result is what Run hands back to the caller after the journal write.
type Result struct {
	RunID   string
	Summary Summary
	Equity  []metrics.Point
}
