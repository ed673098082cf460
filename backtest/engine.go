// Package backtest drives a full simulation run: it loads bar data, merges
// the symbol clocks, walks every timestamp through strategy, risk gate,
// simulator, and ledger, and writes the run's artifacts in one shot at the
// end. The loop is single threaded so identical inputs always produce
// identical artifacts.
package backtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantlab/backtester/config"
	"github.com/quantlab/backtester/data"
	"github.com/quantlab/backtester/internal/id"
	"github.com/quantlab/backtester/journal"
	"github.com/quantlab/backtester/market"
	"github.com/quantlab/backtester/metrics"
	"github.com/quantlab/backtester/obs"
	"github.com/quantlab/backtester/portfolio"
	"github.com/quantlab/backtester/risk"
	"github.com/quantlab/backtester/sim"
	"github.com/quantlab/backtester/strategies"
)

// Engine owns the state of one run. Build one per run with New.
type Engine struct {
	cfg      *config.Config
	registry *strategies.Registry
	journal  journal.Journal
	log      logrus.FieldLogger
}

// New validates the wiring for a run. The registry must contain the
// configured strategy and the journal must be open.
func New(registry *strategies.Registry, cfg *config.Config, j journal.Journal, log logrus.FieldLogger) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("backtest: registry is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("backtest: config is required")
	}
	if j == nil {
		return nil, fmt.Errorf("backtest: journal is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{cfg: cfg, registry: registry, journal: j, log: log}, nil
}

// Run executes the configured backtest and persists its artifacts. A fatal
// accounting error (for example an oversell) aborts before anything is
// written, so a failed run leaves no partial output.
func (e *Engine) Run() (*Result, error) {
	cfg := e.cfg
	runID := id.New()
	startedAt := time.Now().UTC()
	log := e.log.WithField("run_id", runID)

	series, missingSymbols, err := e.loadSeries()
	if err != nil {
		return nil, err
	}
	for _, sym := range missingSymbols {
		log.WithField("symbol", sym).Warn("no bar data, symbol skipped")
	}

	strats := make(map[string]strategies.Strategy, len(series))
	for sym := range series {
		s, err := e.registry.Build(cfg.Strategy.Name, sym, cfg.Strategy.Params)
		if err != nil {
			return nil, fmt.Errorf("build strategy for %s: %w", sym, err)
		}
		strats[sym] = s
	}

	timestamps := market.MergeTimestamps(cfg.Symbols, series)

	ledger := portfolio.NewLedger(cfg.StartCash)
	simulator := sim.New(cfg.Execution.SlippageBps, sim.FillPolicy{
		ParticipationCap: cfg.Execution.ParticipationCap,
	})

	marks := make(map[string]float64, len(cfg.Symbols))
	dailyBase := 0.0
	gate, err := risk.NewGate(
		risk.Params{
			MaxGrossExposure:     cfg.Risk.MaxGrossExposure,
			PerSymbolNotionalCap: cfg.Risk.PerSymbolNotionalCap,
			MarketCalendar:       cfg.Risk.MarketCalendar,
			DailyLossCap:         cfg.Risk.DailyLossCap,
		},
		// Historical replays admit orders on any bar regardless of the
		// session calendar; wall-clock time never influences a run.
		risk.WithSessionGate(false),
		risk.WithFailClosed(cfg.Risk.FailClosed),
		risk.WithGrossExposureProvider(func() (float64, error) {
			return ledger.GrossExposure(marks), nil
		}),
		risk.WithDailyPnLProvider(func() (float64, error) {
			return ledger.RealizedPnL() - dailyBase, nil
		}),
		risk.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("risk gate: %w", err)
	}

	var (
		counters     obs.Counters
		stepTimer    obs.StepTimer
		barRecords   []journal.BarRecord
		orderRecords []journal.OrderRecord
		fillRecords  []journal.FillRecord
		equityRecs   []journal.EquityRecord
		curve        []metrics.Point
		turnover     float64
		peakGross    float64
		inMarket     int
		curDay       string
	)

	commission := cfg.Execution.CommissionFixed
	for i, ts := range timestamps {
		stepStart := time.Now()

		// Daily realized baseline resets on the UTC date boundary.
		if day := ts.Format("2006-01-02"); day != curDay {
			curDay = day
			dailyBase = ledger.RealizedPnL()
		}

		for _, sym := range cfg.Symbols {
			sr, ok := series[sym]
			if !ok {
				continue
			}
			bar, ok := sr.At(ts)
			if !ok {
				continue
			}
			counters.Bars++
			marks[sym] = bar.Close
			barRecords = append(barRecords, journal.BarRecord{
				Time: ts, Symbol: sym,
				Open: bar.Open, High: bar.High, Low: bar.Low, Close: bar.Close,
				Volume: bar.Volume,
			})

			order := strats[sym].OnBar(bar)
			if order == nil {
				continue
			}
			counters.OrdersProposed++

			approved := gate.Validate(*order)
			limitPrice := 0.0
			if order.LimitPrice != nil {
				limitPrice = *order.LimitPrice
			}
			orderRecords = append(orderRecords, journal.OrderRecord{
				LocalID: order.LocalID, Time: ts, Symbol: sym,
				Side: string(order.Side), Type: string(order.Type),
				Quantity: order.Quantity, LimitPrice: limitPrice,
				Approved: approved != nil,
			})
			if approved == nil {
				continue
			}
			counters.OrdersApproved++

			fill := simulator.SimulateFill(*approved, bar.Close, bar.High, bar.Low, bar.Volume, ts)
			if fill == nil {
				continue
			}
			fill.Commission = commission
			counters.Fills++

			if err := ledger.ApplyFill(*fill, fill.Price, sym, commission); err != nil {
				return nil, fmt.Errorf("apply fill at %s: %w", ts.Format(time.RFC3339), err)
			}
			fillRecords = append(fillRecords, journal.FillRecord{
				OrderLocalID: fill.OrderLocalID, Time: ts, Symbol: sym,
				Quantity: fill.Qty, Price: fill.Price, Commission: fill.Commission,
			})
			absQty := fill.Qty
			if absQty < 0 {
				absQty = -absQty
			}
			turnover += float64(absQty) * fill.Price
		}

		snap := ledger.Snapshot(ts, marks)
		equityRecs = append(equityRecs, journal.EquityRecord{
			Time: ts, Cash: snap.Cash, Equity: snap.Equity,
			UnrealizedPnL: snap.UnrealizedPnL, RealizedPnL: snap.RealizedPnL,
		})
		curve = append(curve, metrics.Point{Time: ts, Equity: snap.Equity})

		if ledger.HasOpenPosition() {
			inMarket++
		}
		if gross := ledger.GrossExposure(marks); gross > peakGross {
			peakGross = gross
		}

		stepTimer.Observe(time.Since(stepStart))
		if every := cfg.Run.HeartbeatEvery; every > 0 && (i+1)%every == 0 {
			log.WithFields(logrus.Fields{
				"step":   i + 1,
				"steps":  len(timestamps),
				"equity": snap.Equity,
				"fills":  counters.Fills,
			}).Info("heartbeat")
		}
	}

	finishedAt := time.Now().UTC()

	var perf *metrics.Metrics
	if len(curve) > 0 {
		m := metrics.Compute(curve, cfg.Interval)
		perf = &m
	}

	timerStats := stepTimer.Stats()
	if wall := finishedAt.Sub(startedAt).Seconds(); wall > 0 {
		timerStats.BarsPerSec = float64(counters.Bars) / wall
	}

	summary := Summary{
		RunID:               runID,
		ConfigHash:          cfg.Hash(),
		GitSHA:              gitSHA(),
		StartedAt:           startedAt,
		FinishedAt:          finishedAt,
		Symbols:             cfg.Symbols,
		Interval:            string(cfg.Interval),
		StartCash:           cfg.StartCash,
		Strategy:            cfg.Strategy.Name,
		Counters:            counters,
		StepTimer:           timerStats,
		MissingBarsBySymbol: missingCounts(cfg.Symbols, series, len(timestamps)),
		Metrics:             perf,
		RealizedPnL:         ledger.RealizedPnL(),
		Turnover:            turnover,
		PeakGrossExposure:   peakGross,
	}
	if len(curve) > 0 {
		summary.EndEquity = curve[len(curve)-1].Equity
		summary.TimeInMarket = float64(inMarket) / float64(len(timestamps))
	} else {
		summary.EndEquity = cfg.StartCash
	}

	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	if err := e.journal.WriteRun(journal.Run{
		ID:      runID,
		Bars:    barRecords,
		Orders:  orderRecords,
		Fills:   fillRecords,
		Equity:  equityRecs,
		Summary: summaryJSON,
	}); err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}

	log.WithFields(logrus.Fields{
		"bars":       counters.Bars,
		"fills":      counters.Fills,
		"end_equity": summary.EndEquity,
	}).Info("run complete")

	return &Result{RunID: runID, Summary: summary, Equity: curve}, nil
}

// loadSeries loads every configured symbol. Missing cache files are
// tolerated unless all symbols are missing.
func (e *Engine) loadSeries() (map[string]*market.Series, []string, error) {
	cfg := e.cfg
	series := make(map[string]*market.Series, len(cfg.Symbols))
	var missing []string
	for _, sym := range cfg.Symbols {
		sr, err := data.LoadSeries(cfg.Data.CacheDir, sym, cfg.Interval)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, sym)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		series[sym] = sr
	}
	if len(series) == 0 {
		return nil, nil, &LoadError{Symbols: cfg.Symbols, Dir: cfg.Data.CacheDir}
	}
	return series, missing, nil
}

// missingCounts reports per symbol how many merged timestamps lacked a bar.
func missingCounts(symbols []string, series map[string]*market.Series, steps int) map[string]int {
	out := make(map[string]int, len(symbols))
	for _, sym := range symbols {
		if sr, ok := series[sym]; ok {
			out[sym] = steps - sr.Len()
		} else {
			out[sym] = steps
		}
	}
	return out
}

// gitSHA best-effort resolves the working tree's commit for provenance.
func gitSHA() string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
