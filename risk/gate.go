// Package risk gates proposed orders through a fixed sequence of
// independent checks. Each check can reject on its own and the first
// rejection wins; an admitted order is returned unchanged.
package risk

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantlab/backtester/market"
)

// Params is the immutable risk configuration for a run.
type Params struct {
	MaxGrossExposure     float64
	PerSymbolNotionalCap float64
	MarketCalendar       string   // defaults to XNYS
	DailyLossCap         *float64 // nil disables the daily loss check
}

// Provider supplies a current portfolio figure (gross exposure, daily
// realized PnL) at validation time. Providers are called synchronously.
type Provider func() (float64, error)

// Gate applies the check sequence: session window, per-symbol notional cap,
// daily loss cap, gross exposure cap.
type Gate struct {
	params        Params
	calendar      Calendar
	grossExposure Provider
	dailyPnL      Provider
	sessionGate   bool
	failClosed    bool
	now           func() time.Time
	log           logrus.FieldLogger
}

// Option configures a Gate.
type Option func(*Gate)

// WithGrossExposureProvider supplies current gross exposure for the
// aggregate exposure cap.
func WithGrossExposureProvider(p Provider) Option {
	return func(g *Gate) { g.grossExposure = p }
}

// WithDailyPnLProvider supplies the day's realized PnL for the daily loss
// cap.
func WithDailyPnLProvider(p Provider) Option {
	return func(g *Gate) { g.dailyPnL = p }
}

// WithSessionGate toggles the trading-session check. Backtests disable it
// so wall-clock time never influences a run.
func WithSessionGate(enabled bool) Option {
	return func(g *Gate) { g.sessionGate = enabled }
}

// WithFailClosed rejects orders when a provider call fails instead of the
// default fail-open (skip the check, allow the order).
func WithFailClosed(enabled bool) Option {
	return func(g *Gate) { g.failClosed = enabled }
}

// WithClock injects the session-gate clock.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLogger routes provider-failure warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gate) { g.log = log }
}

// NewGate builds a gate for the given parameters. The session gate is on by
// default, mirroring live usage.
func NewGate(params Params, opts ...Option) (*Gate, error) {
	name := params.MarketCalendar
	if name == "" {
		name = "XNYS"
	}
	cal, err := LookupCalendar(name)
	if err != nil {
		return nil, err
	}
	g := &Gate{
		params:      params,
		calendar:    cal,
		sessionGate: true,
		now:         func() time.Time { return time.Now().UTC() },
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Validate admits or rejects a proposed order. nil means rejected. The
// returned order is the input, never mutated.
func (g *Gate) Validate(order market.Order) *market.Order {
	if g.sessionGate && !g.calendar.IsOpen(g.now()) {
		return nil
	}

	// Limit orders only: market orders have no pre-trade price estimate
	// at this layer.
	notional := order.Notional()
	if notional > 0 && g.params.PerSymbolNotionalCap > 0 && notional > g.params.PerSymbolNotionalCap {
		return nil
	}

	if g.params.DailyLossCap != nil && g.dailyPnL != nil {
		cap := *g.params.DailyLossCap
		if cap < 0 {
			cap = -cap
		}
		daily, err := g.dailyPnL()
		switch {
		case err != nil:
			g.log.WithError(err).Warn("daily loss cap check failed")
			if g.failClosed {
				return nil
			}
		case daily < -cap:
			return nil
		}
	}

	if g.params.MaxGrossExposure > 0 && g.grossExposure != nil && notional > 0 {
		gross, err := g.grossExposure()
		switch {
		case err != nil:
			g.log.WithError(err).Warn("gross exposure check failed")
			if g.failClosed {
				return nil
			}
		case gross+notional > g.params.MaxGrossExposure:
			return nil
		}
	}

	return &order
}
