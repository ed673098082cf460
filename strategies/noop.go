package strategies

import "github.com/quantlab/backtester/market"

// Noop proposes nothing. Baseline for flat-equity runs.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) OnBar(bar market.Bar) *market.Order { return nil }
