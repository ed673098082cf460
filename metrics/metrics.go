// Package metrics derives standard performance statistics from an equity
// curve. Every ratio degrades to exactly 0 on degenerate input (flat curve,
// too few points) rather than NaN, so no-trade runs report cleanly.
package metrics

import (
	"math"
	"time"

	"github.com/quantlab/backtester/market"
)

// Point is one (timestamp, equity) observation. Curves are expected in
// chronological order.
type Point struct {
	Time   time.Time
	Equity float64
}

// Metrics holds the derived performance figures.
type Metrics struct {
	CAGR        float64 `json:"cagr"`
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Calmar      float64 `json:"calmar"`
	HitRate     float64 `json:"hit_rate"`
}

// Compute derives Metrics from the equity curve at the given bar interval.
// The interval selects the annualization factor (daily 252, hourly 252*6.5,
// minute 252*390).
func Compute(curve []Point, interval market.Interval) Metrics {
	var m Metrics
	if len(curve) == 0 {
		return m
	}

	n := len(curve)
	ppy := interval.PeriodsPerYear()
	startEquity := curve[0].Equity
	endEquity := curve[n-1].Equity

	// Simple per-step returns; the first point has no return.
	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}

	meanR := mean(returns)
	stdR := sampleStdev(returns)

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	stdDown := sampleStdev(downside)

	if n > 1 && startEquity > 0 {
		m.CAGR = math.Pow(endEquity/startEquity, float64(ppy)/float64(n)) - 1
	}

	// Risk-free rate assumed 0.
	if stdR > 0 {
		m.Sharpe = meanR * math.Sqrt(float64(ppy)) / stdR
	}
	if stdDown > 0 {
		m.Sortino = meanR * math.Sqrt(float64(ppy)) / stdDown
	}

	m.MaxDrawdown = maxDrawdown(curve)
	if m.MaxDrawdown < 0 {
		m.Calmar = m.CAGR / math.Abs(m.MaxDrawdown)
	}

	if len(returns) > 0 {
		wins := 0
		for _, r := range returns {
			if r > 0 {
				wins++
			}
		}
		m.HitRate = float64(wins) / float64(len(returns))
	}

	return m
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev is the ddof=1 standard deviation; 0 for fewer than 2 samples.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// maxDrawdown is the minimum of equity/runningMax - 1 over the curve.
func maxDrawdown(curve []Point) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := p.Equity/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
