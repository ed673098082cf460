package data

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quantlab/backtester/market"
)

// FixtureSpec describes a synthetic bar series.
type FixtureSpec struct {
	Symbol     string
	Interval   market.Interval
	Start      time.Time // first bar end, normalized to UTC
	Bars       int
	StartPrice float64
	Seed       int64
}

// GenerateFixture builds a deterministic random-walk bar series. The same
// spec always yields the same bars, so fixture-driven runs are repeatable.
func GenerateFixture(spec FixtureSpec) ([]market.Bar, error) {
	if spec.Symbol == "" {
		return nil, fmt.Errorf("fixture: symbol required")
	}
	if spec.Bars <= 0 {
		return nil, fmt.Errorf("fixture: bars must be positive, got %d", spec.Bars)
	}
	price := spec.StartPrice
	if price <= 0 {
		price = 100.0
	}

	rng := rand.New(rand.NewSource(spec.Seed))
	step := intervalStep(spec.Interval)
	end := spec.Start.UTC()

	bars := make([]market.Bar, 0, spec.Bars)
	for i := 0; i < spec.Bars; i++ {
		open := price
		// Bounded daily move, mild upward drift.
		change := (rng.Float64() - 0.48) * 0.02 * open
		close := open + change
		if close < 0.01 {
			close = 0.01
		}
		high := max(open, close) * (1 + rng.Float64()*0.005)
		low := min(open, close) * (1 - rng.Float64()*0.005)
		volume := 1000 + rng.Int63n(9000)

		bars = append(bars, market.Bar{
			Symbol: spec.Symbol,
			End:    end,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
		price = close
		end = end.Add(step)
	}
	return bars, nil
}

// WriteFixture generates and persists a synthetic series into the cache
// directory, returning the written path.
func WriteFixture(baseDir string, spec FixtureSpec) (string, error) {
	bars, err := GenerateFixture(spec)
	if err != nil {
		return "", err
	}
	return WriteSeries(baseDir, spec.Symbol, spec.Interval, bars)
}

func intervalStep(i market.Interval) time.Duration {
	switch i {
	case market.Interval1h:
		return time.Hour
	case market.Interval1m:
		return time.Minute
	default:
		return 24 * time.Hour
	}
}
