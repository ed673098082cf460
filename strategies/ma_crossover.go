package strategies

import (
	"fmt"

	"github.com/quantlab/backtester/indicators"
	"github.com/quantlab/backtester/internal/id"
	"github.com/quantlab/backtester/market"
)

// MACrossover goes long when the fast SMA crosses above the slow SMA and
// exits when it crosses back below. Long-only, one position at a time. The
// strategy tracks its own assumed holding and should be run without a
// participation cap, since partial fills are invisible at this interface.
type MACrossover struct {
	symbol   string
	qty      int64
	fast     *indicators.SimpleMA
	slow     *indicators.SimpleMA
	prevDiff float64
	primed   bool
	holding  int64
}

// NewMACrossover builds the strategy. Params: fast (default 20), slow
// (default 50), qty (default 10).
func NewMACrossover(symbol string, params map[string]any) (Strategy, error) {
	fast, err := intParam(params, "fast", 20)
	if err != nil {
		return nil, err
	}
	slow, err := intParam(params, "slow", 50)
	if err != nil {
		return nil, err
	}
	qty, err := intParam(params, "qty", 10)
	if err != nil {
		return nil, err
	}
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("ma_crossover: need 0 < fast < slow, got fast=%d slow=%d", fast, slow)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("ma_crossover: qty must be positive, got %d", qty)
	}
	return &MACrossover{
		symbol: symbol,
		qty:    int64(qty),
		fast:   indicators.NewMA(fast),
		slow:   indicators.NewMA(slow),
	}, nil
}

func (s *MACrossover) Name() string {
	return fmt.Sprintf("ma_crossover(%s,%s)", s.fast.Name(), s.slow.Name())
}

func (s *MACrossover) OnBar(bar market.Bar) *market.Order {
	s.fast.Update(bar)
	s.slow.Update(bar)
	if !s.slow.Ready() {
		return nil
	}

	diff := s.fast.Value() - s.slow.Value()
	defer func() {
		s.prevDiff = diff
		s.primed = true
	}()

	if !s.primed {
		return nil
	}

	crossedUp := s.prevDiff <= 0 && diff > 0
	crossedDown := s.prevDiff >= 0 && diff < 0

	switch {
	case crossedUp && s.holding == 0:
		s.holding = s.qty
		return &market.Order{
			LocalID:  id.New(),
			Symbol:   s.symbol,
			Side:     market.Buy,
			Type:     market.Market,
			Quantity: s.qty,
			TIF:      "DAY",
		}
	case crossedDown && s.holding > 0:
		qty := s.holding
		s.holding = 0
		return &market.Order{
			LocalID:  id.New(),
			Symbol:   s.symbol,
			Side:     market.Sell,
			Type:     market.Market,
			Quantity: qty,
			TIF:      "DAY",
		}
	}
	return nil
}
