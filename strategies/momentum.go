package strategies

import (
	"fmt"

	"github.com/quantlab/backtester/indicators"
	"github.com/quantlab/backtester/internal/id"
	"github.com/quantlab/backtester/market"
)

// MomentumStrategy buys when the close rises over the lookback window and
// exits when it falls. Long-only, one position at a time.
type MomentumStrategy struct {
	symbol  string
	qty     int64
	mom     *indicators.Momentum
	holding int64
}

// NewMomentum builds the strategy. Params: lookback (default 10), qty
// (default 10).
func NewMomentum(symbol string, params map[string]any) (Strategy, error) {
	lookback, err := intParam(params, "lookback", 10)
	if err != nil {
		return nil, err
	}
	qty, err := intParam(params, "qty", 10)
	if err != nil {
		return nil, err
	}
	if lookback <= 0 {
		return nil, fmt.Errorf("momentum: lookback must be positive, got %d", lookback)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("momentum: qty must be positive, got %d", qty)
	}
	return &MomentumStrategy{
		symbol: symbol,
		qty:    int64(qty),
		mom:    indicators.NewMomentum(lookback),
	}, nil
}

func (s *MomentumStrategy) Name() string {
	return fmt.Sprintf("momentum(%s)", s.mom.Name())
}

func (s *MomentumStrategy) OnBar(bar market.Bar) *market.Order {
	s.mom.Update(bar)
	if !s.mom.Ready() {
		return nil
	}

	v := s.mom.Value()
	switch {
	case v > 0 && s.holding == 0:
		s.holding = s.qty
		return &market.Order{
			LocalID:  id.New(),
			Symbol:   s.symbol,
			Side:     market.Buy,
			Type:     market.Market,
			Quantity: s.qty,
			TIF:      "DAY",
		}
	case v < 0 && s.holding > 0:
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
