package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtester/market"
)

var fillAt = time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func marketOrder(side market.Side, qty int64) market.Order {
	return market.Order{LocalID: "o1", Symbol: "SPY", Side: side, Type: market.Market, Quantity: qty}
}

func limitOrder(side market.Side, qty int64, limit float64) market.Order {
	return market.Order{LocalID: "o1", Symbol: "SPY", Side: side, Type: market.Limit, Quantity: qty, LimitPrice: f64(limit)}
}

func TestMarketOrderSlippage(t *testing.T) {
	t.Parallel()

	s := New(10, FillPolicy{})
	fill := s.SimulateFill(marketOrder(market.Buy, 100), 100.0, 101.0, 99.0, 100000, fillAt)
	require.NotNil(t, fill)
	// 10 bps => buy pays close * 1.001
	assert.InDelta(t, 100.1, fill.Price, 1e-9)
	assert.Equal(t, int64(100), fill.Qty)

	sell := s.SimulateFill(marketOrder(market.Sell, 100), 100.0, 101.0, 99.0, 100000, fillAt)
	require.NotNil(t, sell)
	assert.InDelta(t, 99.9, sell.Price, 1e-9)
	assert.Equal(t, int64(-100), sell.Qty)
}

func TestZeroSlippageFillsAtClose(t *testing.T) {
	t.Parallel()

	s := New(0, FillPolicy{})
	fill := s.SimulateFill(marketOrder(market.Buy, 10), 123.45, 124.0, 123.0, 1000, fillAt)
	require.NotNil(t, fill)
	assert.Equal(t, 123.45, fill.Price)
	assert.True(t, fill.Time.Equal(fillAt))
}

func TestSlippageDirection(t *testing.T) {
	t.Parallel()

	for _, bps := range []int{1, 5, 50, 250} {
		s := New(bps, FillPolicy{})
		buy := s.SimulateFill(marketOrder(market.Buy, 1), 100.0, 101.0, 99.0, 1000, fillAt)
		sell := s.SimulateFill(marketOrder(market.Sell, 1), 100.0, 101.0, 99.0, 1000, fillAt)
		require.NotNil(t, buy)
		require.NotNil(t, sell)
		assert.Greater(t, buy.Price, 100.0, "buy pays up at %d bps", bps)
		assert.Less(t, sell.Price, 100.0, "sell receives less at %d bps", bps)
	}
}

func TestLimitOrders(t *testing.T) {
	t.Parallel()

	s := New(0, FillPolicy{})

	tests := []struct {
		name      string
		order     market.Order
		close     float64
		high, low float64
		wantFill  bool
		wantPrice float64
	}{
		{"buy_fills_when_low_reaches_limit", limitOrder(market.Buy, 10, 100.0), 99.0, 100.0, 98.0, true, 99.0},
		{"buy_price_capped_at_limit", limitOrder(market.Buy, 10, 100.0), 100.5, 101.0, 99.5, true, 100.0},
		{"buy_no_fill_when_low_above_limit", limitOrder(market.Buy, 10, 97.0), 99.0, 100.0, 98.0, false, 0},
		{"sell_fills_when_high_reaches_limit", limitOrder(market.Sell, 10, 100.0), 101.0, 102.0, 99.0, true, 101.0},
		{"sell_price_floored_at_limit", limitOrder(market.Sell, 10, 100.0), 99.5, 100.5, 99.0, true, 100.0},
		{"sell_no_fill_when_high_below_limit", limitOrder(market.Sell, 10, 103.0), 101.0, 102.0, 99.0, false, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fill := s.SimulateFill(tt.order, tt.close, tt.high, tt.low, 1000, fillAt)
			if !tt.wantFill {
				assert.Nil(t, fill)
				return
			}
			require.NotNil(t, fill)
			assert.InDelta(t, tt.wantPrice, fill.Price, 1e-9)
		})
	}
}

func TestLimitOrderWithoutPriceIsNoFill(t *testing.T) {
	t.Parallel()

	s := New(0, FillPolicy{})
	o := market.Order{LocalID: "o1", Symbol: "SPY", Side: market.Buy, Type: market.Limit, Quantity: 10}
	assert.Nil(t, s.SimulateFill(o, 100, 101, 99, 1000, fillAt))
}

func TestUnknownOrderTypeIsNoFill(t *testing.T) {
	t.Parallel()

	s := New(0, FillPolicy{})
	o := market.Order{LocalID: "o1", Symbol: "SPY", Side: market.Buy, Type: "stop", Quantity: 10}
	assert.Nil(t, s.SimulateFill(o, 100, 101, 99, 1000, fillAt))
}

func TestParticipationCap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cap     float64
		qty     int64
		volume  int64
		wantQty int64 // 0 means no fill
	}{
		{"caps_large_order", 0.1, 1000, 500, 50},
		{"request_below_cap_fills_fully", 0.5, 10, 500, 10},
		{"zero_volume_no_fill", 0.5, 10, 0, 0},
		{"cap_truncates_to_zero_no_fill", 0.1, 10, 9, 0},
		{"floor_not_round", 0.1, 1000, 19, 1}, // 1.9 truncates to 1
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New(0, FillPolicy{ParticipationCap: &tt.cap})
			fill := s.SimulateFill(marketOrder(market.Buy, tt.qty), 100, 101, 99, tt.volume, fillAt)
			if tt.wantQty == 0 {
				assert.Nil(t, fill)
				return
			}
			require.NotNil(t, fill)
			assert.Equal(t, tt.wantQty, fill.Qty)
		})
	}
}

func TestSimulatorHasNoCommissionOpinion(t *testing.T) {
	t.Parallel()

	s := New(0, FillPolicy{})
	fill := s.SimulateFill(marketOrder(market.Buy, 10), 100, 101, 99, 1000, fillAt)
	require.NotNil(t, fill)
	assert.Zero(t, fill.Commission)
}
