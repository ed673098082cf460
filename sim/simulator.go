// Package sim provides a deterministic bar-close execution simulator for
// market and limit orders. It is purely a function of its inputs: no state,
// no commissions (the caller attaches those when booking the fill).
package sim

import (
	"time"

	"github.com/quantlab/backtester/market"
)

// FillPolicy constrains how much of a bar a single fill may consume.
type FillPolicy struct {
	// ParticipationCap is the 0..1 fraction of bar volume a fill may take.
	// nil disables the cap.
	ParticipationCap *float64
}

// Simulator converts an admitted order plus one bar into at most one fill.
//
//   - Market: fills the full quantity at bar close adjusted by slippage.
//   - Limit buy: fills if low <= limit, at min(close, limit) plus slippage.
//   - Limit sell: fills if high >= limit, at max(close, limit) plus slippage.
//   - Anything else: no fill. Unfilled orders are dropped, never queued.
type Simulator struct {
	SlippageBps int
	Policy      FillPolicy
}

// New returns a simulator with the given slippage (basis points of price,
// always applied against the order's direction) and fill policy.
func New(slippageBps int, policy FillPolicy) *Simulator {
	return &Simulator{SlippageBps: slippageBps, Policy: policy}
}

func (s *Simulator) applySlippage(price float64, side market.Side) float64 {
	if s.SlippageBps <= 0 {
		return price
	}
	bps := float64(s.SlippageBps) / 10000.0
	if side == market.Buy {
		return price * (1 + bps)
	}
	return price * (1 - bps)
}

// SimulateFill returns the fill for order against the given bar, or nil if
// the order does not execute. Sell fills carry a negative signed quantity.
func (s *Simulator) SimulateFill(order market.Order, barClose, barHigh, barLow float64, barVolume int64, fillTime time.Time) *market.Fill {
	var execPrice float64

	switch order.Type {
	case market.Market:
		execPrice = s.applySlippage(barClose, order.Side)

	case market.Limit:
		if order.LimitPrice == nil {
			return nil
		}
		limit := *order.LimitPrice
		if order.Side == market.Buy {
			if barLow > limit {
				return nil
			}
			execPrice = min(barClose, limit)
		} else {
			if barHigh < limit {
				return nil
			}
			execPrice = max(barClose, limit)
		}
		execPrice = s.applySlippage(execPrice, order.Side)

	default:
		// Malformed order type is an ordinary no-fill, not an error.
		return nil
	}

	qty := order.Quantity
	if s.Policy.ParticipationCap != nil {
		// floor, not round: the cap boundary is part of the fill contract
		maxQty := int64(float64(barVolume) * *s.Policy.ParticipationCap)
		if maxQty <= 0 {
			return nil
		}
		qty = min(qty, maxQty)
		if qty <= 0 {
			return nil
		}
	}

	signed := qty
	if order.Side == market.Sell {
		signed = -qty
	}

	return &market.Fill{
		OrderLocalID: order.LocalID,
		Time:         fillTime,
		Qty:          signed,
		Price:        execPrice,
	}
}
