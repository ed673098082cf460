// Package portfolio tracks cash, per-symbol positions, and realized PnL for
// a single simulation run. Prices are in account currency. Equity is always
// recomputed as cash plus marked position value, never tracked separately,
// so it cannot drift from the fills that produced it.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantlab/backtester/market"
)

// ErrOversell is returned when a sell fill exceeds the held quantity.
// Positions never go net short in this system; overselling indicates a
// strategy or risk bug and aborts the run.
var ErrOversell = errors.New("sell quantity exceeds held position")

// Position is a signed holding in one symbol with its volume-weighted
// average entry price. Quantity is always >= 0.
type Position struct {
	Symbol   string
	Qty      int64
	AvgPrice float64
}

// Snapshot is a derived point-in-time view of the ledger.
type Snapshot struct {
	Time          time.Time
	Cash          float64
	Equity        float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// Ledger is the in-memory accounting state. Not safe for concurrent use;
// each run owns its own instance.
type Ledger struct {
	cash      float64
	positions map[string]*Position
	realized  float64
}

// NewLedger starts a ledger with the given cash balance.
func NewLedger(cash float64) *Ledger {
	return &Ledger{
		cash:      cash,
		positions: make(map[string]*Position),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// RealizedPnL returns cumulative realized PnL since the start of the run.
func (l *Ledger) RealizedPnL() float64 { return l.realized }

// Position returns the position for symbol, creating a zero-initialized one
// on first access.
func (l *Ledger) Position(symbol string) *Position {
	pos, ok := l.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		l.positions[symbol] = pos
	}
	return pos
}

// ApplyFill books a fill against the ledger.
//
// Buys (fill.Qty > 0) raise quantity, fold price into the VWAP average, and
// reduce cash by qty*price + commission. Sells (fill.Qty < 0) realize
// (price - avg) * qty - commission, reduce quantity (average unchanged for
// the remainder, reset to 0 when flat), and add qty*price - commission to
// cash. Selling more than held returns ErrOversell.
func (l *Ledger) ApplyFill(fill market.Fill, price float64, symbol string, commission float64) error {
	if fill.Qty == 0 {
		return nil
	}
	pos := l.Position(symbol)
	qty := fill.Qty
	if qty < 0 {
		qty = -qty
	}

	if fill.Qty > 0 {
		newQty := pos.Qty + qty
		pos.AvgPrice = (pos.AvgPrice*float64(pos.Qty) + price*float64(qty)) / float64(newQty)
		pos.Qty = newQty
		l.cash -= price * float64(qty)
		l.cash -= commission
		return nil
	}

	if qty > pos.Qty {
		return fmt.Errorf("%s: sell %d with %d held: %w", symbol, qty, pos.Qty, ErrOversell)
	}
	l.realized += (price-pos.AvgPrice)*float64(qty) - commission
	pos.Qty -= qty
	if pos.Qty == 0 {
		pos.AvgPrice = 0
	}
	l.cash += price * float64(qty)
	l.cash -= commission
	return nil
}

// Snapshot marks open positions to the supplied prices and returns the
// derived state. Symbols missing from marks fall back to their average
// price, so a snapshot never fails.
func (l *Ledger) Snapshot(asOf time.Time, marks map[string]float64) Snapshot {
	equity := l.cash
	unrealized := 0.0
	for symbol, pos := range l.positions {
		if pos.Qty == 0 {
			continue
		}
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgPrice
		}
		equity += mark * float64(pos.Qty)
		unrealized += (mark - pos.AvgPrice) * float64(pos.Qty)
	}
	return Snapshot{
		Time:          asOf,
		Cash:          l.cash,
		Equity:        equity,
		UnrealizedPnL: unrealized,
		RealizedPnL:   l.realized,
	}
}

// GrossExposure sums |qty * mark| over open positions, falling back to the
// average price for unmarked symbols.
func (l *Ledger) GrossExposure(marks map[string]float64) float64 {
	gross := 0.0
	for symbol, pos := range l.positions {
		if pos.Qty == 0 {
			continue
		}
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgPrice
		}
		v := mark * float64(pos.Qty)
		if v < 0 {
			v = -v
		}
		gross += v
	}
	return gross
}

// HasOpenPosition reports whether any symbol holds a nonzero quantity.
func (l *Ledger) HasOpenPosition() bool {
	for _, pos := range l.positions {
		if pos.Qty != 0 {
			return true
		}
	}
	return false
}
