package market

import "time"

// Side of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType distinguishes market and limit orders.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// Bar is one OHLCV summary for a symbol over a fixed interval,
// timestamped at period close (UTC). Bars are immutable once loaded.
type Bar struct {
	Symbol string
	End    time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Order is a single-bar order proposal. Orders are created by a strategy
// for one bar and resolved (filled or dropped) within the same step; they
// never survive to the next bar.
type Order struct {
	LocalID    string
	Symbol     string
	Side       Side
	Type       OrderType
	Quantity   int64
	LimitPrice *float64 // required for limit orders
	TIF        string   // "DAY" unless stated otherwise
}

// Notional returns limit_price * quantity for limit orders.
// Market orders have no pre-trade price estimate, so their notional is 0.
func (o Order) Notional() float64 {
	if o.Type == Limit && o.LimitPrice != nil {
		return *o.LimitPrice * float64(o.Quantity)
	}
	return 0
}

// Fill is the executed portion of an order against one bar.
// Qty is signed: positive bought, negative sold.
type Fill struct {
	OrderLocalID string
	Time         time.Time
	Qty          int64
	Price        float64
	Commission   float64
}
