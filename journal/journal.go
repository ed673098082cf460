// Package journal persists the artifacts of a run: bars seen, orders
// proposed, fills, the equity curve, and the summary document. A run is
// written in one shot at the end so a failed run leaves no partial rows.
package journal

import (
	"time"
)

// BarRecord is one bar as the engine consumed it.
type BarRecord struct {
	Time   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// OrderRecord is a proposed order and its risk-gate outcome.
type OrderRecord struct {
	LocalID    string
	Time       time.Time
	Symbol     string
	Side       string
	Type       string
	Quantity   int64
	LimitPrice float64 // 0 for market orders
	Approved   bool
}

// FillRecord is an executed order. Quantity is signed, negative when sold.
type FillRecord struct {
	OrderLocalID string
	Time         time.Time
	Symbol       string
	Quantity     int64
	Price        float64
	Commission   float64
}

// EquityRecord is one point on the equity curve.
type EquityRecord struct {
	Time          time.Time
	Cash          float64
	Equity        float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// Run bundles every artifact of a completed run. Summary holds the
// serialized summary document verbatim.
type Run struct {
	ID      string
	Bars    []BarRecord
	Orders  []OrderRecord
	Fills   []FillRecord
	Equity  []EquityRecord
	Summary []byte
}

// Journal stores completed runs.
type Journal interface {
	WriteRun(Run) error
	Close() error
}
