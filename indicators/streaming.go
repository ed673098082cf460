// Package indicators provides streaming indicators that update one bar at a
// time, for strategies that cannot see the whole series up front.
package indicators

import (
	"fmt"

	"github.com/quantlab/backtester/market"
)

// SimpleMA is a streaming Simple Moving Average over bar closes.
type SimpleMA struct {
	period int
	closes []float64
}

// NewMA creates a Simple Moving Average with the given period.
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.closes = m.closes[:0]
}

func (m *SimpleMA) Update(b market.Bar) {
	m.closes = append(m.closes, b.Close)
	if len(m.closes) > m.period {
		m.closes = m.closes[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.closes) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, c := range m.closes {
		sum += c
	}
	return sum / float64(len(m.closes))
}

// ExponentialMA is a streaming Exponential Moving Average over bar closes.
// The first value is seeded with the SMA of the warmup window.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates an Exponential Moving Average with the given period.
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	if e.count < e.period {
		e.warmupSum += b.Close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (b.Close-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool {
	return e.count >= e.period
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// Momentum tracks the close-over-close change across a lookback window.
type Momentum struct {
	lookback int
	closes   []float64
}

// NewMomentum creates a momentum indicator with the given lookback.
func NewMomentum(lookback int) *Momentum {
	return &Momentum{
		lookback: lookback,
		closes:   make([]float64, 0, lookback+1),
	}
}

func (m *Momentum) Name() string {
	return fmt.Sprintf("MOM(%d)", m.lookback)
}

func (m *Momentum) Warmup() int {
	return m.lookback + 1
}

func (m *Momentum) Reset() {
	m.closes = m.closes[:0]
}

func (m *Momentum) Update(b market.Bar) {
	m.closes = append(m.closes, b.Close)
	if len(m.closes) > m.lookback+1 {
		m.closes = m.closes[1:]
	}
}

func (m *Momentum) Ready() bool {
	return len(m.closes) >= m.lookback+1
}

// Value is the difference between the latest close and the close lookback
// bars earlier.
func (m *Momentum) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.closes[len(m.closes)-1] - m.closes[0]
}
