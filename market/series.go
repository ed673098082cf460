package market

import (
	"fmt"
	"time"
)

// Series is an ascending, duplicate-free bar sequence for one symbol with
// O(1) lookup by bar-end timestamp.
type Series struct {
	Symbol string
	Bars   []Bar

	byEnd map[int64]int // UnixNano -> index into Bars
}

// NewSeries validates and indexes a bar sequence. Timestamps must be
// strictly ascending; a duplicate or out-of-order bar is an error since the
// merge and lookup contracts depend on it.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	s := &Series{
		Symbol: symbol,
		Bars:   bars,
		byEnd:  make(map[int64]int, len(bars)),
	}
	var prev time.Time
	for i, b := range bars {
		if b.Symbol != symbol {
			return nil, fmt.Errorf("series %s: bar %d has symbol %q", symbol, i, b.Symbol)
		}
		if i > 0 && !b.End.After(prev) {
			return nil, fmt.Errorf("series %s: bar %d at %s is not strictly after %s",
				symbol, i, b.End.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = b.End
		s.byEnd[b.End.UnixNano()] = i
	}
	return s, nil
}

// At returns the bar ending at t, if any.
func (s *Series) At(t time.Time) (Bar, bool) {
	i, ok := s.byEnd[t.UnixNano()]
	if !ok {
		return Bar{}, false
	}
	return s.Bars[i], true
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Timestamps returns the bar-end timestamps in order.
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.End
	}
	return out
}
