// Package obs accumulates lightweight run counters and timer samples.
// Values only ever increase during a run and are read once at the end to
// build summary statistics; formatting and emission live elsewhere.
package obs

import (
	"math"
	"sort"
	"time"
)

// Counters are the monotonically increasing run totals.
type Counters struct {
	Bars           int64 `json:"bars"`
	OrdersProposed int64 `json:"orders_proposed"`
	OrdersApproved int64 `json:"orders_approved"`
	Fills          int64 `json:"fills"`
}

// TimerStats summarizes a set of duration samples, in milliseconds.
type TimerStats struct {
	Count      int     `json:"count"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
	P50        float64 `json:"p50"`
	P95        float64 `json:"p95"`
	BarsPerSec float64 `json:"bars_per_sec"`
}

// StepTimer collects per-step wall times.
type StepTimer struct {
	samplesMs []float64
}

// Observe records one step duration.
func (t *StepTimer) Observe(d time.Duration) {
	t.samplesMs = append(t.samplesMs, float64(d)/float64(time.Millisecond))
}

// Count returns the number of recorded samples.
func (t *StepTimer) Count() int { return len(t.samplesMs) }

// Stats computes avg/max/p50/p95 over the recorded samples. BarsPerSec is
// left for the caller, which knows the run's total duration.
func (t *StepTimer) Stats() TimerStats {
	s := TimerStats{Count: len(t.samplesMs)}
	if s.Count == 0 {
		return s
	}
	sum := 0.0
	for _, v := range t.samplesMs {
		sum += v
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = sum / float64(s.Count)

	sorted := make([]float64, s.Count)
	copy(sorted, t.samplesMs)
	sort.Float64s(sorted)
	s.P50 = percentile(sorted, 0.5)
	s.P95 = percentile(sorted, 0.95)
	return s
}

// percentile is nearest-rank on an already sorted slice: k = round(p*(n-1)),
// with ties rounded half to even so an exact midpoint picks the lower
// neighbor (k=4.5 selects index 4, not 5).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	k := int(math.RoundToEven(p * float64(n-1)))
	if k < 0 {
		k = 0
	}
	if k > n-1 {
		k = n - 1
	}
	return sorted[k]
}
