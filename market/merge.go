package market

import (
	"container/heap"
	"time"
)

// mergeCursor tracks the next unconsumed bar of one symbol's series.
type mergeCursor struct {
	next time.Time
	rank int // position of the symbol in the configured ordering
	ts   []time.Time
	pos  int
}

type mergeHeap []*mergeCursor

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if !h[i].next.Equal(h[j].next) {
		return h[i].next.Before(h[j].next)
	}
	// Stable tie-break so runs over identical inputs emit identical sequences.
	return h[i].rank < h[j].rank
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(*mergeCursor)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// MergeTimestamps merges the per-symbol bar timestamps into one strictly
// ascending global sequence. Equal timestamps across symbols collapse into a
// single emitted timestamp. symbols fixes the tie-break order; symbols
// without a series are skipped. Each series must itself be strictly
// ascending (NewSeries enforces that upstream).
//
// A k-way heap merge keeps memory at one cursor per symbol instead of
// concatenating and sorting every bar.
func MergeTimestamps(symbols []string, series map[string]*Series) []time.Time {
	h := make(mergeHeap, 0, len(symbols))
	total := 0
	for rank, sym := range symbols {
		s, ok := series[sym]
		if !ok || s.Len() == 0 {
			continue
		}
		ts := s.Timestamps()
		total += len(ts)
		h = append(h, &mergeCursor{next: ts[0], rank: rank, ts: ts})
	}
	heap.Init(&h)

	out := make([]time.Time, 0, total)
	var last time.Time
	for h.Len() > 0 {
		c := h[0]
		if len(out) == 0 || !c.next.Equal(last) {
			out = append(out, c.next)
			last = c.next
		}
		c.pos++
		if c.pos < len(c.ts) {
			c.next = c.ts[c.pos]
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}
	return out
}
