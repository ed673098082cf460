package market

// Interval is the bar period of a series.
type Interval string

const (
	Interval1d Interval = "1d"
	Interval1h Interval = "1h"
	Interval1m Interval = "1m"
)

var periodsPerYear = map[Interval]int{
	Interval1d: 252,
	Interval1h: int(252 * 6.5), // trading hours per day
	Interval1m: 252 * 390,      // minutes per trading day
}

// PeriodsPerYear returns the annualization factor for the interval.
// Unknown intervals fall back to daily.
func (i Interval) PeriodsPerYear() int {
	if ppy, ok := periodsPerYear[i]; ok {
		return ppy
	}
	return 252
}
