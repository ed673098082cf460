// Package data loads, generates, and unpacks historical bar series. The
// simulation core depends on the invariants enforced here: ascending,
// duplicate-free timestamps and numeric OHLCV fields.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quantlab/backtester/market"
)

// SeriesPath returns the cache file for a (symbol, interval) pair.
func SeriesPath(baseDir, symbol string, interval market.Interval) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.csv", symbol, interval))
}

// LoadSeries reads a bar series from the cache directory and validates the
// core invariants. A missing cache file surfaces as an error satisfying
// errors.Is(err, fs.ErrNotExist) so callers can treat it as skippable.
//
// Expected CSV columns: symbol,end,open,high,low,close,volume with end as
// RFC3339 UTC. A header row is detected and skipped.
func LoadSeries(baseDir, symbol string, interval market.Interval) (*market.Series, error) {
	path := SeriesPath(baseDir, symbol, interval)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load series %s/%s: %w", symbol, interval, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	var bars []market.Bar
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "symbol") {
			continue
		}
		bar, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		bars = append(bars, bar)
	}

	series, err := market.NewSeries(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

func parseBarRow(row []string) (market.Bar, error) {
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(row[1]))
	if err != nil {
		return market.Bar{}, fmt.Errorf("bad end %q: %w", row[1], err)
	}

	var ohlc [4]float64
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad %s %q: %w", name, row[2+i], err)
		}
		if v <= 0 {
			return market.Bar{}, fmt.Errorf("%s must be positive, got %v", name, v)
		}
		ohlc[i] = v
	}

	volume, err := strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
	if err != nil {
		return market.Bar{}, fmt.Errorf("bad volume %q: %w", row[6], err)
	}
	if volume < 0 {
		return market.Bar{}, fmt.Errorf("volume must be non-negative, got %d", volume)
	}

	return market.Bar{
		Symbol: strings.TrimSpace(row[0]),
		End:    end.UTC(),
		Open:   ohlc[0],
		High:   ohlc[1],
		Low:    ohlc[2],
		Close:  ohlc[3],
		Volume: volume,
	}, nil
}

// WriteSeries writes bars to the cache location for (symbol, interval).
func WriteSeries(baseDir, symbol string, interval market.Interval, bars []market.Bar) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("write series: %w", err)
	}
	path := SeriesPath(baseDir, symbol, interval)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("write series: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"symbol", "end", "open", "high", "low", "close", "volume"}); err != nil {
		return "", err
	}
	for _, b := range bars {
		rec := []string{
			b.Symbol,
			b.End.UTC().Format(time.RFC3339),
			fmtPrice(b.Open),
			fmtPrice(b.High),
			fmtPrice(b.Low),
			fmtPrice(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func fmtPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
