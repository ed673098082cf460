package data

import (
	"compress/gzip"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/backtester/market"
)

func TestWriteAndLoadSeriesRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bars := []market.Bar{
		{Symbol: "SPY", End: time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Symbol: "SPY", End: time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC), Open: 101, High: 102, Low: 100, Close: 101.5, Volume: 1100},
	}

	path, err := WriteSeries(dir, "SPY", market.Interval1d, bars)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "SPY_1d.csv"), path)

	series, err := LoadSeries(dir, "SPY", market.Interval1d)
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, bars[0].Close, series.Bars[0].Close)
	assert.True(t, series.Bars[1].End.Equal(bars[1].End))

	got, ok := series.At(bars[0].End)
	require.True(t, ok)
	assert.Equal(t, int64(1000), got.Volume)
}

func TestLoadSeriesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSeries(t.TempDir(), "SPY", market.Interval1d)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadSeriesRejectsBadRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows string
	}{
		{"bad_timestamp", "symbol,end,open,high,low,close,volume\nSPY,notatime,100,101,99,100,1000\n"},
		{"negative_price", "symbol,end,open,high,low,close,volume\nSPY,2024-01-02T21:00:00Z,-1,101,99,100,1000\n"},
		{"negative_volume", "symbol,end,open,high,low,close,volume\nSPY,2024-01-02T21:00:00Z,100,101,99,100,-5\n"},
		{"non_numeric_close", "symbol,end,open,high,low,close,volume\nSPY,2024-01-02T21:00:00Z,100,101,99,abc,1000\n"},
		{"duplicate_timestamp", "symbol,end,open,high,low,close,volume\n" +
			"SPY,2024-01-02T21:00:00Z,100,101,99,100,1000\n" +
			"SPY,2024-01-02T21:00:00Z,100,101,99,100,1000\n"},
		{"out_of_order", "symbol,end,open,high,low,close,volume\n" +
			"SPY,2024-01-03T21:00:00Z,100,101,99,100,1000\n" +
			"SPY,2024-01-02T21:00:00Z,100,101,99,100,1000\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "SPY_1d.csv"), []byte(tt.rows), 0o644))
			_, err := LoadSeries(dir, "SPY", market.Interval1d)
			assert.Error(t, err)
		})
	}
}

func TestGenerateFixtureDeterministic(t *testing.T) {
	t.Parallel()

	spec := FixtureSpec{
		Symbol:   "SPY",
		Interval: market.Interval1d,
		Start:    time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC),
		Bars:     50,
		Seed:     7,
	}

	a, err := GenerateFixture(spec)
	require.NoError(t, err)
	b, err := GenerateFixture(spec)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.Len(t, a, 50)
	for i, bar := range a {
		assert.Greater(t, bar.Open, 0.0)
		assert.GreaterOrEqual(t, bar.High, bar.Close)
		assert.LessOrEqual(t, bar.Low, bar.Close)
		assert.GreaterOrEqual(t, bar.Volume, int64(0))
		if i > 0 {
			assert.True(t, bar.End.After(a[i-1].End))
		}
	}

	// Different seed, different walk.
	spec.Seed = 8
	c, err := GenerateFixture(spec)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestWriteFixtureIsLoadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := WriteFixture(dir, FixtureSpec{
		Symbol:   "QQQ",
		Interval: market.Interval1h,
		Start:    time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC),
		Bars:     24,
		Seed:     1,
	})
	require.NoError(t, err)

	series, err := LoadSeries(dir, "QQQ", market.Interval1h)
	require.NoError(t, err)
	assert.Equal(t, 24, series.Len())
}

func TestExtractArchiveGzip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := "symbol,end,open,high,low,close,volume\nSPY,2024-01-02T21:00:00Z,100,101,99,100.5,1000\n"

	src := filepath.Join(dir, "SPY_1d.csv.gz")
	f, err := os.Create(src)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := filepath.Join(dir, "cache")
	require.NoError(t, ExtractArchive(src, dest))

	series, err := LoadSeries(dest, "SPY", market.Interval1d)
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
}

func TestExtractArchiveUnsupportedFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "bars.rar")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	assert.Error(t, ExtractArchive(src, dir))
}
