package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriteRunArtifacts(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	j, err := NewCSV(base)
	require.NoError(t, err)
	defer j.Close()

	run := sampleRun("run-1")
	require.NoError(t, j.WriteRun(run))

	dir := j.RunDir("run-1")
	for _, name := range []string{"bars.csv", "orders.csv", "fills.csv", "equity.csv", "summary.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	bars := readCSV(t, filepath.Join(dir, "bars.csv"))
	require.Len(t, bars, 3) // header + 2 rows
	assert.Equal(t, []string{"time", "symbol", "open", "high", "low", "close", "volume"}, bars[0])
	assert.Equal(t, "SPY", bars[1][1])
	assert.Equal(t, "1000", bars[1][6])

	orders := readCSV(t, filepath.Join(dir, "orders.csv"))
	require.Len(t, orders, 3)
	assert.Equal(t, "true", orders[1][7])
	assert.Equal(t, "false", orders[2][7])

	equity := readCSV(t, filepath.Join(dir, "equity.csv"))
	require.Len(t, equity, 3)
	assert.Equal(t, "9999.000000", equity[1][2])

	summary, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"run_id":"run-1"}`, string(summary))
}

func TestCSVEmptyRunStillWritesFiles(t *testing.T) {
	t.Parallel()

	j, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.WriteRun(Run{ID: "empty", Summary: []byte(`{}`)}))

	fills := readCSV(t, filepath.Join(j.RunDir("empty"), "fills.csv"))
	assert.Len(t, fills, 1) // header only
}

func TestCSVNoPartialDirOnNoWrite(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	j, err := NewCSV(base)
	require.NoError(t, err)
	defer j.Close()

	// Nothing written yet, base dir holds no run directories.
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
