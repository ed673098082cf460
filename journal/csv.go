// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVJournal writes each run into its own directory under the base
// directory: bars.csv, orders.csv, fills.csv, equity.csv, summary.json.
type CSVJournal struct {
	baseDir string
}

func NewCSV(baseDir string) (*CSVJournal, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal dir %s: %w", baseDir, err)
	}
	return &CSVJournal{baseDir: baseDir}, nil
}

// RunDir returns the directory holding a run's artifacts.
func (j *CSVJournal) RunDir(runID string) string {
	return filepath.Join(j.baseDir, runID)
}

// WriteRun stages the run into a temp directory and renames it into place,
// so a failure mid-write leaves no visible run directory.
func (j *CSVJournal) WriteRun(r Run) error {
	tmp, err := os.MkdirTemp(j.baseDir, "."+r.ID+"-")
	if err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	defer os.RemoveAll(tmp)

	if err := j.writeArtifacts(tmp, r); err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	if err := os.Rename(tmp, j.RunDir(r.ID)); err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	return nil
}

func (j *CSVJournal) writeArtifacts(dir string, r Run) error {
	if err := writeCSV(filepath.Join(dir, "bars.csv"),
		[]string{"time", "symbol", "open", "high", "low", "close", "volume"},
		len(r.Bars), func(i int) []string {
			b := r.Bars[i]
			return []string{
				b.Time.UTC().Format(time.RFC3339), b.Symbol,
				f(b.Open), f(b.High), f(b.Low), f(b.Close),
				strconv.FormatInt(b.Volume, 10),
			}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "orders.csv"),
		[]string{"local_id", "time", "symbol", "side", "type", "quantity", "limit_price", "approved"},
		len(r.Orders), func(i int) []string {
			o := r.Orders[i]
			return []string{
				o.LocalID, o.Time.UTC().Format(time.RFC3339), o.Symbol,
				o.Side, o.Type,
				strconv.FormatInt(o.Quantity, 10), f(o.LimitPrice),
				strconv.FormatBool(o.Approved),
			}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "fills.csv"),
		[]string{"order_local_id", "time", "symbol", "quantity", "price", "commission"},
		len(r.Fills), func(i int) []string {
			fl := r.Fills[i]
			return []string{
				fl.OrderLocalID, fl.Time.UTC().Format(time.RFC3339), fl.Symbol,
				strconv.FormatInt(fl.Quantity, 10), f(fl.Price), f(fl.Commission),
			}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "equity.csv"),
		[]string{"time", "cash", "equity", "unrealized_pnl", "realized_pnl"},
		len(r.Equity), func(i int) []string {
			e := r.Equity[i]
			return []string{
				e.Time.UTC().Format(time.RFC3339),
				f(e.Cash), f(e.Equity), f(e.UnrealizedPnL), f(e.RealizedPnL),
			}
		}); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "summary.json"), r.Summary, 0o644)
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
