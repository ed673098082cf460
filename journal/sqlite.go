package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db %s: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// WriteRun writes the run inside one transaction. Either every row lands
// or none do.
func (j *SQLiteJournal) WriteRun(r Run) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}

	if err := writeRunTx(tx, r); err != nil {
		tx.Rollback()
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: %w", r.ID, err)
	}
	return nil
}

func writeRunTx(tx *sql.Tx, r Run) error {
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, created_at, summary) VALUES (?, ?, ?)`,
		r.ID, time.Now().UTC(), string(r.Summary),
	); err != nil {
		return err
	}

	for _, b := range r.Bars {
		if _, err := tx.Exec(
			`INSERT INTO bars (run_id, time, symbol, open, high, low, close, volume)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, b.Time, b.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return err
		}
	}

	for _, o := range r.Orders {
		if _, err := tx.Exec(
			`INSERT INTO orders (run_id, local_id, time, symbol, side, type, quantity, limit_price, approved)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, o.LocalID, o.Time, o.Symbol, o.Side, o.Type, o.Quantity, o.LimitPrice, o.Approved,
		); err != nil {
			return err
		}
	}

	for _, f := range r.Fills {
		if _, err := tx.Exec(
			`INSERT INTO fills (run_id, order_local_id, time, symbol, quantity, price, commission)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, f.OrderLocalID, f.Time, f.Symbol, f.Quantity, f.Price, f.Commission,
		); err != nil {
			return err
		}
	}

	for _, e := range r.Equity {
		if _, err := tx.Exec(
			`INSERT INTO equity (run_id, time, cash, equity, unrealized_pnl, realized_pnl)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, e.Time, e.Cash, e.Equity, e.UnrealizedPnL, e.RealizedPnL,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetSummary returns the stored summary document for a run.
func (j *SQLiteJournal) GetSummary(runID string) ([]byte, error) {
	var summary string
	err := j.db.QueryRow(
		`SELECT summary FROM runs WHERE run_id = ?`, runID,
	).Scan(&summary)
	if err != nil {
		return nil, fmt.Errorf("get summary %s: %w", runID, err)
	}
	return []byte(summary), nil
}

// ListEquity returns the equity curve of a run in time order.
func (j *SQLiteJournal) ListEquity(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(
		`SELECT time, cash, equity, unrealized_pnl, realized_pnl
		 FROM equity WHERE run_id = ? ORDER BY time`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list equity %s: %w", runID, err)
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.Time, &e.Cash, &e.Equity, &e.UnrealizedPnL, &e.RealizedPnL); err != nil {
			return nil, fmt.Errorf("list equity %s: %w", runID, err)
		}
		e.Time = e.Time.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListFills returns the fills of a run in time order.
func (j *SQLiteJournal) ListFills(runID string) ([]FillRecord, error) {
	rows, err := j.db.Query(
		`SELECT order_local_id, time, symbol, quantity, price, commission
		 FROM fills WHERE run_id = ? ORDER BY time`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fills %s: %w", runID, err)
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var f FillRecord
		if err := rows.Scan(&f.OrderLocalID, &f.Time, &f.Symbol, &f.Quantity, &f.Price, &f.Commission); err != nil {
			return nil, fmt.Errorf("list fills %s: %w", runID, err)
		}
		f.Time = f.Time.UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListRunIDs returns all stored run IDs, oldest first.
func (j *SQLiteJournal) ListRunIDs() ([]string, error) {
	rows, err := j.db.Query(`SELECT run_id FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
