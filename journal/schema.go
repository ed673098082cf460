// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	summary TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bars (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	run_id TEXT NOT NULL,
	local_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	type TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	limit_price REAL NOT NULL,
	approved INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fills (
	run_id TEXT NOT NULL,
	order_local_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	commission REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	realized_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bars_run ON bars(run_id, time);
CREATE INDEX IF NOT EXISTS idx_orders_run ON orders(run_id, time);
CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id, time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
