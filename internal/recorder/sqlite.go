package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the replay audit trail to a SQLite database.
// Money columns are TEXT holding exact decimal strings.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id    TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			start_date    TEXT,
			end_date      TEXT,
			price_points  INTEGER,
			starting_cash TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			date       TEXT NOT NULL,
			action     TEXT NOT NULL,
			price      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_session ON transactions(session_id)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			date       TEXT NOT NULL,
			action     TEXT,
			status     TEXT NOT NULL,
			price      TEXT,
			value      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcome_session ON outcomes(session_id)`,

		`CREATE TABLE IF NOT EXISTS replays (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id       TEXT NOT NULL,
			timestamp        INTEGER NOT NULL,
			predictions      INTEGER,
			executed         INTEGER,
			cash             TEXT,
			shares           INTEGER,
			current_value    TEXT,
			realized_profit  TEXT,
			profit_loss      TEXT,
			max_drawdown_pct TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_replay_session ON replays(session_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSession(evt *SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sessions
		(session_id, timestamp, symbol, start_date, end_date, price_points, starting_cash)
		VALUES (?,?,?,?,?,?,?)`,
		evt.SessionID, time.Now().Unix(), evt.Symbol, evt.StartDate, evt.EndDate,
		evt.PricePoints, evt.StartingCash,
	)
	return err
}

// RecordReplay writes the outcomes, trades and resulting state of one replay
// in a single transaction.
func (r *SQLiteRecorder) RecordReplay(evt *ReplayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range evt.Transactions {
		if _, err := tx.Exec(`INSERT INTO transactions
			(session_id, timestamp, date, action, price) VALUES (?,?,?,?,?)`,
			evt.SessionID, now, t.Date, string(t.Action), t.Price.String(),
		); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	for _, o := range evt.Outcomes {
		if _, err := tx.Exec(`INSERT INTO outcomes
			(session_id, timestamp, date, action, status, price, value) VALUES (?,?,?,?,?,?,?)`,
			evt.SessionID, now, o.Date, string(o.Action), string(o.Status), o.Price.String(), o.Value.String(),
		); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}

	pf, sum := evt.Portfolio, evt.Summary
	if _, err := tx.Exec(`INSERT INTO replays
		(session_id, timestamp, predictions, executed, cash, shares, current_value,
		 realized_profit, profit_loss, max_drawdown_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		evt.SessionID, now, len(evt.Outcomes), len(evt.Transactions),
		pf.Cash.String(), pf.Shares, pf.CurrentValue.String(),
		sum.RealizedProfit.String(), sum.ProfitLoss.String(), sum.MaxDrawdownPct.StringFixed(2),
	); err != nil {
		return fmt.Errorf("insert replay: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
