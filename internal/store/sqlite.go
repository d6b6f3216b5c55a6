package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"MarketPulse/internal/model"
)

// SQLiteStore persists the three pipeline tables to a SQLite database.
// Writes are serialized by a mutex and a single connection; concurrent
// overlapping runs converge to the same final state because every write is
// a whole-row replace keyed by primary key.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL mode so exporters and dashboards can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_prices (
			date   TEXT NOT NULL,
			ticker TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume REAL,
			PRIMARY KEY (date, ticker)
		)`,

		`CREATE TABLE IF NOT EXISTS daily_metrics (
			date      TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			return_1d REAL,
			ma_7      REAL,
			ma_30     REAL,
			vol_7     REAL,
			vol_30    REAL,
			rsi       REAL,
			PRIMARY KEY (date, ticker)
		)`,

		`CREATE TABLE IF NOT EXISTS corr_30d (
			date     TEXT NOT NULL,
			ticker_a TEXT NOT NULL,
			ticker_b TEXT NOT NULL,
			corr_30d REAL,
			PRIMARY KEY (date, ticker_a, ticker_b)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// UpsertPrices replaces-or-inserts raw price rows keyed by (date, ticker).
func (s *SQLiteStore) UpsertPrices(ctx context.Context, rows []model.PricePoint) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = model.DateKey(r.Date) + "|" + r.Ticker
	}
	if err := checkBatch("raw_prices", keys); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO raw_prices
			(date, ticker, open, high, low, close, volume)
			VALUES (?,?,?,?,?,?,?)
			ON CONFLICT(date, ticker) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, model.DateKey(r.Date), r.Ticker,
				r.Open, r.High, r.Low, r.Close, r.Volume); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, &WriteError{Table: "raw_prices", KeyRange: keyRange(keys), Err: err}
	}
	return len(rows), nil
}

// UpsertMetrics replaces-or-inserts derived metric rows keyed by
// (date, ticker). Nil fields are stored as NULL.
func (s *SQLiteStore) UpsertMetrics(ctx context.Context, rows []model.MetricRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = model.DateKey(r.Date) + "|" + r.Ticker
	}
	if err := checkBatch("daily_metrics", keys); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_metrics
			(date, ticker, return_1d, ma_7, ma_30, vol_7, vol_30, rsi)
			VALUES (?,?,?,?,?,?,?,?)
			ON CONFLICT(date, ticker) DO UPDATE SET
			return_1d=excluded.return_1d, ma_7=excluded.ma_7, ma_30=excluded.ma_30,
			vol_7=excluded.vol_7, vol_30=excluded.vol_30, rsi=excluded.rsi`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, model.DateKey(r.Date), r.Ticker,
				r.Return1d, r.MA7, r.MA30, r.Vol7, r.Vol30, r.RSI); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, &WriteError{Table: "daily_metrics", KeyRange: keyRange(keys), Err: err}
	}
	return len(rows), nil
}

// UpsertCorrelations replaces-or-inserts correlation rows keyed by
// (date, ticker_a, ticker_b).
func (s *SQLiteStore) UpsertCorrelations(ctx context.Context, rows []model.CorrelationRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = model.DateKey(r.Date) + "|" + r.TickerA + "|" + r.TickerB
	}
	if err := checkBatch("corr_30d", keys); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO corr_30d
			(date, ticker_a, ticker_b, corr_30d)
			VALUES (?,?,?,?)
			ON CONFLICT(date, ticker_a, ticker_b) DO UPDATE SET
			corr_30d=excluded.corr_30d`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, model.DateKey(r.Date),
				r.TickerA, r.TickerB, r.Corr30d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, &WriteError{Table: "corr_30d", KeyRange: keyRange(keys), Err: err}
	}
	return len(rows), nil
}

// RecentMetrics returns daily_metrics rows within windowDays of the latest
// stored date, ordered date descending then ticker ascending. The window is
// anchored on the data rather than the wall clock so repeated runs over the
// same input project the same snapshot.
func (s *SQLiteStore) RecentMetrics(ctx context.Context, windowDays int) ([]model.MetricRecord, error) {
	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM daily_metrics`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("query latest metric date: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	latestDay, err := time.Parse("2006-01-02", latest.String)
	if err != nil {
		return nil, fmt.Errorf("parse latest metric date %q: %w", latest.String, err)
	}
	cutoff := model.DateKey(latestDay.AddDate(0, 0, -windowDays))

	rows, err := s.db.QueryContext(ctx, `SELECT date, ticker, return_1d, ma_7, ma_30, vol_7, vol_30, rsi
		FROM daily_metrics WHERE date >= ? ORDER BY date DESC, ticker ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query daily_metrics: %w", err)
	}
	defer rows.Close()

	var out []model.MetricRecord
	for rows.Next() {
		var rec model.MetricRecord
		var date string
		if err := rows.Scan(&date, &rec.Ticker,
			&rec.Return1d, &rec.MA7, &rec.MA30, &rec.Vol7, &rec.Vol30, &rec.RSI); err != nil {
			return nil, fmt.Errorf("scan daily_metrics: %w", err)
		}
		if rec.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("parse metric date %q: %w", date, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AllPrices returns every raw_prices row ordered date descending then
// ticker ascending.
func (s *SQLiteStore) AllPrices(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, ticker, open, high, low, close, volume
		FROM raw_prices ORDER BY date DESC, ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("query raw_prices: %w", err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var date string
		if err := rows.Scan(&date, &p.Ticker, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan raw_prices: %w", err)
		}
		if p.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("parse price date %q: %w", date, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func checkBatch(table string, keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return &ValidationError{Table: table, Key: k}
		}
		seen[k] = true
	}
	return nil
}

func keyRange(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0] + " .. " + keys[len(keys)-1]
}
