package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"almanac/pkg/types"
)

const dateLayout = "2006-01-02"

// SQLiteStore keeps all series in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers are not blocked while a refresh is writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("✅ Opened sqlite store: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL NOT NULL,
			high   REAL NOT NULL,
			low    REAL NOT NULL,
			close  REAL NOT NULL,
			volume REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, date)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the stored series for a symbol in ascending date order.
// Dates are stored as ISO strings, so lexicographic order is date order.
func (s *SQLiteStore) Load(symbol string) ([]types.Bar, error) {
	rows, err := s.db.Query(
		`SELECT date, open, high, low, close, volume FROM bars WHERE symbol = ? ORDER BY date`,
		SanitizeSymbol(symbol),
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		var dateStr string
		var bar types.Bar
		if err := rows.Scan(&dateStr, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan %s: %w", symbol, err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			log.Printf("⚠️ Skipping bar with bad date %q for %s: %v", dateStr, symbol, err)
			continue
		}
		bar.Date = date
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// Save replaces the series for a symbol inside one transaction.
func (s *SQLiteStore) Save(symbol string, bars []types.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save %s: %w", symbol, err)
	}

	key := SanitizeSymbol(symbol)
	if _, err := tx.Exec(`DELETE FROM bars WHERE symbol = ?`, key); err != nil {
		tx.Rollback()
		return fmt.Errorf("save %s: %w", symbol, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO bars (symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save %s: %w", symbol, err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.Exec(key, bar.Date.Format(dateLayout),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("save %s at %s: %w", symbol, bar.Date.Format(dateLayout), err)
		}
	}

	return tx.Commit()
}

// LastDate returns the most recent stored date for a symbol.
func (s *SQLiteStore) LastDate(symbol string) (time.Time, bool, error) {
	var dateStr sql.NullString
	err := s.db.QueryRow(
		`SELECT MAX(date) FROM bars WHERE symbol = ?`,
		SanitizeSymbol(symbol),
	).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last date %s: %w", symbol, err)
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}

	date, err := time.Parse(dateLayout, dateStr.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last date %s: %w", symbol, err)
	}
	return date, true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
