package actionlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteLog is a local log backend for offline use and testing. Rowid order
// is log order, so the watermark semantics match the spreadsheet backend.
type SQLiteLog struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteLog, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS actions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_date ON actions(date);
`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate actions table: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

func (l *SQLiteLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *SQLiteLog) Rows(ctx context.Context) ([]Row, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT date, name, address
FROM actions
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var dateStr string
		var r Row
		if err := rows.Scan(&dateStr, &r.Name, &r.Address); err != nil {
			return nil, err
		}
		d, err := time.Parse(DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("action row date %q: %w", dateStr, err)
		}
		r.Date = d
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *SQLiteLog) Append(ctx context.Context, r Row) (int, error) {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO actions(date, name, address)
VALUES(?,?,?);`,
		r.Date.Format(DateLayout), r.Name, r.Address)
	if err != nil {
		return 0, fmt.Errorf("append action: %w", err)
	}
	// Mirror the spreadsheet backend's observability contract: one row is
	// three cells.
	return 3, nil
}
