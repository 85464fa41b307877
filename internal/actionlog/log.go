// Package actionlog is the tabular log collaborator: an append-only table
// of (date, name, address) rows whose last row doubles as the sync cursor.
package actionlog

import (
	"context"
	"errors"
	"time"
)

// DateLayout is the date format stored in the log's first column.
const DateLayout = "2006-01-02"

// Row is one recorded follow-up action.
type Row struct {
	Date    time.Time
	Name    string
	Address string
}

// Log is read-append only. Append returns the number of cells written.
type Log interface {
	Rows(ctx context.Context) ([]Row, error)
	Append(ctx context.Context, r Row) (cells int, err error)
}

// ErrEmptyLog means the log has no rows to resolve a watermark from.
// This is a provisioning failure: defaulting to "accept everything" on an
// empty log would mass-append every message in the mailbox.
var ErrEmptyLog = errors.New("action log has no rows")

// Watermark returns the date of the log's last row. Last row only, not the
// max over all rows: the log is append-only and appended in date order, so
// the tail is the cursor.
func Watermark(rows []Row) (time.Time, error) {
	if len(rows) == 0 {
		return time.Time{}, ErrEmptyLog
	}
	return rows[len(rows)-1].Date, nil
}

// Key identifies a row for duplicate detection.
func (r Row) Key() string {
	return r.Date.Format(DateLayout) + "|" + r.Name + "|" + r.Address
}
