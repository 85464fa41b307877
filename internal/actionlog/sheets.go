package actionlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/sheets/v4"
)

// SheetsLog stores actions in a Google Sheet. Reads and appends go through
// a single named range; appends use USER_ENTERED so the date column holds a
// real date value, not literal text.
type SheetsLog struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string

	// The Sheets write quota is per-minute; appends are unbatched, one per
	// record, so they get rate limited.
	limiter *rate.Limiter
}

func NewSheetsLog(svc *sheets.Service, spreadsheetID, readRange string) *SheetsLog {
	return &SheetsLog{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		limiter:       rate.NewLimiter(rate.Limit(1.0), 2),
	}
}

func (l *SheetsLog) Rows(ctx context.Context) ([]Row, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets read %s: %w", l.readRange, err)
	}

	rows := make([]Row, 0, len(resp.Values))
	for i, v := range resp.Values {
		if len(v) == 0 {
			continue
		}
		d, err := time.Parse(DateLayout, strings.TrimSpace(fmt.Sprint(v[0])))
		if err != nil {
			// A header or stray row is tolerated anywhere except the
			// tail, where it would corrupt the watermark.
			if i == len(resp.Values)-1 {
				return nil, fmt.Errorf("last log row has unreadable date %q: %w", fmt.Sprint(v[0]), err)
			}
			continue
		}
		r := Row{Date: d}
		if len(v) > 1 {
			r.Name = fmt.Sprint(v[1])
		}
		if len(v) > 2 {
			r.Address = fmt.Sprint(v[2])
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (l *SheetsLog) Append(ctx context.Context, r Row) (int, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	vr := &sheets.ValueRange{
		Values: [][]interface{}{
			{r.Date.Format(DateLayout), r.Name, r.Address},
		},
	}

	resp, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.readRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets append %s: %w", l.readRange, err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return int(resp.Updates.UpdatedCells), nil
}
