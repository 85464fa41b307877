// Package syncer drives one synchronization run: list notification emails,
// resolve the log watermark once, then extract, filter and append actions
// oldest-first.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/willthong/follow-up-action-logger/internal/actionlog"
	"github.com/willthong/follow-up-action-logger/internal/extract"
	"github.com/willthong/follow-up-action-logger/internal/mailbox"
)

// Source lists notification emails matching a subject, full content
// included, up to max messages.
type Source interface {
	List(ctx context.Context, subject string, max int) ([]mailbox.Message, error)
}

type Report struct {
	Messages   int
	Appended   int
	Skipped    int
	Duplicates int
}

type Syncer struct {
	Source  Source
	Log     actionlog.Log
	Subject string
	Max     int
	LagDays int

	// Dedupe additionally rejects rows whose (date, name, address) tuple is
	// already in the log, so replays can't double-append even when the
	// watermark alone would let them through.
	Dedupe bool
}

// Run performs one sync pass. Errors abort the run where they occur; rows
// already appended stay in the log, and the next run's watermark picks up
// from them.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	var rep Report

	// The mail source and the log are independent collaborators; fetch
	// from both before the sequential filter/append loop starts.
	var (
		msgs []mailbox.Message
		rows []actionlog.Row
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		msgs, err = s.Source.List(gctx, s.Subject, s.Max)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = s.Log.Rows(gctx)
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}

	rep.Messages = len(msgs)
	if len(msgs) == 0 {
		return rep, nil
	}

	// Oldest first. The watermark is frozen for the whole run, so appends
	// must land in chronological order to keep the log tail monotonic.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Date.Before(msgs[j].Date)
	})

	watermark, err := actionlog.Watermark(rows)
	if err != nil {
		return rep, err
	}

	seen := make(map[string]bool)
	if s.Dedupe {
		for _, r := range rows {
			seen[r.Key()] = true
		}
	}

	for _, m := range msgs {
		if m.Date.IsZero() {
			return rep, fmt.Errorf("message uid %d has no usable date", m.UID)
		}

		body, err := mailbox.HTMLBody(m.RawMessage)
		if err != nil {
			return rep, fmt.Errorf("message uid %d: %w", m.UID, err)
		}

		actions := extract.Actions(body)
		if len(actions) == 0 {
			continue
		}

		session := extract.ReadSession(body)
		day := m.Date.Format(actionlog.DateLayout)

		// Every action in one email shares the email's date.
		for _, a := range actions {
			if !Fresh(m.Date, watermark, s.LagDays) {
				rep.Skipped++
				log.Printf("[sync] old action from %s skipped (session %q, %d items)", day, session.Title, session.Items)
				continue
			}

			row := actionlog.Row{
				Date:    StoredDate(m.Date, s.LagDays),
				Name:    a.Name,
				Address: a.Address,
			}

			if s.Dedupe && seen[row.Key()] {
				rep.Duplicates++
				log.Printf("[sync] duplicate action %q from %s skipped", a.Name, day)
				continue
			}

			cells, err := s.Log.Append(ctx, row)
			if err != nil {
				return rep, fmt.Errorf("append action from %s: %w", day, err)
			}
			if s.Dedupe {
				seen[row.Key()] = true
			}
			rep.Appended++
			log.Printf("[sync] %d cells appended (%s, session %q, %d items)", cells, day, session.Title, session.Items)
		}
	}

	return rep, nil
}
