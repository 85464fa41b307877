package config

import (
	"fmt"
	"strings"
)

const (
	DefaultSearchSubject = "Labour Doorstep - Follow-up actions from your canvassing session"
	DefaultRange         = "ACTIONS!A:D"
	DefaultMaxMessages   = 500
	DefaultLagDays       = 2
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults and returns a normalized copy plus
// everything an operator would want to know before a run.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	// ---- Defaults ----

	if strings.TrimSpace(out.Email.SearchSubject) == "" {
		out.Email.SearchSubject = DefaultSearchSubject
	}
	if out.Email.MaxMessages <= 0 {
		out.Email.MaxMessages = DefaultMaxMessages
	}
	if strings.TrimSpace(out.Email.Mailbox) == "" {
		out.Email.Mailbox = "INBOX"
	}
	if strings.TrimSpace(out.Log.Range) == "" {
		out.Log.Range = DefaultRange
	}
	if out.Sync.LagDays == 0 {
		out.Sync.LagDays = DefaultLagDays
	}

	// ---- Validation rules ----

	if strings.TrimSpace(out.Email.IMAPHost) == "" {
		res.addErr("email.imap_host is required")
	}
	if strings.TrimSpace(out.Email.Username) == "" {
		res.addErr("email.username is required")
	}
	if out.Email.IMAPPort < 0 || out.Email.IMAPPort > 65535 {
		res.addErr("email.imap_port must be 0..65535")
	}

	switch out.Log.Backend {
	case "sheets":
		if strings.TrimSpace(out.Log.SpreadsheetID) == "" {
			res.addErr("log.spreadsheet_id is required when log.backend=sheets")
		}
		if strings.TrimSpace(out.Log.CredentialsFile) == "" {
			res.addErr("log.credentials_file is required when log.backend=sheets")
		}
		if strings.TrimSpace(out.Log.TokenFile) == "" {
			res.addErr("log.token_file is required when log.backend=sheets")
		}
	case "sqlite":
		if strings.TrimSpace(out.Log.SQLitePath) == "" {
			res.addErr("log.sqlite_path is required when log.backend=sqlite")
		}
	default:
		res.addErr("log.backend must be \"sheets\" or \"sqlite\" (got %q)", out.Log.Backend)
	}

	if out.Sync.LagDays < 0 {
		res.addErr("sync.lag_days must be >= 0")
	}
	if out.Sync.WatchSeconds < 0 {
		res.addErr("sync.watch_seconds must be >= 0")
	} else if out.Sync.WatchSeconds > 0 && out.Sync.WatchSeconds < 60 {
		res.addWarn("sync.watch_seconds is very low (%d) and may hit IMAP or Sheets rate limits.", out.Sync.WatchSeconds)
	}

	if !out.Sync.DedupeRows {
		res.addWarn("sync.dedupe_rows is off; a re-run that races another writer can append duplicate rows.")
	}

	return out, res
}
