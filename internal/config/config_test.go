package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndDefaults(t *testing.T) {
	path := writeConfig(t, `
email:
  imap_host: imap.gmail.com
  imap_port: 993
  username: alice@example.org
log:
  backend: sqlite
  sqlite_path: actions.db
sync:
  dedupe_rows: true
`)

	raw, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg, v := NormalizeAndValidate(raw)
	if !v.OK() {
		t.Fatalf("unexpected validation errors: %v", v.Errors)
	}

	if cfg.Email.SearchSubject != DefaultSearchSubject {
		t.Errorf("SearchSubject = %q", cfg.Email.SearchSubject)
	}
	if cfg.Email.MaxMessages != DefaultMaxMessages {
		t.Errorf("MaxMessages = %d, want %d", cfg.Email.MaxMessages, DefaultMaxMessages)
	}
	if cfg.Email.Mailbox != "INBOX" {
		t.Errorf("Mailbox = %q, want INBOX", cfg.Email.Mailbox)
	}
	if cfg.Log.Range != DefaultRange {
		t.Errorf("Range = %q, want %q", cfg.Log.Range, DefaultRange)
	}
	if cfg.Sync.LagDays != DefaultLagDays {
		t.Errorf("LagDays = %d, want %d", cfg.Sync.LagDays, DefaultLagDays)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing imap host",
			mutate:  func(c *Config) { c.Email.IMAPHost = "" },
			wantErr: "email.imap_host",
		},
		{
			name:    "missing username",
			mutate:  func(c *Config) { c.Email.Username = "" },
			wantErr: "email.username",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Log.Backend = "postgres" },
			wantErr: "log.backend",
		},
		{
			name: "sheets backend without spreadsheet",
			mutate: func(c *Config) {
				c.Log.Backend = "sheets"
				c.Log.SpreadsheetID = ""
				c.Log.CredentialsFile = "credentials.json"
				c.Log.TokenFile = "token.json"
			},
			wantErr: "log.spreadsheet_id",
		},
		{
			name:    "negative lag",
			mutate:  func(c *Config) { c.Sync.LagDays = -1 },
			wantErr: "sync.lag_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)
			_, v := NormalizeAndValidate(cfg)
			if v.OK() {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, e := range v.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v missing %q", v.Errors, tt.wantErr)
			}
		})
	}
}

func TestDedupeOffWarns(t *testing.T) {
	cfg := validBase()
	cfg.Sync.DedupeRows = false

	_, v := NormalizeAndValidate(cfg)
	if !v.OK() {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
	found := false
	for _, w := range v.Warnings {
		if strings.Contains(w, "dedupe_rows") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v missing dedupe_rows notice", v.Warnings)
	}
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := validBase()
	cfg.Email.Username = "bob@example.org"

	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("SaveAtomic: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if got.Email.Username != "bob@example.org" {
		t.Errorf("round trip username = %q", got.Email.Username)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := filepath.Join(t.TempDir(), "default.yml")
	if err := os.WriteFile(defaultPath, []byte("log:\n  backend: sqlite\n"), 0o644); err != nil {
		t.Fatalf("write default config: %v", err)
	}

	path, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	if path != filepath.Join(dataDir, "config.yml") {
		t.Errorf("user config path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(b), "backend: sqlite") {
		t.Fatalf("seeded config = %q, err %v", b, err)
	}

	// An existing user config is never overwritten.
	if err := os.WriteFile(path, []byte("# edited\n"), 0o644); err != nil {
		t.Fatalf("edit user config: %v", err)
	}
	if _, err := EnsureUserConfig(dataDir, defaultPath); err != nil {
		t.Fatalf("EnsureUserConfig on existing: %v", err)
	}
	b, _ = os.ReadFile(path)
	if string(b) != "# edited\n" {
		t.Errorf("existing user config was overwritten: %q", b)
	}

	if _, err := EnsureUserConfig(t.TempDir(), filepath.Join(dataDir, "missing.yml")); err == nil {
		t.Error("expected error when the default config is missing")
	}
}

func validBase() Config {
	var c Config
	c.Email.IMAPHost = "imap.gmail.com"
	c.Email.IMAPPort = 993
	c.Email.Username = "alice@example.org"
	c.Log.Backend = "sqlite"
	c.Log.SQLitePath = "actions.db"
	c.Sync.DedupeRows = true
	return c
}
