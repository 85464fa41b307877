package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/gofrs/flock"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/willthong/follow-up-action-logger/internal/actionlog"
	"github.com/willthong/follow-up-action-logger/internal/config"
	"github.com/willthong/follow-up-action-logger/internal/gauth"
	"github.com/willthong/follow-up-action-logger/internal/mailbox"
	"github.com/willthong/follow-up-action-logger/internal/scheduler"
	"github.com/willthong/follow-up-action-logger/internal/secrets"
	"github.com/willthong/follow-up-action-logger/internal/syncer"
)

func main() {
	dataDir := os.Getenv("ACTIONSYNC_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One writer at a time: two concurrent runs would resolve the same
	// watermark and both append the same actions.
	runLock := flock.New(filepath.Join(dataDir, "actionsync.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatal("another sync run is already in progress")
	}
	defer func() { _ = runLock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	raw, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(raw)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		log.Fatalf("config invalid:\n- %s", strings.Join(v.Errors, "\n- "))
	}
	// Persist the normalized form so filled-in defaults show up in the file.
	if err := config.SaveAtomic(userCfgPath, cfg); err != nil {
		log.Printf("[config] warning: could not persist normalized config: %v", err)
	}

	account := secrets.IMAPKeyringAccount(cfg)
	password, err := secrets.GetIMAPPassword(account)
	if err != nil {
		// First run: seed the keychain from the terminal.
		password, err = secrets.SeedIMAPPassword(account, os.Stdin)
		if err != nil {
			log.Fatalf("imap credentials: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	actions, closeLog, err := openLog(ctx, dataDir, cfg)
	if err != nil {
		log.Fatalf("open action log: %v", err)
	}
	defer closeLog()

	runOnce := func(ctx context.Context) error {
		return runSync(ctx, cfg, password, actions)
	}

	if cfg.Sync.WatchSeconds > 0 {
		scheduler.Every(ctx, time.Duration(cfg.Sync.WatchSeconds)*time.Second, "sync", runOnce)
		return
	}

	if err := runOnce(ctx); err != nil {
		log.Fatalf("sync failed: %v", err)
	}
}

func openLog(ctx context.Context, dataDir string, cfg config.Config) (actionlog.Log, func(), error) {
	switch cfg.Log.Backend {
	case "sheets":
		session, err := gauth.NewSession(
			resolvePath(dataDir, cfg.Log.CredentialsFile),
			resolvePath(dataDir, cfg.Log.TokenFile),
			gauth.SheetsScope,
		)
		if err != nil {
			return nil, nil, err
		}
		if !session.Authorized() {
			if err := session.Authorize(ctx); err != nil {
				return nil, nil, err
			}
		}
		client, err := session.Client(ctx)
		if err != nil {
			return nil, nil, err
		}
		svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, nil, fmt.Errorf("sheets service: %w", err)
		}
		return actionlog.NewSheetsLog(svc, cfg.Log.SpreadsheetID, cfg.Log.Range), func() {}, nil

	case "sqlite":
		l, err := actionlog.OpenSQLite(resolvePath(dataDir, cfg.Log.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown log backend %q", cfg.Log.Backend)
}

func runSync(ctx context.Context, cfg config.Config, password string, actions actionlog.Log) error {
	addr := cfg.Email.IMAPHost
	if cfg.Email.IMAPPort != 0 && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, cfg.Email.IMAPPort)
	} else if !strings.Contains(addr, ":") {
		addr += ":993"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := mailbox.DialAndLogin(ctx, addr, cfg.Email.Username, password, mailbox.TLSConfigFor(cfg.Email.IMAPHost))
	if err != nil {
		return err
	}
	defer mailbox.LogoutAndClose(c)

	if err := mailbox.SelectMailbox(c, cfg.Email.Mailbox); err != nil {
		return err
	}

	s := &syncer.Syncer{
		Source:  imapSource{c},
		Log:     actions,
		Subject: cfg.Email.SearchSubject,
		Max:     cfg.Email.MaxMessages,
		LagDays: cfg.Sync.LagDays,
		Dedupe:  cfg.Sync.DedupeRows,
	}

	rep, err := s.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("[sync] ok messages=%d appended=%d skipped=%d duplicates=%d",
		rep.Messages, rep.Appended, rep.Skipped, rep.Duplicates)
	return nil
}

type imapSource struct {
	c *imapclient.Client
}

func (s imapSource) List(ctx context.Context, subject string, max int) ([]mailbox.Message, error) {
	return mailbox.SearchBySubject(ctx, s.c, subject, max)
}

func resolvePath(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
