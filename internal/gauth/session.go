// Package gauth holds the authenticated-session handle for the Google
// Sheets backend: token state lives in an explicit Session, not in
// module-global files read on demand.
package gauth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SheetsScope is the only scope this app needs on the log side.
const SheetsScope = "https://www.googleapis.com/auth/spreadsheets"

type Session struct {
	conf      *oauth2.Config
	tokenPath string
}

func NewSession(credentialsPath, tokenPath string, scopes ...string) (*Session, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read oauth client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client secrets: %w", err)
	}
	return &Session{conf: conf, tokenPath: tokenPath}, nil
}

// Client returns an HTTP client carrying a valid token, refreshing and
// persisting it first when the stored one has expired.
func (s *Session) Client(ctx context.Context) (*http.Client, error) {
	tok, err := s.loadToken()
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w (authorize first)", s.tokenPath, err)
	}

	if !tok.Valid() {
		fresh, err := s.conf.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		if fresh.AccessToken != tok.AccessToken {
			if err := s.saveToken(fresh); err != nil {
				return nil, fmt.Errorf("persist refreshed token: %w", err)
			}
		}
		tok = fresh
	}

	return s.conf.Client(ctx, tok), nil
}

// Authorized reports whether a token file exists at all.
func (s *Session) Authorized() bool {
	_, err := os.Stat(s.tokenPath)
	return err == nil
}

// Authorize runs the out-of-band consent flow on the terminal and stores
// the resulting token.
func (s *Session) Authorize(ctx context.Context) error {
	url := s.conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this link in your browser, then paste the code here:\n%s\n> ", url)

	rd := bufio.NewReader(os.Stdin)
	code, err := rd.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read auth code: %w", err)
	}

	tok, err := s.conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}
	return s.saveToken(tok)
}

func (s *Session) loadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *Session) saveToken(tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(s.tokenPath, b, 0o600)
}
