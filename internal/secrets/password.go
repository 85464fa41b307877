package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/willthong/follow-up-action-logger/internal/config"
)

const (
	// “Service” groups this app’s secrets in the OS keychain.
	KeyringService = "actionsync"
)

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	return "", errors.New("IMAP password not found in the keychain")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

// SeedIMAPPassword prompts for the app password on first run and stores it
// in the keychain so later runs find it via GetIMAPPassword.
func SeedIMAPPassword(keyringAccount string, in io.Reader) (string, error) {
	fmt.Printf("IMAP app password for %s (stored in the OS keychain):\n> ", keyringAccount)

	rd := bufio.NewReader(in)
	line, err := rd.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	pw := strings.TrimSpace(line)
	if err := SetIMAPPassword(keyringAccount, pw); err != nil {
		return "", err
	}
	return pw, nil
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"actionsync:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}
