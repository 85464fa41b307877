// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Email struct {
		IMAPHost      string `yaml:"imap_host"`
		IMAPPort      int    `yaml:"imap_port"`
		Username      string `yaml:"username"`
		Mailbox       string `yaml:"mailbox"`
		SearchSubject string `yaml:"search_subject"`
		MaxMessages   int    `yaml:"max_messages"`
	} `yaml:"email"`

	Log struct {
		Backend         string `yaml:"backend"` // sheets | sqlite
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		Range           string `yaml:"range"`
		SQLitePath      string `yaml:"sqlite_path"`
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
	} `yaml:"log"`

	Sync struct {
		LagDays      int  `yaml:"lag_days"`
		DedupeRows   bool `yaml:"dedupe_rows"`
		WatchSeconds int  `yaml:"watch_seconds"`
	} `yaml:"sync"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
