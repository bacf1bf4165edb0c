package config

import (
	"os"
	"path/filepath"
	"time"
)

// File names inside DataDir.
const (
	DocumentFile = "offline-data.json"
	SettingsFile = "settings.json"
	JournalFile  = "sync-journal.db"
	ExportsDir   = "exports"
)

// Config holds runtime settings shared by the shell and the terminal UI.
//
// Fields:
//   - DataDir: directory holding the cache, settings and sync journal.
//   - IPCAddr: where the shell listens and the UI connects ("host:port" or
//     "unix:/path").
//   - ServerURL: base URL of the backend the UI pushes to.
//   - Username: operator account preselected at the UI login prompt.
//   - CheckURL, CheckTimeout: connectivity check target and bound.
//   - OnlineCheckInterval: how often the UI checks the backend.
//   - ExportDir: default destination of exported snapshots.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DataDir             string
	IPCAddr             string
	ServerURL           string
	Username            string
	CheckURL            string
	CheckTimeout        time.Duration
	OnlineCheckInterval time.Duration
	ExportDir           string
	LogLevel            string
}

// LoadDefaults populates c with defaults. DataDir lives under the user
// config directory when one exists.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.IPCAddr = "127.0.0.1:50061"
	c.ServerURL = "http://127.0.0.1:8080"
	c.Username = ""
	c.CheckURL = "https://www.google.com/generate_204"
	c.CheckTimeout = 5 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
	c.ExportDir = ""
	c.LogLevel = "info"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "poskeeper")
	}
	return ".poskeeper"
}

// LoadConfig builds a Config from defaults, then the config file named by
// -c/-config (or $POSKEEPER_CONFIG), then command-line flags. Later sources
// win. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.finish()
	return cfg, nil
}

func (c *Config) finish() {
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(c.DataDir, ExportsDir)
	}
}

func (c *Config) DocumentPath() string { return filepath.Join(c.DataDir, DocumentFile) }
func (c *Config) SettingsPath() string { return filepath.Join(c.DataDir, SettingsFile) }
func (c *Config) JournalPath() string  { return filepath.Join(c.DataDir, JournalFile) }
