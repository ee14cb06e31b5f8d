// Package config handles the XDG configuration directory, the optional
// config.yaml settings file and the stored session credential.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "today"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// SessionFile is the stored session credential filename.
	SessionFile = "session.json"

	// EnvPrefix prefixes environment overrides, e.g. TODAY_API_URL.
	EnvPrefix = "TODAY"
)

// Defaults for settings absent from config.yaml and the environment.
const (
	DefaultAPIURL     = "http://localhost:3000"
	DefaultAPITimeout = 5 * time.Second
	DefaultMaxTasks   = 100
)

// ErrNoSession indicates no session credential is stored.
var ErrNoSession = errors.New("no stored session")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIURL is the base URL of the todayd server.
	APIURL string

	// APITimeout bounds every remote call.
	APITimeout time.Duration

	// Timezone is an IANA location name; empty means the system location.
	Timezone string

	// MaxTasks caps the task list; zero disables the cap.
	MaxTasks int

	// ArchiveCompleted enables end-of-day archival of completed tasks.
	ArchiveCompleted bool
}

// Session is the stored session credential.
type Session struct {
	Token  string `json:"token"`
	APIURL string `json:"apiUrl"`
}

// New creates a Config with the default or specified config directory and
// loads settings from config.yaml and TODAY_* environment variables.
// If configDir is empty, uses XDG_CONFIG_HOME/today or $HOME/.config/today.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("api_timeout", DefaultAPITimeout)
	v.SetDefault("timezone", "")
	v.SetDefault("max_tasks", DefaultMaxTasks)
	v.SetDefault("archive_completed", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := c.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	c.APIURL = strings.TrimRight(v.GetString("api_url"), "/")
	c.APITimeout = v.GetDuration("api_timeout")
	c.Timezone = v.GetString("timezone")
	c.MaxTasks = v.GetInt("max_tasks")
	c.ArchiveCompleted = v.GetBool("archive_completed")

	if c.APITimeout <= 0 {
		return fmt.Errorf("invalid api_timeout: must be positive")
	}
	if c.MaxTasks < 0 {
		return fmt.Errorf("invalid max_tasks: must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Location returns the viewer's calendar location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Logger returns a logger writing to w: debug level text when Debug is set,
// warnings only otherwise.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SettingsPath returns the path to the optional settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// LoadSession reads the stored session. It returns ErrNoSession when the
// file is missing or holds no token.
func (c *Config) LoadSession() (Session, error) {
	data, err := os.ReadFile(c.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read %s: %w", SessionFile, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("invalid %s: %w", SessionFile, err)
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// SaveSession stores the session with mode 0600.
func (c *Config) SaveSession(s Session) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionPath(), data, 0600)
}

// RemoveSession deletes the session file. A missing file is not an error.
func (c *Config) RemoveSession() error {
	err := os.Remove(c.SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
