package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerEnvPrefix prefixes server environment overrides, e.g. TODAYD_ADDR.
const ServerEnvPrefix = "TODAYD"

// ServerConfig holds the todayd settings.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	Database      string        `mapstructure:"database"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	ClientURL     string        `mapstructure:"client_url"`
	Google        GoogleConfig  `mapstructure:"google"`
}

// GoogleConfig holds the OAuth client registered with Google.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LoadServer reads the server settings from path, if it exists, with
// TODAYD_* environment overrides (TODAYD_GOOGLE_CLIENT_ID for google.client_id).
func LoadServer(path string) (*ServerConfig, error) {
	v := viper.New()
	v.SetDefault("addr", ":3000")
	v.SetDefault("database", "today.db")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("client_url", "http://localhost:5173")
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:3000/auth/google/callback")

	v.SetEnvPrefix(ServerEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", path, err)
			}
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings serve needs.
func (c *ServerConfig) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("session_secret is required")
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("google.client_id and google.client_secret are required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	return nil
}
