package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.APITimeout != DefaultAPITimeout {
		t.Errorf("expected %v, got %v", DefaultAPITimeout, cfg.APITimeout)
	}
	if cfg.MaxTasks != DefaultMaxTasks {
		t.Errorf("expected %d, got %d", DefaultMaxTasks, cfg.MaxTasks)
	}
	if !cfg.ArchiveCompleted {
		t.Error("expected archival enabled by default")
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("expected local location, got %v", loc)
	}
}

func TestNew_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SettingsFile), `
api_url: https://todo.example.com/
api_timeout: 2s
timezone: UTC
max_tasks: 10
archive_completed: false
`)

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.APIURL != "https://todo.example.com" {
		t.Errorf("unexpected api_url %q", cfg.APIURL)
	}
	if cfg.APITimeout != 2*time.Second {
		t.Errorf("unexpected api_timeout %v", cfg.APITimeout)
	}
	if cfg.MaxTasks != 10 || cfg.ArchiveCompleted {
		t.Errorf("unexpected settings %+v", cfg)
	}
	if loc, _ := cfg.Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("TODAY_API_URL", "http://127.0.0.1:9999")
	t.Setenv("TODAY_MAX_TASKS", "5")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9999" || cfg.MaxTasks != 5 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "api_url: [unterminated"},
		{"bad timezone", "timezone: Mars/Olympus"},
		{"zero timeout", "api_timeout: 0s"},
		{"negative limit", "max_tasks: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, SettingsFile), tt.content)
			if _, err := New(dir); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestSession_RoundTrip(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cfg.LoadSession(); err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}

	want := Session{Token: "abc", APIURL: "http://localhost:3000"}
	if err := cfg.SaveSession(want); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	info, err := os.Stat(cfg.SessionPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	got, err := cfg.LoadSession()
	if err != nil || got != want {
		t.Errorf("expected %+v, got %+v (%v)", want, got, err)
	}

	if err := cfg.RemoveSession(); err != nil {
		t.Fatal(err)
	}
	if cfg.HasSession() {
		t.Error("session file still present")
	}
	if err := cfg.RemoveSession(); err != nil {
		t.Errorf("removing a missing session should succeed, got %v", err)
	}
}

func TestSession_EmptyToken(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, cfg.SessionPath(), `{"token":""}`)
	if _, err := cfg.LoadSession(); err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestLoadServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todayd.yaml")
	writeFile(t, path, `
addr: ":4000"
session_secret: s3cret
google:
  client_id: id
  client_secret: secret
`)
	t.Setenv("TODAYD_DATABASE", "/var/lib/today.db")

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer failed: %v", err)
	}
	if cfg.Addr != ":4000" || cfg.Database != "/var/lib/today.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Google.ClientID != "id" || cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestServerConfig_Validate(t *testing.T) {
	cfg, err := LoadServer("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing secret to fail validation")
	}
}
