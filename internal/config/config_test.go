package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  port: 5432
  user: gallery
  password: secret
  dbname: gallery
phoenix:
  base_url: http://phoenix:4000/
session:
  secret: session-secret
jwt:
  secret: jwt-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != defaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultPort)
	}
	if cfg.Phoenix.Timeout != 60*time.Second {
		t.Errorf("Phoenix.Timeout = %v, want 60s", cfg.Phoenix.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Database.SSLMode = %q, want disable", cfg.Database.SSLMode)
	}

	want := "host=db port=5432 user=gallery password=secret dbname=gallery sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
phoenix:
  base_url: http://phoenix:4000
  timeout: 5s
session:
  secret: session-secret
jwt:
  secret: jwt-secret
fixtures:
  users:
    - username: alice
      email: alice@example.com
      auth_token: alice-token
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("PHOENIX_BASE_URL", "http://other:4000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Phoenix.BaseURL != "http://other:4000" {
		t.Errorf("Phoenix.BaseURL = %q", cfg.Phoenix.BaseURL)
	}
	if cfg.Phoenix.Timeout != 5*time.Second {
		t.Errorf("Phoenix.Timeout = %v, want 5s", cfg.Phoenix.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if len(cfg.Fixtures.Users) != 1 || cfg.Fixtures.Users[0].AuthToken != "alice-token" {
		t.Errorf("Fixtures.Users = %#v", cfg.Fixtures.Users)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing phoenix base url", body: "session:\n  secret: s\njwt:\n  secret: j\n"},
		{name: "missing session secret", body: "phoenix:\n  base_url: http://p\njwt:\n  secret: j\n"},
		{name: "missing jwt secret", body: "phoenix:\n  base_url: http://p\nsession:\n  secret: s\n"},
		{name: "invalid yaml", body: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load() expected error but got none")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	path := writeConfig(t, "phoenix:\n  base_url: http://p\nsession:\n  secret: s\njwt:\n  secret: j\n")
	t.Setenv("SERVER_PORT", "eighty")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for non-numeric SERVER_PORT")
	}
}
