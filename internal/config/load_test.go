// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
[telegram]
token = "123:abc"

[storage]
movies = -1001000000001
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return cfgPath
}

func TestLoad_Valid(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
[server]
port = 8080
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Movies != -1001000000001 {
		t.Errorf("expected movies channel, got %d", cfg.Storage.Movies)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("REELVAULT_MISSING_TOKEN")
	cfgPath := writeConfig(t, `
[telegram]
token = "${REELVAULT_MISSING_TOKEN}"

[storage]
movies = -1001000000001
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "REELVAULT_MISSING_TOKEN") {
		t.Errorf("expected REELVAULT_MISSING_TOKEN in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
[server]
port = 99999
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected *ConfigError, got %T", err)
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port in error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8585 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Database.Path != "./data/reelvault.db" {
		t.Errorf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Telegram.PollTimeout != 30*time.Second {
		t.Errorf("unexpected poll timeout %v", cfg.Telegram.PollTimeout)
	}
	if cfg.Storage.LinkBase != "https://t.me" {
		t.Errorf("unexpected link base %q", cfg.Storage.LinkBase)
	}
	u := cfg.Upload
	if u.IdleDelay != 5*time.Second || u.SettleDelay != time.Second || u.AttemptTimeout != 2*time.Minute {
		t.Errorf("unexpected upload pacing defaults: %+v", u)
	}
	if u.MaxAttempts != 3 || u.RetryBackoff != 2*time.Second {
		t.Errorf("unexpected retry defaults: %+v", u)
	}
	if u.PendingTimeout != 24*time.Hour || u.CancelledRetention != time.Hour || u.SweepInterval != 5*time.Minute {
		t.Errorf("unexpected sweep defaults: %+v", u)
	}
	if cfg.Cache.RedisURL != "" || cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
}

func TestLoad_Durations(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
[upload]
idle_delay = "10s"
attempt_timeout = "30s"
max_attempts = 5
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upload.IdleDelay != 10*time.Second {
		t.Errorf("expected 10s idle delay, got %v", cfg.Upload.IdleDelay)
	}
	if cfg.Upload.AttemptTimeout != 30*time.Second {
		t.Errorf("expected 30s attempt timeout, got %v", cfg.Upload.AttemptTimeout)
	}
	if cfg.Upload.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Upload.MaxAttempts)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	os.Unsetenv("REELVAULT_DOTENV_TOKEN")
	t.Cleanup(func() { os.Unsetenv("REELVAULT_DOTENV_TOKEN") })

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	os.WriteFile(cfgPath, []byte(`
[telegram]
token = "${REELVAULT_DOTENV_TOKEN}"

[storage]
anime = -1001000000003
`), 0644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("REELVAULT_DOTENV_TOKEN=from-dotenv\n"), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "from-dotenv" {
		t.Errorf("expected token from .env, got %q", cfg.Telegram.Token)
	}
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("REELVAULT_DOTENV_TOKEN", "from-env")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	os.WriteFile(cfgPath, []byte(`
[telegram]
token = "${REELVAULT_DOTENV_TOKEN}"

[storage]
anime = -1001000000003
`), 0644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("REELVAULT_DOTENV_TOKEN=from-dotenv\n"), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Errorf("expected environment to win, got %q", cfg.Telegram.Token)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = "))
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	os.Unsetenv("REELVAULT_MISSING_TOKEN")
	cfg, err := LoadWithoutValidation(writeConfig(t, `
[telegram]
token = "${REELVAULT_MISSING_TOKEN}"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "${REELVAULT_MISSING_TOKEN}" {
		t.Errorf("expected unresolved reference, got %q", cfg.Telegram.Token)
	}
	if cfg.Server.Port != 8585 {
		t.Errorf("expected defaults applied, got port %d", cfg.Server.Port)
	}
}
