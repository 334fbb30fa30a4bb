// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Telegram TelegramConfig `toml:"telegram"`
	Storage  StorageConfig  `toml:"storage"`
	Upload   UploadConfig   `toml:"upload"`
	Cache    CacheConfig    `toml:"cache"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TelegramConfig struct {
	Token       string        `toml:"token"`
	PollTimeout time.Duration `toml:"poll_timeout"`
	Endpoint    string        `toml:"endpoint"` // self-hosted Bot API server, optional
}

// StorageConfig names the channels artifacts are forwarded into.
type StorageConfig struct {
	Movies    int64  `toml:"movies"`
	Webseries int64  `toml:"webseries"`
	Anime     int64  `toml:"anime"`
	LinkBase  string `toml:"link_base"`
}

type UploadConfig struct {
	IdleDelay          time.Duration `toml:"idle_delay"`
	SettleDelay        time.Duration `toml:"settle_delay"`
	AttemptTimeout     time.Duration `toml:"attempt_timeout"`
	MaxAttempts        int           `toml:"max_attempts"`
	RetryBackoff       time.Duration `toml:"retry_backoff"`
	PendingTimeout     time.Duration `toml:"pending_timeout"`
	CancelledRetention time.Duration `toml:"cancelled_retention"`
	SweepInterval      time.Duration `toml:"sweep_interval"`
	EventRetention     time.Duration `toml:"event_retention"`
}

// CacheConfig enables the redis kind cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// Load reads, parses and validates the configuration file. A .env file next
// to the config file is loaded first; variables already set win.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file without
// validating it or failing on unresolved variables.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/reelvault.db"
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = 30 * time.Second
	}
	if c.Storage.LinkBase == "" {
		c.Storage.LinkBase = "https://t.me"
	}

	u := &c.Upload
	setDuration(&u.IdleDelay, 5*time.Second)
	setDuration(&u.SettleDelay, time.Second)
	setDuration(&u.AttemptTimeout, 2*time.Minute)
	setDuration(&u.RetryBackoff, 2*time.Second)
	setDuration(&u.PendingTimeout, 24*time.Hour)
	setDuration(&u.CancelledRetention, time.Hour)
	setDuration(&u.SweepInterval, 5*time.Minute)
	setDuration(&u.EventRetention, 30*24*time.Hour)
	if u.MaxAttempts == 0 {
		u.MaxAttempts = 3
	}

	setDuration(&c.Cache.TTL, 24*time.Hour)
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} references with environment values.
// ${VAR:-default} falls back to default when VAR is unset or empty, and
// ${VAR:?message} reports message when it is. Unresolved references are
// left in place and returned sorted.
func substituteEnvVars(content string) (string, []string) {
	seen := make(map[string]bool)
	var missing []string

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		value, ok := os.LookupEnv(name)
		switch {
		case op == "" && ok:
			return value
		case op != "" && value != "":
			return value
		case op == ":-":
			return arg
		}

		entry := name
		if op == ":?" {
			entry = name + ": " + arg
		}
		if !seen[entry] {
			seen[entry] = true
			missing = append(missing, entry)
		}
		return match
	})

	sort.Strings(missing)
	return out, missing
}
