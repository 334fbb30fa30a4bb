// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Telegram.Token == "" {
		errs = append(errs, "telegram.token: required")
	}

	// Storage channels
	if c.Storage.Movies == 0 && c.Storage.Webseries == 0 && c.Storage.Anime == 0 {
		errs = append(errs, "storage: at least one channel (movies, webseries or anime) must be configured")
	}
	for name, id := range map[string]int64{"movies": c.Storage.Movies, "webseries": c.Storage.Webseries, "anime": c.Storage.Anime} {
		if id > 0 {
			errs = append(errs, fmt.Sprintf("storage.%s: channel ids are negative, got %d", name, id))
		}
	}
	if c.Storage.LinkBase != "" {
		if u, err := url.Parse(c.Storage.LinkBase); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("storage.link_base: must be an absolute URL, got %q", c.Storage.LinkBase))
		}
	}

	// Upload pacing
	if c.Upload.MaxAttempts < 0 {
		errs = append(errs, fmt.Sprintf("upload.max_attempts: must be at least 1, got %d", c.Upload.MaxAttempts))
	}
	for name, d := range map[string]int64{
		"idle_delay":          int64(c.Upload.IdleDelay),
		"settle_delay":        int64(c.Upload.SettleDelay),
		"attempt_timeout":     int64(c.Upload.AttemptTimeout),
		"pending_timeout":     int64(c.Upload.PendingTimeout),
		"cancelled_retention": int64(c.Upload.CancelledRetention),
		"sweep_interval":      int64(c.Upload.SweepInterval),
	} {
		if d < 0 {
			errs = append(errs, fmt.Sprintf("upload.%s: must not be negative", name))
		}
	}

	if c.Cache.RedisURL != "" {
		if u, err := url.Parse(c.Cache.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, fmt.Sprintf("cache.redis_url: must be a redis:// or rediss:// URL, got %q", c.Cache.RedisURL))
		}
	}

	return errs
}
