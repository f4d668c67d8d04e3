package app

import (
	"fmt"
	"net/url"
	"strings"

	"threadsync/pkg/config"
)

// validateConfig fails fast on configs the daemon cannot run with.
func validateConfig(cfg *config.Config) error {
	base := strings.TrimSpace(cfg.Remote.BaseURL)
	if base == "" {
		return fmt.Errorf("remote.base_url is required (set THREADSYNC_REMOTE_URL or the config file)")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote.base_url is not a valid URL: %q", base)
	}
	if cfg.Remote.TimeoutMS < 0 {
		return fmt.Errorf("remote.timeout_ms must be non-negative")
	}
	if cfg.Remote.PageLimit < 0 {
		return fmt.Errorf("remote.page_limit must be non-negative")
	}
	if cfg.RateLimit.RPS < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be non-negative")
	}
	if _, err := cfg.RetentionMaxAge(); err != nil {
		return fmt.Errorf("retention.max_age: %w", err)
	}
	return nil
}
