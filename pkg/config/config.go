package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape. Flags win over env vars, env
// vars win over the file.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Remote struct {
		BaseURL   string `yaml:"base_url"`
		Token     string `yaml:"token"`
		TimeoutMS int    `yaml:"timeout_ms"`
		PageLimit int    `yaml:"page_limit"`
	} `yaml:"remote"`
	Retention struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
		MaxAge  string `yaml:"max_age"` // Go duration, e.g. "720h"
	} `yaml:"retention"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns host:port for the local HTTP API.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8093
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// RemoteTimeout returns the gateway request timeout with a sane default.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Remote.TimeoutMS) * time.Millisecond
}

// PageLimit returns the bounded fetch page size. The engine only ever reads
// the first page.
func (c *Config) PageLimit() int {
	if c.Remote.PageLimit <= 0 {
		return 100
	}
	return c.Remote.PageLimit
}

// RetentionMaxAge parses the retention max_age duration; zero disables the
// age cutoff.
func (c *Config) RetentionMaxAge() (time.Duration, error) {
	s := strings.TrimSpace(c.Retention.MaxAge)
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Load reads the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", "127.0.0.1:8093", "local API listen address")
	dbPtr := flag.String("db", "./.threadsync", "Pebble DB path for the local message mirror")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("THREADSYNC_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("THREADSYNC_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("THREADSYNC_REMOTE_URL"); v != "" {
		envUsed = true
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("THREADSYNC_REMOTE_TOKEN"); v != "" {
		envUsed = true
		cfg.Remote.Token = v
	}
	if v := os.Getenv("THREADSYNC_REMOTE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Remote.TimeoutMS = n
		}
	}
	if v := os.Getenv("THREADSYNC_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Remote.PageLimit = n
		}
	}
	if v := os.Getenv("THREADSYNC_RETENTION_ENABLED"); v != "" {
		envUsed = true
		vl := strings.ToLower(strings.TrimSpace(v))
		cfg.Retention.Enabled = vl == "1" || vl == "true" || vl == "yes"
	}
	if v := os.Getenv("THREADSYNC_RETENTION_CRON"); v != "" {
		envUsed = true
		cfg.Retention.Cron = v
	}
	if v := os.Getenv("THREADSYNC_RETENTION_MAX_AGE"); v != "" {
		envUsed = true
		cfg.Retention.MaxAge = v
	}
	if v := os.Getenv("THREADSYNC_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("THREADSYNC_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("THREADSYNC_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective loads config from the given path (file) and applies
// environment overrides. A missing file yields an empty config so env and
// flags alone can configure the daemon.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and THREADSYNC_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("THREADSYNC_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
