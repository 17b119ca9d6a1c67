package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string        `yaml:"addr"`            // API bind address
	LogDir         string        `yaml:"log_dir"`         // logs directory
	DatabaseDriver string        `yaml:"database_driver"` // sqlite, postgres or memory
	DatabaseURL    string        `yaml:"database_url"`    // file path (sqlite) or DSN (postgres)
	ProbeTick      time.Duration `yaml:"probe_tick"`      // scheduler granularity; 0 disables probing
	MaxConcurrent  int           `yaml:"max_concurrent"`  // concurrent checks per pass
	RetryAttempts  int           `yaml:"retry_attempts"`  // HTTP check attempts before a failure counts
	RetryBackoff   time.Duration `yaml:"retry_backoff"`   // backoff between attempts
	RollupInterval time.Duration `yaml:"rollup_interval"` // aggregation cadence; 0 disables rollups
	PublicAPIKeys  []string      `yaml:"public_api_keys"` // read access
	AdminAPIKeys   []string      `yaml:"admin_api_keys"`  // write access
	PublicRPM      int           `yaml:"public_rpm"`
	PublicBurst    int           `yaml:"public_burst"`
	AdminRPM       int           `yaml:"admin_rpm"`
	AdminBurst     int           `yaml:"admin_burst"`
}

func defaults() Config {
	return Config{
		Addr:           ":8080",
		LogDir:         "logs",
		DatabaseDriver: "sqlite",
		DatabaseURL:    "statuspulse.db",
		ProbeTick:      time.Second,
		MaxConcurrent:  8,
		RetryAttempts:  2,
		RetryBackoff:   300 * time.Millisecond,
		RollupInterval: 5 * time.Minute,
		PublicRPM:      240,
		PublicBurst:    60,
		AdminRPM:       60,
		AdminBurst:     20,
	}
}

// Load builds the config in three layers: defaults, then the optional YAML
// file named by CONFIG_FILE, then environment variables. A missing config
// file is fine; an unreadable or malformed one is not.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Addr, "ADDR")
	setString(&c.LogDir, "LOG_DIR")
	setString(&c.DatabaseDriver, "DATABASE_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setDuration(&c.ProbeTick, "PROBE_TICK")
	setInt(&c.MaxConcurrent, "MAX_CONCURRENT_CHECKS")
	setInt(&c.RetryAttempts, "RETRY_ATTEMPTS")
	setDuration(&c.RetryBackoff, "RETRY_BACKOFF")
	setDuration(&c.RollupInterval, "ROLLUP_INTERVAL")
	setKeys(&c.PublicAPIKeys, "PUBLIC_API_KEYS")
	setKeys(&c.AdminAPIKeys, "ADMIN_API_KEYS")
	setInt(&c.PublicRPM, "PUBLIC_RPM")
	setInt(&c.PublicBurst, "PUBLIC_BURST")
	setInt(&c.AdminRPM, "ADMIN_RPM")
	setInt(&c.AdminBurst, "ADMIN_BURST")

	// A postgres:// DSN implies the driver even when unset.
	if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		c.DatabaseDriver = "postgres"
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setKeys(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	*dst = keys
}
