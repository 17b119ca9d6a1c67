package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabaseURL != "statuspulse.db" {
		t.Fatalf("db defaults wrong: %q %q", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.ProbeTick != time.Second || cfg.RollupInterval != 5*time.Minute {
		t.Fatalf("tick defaults wrong: %v %v", cfg.ProbeTick, cfg.RollupInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("PROBE_TICK", "5s")
	t.Setenv("MAX_CONCURRENT_CHECKS", "3")
	t.Setenv("ADMIN_API_KEYS", "k1, k2 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.ProbeTick != 5*time.Second {
		t.Fatalf("probe tick = %v", cfg.ProbeTick)
	}
	if cfg.MaxConcurrent != 3 {
		t.Fatalf("max concurrent = %d", cfg.MaxConcurrent)
	}
	if len(cfg.AdminAPIKeys) != 2 || cfg.AdminAPIKeys[0] != "k1" || cfg.AdminAPIKeys[1] != "k2" {
		t.Fatalf("admin keys = %v", cfg.AdminAPIKeys)
	}
}

func TestLoad_YAMLFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":7070\"\nprobe_tick: 30s\npublic_api_keys:\n  - file_key\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PROBE_TICK", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("file addr not applied: %q", cfg.Addr)
	}
	if cfg.ProbeTick != 2*time.Second {
		t.Fatalf("env should win over file: %v", cfg.ProbeTick)
	}
	if len(cfg.PublicAPIKeys) != 1 || cfg.PublicAPIKeys[0] != "file_key" {
		t.Fatalf("public keys = %v", cfg.PublicAPIKeys)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatal("want parse error")
	}
}

func TestLoad_PostgresDSNImpliesDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost:5432/statuspulse")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("driver = %q", cfg.DatabaseDriver)
	}
}
