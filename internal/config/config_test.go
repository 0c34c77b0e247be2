package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORAGE_DRIVER")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_Week0AliasValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WEEK0_ALIAS_ENABLED", "true")
	t.Setenv("WEEK0_ALIAS_SEASON_TYPE", "9")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range WEEK0_ALIAS_SEASON_TYPE")
	}
}

func TestLoad_Week0AliasParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WEEK0_ALIAS_ENABLED", "true")
	t.Setenv("WEEK0_ALIAS_SEASON_TYPE", "1")
	t.Setenv("WEEK0_ALIAS_WEEK", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Week0AliasEnabled {
		t.Fatalf("expected Week0AliasEnabled=true")
	}
	if cfg.Week0AliasSeasonType != 1 || cfg.Week0AliasWeek != 4 {
		t.Fatalf("unexpected week 0 alias: type=%d week=%d", cfg.Week0AliasSeasonType, cfg.Week0AliasWeek)
	}
}

func TestLoad_ESPNConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ESPN_ENABLED", "true")
	t.Setenv("ESPN_TIMEOUT", "7s")
	t.Setenv("ESPN_MAX_RETRIES", "3")
	t.Setenv("ESPN_CIRCUIT_FAILURE_COUNT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ESPNTimeout != 7*time.Second {
		t.Fatalf("unexpected ESPNTimeout: %s", cfg.ESPNTimeout)
	}
	if cfg.ESPNMaxRetries != 3 {
		t.Fatalf("unexpected ESPNMaxRetries: %d", cfg.ESPNMaxRetries)
	}
	if cfg.ESPNCircuitFailureCount != 4 {
		t.Fatalf("unexpected ESPNCircuitFailureCount: %d", cfg.ESPNCircuitFailureCount)
	}
}

func TestLoad_PostgresRequiresDBURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", StoragePostgres)
	t.Setenv("DB_URL", "   ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	// Blank values fall back to the default URL rather than failing.
	if cfg.DBURL == "" {
		t.Fatalf("expected default DB_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected StorageDriver: %q", cfg.StorageDriver)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.WriteTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: read=%s write=%s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if !cfg.JanusCircuitEnabled || cfg.JanusCircuitFailureCount != 5 {
		t.Fatalf("unexpected janus circuit defaults")
	}
}
