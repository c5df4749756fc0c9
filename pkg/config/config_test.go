package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
environment: test
storage:
  backend: sqlite
  sqlite:
    path: test.db
  retention:
    1m: 24h
    news: 168h
binance:
  symbols:
    - BTC
    - ETH
  kline_intervals:
    - 1h
  reconnect_interval: 5s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
	if cfg.Storage.Redis.Prefix != "marketradar" {
		t.Fatalf("expected default prefix, got %q", cfg.Storage.Redis.Prefix)
	}
	if cfg.Kafka.Topic != "marketradar.ticks" {
		t.Fatalf("expected default topic, got %q", cfg.Kafka.Topic)
	}
}

func TestLoadParsesRetentionAndDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := cfg.Storage.Retention["1m"]; got != 24*time.Hour {
		t.Fatalf("unexpected 1m retention %v", got)
	}
	if got := cfg.Storage.Retention["news"]; got != 168*time.Hour {
		t.Fatalf("unexpected news retention %v", got)
	}
	if cfg.Binance.ReconnectInterval != 5*time.Second {
		t.Fatalf("unexpected reconnect interval %v", cfg.Binance.ReconnectInterval)
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	body := `
storage:
  backend: sqlite
binance:
  symbols: [BTC]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
storage:
  backend: mongo
binance:
  symbols: [BTC]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected backend validation error")
	}
}

func TestLoadRejectsEmptySymbols(t *testing.T) {
	body := `
environment: test
storage:
  backend: sqlite
binance:
  symbols: []
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected symbols validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOL,DOGE")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("SQLITE_PATH", "/tmp/override.db")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092,kafka2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Binance.Symbols) != 2 || cfg.Binance.Symbols[0] != "SOL" {
		t.Fatalf("symbols override not applied: %v", cfg.Binance.Symbols)
	}
	if cfg.Storage.Backend != "redis" {
		t.Fatalf("backend override not applied: %q", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLite.Path != "/tmp/override.db" {
		t.Fatalf("sqlite path override not applied: %q", cfg.Storage.SQLite.Path)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("kafka override not applied: %+v", cfg.Kafka)
	}
}
