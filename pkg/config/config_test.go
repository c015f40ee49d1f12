package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 50 {
		t.Errorf("Search.DefaultLimit = %d, want 50", cfg.Search.DefaultLimit)
	}
	if cfg.Kafka.Enabled || cfg.Postgres.Enabled {
		t.Error("Kafka and Postgres should default to disabled")
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
corpus:
  dir: /srv/corpus
indexer:
  buildWorkers: 8
kafka:
  enabled: true
  brokers:
    - broker1:9092
    - broker2:9092
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Corpus.Dir != "/srv/corpus" {
		t.Errorf("Corpus.Dir = %q, want /srv/corpus", cfg.Corpus.Dir)
	}
	if cfg.Indexer.BuildWorkers != 8 {
		t.Errorf("Indexer.BuildWorkers = %d, want 8", cfg.Indexer.BuildWorkers)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Kafka = %+v, want enabled with two brokers", cfg.Kafka)
	}
	// Untouched values keep their defaults.
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded, want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IR_SERVER_PORT", "7070")
	t.Setenv("IR_CORPUS_DIR", "/tmp/corpus")
	t.Setenv("IR_INDEX_WORKERS", "16")
	t.Setenv("IR_KAFKA_ENABLED", "true")
	t.Setenv("IR_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Corpus.Dir != "/tmp/corpus" {
		t.Errorf("Corpus.Dir = %q, want /tmp/corpus", cfg.Corpus.Dir)
	}
	if cfg.Indexer.BuildWorkers != 16 {
		t.Errorf("Indexer.BuildWorkers = %d, want 16", cfg.Indexer.BuildWorkers)
	}
	if !cfg.Kafka.Enabled {
		t.Error("Kafka.Enabled = false, want true")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("Kafka.Brokers = %v, want [k1:9092 k2:9092]", cfg.Kafka.Brokers)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, Database: "search",
		User: "app", Password: "secret", SSLMode: "disable",
	}
	want := "host=db port=5433 user=app password=secret dbname=search sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
