package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SERVICE_VERSION", "")
	t.Setenv("DB_SCHEMA", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load("storefront")

	if cfg.ServiceName != "storefront" {
		t.Errorf("expected service name storefront, got %s", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Schema != "storefront" {
		t.Errorf("expected default schema storefront, got %s", cfg.Schema)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadBrokersCSV(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,,")

	cfg := Load("worker")

	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("expected 2 brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaBrokers[0] != "kafka-1:9092" || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}
