package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is built once at process start and handed to components by value.
// Nothing mutates it afterwards.
type Config struct {
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	PostgresURL    string
	Schema         string
	KafkaBrokers   []string
	OTLPEndpoint   string

	OrdersServiceURL    string
	InventoryServiceURL string
	EmailServiceURL     string
}

// Load reads an optional .env file and then the environment. Environment
// variables win over .env entries.
func Load(serviceName string) Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:         serviceName,
		ServiceVersion:      getenv("SERVICE_VERSION", "0.1.0"),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		Schema:              getenv("DB_SCHEMA", "storefront"),
		KafkaBrokers:        splitCSV(os.Getenv("KAFKA_BROKERS")),
		OTLPEndpoint:        getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OrdersServiceURL:    os.Getenv("ORDERS_SERVICE_URL"),
		InventoryServiceURL: os.Getenv("INVENTORY_SERVICE_URL"),
		EmailServiceURL:     os.Getenv("EMAIL_SERVICE_URL"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
