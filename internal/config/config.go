package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gonum.org/v1/plot/vg"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Summary publishing.
	KafkaBrokers      []string
	KafkaSummaryTopic string
	KafkaEnabled      bool

	// Rendered map size.
	MapWidth  vg.Length
	MapHeight vg.Length
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapWidth, err := parseLength("MAP_WIDTH", "8in")
	if err != nil {
		return nil, err
	}
	mapHeight, err := parseLength("MAP_HEIGHT", "6in")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("FARS_DATA_DIR", "."),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "fars-monthly-summary"),
		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",

		MapWidth:  mapWidth,
		MapHeight: mapHeight,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("FARS_DATA_DIR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_SUMMARY_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// parseLength reads a vg length such as "8in" or "20cm" from key.
func parseLength(key, def string) (vg.Length, error) {
	l, err := vg.ParseLength(sharedcfg.EnvOrDefault(key, def))
	if err != nil || l <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return l, nil
}
