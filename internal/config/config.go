package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds the ambient settings of a run, populated from environment
// variables. Per-run choices (files, criterion, modifier) come from flags.
type Config struct {
	LogLevel  string
	LogFormat string

	// MetricsFile receives a Prometheus textfile after the run; empty disables it.
	MetricsFile string

	// ReportFile receives a YAML run report; empty disables it.
	ReportFile string

	// Kafka run-report publishing.
	KafkaBrokers       []string
	KafkaReportTopic   string
	KafkaReportEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:         strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "auto")),
		MetricsFile:      os.Getenv("METRICS_FILE"),
		ReportFile:       os.Getenv("REPORT_FILE"),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "mannings-edits"),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}
	cfg.KafkaReportEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_REPORT_ENABLED"); v != "" {
		cfg.KafkaReportEnabled = v == "true"
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "auto", "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.KafkaReportEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_REPORT_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaReportEnabled && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required")
	}

	return cfg, nil
}
