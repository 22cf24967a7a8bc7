package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Runner names accepted in RUNNER.
const (
	RunnerExec   = "exec"
	RunnerKafka  = "kafka"
	RunnerDryRun = "dry-run"
)

// Settings holds process-level settings, populated from environment
// variables. Verification settings live in the config file (see Build).
type Settings struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	Runner          string
	KafkaBrokers    []string
	KafkaTopic      string
	ShutdownTimeout time.Duration
}

// LoadSettings reads settings from environment variables, applying defaults where unset.
func LoadSettings() (*Settings, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	s := &Settings{
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ""),
		Runner:          strings.ToLower(sharedcfg.EnvOrDefault("RUNNER", RunnerExec)),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "mode-invocations"),
		ShutdownTimeout: shutdownTimeout,
	}

	switch s.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", s.LogFormat)
	}

	switch s.Runner {
	case RunnerExec, RunnerDryRun:
	case RunnerKafka:
		if len(s.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when RUNNER=kafka")
		}
		if s.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when RUNNER=kafka")
		}
	default:
		return nil, fmt.Errorf("invalid RUNNER %q: want exec, kafka or dry-run", s.Runner)
	}

	return s, nil
}
