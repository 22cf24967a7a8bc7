package config

import "fmt"

// ConfigError reports an invalid or missing configuration value.
//
//nolint:revive // config.ConfigError reads better at call sites than config.Error
type ConfigError struct {
	Section string
	Key     string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config [%s] %s: %v", e.Section, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
