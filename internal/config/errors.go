package config

import "fmt"

// ConfigurationError indicates a missing or invalid configuration value.
// It is fatal and raised before any review pass executes.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s", e.Field)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}
