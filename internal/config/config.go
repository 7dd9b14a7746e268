// Package config provides configuration loading and access for the
// Overpass application.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var (
	// Global configuration instance
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance
// If the configuration has not been initialized, it will return an error
func Get() (*Config, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	return globalConfig, nil
}

// Set sets the global configuration instance
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = cfg
}

// Config represents the complete application configuration
type Config struct {
	DefaultProvider string // Which provider to use by default (openai, anthropic, gemini, or openrouter)
	OpenAI          ProviderConfig
	Anthropic       ProviderConfig
	Gemini          ProviderConfig
	OpenRouter      ProviderConfig
	Review          ReviewConfig
	Logging         LoggingConfig
}

// ProviderConfig holds connection and model settings for one LLM provider
type ProviderConfig struct {
	// Authentication and connection
	APIKey     string // Provider API key
	BaseURL    string // API base URL
	APIVersion string // API version header, where the provider requires one

	// Model settings
	Model               string // Model to use for reviews
	ContextWindowTokens int    // Token budget the model can accept in one call

	// Request settings
	Timeout    time.Duration // Request timeout
	MaxRetries int           // Maximum number of retries on failure

	// Generation parameters
	MaxTokens   int     // Max tokens to generate for responses
	Temperature float64 // Default temperature for generation

	// Pricing, in USD per million tokens, used for cost estimates
	InputPricePerMTok  float64
	OutputPricePerMTok float64

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// ReviewConfig holds settings for the review engine itself
type ReviewConfig struct {
	Type                     string  // Default review type
	MultiPass                bool    // Whether to allow multi-pass reviews for large codebases
	ContextMaintenanceFactor float64 // Fraction of the window reserved for cross-pass context
	ReservedOutputTokens     int     // Tokens reserved for model output within the window
	Quiet                    bool    // Suppress progress output
	OutputDir                string  // Directory where reports are written
	MaxFileBytes             int64   // Files larger than this are skipped during collection
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		DefaultProvider: "anthropic",
		OpenAI: ProviderConfig{
			BaseURL:             "https://api.openai.com/v1",
			Model:               "gpt-4o",
			ContextWindowTokens: 128000,
			Timeout:             120 * time.Second,
			MaxRetries:          3,
			MaxTokens:           4096,
			Temperature:         0.2,
			InputPricePerMTok:   2.50,
			OutputPricePerMTok:  10.00,
		},
		Anthropic: ProviderConfig{
			BaseURL:             "https://api.anthropic.com",
			APIVersion:          "2023-06-01",
			Model:               "claude-3-7-sonnet-20250219",
			ContextWindowTokens: 200000,
			Timeout:             120 * time.Second,
			MaxRetries:          3,
			MaxTokens:           4096,
			Temperature:         0.2,
			InputPricePerMTok:   3.00,
			OutputPricePerMTok:  15.00,
		},
		Gemini: ProviderConfig{
			BaseURL:             "https://generativelanguage.googleapis.com/v1beta",
			Model:               "gemini-1.5-pro",
			ContextWindowTokens: 1000000,
			Timeout:             120 * time.Second,
			MaxRetries:          3,
			MaxTokens:           8192,
			Temperature:         0.2,
			InputPricePerMTok:   1.25,
			OutputPricePerMTok:  5.00,
		},
		OpenRouter: ProviderConfig{
			BaseURL:             "https://openrouter.ai/api/v1",
			Model:               "anthropic/claude-3.7-sonnet",
			ContextWindowTokens: 200000,
			Timeout:             180 * time.Second,
			MaxRetries:          3,
			MaxTokens:           4096,
			Temperature:         0.2,
		},
		Review: ReviewConfig{
			Type:                     "quick-fixes",
			MultiPass:                true,
			ContextMaintenanceFactor: 0.15,
			ReservedOutputTokens:     4096,
			OutputDir:                "ai-code-review-docs",
			MaxFileBytes:             1 << 20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			TimeFormat: time.RFC3339,
		},
	}
}

// Provider returns the configuration for the named provider
func (c *Config) Provider(name string) (ProviderConfig, error) {
	switch strings.ToLower(name) {
	case "openai":
		return c.OpenAI, nil
	case "anthropic", "claude":
		return c.Anthropic, nil
	case "gemini", "google":
		return c.Gemini, nil
	case "openrouter":
		return c.OpenRouter, nil
	default:
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", name)
	}
}

// Validate checks that the configuration is usable for a review run
func (c *Config) Validate() error {
	provider, err := c.Provider(c.DefaultProvider)
	if err != nil {
		return &ConfigurationError{Field: "default_provider", Reason: err.Error()}
	}

	if provider.APIKey == "" {
		return &ConfigurationError{
			Field:  c.DefaultProvider + ".api_key",
			Reason: "API key is required",
		}
	}

	if provider.ContextWindowTokens <= 0 {
		return &ConfigurationError{
			Field:  c.DefaultProvider + ".context_window_tokens",
			Reason: "context window size is required",
		}
	}

	if f := c.Review.ContextMaintenanceFactor; f < 0 || f >= 1 {
		return &ConfigurationError{
			Field:  "review.context_maintenance_factor",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", f),
		}
	}

	return nil
}

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
