package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables, optionally
// reading a .env file first. An empty envFilePath falls back to ".env" in
// the current directory; a missing file is not an error.
func LoadFromEnv(envFilePath string) (*Config, error) {
	cfg := New()

	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, &ConfigurationError{Field: "env_file", Reason: err.Error()}
		}
	} else {
		_ = godotenv.Load() // Ignore errors if file doesn't exist
	}

	cfg.DefaultProvider = getEnvString("OVERPASS_PROVIDER", cfg.DefaultProvider)

	loadProviderEnv("OVERPASS_OPENAI", &cfg.OpenAI)
	loadProviderEnv("OVERPASS_ANTHROPIC", &cfg.Anthropic)
	loadProviderEnv("OVERPASS_GEMINI", &cfg.Gemini)
	loadProviderEnv("OVERPASS_OPENROUTER", &cfg.OpenRouter)

	// Well-known key variables as fallbacks, matching what the provider CLIs use
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = getEnvString("OPENAI_API_KEY", "")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = getEnvString("ANTHROPIC_API_KEY", "")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = getEnvString("GEMINI_API_KEY", "")
	}
	if cfg.OpenRouter.APIKey == "" {
		cfg.OpenRouter.APIKey = getEnvString("OPENROUTER_API_KEY", "")
	}

	cfg.Review = ReviewConfig{
		Type:                     getEnvString("OVERPASS_REVIEW_TYPE", cfg.Review.Type),
		MultiPass:                getEnvBool("OVERPASS_MULTI_PASS", cfg.Review.MultiPass),
		ContextMaintenanceFactor: getEnvFloat("OVERPASS_CONTEXT_MAINTENANCE_FACTOR", cfg.Review.ContextMaintenanceFactor),
		ReservedOutputTokens:     getEnvInt("OVERPASS_RESERVED_OUTPUT_TOKENS", cfg.Review.ReservedOutputTokens),
		Quiet:                    getEnvBool("OVERPASS_QUIET", cfg.Review.Quiet),
		OutputDir:                getEnvString("OVERPASS_OUTPUT_DIR", cfg.Review.OutputDir),
		MaxFileBytes:             int64(getEnvInt("OVERPASS_MAX_FILE_BYTES", int(cfg.Review.MaxFileBytes))),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("OVERPASS_LOG_LEVEL", cfg.Logging.Level),
		Format:     getEnvString("OVERPASS_LOG_FORMAT", cfg.Logging.Format),
		Output:     getEnvString("OVERPASS_LOG_OUTPUT", cfg.Logging.Output),
		AddSource:  getEnvBool("OVERPASS_LOG_ADD_SOURCE", false),
		TimeFormat: getEnvString("OVERPASS_LOG_TIME_FORMAT", cfg.Logging.TimeFormat),
	}

	return cfg, nil
}

// loadProviderEnv overlays environment variables with the given prefix onto a
// provider config
func loadProviderEnv(prefix string, pc *ProviderConfig) {
	pc.APIKey = getEnvString(prefix+"_API_KEY", pc.APIKey)
	pc.BaseURL = getEnvString(prefix+"_BASE_URL", pc.BaseURL)
	pc.APIVersion = getEnvString(prefix+"_API_VERSION", pc.APIVersion)
	pc.Model = getEnvString(prefix+"_MODEL", pc.Model)
	pc.ContextWindowTokens = getEnvInt(prefix+"_CONTEXT_WINDOW_TOKENS", pc.ContextWindowTokens)
	pc.Timeout = getEnvDuration(prefix+"_TIMEOUT", pc.Timeout)
	pc.MaxRetries = getEnvInt(prefix+"_MAX_RETRIES", pc.MaxRetries)
	pc.MaxTokens = getEnvInt(prefix+"_MAX_TOKENS", pc.MaxTokens)
	pc.Temperature = getEnvFloat(prefix+"_TEMPERATURE", pc.Temperature)
	pc.InputPricePerMTok = getEnvFloat(prefix+"_INPUT_PRICE_PER_MTOK", pc.InputPricePerMTok)
	pc.OutputPricePerMTok = getEnvFloat(prefix+"_OUTPUT_PRICE_PER_MTOK", pc.OutputPricePerMTok)
	pc.RequestsPerMinute = getEnvInt(prefix+"_REQUESTS_PER_MINUTE", pc.RequestsPerMinute)
	pc.BurstLimit = getEnvInt(prefix+"_BURST_LIMIT", pc.BurstLimit)
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
