package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"skillmap-backend/domain/services"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion    string
	JourneyTable string
	EventBusName string

	// Lambda configuration
	IsLambda bool

	// Graph data
	GraphFixturePath string

	// Tuning overrides (YAML, hot-reloadable)
	OverridesPath string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// Engine tuning
	Similarity services.SimilarityWeights
	Path       services.PathAnalysisOptions
}

// Overrides is the YAML shape of the tuning override file.
type Overrides struct {
	Similarity services.SimilarityWeights   `yaml:"similarity"`
	Path       services.PathAnalysisOptions `yaml:"path"`
}

// LoadConfig loads configuration from environment variables and, when an
// overrides file is configured and present, applies the tuning overrides on
// top of the defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		JourneyTable:  getEnv("JOURNEY_TABLE", "skillmap-journeys"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "skillmap-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		GraphFixturePath: getEnv("GRAPH_FIXTURE_PATH", ""),
		OverridesPath:    getEnv("OVERRIDES_PATH", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		Similarity: services.DefaultSimilarityWeights(),
		Path:       services.DefaultPathAnalysisOptions(),
	}

	cfg.Path.MinPathFrequency = getEnvInt("PATH_MIN_FREQUENCY", cfg.Path.MinPathFrequency)
	cfg.Path.MaxPathDepth = getEnvInt("PATH_MAX_DEPTH", cfg.Path.MaxPathDepth)

	if cfg.OverridesPath != "" {
		overrides, err := LoadOverrides(cfg.OverridesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
		cfg.Similarity = overrides.Similarity
		cfg.Path = overrides.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JourneyTable == "" {
			return fmt.Errorf("JOURNEY_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.Path.MaxPathDepth < 0 {
		return fmt.Errorf("PATH_MAX_DEPTH cannot be negative")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadOverrides parses a tuning override file. Missing sections keep the
// engine defaults.
func LoadOverrides(path string) (*Overrides, error) {
	overrides := &Overrides{
		Similarity: services.DefaultSimilarityWeights(),
		Path:       services.DefaultPathAnalysisOptions(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}
	if err := yaml.Unmarshal(data, overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides YAML: %w", err)
	}

	return overrides, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
