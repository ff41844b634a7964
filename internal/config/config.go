// Package config provides configuration management for biomapper.
// It loads settings from environment variables with the BIOMAPPER_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration settings for the biomapper pipeline.
type Config struct {
	KG         KGConfig
	Cache      CacheConfig
	Annotation AnnotationConfig
	Mapping    MappingConfig
	LogLevel   string // Log level: debug, info, warn, error (default: info)
}

// KGConfig contains knowledge graph API client configuration.
type KGConfig struct {
	BaseURL         string        // Kestrel API base URL (default: https://kestrel.nathanpricelab.com/api)
	APIKey          string        // Kestrel API key, sent as X-API-Key header
	Timeout         time.Duration // Per-request timeout (default: 30s)
	RequestsPerSec  float64       // Outbound rate limit (default: 10)
	Burst           int           // Rate limiter burst size (default: 5)
	BreakerFailures int           // Consecutive failures that trip the circuit (default: 3)
	BreakerTimeout  time.Duration // Open-circuit duration before half-open (default: 30s)
}

// CacheConfig contains read-through remote-lookup cache configuration.
type CacheConfig struct {
	Enabled bool          // Enable the sqlite-backed cache (default: true)
	Path    string        // Path to the cache database (default: ./data/biomapper-cache.db)
	TTL     time.Duration // Entry lifetime before re-fetch (default: 1h)
}

// AnnotationConfig contains annotation engine configuration.
type AnnotationConfig struct {
	// Mode controls when entities are annotated: "all", "missing" (only
	// entities without provided IDs), or "none" (default: missing).
	Mode string

	// OnFailure controls what happens when an annotator fails for an
	// entity: "skip" records the failure and continues with remaining
	// evidence, "abort" fails the entity (default: skip).
	OnFailure string

	// WorkbenchBaseURL is the Metabolomics Workbench REST base URL
	// (default: https://www.metabolomicsworkbench.org/rest).
	WorkbenchBaseURL string
}

// MappingConfig contains dataset mapping configuration.
type MappingConfig struct {
	// ArrayDelimiters are the characters that split multi-valued ID cells
	// (default: ",;").
	ArrayDelimiters string

	// VocabOverridesPath optionally points to a YAML file with extra
	// vocabulary prefix/IRI entries and aliases.
	VocabOverridesPath string

	// WriteReferenceSlices also writes the unmapped / invalid-ids /
	// one-to-many / many-to-one reference TSVs next to the mapped output
	// (default: false).
	WriteReferenceSlices bool
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the BIOMAPPER_ prefix.
func LoadConfig() *Config {
	return &Config{
		KG: KGConfig{
			BaseURL:         getEnv("BIOMAPPER_KG_URL", "https://kestrel.nathanpricelab.com/api"),
			APIKey:          getEnv("BIOMAPPER_KG_API_KEY", ""),
			Timeout:         getEnvDuration("BIOMAPPER_KG_TIMEOUT", 30*time.Second),
			RequestsPerSec:  getEnvFloat("BIOMAPPER_KG_RATE_LIMIT", 10),
			Burst:           getEnvInt("BIOMAPPER_KG_BURST", 5),
			BreakerFailures: getEnvInt("BIOMAPPER_KG_BREAKER_FAILURES", 3),
			BreakerTimeout:  getEnvDuration("BIOMAPPER_KG_BREAKER_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("BIOMAPPER_CACHE_ENABLED", true),
			Path:    getEnv("BIOMAPPER_CACHE_PATH", "./data/biomapper-cache.db"),
			TTL:     getEnvDuration("BIOMAPPER_CACHE_TTL", time.Hour),
		},
		Annotation: AnnotationConfig{
			Mode:             getEnv("BIOMAPPER_ANNOTATION_MODE", "missing"),
			OnFailure:        getEnv("BIOMAPPER_ANNOTATION_ON_FAILURE", "skip"),
			WorkbenchBaseURL: getEnv("BIOMAPPER_WORKBENCH_URL", "https://www.metabolomicsworkbench.org/rest"),
		},
		Mapping: MappingConfig{
			ArrayDelimiters:      getEnv("BIOMAPPER_ARRAY_DELIMITERS", ",;"),
			VocabOverridesPath:   getEnv("BIOMAPPER_VOCAB_OVERRIDES", ""),
			WriteReferenceSlices: getEnvBool("BIOMAPPER_WRITE_REFERENCE_SLICES", false),
		},
		LogLevel: getEnv("BIOMAPPER_LOG_LEVEL", "info"),
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the variable exists but cannot be parsed, the default is used.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" as true and "false", "0", "no" as
// false (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "30s", "1h") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
