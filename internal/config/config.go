// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/database"
)

// City sources.
const (
	CitySourceFile     = "file"
	CitySourcePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	TelemetryEnabled bool
	OTLPEndpoint     string
	TraceSampleRatio float64

	// RequireTLS rejects plain-HTTP requests forwarded by a load balancer.
	RequireTLS bool

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string

	// CitySource selects where the location index is loaded from.
	CitySource string
	CitiesFile string
	Database   database.Config

	WeatherBaseURL    string
	AirQualityBaseURL string
	ProviderTimeout   time.Duration
	CacheTTL          time.Duration

	// NearestExhaustive disables the nearest-city early exit.
	NearestExhaustive bool

	// RefreshInterval is the cache warm-up period; zero disables it.
	RefreshInterval time.Duration
	RefreshCities   []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if providerTimeout <= 0 {
		return nil, errors.New("PROVIDER_TIMEOUT must be positive")
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}
	if refreshInterval < 0 {
		return nil, errors.New("REFRESH_INTERVAL must not be negative")
	}

	exhaustive, err := parseBool("NEAREST_EXHAUSTIVE", false)
	if err != nil {
		return nil, err
	}

	requireTLS, err := parseBool("REQUIRE_TLS", false)
	if err != nil {
		return nil, err
	}

	sampleRatio := 1.0
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		sampleRatio, err = strconv.ParseFloat(v, 64)
		if err != nil || sampleRatio <= 0 || sampleRatio > 1 {
			return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLER_ARG %q: must be within (0, 1]", v)
		}
	}

	cfg := &Config{
		Port:              getEnvOrDefault("APP_PORT", "8080"),
		Environment:       getEnvOrDefault("APP_ENV", "development"),
		LogLevel:          level,
		TelemetryEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio:  sampleRatio,
		RequireTLS:        requireTLS,
		CORSOrigins:       parseList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		CitySource:        strings.ToLower(getEnvOrDefault("CITIES_SOURCE", CitySourceFile)),
		CitiesFile:        getEnvOrDefault("CITIES_FILE", "data/cities.json"),
		Database:          database.ConfigFromEnv(),
		WeatherBaseURL:    os.Getenv("WEATHER_BASE_URL"),
		AirQualityBaseURL: os.Getenv("AIR_QUALITY_BASE_URL"),
		ProviderTimeout:   providerTimeout,
		CacheTTL:          cacheTTL,
		NearestExhaustive: exhaustive,
		RefreshInterval:   refreshInterval,
		RefreshCities:     parseList(os.Getenv("REFRESH_CITIES")),
	}

	switch cfg.CitySource {
	case CitySourceFile:
		if cfg.CitiesFile == "" {
			return nil, errors.New("CITIES_FILE is required when CITIES_SOURCE is file")
		}
	case CitySourcePostgres:
	default:
		return nil, fmt.Errorf("invalid CITIES_SOURCE %q", cfg.CitySource)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// parseList splits a comma-separated value, dropping blank entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
