package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// SearchPriceDrop ignores price bounds when a text search is active.
	SearchPriceDrop = "drop"
	// SearchPriceFilter applies price bounds in memory after the prefix query.
	SearchPriceFilter = "filter"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	ServiceAccountJSON string
	ServiceAccountPath string

	GeminiAPIKey string
	GeminiModel  string

	RedisURL string

	SearchPriceMode  string
	HomeFeedLimit    int
	GeoMaxDistanceKm float64

	OtelEnabled  bool
	OtelExporter string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RedisURL:           getEnv("REDIS_URL", ""),
		SearchPriceMode:    getEnv("SEARCH_PRICE_MODE", SearchPriceDrop),
		HomeFeedLimit:      getEnvAsInt("HOME_FEED_LIMIT", 20),
		GeoMaxDistanceKm:   getEnvAsFloat("GEO_MAX_DISTANCE_KM", 50),
		OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		OtelExporter:       getEnv("OTEL_EXPORTER", "stdout"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.FirebaseProject == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.SearchPriceMode != SearchPriceDrop && c.SearchPriceMode != SearchPriceFilter {
		return fmt.Errorf("SEARCH_PRICE_MODE must be %q or %q, got %q", SearchPriceDrop, SearchPriceFilter, c.SearchPriceMode)
	}
	if c.HomeFeedLimit <= 0 {
		return fmt.Errorf("HOME_FEED_LIMIT must be positive")
	}
	if c.GeoMaxDistanceKm <= 0 {
		return fmt.Errorf("GEO_MAX_DISTANCE_KM must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
