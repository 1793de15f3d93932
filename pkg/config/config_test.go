package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			FirebaseProject:  "tijuana-shop-dev",
			SearchPriceMode:  SearchPriceDrop,
			HomeFeedLimit:    20,
			GeoMaxDistanceKm: 50,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"filter price mode", func(c *Config) { c.SearchPriceMode = SearchPriceFilter }, false},
		{"missing project", func(c *Config) { c.FirebaseProject = "" }, true},
		{"unknown price mode", func(c *Config) { c.SearchPriceMode = "combine" }, true},
		{"zero feed limit", func(c *Config) { c.HomeFeedLimit = 0 }, true},
		{"negative radius", func(c *Config) { c.GeoMaxDistanceKm = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "tijuana-shop-test")
	t.Setenv("SEARCH_PRICE_MODE", SearchPriceFilter)
	t.Setenv("HOME_FEED_LIMIT", "12")
	t.Setenv("GEO_MAX_DISTANCE_KM", "not-a-number")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tijuana-shop-test", cfg.FirebaseProject)
	assert.Equal(t, SearchPriceFilter, cfg.SearchPriceMode)
	assert.Equal(t, 12, cfg.HomeFeedLimit)
	assert.Equal(t, 50.0, cfg.GeoMaxDistanceKm)
	assert.True(t, cfg.OtelEnabled)
}
