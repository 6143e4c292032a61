package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, RequestTimeout: 15},
		Feed:    FeedConfig{URL: "https://example.org/bike-parking.geojson", CacheTTL: 300},
		Map:     MapConfig{CenterLat: 47.6, CenterLng: -122.3, Zoom: 13},
		Maps:    MapsConfig{Geocoder: "google", APIKey: "key"},
		Session: SessionConfig{IdleTTL: 1800, SweepInterval: 60},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Feed.URL = ""
	cfg.Maps.APIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "feed.url", "maps.api_key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidate_Geocoder(t *testing.T) {
	cfg := validConfig()
	cfg.Maps.Geocoder = "nominatim"
	cfg.Maps.APIKey = ""
	cfg.Maps.UserAgent = "bikepark-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("nominatim without api key should be valid: %v", err)
	}

	cfg.Maps.Geocoder = "bing"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "maps.geocoder") {
		t.Errorf("expected maps.geocoder error, got %v", err)
	}
}

func TestUnmarshal_EnvOverrides(t *testing.T) {
	t.Setenv("BIKEPARK_FEED_URL", "https://example.org/feed.geojson")
	t.Setenv("BIKEPARK_MAPS_GEOCODER", "nominatim")
	t.Setenv("BIKEPARK_SERVER_PORT", "9090")

	v := viper.New()
	setDefaults(v, "bikepark-test")
	cfg, err := unmarshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Feed.URL != "https://example.org/feed.geojson" {
		t.Errorf("unexpected feed.url %q", cfg.Feed.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Maps.Geocoder != "nominatim" {
		t.Errorf("expected nominatim, got %s", cfg.Maps.Geocoder)
	}
	if cfg.Telemetry.ServiceName != "bikepark-test" {
		t.Errorf("unexpected service name %s", cfg.Telemetry.ServiceName)
	}
	if got := cfg.Session.IdleTTLDuration().Minutes(); got != 30 {
		t.Errorf("expected 30m idle ttl, got %v", got)
	}
}
