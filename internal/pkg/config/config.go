package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Map       MapConfig       `mapstructure:"map"`
	Maps      MapsConfig      `mapstructure:"maps"`
	Session   SessionConfig   `mapstructure:"session"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig locates the GIS bike-parking feed.
type FeedConfig struct {
	URL      string `mapstructure:"url"`
	Timeout  int    `mapstructure:"timeout"`
	CacheTTL int    `mapstructure:"cache_ttl"`
}

// MapConfig is the initial map view.
type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLng float64 `mapstructure:"center_lng"`
	Zoom      int     `mapstructure:"zoom"`
}

// MapsConfig selects and configures the geocoding and directions services.
type MapsConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Geocoder        string `mapstructure:"geocoder"`
	NominatimURL    string `mapstructure:"nominatim_url"`
	UserAgent       string `mapstructure:"user_agent"`
	Timeout         int    `mapstructure:"timeout"`
	GeocodeCacheTTL int    `mapstructure:"geocode_cache_ttl"`
}

type SessionConfig struct {
	IdleTTL       int `mapstructure:"idle_ttl"`
	SweepInterval int `mapstructure:"sweep_interval"`
}

// IdleTTLDuration returns IdleTTL as a time.Duration.
func (s SessionConfig) IdleTTLDuration() time.Duration {
	return time.Duration(s.IdleTTL) * time.Second
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (s SessionConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(s.SweepInterval) * time.Second
}

// NATSConfig enables session event push when URL is set.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig enables caching when Addr is set.
type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing precedence.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	return unmarshal(v)
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 15)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.timeout", 10)
	v.SetDefault("feed.cache_ttl", 300)
	v.SetDefault("map.center_lat", 47.6062)
	v.SetDefault("map.center_lng", -122.3321)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.geocoder", "google")
	v.SetDefault("maps.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("maps.user_agent", "bikepark/1.0")
	v.SetDefault("maps.timeout", 10)
	v.SetDefault("maps.geocode_cache_ttl", 86400)
	v.SetDefault("session.idle_ttl", 1800)
	v.SetDefault("session.sweep_interval", 60)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.prefix", "bikepark:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// Environment variables: BIKEPARK_FEED_URL → feed.url
	v.SetEnvPrefix("BIKEPARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Feed.URL == "" {
		errs = append(errs, "feed.url is required")
	}
	if c.Feed.CacheTTL < 0 {
		errs = append(errs, "feed.cache_ttl must not be negative")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be -90..90, got %g", c.Map.CenterLat))
	}
	if c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lng must be -180..180, got %g", c.Map.CenterLng))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-22, got %d", c.Map.Zoom))
	}
	switch c.Maps.Geocoder {
	case "google":
		if c.Maps.APIKey == "" {
			errs = append(errs, "maps.api_key is required when maps.geocoder is google")
		}
	case "nominatim":
		if c.Maps.UserAgent == "" {
			errs = append(errs, "maps.user_agent is required when maps.geocoder is nominatim")
		}
	default:
		errs = append(errs, fmt.Sprintf("maps.geocoder must be google or nominatim, got %q", c.Maps.Geocoder))
	}
	if c.Session.IdleTTL < 0 {
		errs = append(errs, "session.idle_ttl must not be negative")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "session.sweep_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
