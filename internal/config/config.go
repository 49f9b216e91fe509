// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`
	IPLoc   IPLocConfig   `yaml:"iploc" mapstructure:"iploc"`
	Locate  LocateConfig  `yaml:"locate" mapstructure:"locate"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the Nominatim adapter.
type GeocodeConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	CountryCode  string  `yaml:"country_code" mapstructure:"country_code"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CacheEntries int     `yaml:"cache_entries" mapstructure:"cache_entries"`
}

// PlacesConfig configures the live places aggregator.
type PlacesConfig struct {
	Mirrors            []string `yaml:"mirrors" mapstructure:"mirrors"`
	ServerTimeoutSecs  int      `yaml:"server_timeout_secs" mapstructure:"server_timeout_secs"`
	ClientTimeoutSecs  int      `yaml:"client_timeout_secs" mapstructure:"client_timeout_secs"`
	MaxRawElements     int      `yaml:"max_raw_elements" mapstructure:"max_raw_elements"`
	MaxQueryRadiusKm   float64  `yaml:"max_query_radius_km" mapstructure:"max_query_radius_km"`
	PerCategoryLive    int      `yaml:"per_category_live" mapstructure:"per_category_live"`
	PerCategoryMerged  int      `yaml:"per_category_merged" mapstructure:"per_category_merged"`
	PerCategoryMinimum int      `yaml:"per_category_minimum" mapstructure:"per_category_minimum"`
	EnrichBudget       int      `yaml:"enrich_budget" mapstructure:"enrich_budget"`
}

// RoutingConfig configures the route engine.
type RoutingConfig struct {
	OSRMBaseURL string `yaml:"osrm_base_url" mapstructure:"osrm_base_url"`
	ORSBaseURL  string `yaml:"ors_base_url" mapstructure:"ors_base_url"`
	ORSKey      string `yaml:"ors_api_key" mapstructure:"ors_api_key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// IPLocConfig configures IP-based location estimation.
type IPLocConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LocateConfig configures the sensor acquisition tiers.
type LocateConfig struct {
	TierATimeoutSecs int `yaml:"tier_a_timeout_secs" mapstructure:"tier_a_timeout_secs"`
	TierBTimeoutSecs int `yaml:"tier_b_timeout_secs" mapstructure:"tier_b_timeout_secs"`
	TierCTimeoutSecs int `yaml:"tier_c_timeout_secs" mapstructure:"tier_c_timeout_secs"`
}

// StoreConfig configures the local recency store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the local HTTP facade.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("nearfind")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/nearfind")

	// Environment
	v.SetEnvPrefix("NEARFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "nearfind/1.0 (github.com/lokeshchintha/nearfind)")
	v.SetDefault("geocode.country_code", "in")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.rate_per_sec", 1.0)
	v.SetDefault("geocode.cache_entries", 512)
	v.SetDefault("places.mirrors", []string{
		"https://overpass-api.de/api/interpreter",
		"https://overpass.kumi.systems/api/interpreter",
		"https://overpass.openstreetmap.ru/api/interpreter",
	})
	v.SetDefault("places.server_timeout_secs", 8)
	v.SetDefault("places.client_timeout_secs", 4)
	v.SetDefault("places.max_raw_elements", 25)
	v.SetDefault("places.max_query_radius_km", 1.5)
	v.SetDefault("places.per_category_live", 8)
	v.SetDefault("places.per_category_merged", 10)
	v.SetDefault("places.per_category_minimum", 6)
	v.SetDefault("places.enrich_budget", 15)
	v.SetDefault("routing.osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.ors_base_url", "https://api.openrouteservice.org")
	v.SetDefault("routing.timeout_secs", 10)
	v.SetDefault("iploc.timeout_secs", 5)
	v.SetDefault("locate.tier_a_timeout_secs", 5)
	v.SetDefault("locate.tier_b_timeout_secs", 3)
	v.SetDefault("locate.tier_c_timeout_secs", 15)
	v.SetDefault("store.path", "nearfind.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
