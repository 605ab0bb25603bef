// Package config loads the service configuration from a YAML file and
// ORDERMESH_* environment variables. Environment overrides use underscores
// for nested keys, e.g. ORDERMESH_BACKEND_CLIENT_ID overrides
// backend.client_id.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	LogLevel string         `mapstructure:"log_level"`
}

// BackendConfig holds commerce backend connection settings.
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	ClientID     string        `mapstructure:"client_id" validate:"required"`
	ClientSecret string        `mapstructure:"client_secret" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CatalogConfig identifies the published catalog the menu is served from.
type CatalogConfig struct {
	CatalogID     string `mapstructure:"catalog_id" validate:"required"`
	NodeID        string `mapstructure:"node_id" validate:"required"`
	PricebookID   string `mapstructure:"pricebook_id" validate:"required"`
	LocationsFlow string `mapstructure:"locations_flow"`
}

// RedisConfig holds the session store connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GeocoderConfig holds the address resolution service settings.
type GeocoderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// OrdersConfig tunes the ordering conversation.
type OrdersConfig struct {
	Currency      string        `mapstructure:"currency"`
	PageSize      int           `mapstructure:"page_size"`
	FollowUpDelay time.Duration `mapstructure:"follow_up_delay"`
}

// Load reads configFile (or ordermesh.yaml in the working directory when
// empty), applies environment overrides and defaults, and validates the
// result. A missing config file is fine; env-only configuration is supported.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ordermesh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ordermesh")
	}

	v.SetEnvPrefix("ORDERMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "https://api.moltin.com")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("orders.currency", "RUB")
	v.SetDefault("orders.page_size", 10)
	v.SetDefault("orders.follow_up_delay", 5*time.Second)
	v.SetDefault("log_level", "info")
}

// bindEnvKeys binds nested keys explicitly so AutomaticEnv picks them up
// without a config file present.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"backend.base_url", "backend.client_id", "backend.client_secret", "backend.timeout",
		"catalog.catalog_id", "catalog.node_id", "catalog.pricebook_id", "catalog.locations_flow",
		"redis.addr", "redis.password", "redis.db",
		"geocoder.api_key", "geocoder.base_url",
		"orders.currency", "orders.page_size", "orders.follow_up_delay",
		"log_level",
	} {
		_ = v.BindEnv(key)
	}
}
