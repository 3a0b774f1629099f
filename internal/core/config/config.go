package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration shared by every microshop service.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// SeedSampleData inserts demo records into empty stores at start-up.
	SeedSampleData bool `mapstructure:"SEED_SAMPLE_DATA" default:"true"`

	Auth     AuthConfig     `mapstructure:",squash"`
	SQLite   SQLiteConfig   `mapstructure:",squash"`
	Mongo    MongoConfig    `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Catalog  CatalogConfig  `mapstructure:",squash"`
	Postmark PostmarkConfig `mapstructure:",squash"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to sign and verify bearer tokens.
	JWTSecret string `mapstructure:"JWT_SECRET" required:"true"`
	// TokenTTLSeconds is the lifetime of an issued token.
	TokenTTLSeconds int `mapstructure:"TOKEN_TTL_SECONDS" default:"3600"`
}

// TokenTTL returns the token lifetime as a duration.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// SQLiteConfig holds the relational store location.
type SQLiteConfig struct {
	// Path is the SQLite database file. Users, products and orders live here.
	Path string `mapstructure:"SQLITE_PATH" default:"microshop.db"`
}

// MongoConfig holds the document store connection details.
type MongoConfig struct {
	// URL is the MongoDB connection string.
	URL string `mapstructure:"MONGO_URL" default:"mongodb://localhost:27017"`
	// Database is the database holding the shipments collection.
	Database string `mapstructure:"MONGO_DATABASE" default:"shipping_db"`
}

// RedisConfig holds cache settings. An empty URL disables caching.
type RedisConfig struct {
	URL             string `mapstructure:"REDIS_URL"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS" default:"60"`
}

// CacheTTL returns the cache entry lifetime as a duration.
func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CatalogConfig points the orders service at the catalog service.
type CatalogConfig struct {
	// URL is the catalog base URL. When set, order items are re-priced against it.
	URL string `mapstructure:"CATALOG_URL"`
	// TimeoutSeconds bounds every outbound call.
	TimeoutSeconds int `mapstructure:"HTTP_CLIENT_TIMEOUT_SECONDS" default:"10"`
}

// Timeout returns the outbound call timeout as a duration.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PostmarkConfig holds the e-mail credentials. An empty token disables e-mail.
type PostmarkConfig struct {
	ServerToken string `mapstructure:"POSTMARK_SERVER_TOKEN"`
	Sender      string `mapstructure:"EMAIL_SENDER" default:"orders@microshop.local"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged field to its environment key and registers defaults.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}

		if defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
