package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers for the last-location store.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	Weather  WeatherConfig  `mapstructure:"weather"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
}

type WeatherConfig struct {
	APIKey                 string        `mapstructure:"api_key" validate:"required"`
	BaseURL                string        `mapstructure:"base_url" validate:"required,url"`
	Timeout                time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit              float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst              int           `mapstructure:"rate_burst" validate:"gte=0"`
	BreakerFailures        uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout         time.Duration `mapstructure:"breaker_timeout"`
	BreakerHalfOpenMaxReqs uint32        `mapstructure:"breaker_half_open_requests"`
}

type PipelineConfig struct {
	Debounce   time.Duration `mapstructure:"debounce" validate:"gt=0"`
	StorageKey string        `mapstructure:"storage_key" validate:"required"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=sqlite postgres redis"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Port      int     `mapstructure:"port" validate:"gte=1,lte=65535"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Storage.Driver == StorageRedis || c.Cache.Enabled
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Configure YAML config file search
	viper.SetConfigName("pogoda")
	viper.SetConfigType("yaml")

	// Add search paths in order of precedence (first found wins)
	viper.AddConfigPath(".")             // ./pogoda.yaml (current directory)
	viper.AddConfigPath("$HOME")         // ~/.pogoda.yaml (home directory)
	viper.AddConfigPath("$HOME/.config") // ~/.config/pogoda.yaml
	viper.AddConfigPath("/etc")          // /etc/pogoda.yaml (system-wide)

	return load()
}

// LoadFile reads configuration from an explicit YAML file instead of the
// search path. Environment variables still take precedence.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	viper.SetConfigFile(path)
	return load()
}

func load() (*Config, error) {
	// Environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Map specific environment variables to config keys
	viper.BindEnv("weather.api_key", "OPENWEATHER_API_KEY")
	viper.BindEnv("weather.base_url", "WEATHER_API_URL")
	viper.BindEnv("weather.timeout", "WEATHER_TIMEOUT")
	viper.BindEnv("weather.rate_limit", "WEATHER_RATE_LIMIT")
	viper.BindEnv("weather.rate_burst", "WEATHER_RATE_BURST")

	viper.BindEnv("pipeline.debounce", "DEBOUNCE")
	viper.BindEnv("pipeline.storage_key", "STORAGE_KEY")

	viper.BindEnv("storage.driver", "STORAGE_DRIVER")
	viper.BindEnv("storage.sqlite_path", "SQLITE_PATH")

	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.name", "DB_NAME")
	viper.BindEnv("database.ssl_mode", "DB_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.search_ttl", "SEARCH_CACHE_TTL")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	viper.BindEnv("server.enabled", "SERVER_ENABLED")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.rate_limit", "SERVER_RATE_LIMIT")

	// Set defaults
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Weather defaults
	viper.SetDefault("weather.base_url", "https://api.openweathermap.org")
	viper.SetDefault("weather.timeout", 10*time.Second)
	viper.SetDefault("weather.rate_limit", 1.0)
	viper.SetDefault("weather.rate_burst", 5)
	viper.SetDefault("weather.breaker_failures", 5)
	viper.SetDefault("weather.breaker_timeout", 30*time.Second)
	viper.SetDefault("weather.breaker_half_open_requests", 1)

	// Pipeline defaults
	viper.SetDefault("pipeline.debounce", 500*time.Millisecond)
	viper.SetDefault("pipeline.storage_key", "lastSearchedCoords")

	// Storage defaults
	viper.SetDefault("storage.driver", StorageSQLite)
	viper.SetDefault("storage.sqlite_path", "pogoda.db")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "pogoda")
	viper.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.search_ttl", 24*time.Hour)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	// Server defaults
	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit", 10.0)
	viper.SetDefault("server.rate_burst", 20)
}
