package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CatalogConfig selects the tabular source the store catalog is pulled from.
type CatalogConfig struct {
	Source       string        `mapstructure:"source"` // postgres, rest or xlsx
	TTL          time.Duration `mapstructure:"ttl"`
	LoadTimeout  time.Duration `mapstructure:"load_timeout"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	RestURL      string        `mapstructure:"rest_url"`
	RestKey      string        `mapstructure:"rest_key"`
	XLSXPath     string        `mapstructure:"xlsx_path"`

	// BackgroundRefresh reloads a stale snapshot on a timer as well as on demand.
	BackgroundRefresh bool `mapstructure:"background_refresh"`
}

// RoutingConfig holds distance-matrix service settings
type RoutingConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Mode              string        `mapstructure:"mode"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

// ScoringConfig holds the weights and penalties used to rank stores
type ScoringConfig struct {
	PriceWeight        float64 `mapstructure:"price_weight"`
	DistanceWeight     float64 `mapstructure:"distance_weight"`
	MissingItemPenalty float64 `mapstructure:"missing_item_penalty"`
	TopK               int     `mapstructure:"top_k"`
}

// RecommendConfig holds orchestrator settings
type RecommendConfig struct {
	DistanceConcurrency int `mapstructure:"distance_concurrency"`
}

// AuthConfig holds service-to-service authentication settings
type AuthConfig struct {
	InternalAPIKey string `mapstructure:"internal_api_key"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CORSConfig holds cross-origin settings for the public API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry exporter settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Catalog source kinds
const (
	SourcePostgres = "postgres"
	SourceREST     = "rest"
	SourceXLSX     = "xlsx"
)

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("STORE_SERVICE")
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values the recommendation core depends on.
func (c *Config) Validate() error {
	s := c.Scoring
	if s.PriceWeight < 0 {
		return ErrInvalidConfig{Field: "scoring.price_weight", Reason: "must be non-negative"}
	}
	if s.DistanceWeight < 0 {
		return ErrInvalidConfig{Field: "scoring.distance_weight", Reason: "must be non-negative"}
	}
	if s.PriceWeight+s.DistanceWeight == 0 {
		return ErrInvalidConfig{Field: "scoring", Reason: "weights must not both be zero"}
	}
	if s.MissingItemPenalty < 0 {
		return ErrInvalidConfig{Field: "scoring.missing_item_penalty", Reason: "must be non-negative"}
	}
	if s.TopK < 1 {
		return ErrInvalidConfig{Field: "scoring.top_k", Reason: "must be at least 1"}
	}
	if c.Catalog.TTL <= 0 {
		return ErrInvalidConfig{Field: "catalog.ttl", Reason: "must be positive"}
	}
	switch c.Catalog.Source {
	case SourcePostgres, SourceREST, SourceXLSX:
	default:
		return ErrInvalidConfig{Field: "catalog.source", Reason: "must be one of postgres, rest, xlsx"}
	}
	if c.Routing.Timeout <= 0 {
		return ErrInvalidConfig{Field: "routing.timeout", Reason: "must be positive"}
	}
	if c.Recommend.DistanceConcurrency < 1 {
		return ErrInvalidConfig{Field: "recommend.distance_concurrency", Reason: "must be at least 1"}
	}
	return nil
}

// loadEnvFile loads the first .env file found in the usual locations
func loadEnvFile() error {
	for _, path := range []string{".env", "./config/.env"} {
		if _, err := os.Stat(path); err == nil {
			return godotenv.Load(path)
		}
	}
	return fmt.Errorf("no .env file found")
}

// bindEnvVars binds the unprefixed variable names used by deployments
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	v.BindEnv("catalog.rest_url", "SUPABASE_URL")
	v.BindEnv("catalog.rest_key", "SUPABASE_SERVICE_ROLE_KEY")

	v.BindEnv("routing.api_key", "GOOGLE_MAPS_API_KEY")
	v.BindEnv("routing.mode", "GOOGLE_MAPS_MODE")

	v.BindEnv("auth.internal_api_key", "INTERNAL_API_KEY")

	v.BindEnv("logging.level", "LOG_LEVEL")

	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("catalog.source", SourceREST)
	v.SetDefault("catalog.ttl", 60*time.Second)
	v.SetDefault("catalog.load_timeout", 15*time.Second)
	v.SetDefault("catalog.retry_backoff", 10*time.Second)
	v.SetDefault("catalog.background_refresh", true)

	v.SetDefault("routing.mode", "driving")
	v.SetDefault("routing.timeout", 5*time.Second)
	v.SetDefault("routing.base_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("routing.requests_per_second", 50.0)
	v.SetDefault("routing.breaker_failures", 5)
	v.SetDefault("routing.breaker_timeout", 30*time.Second)

	v.SetDefault("scoring.price_weight", 0.5)
	v.SetDefault("scoring.distance_weight", 0.5)
	v.SetDefault("scoring.missing_item_penalty", 6.00)
	v.SetDefault("scoring.top_k", 5)

	v.SetDefault("recommend.distance_concurrency", 8)

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("telemetry.service_name", "store-service")
}
