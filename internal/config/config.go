package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverRedis     = "redis"
	DriverDynamoDB  = "dynamodb"
	DriverMemory    = "memory"
)

// Fallback connection parameters used when neither the config file nor the
// environment provides them. They point at a local development stack and
// are not meant for production.
const (
	FallbackStoreURL = "http://127.0.0.1:54321"
	FallbackStoreKey = "local-dev-anon-key"
	DefaultTable     = "temp_leads"
	DefaultAWSRegion = "us-east-1"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	CORS   CORSConfig   `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for ListenAndServe.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// StoreConfig selects and configures the lead store driver.
type StoreConfig struct {
	Driver         string `yaml:"driver"`
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	Table          string `yaml:"table"`
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	RedisPrefix    string `yaml:"redis_prefix"`
	SeedFile       string `yaml:"seed_file"`
	AWSRegion      string `yaml:"aws_region"`
	AWSProfile     string `yaml:"aws_profile"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured transport timeout as a duration
func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level            string `yaml:"level"`
	DisableRedaction bool   `yaml:"disable_redaction"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverPostgREST
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = DefaultTable
	}
	if cfg.Store.URL == "" {
		cfg.Store.URL = FallbackStoreURL
	}
	if cfg.Store.APIKey == "" {
		cfg.Store.APIKey = FallbackStoreKey
	}
	if cfg.Store.RedisPrefix == "" {
		cfg.Store.RedisPrefix = "leads"
	}
	if cfg.Store.AWSRegion == "" {
		cfg.Store.AWSRegion = DefaultAWSRegion
	}
	if cfg.Store.TimeoutSeconds == 0 {
		cfg.Store.TimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
}

// Validate checks the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgREST, DriverDynamoDB, DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("store.database_url is required for the postgres driver")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) first. A missing config file is not an
// error: defaults and the environment are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := parse(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	// Store connection, accepting the front-end's VITE_ names as well
	if v := firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := firstEnv("SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); v != "" {
		cfg.Store.APIKey = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("LEADS_TABLE"); v != "" {
		cfg.Store.Table = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Store.AWSRegion = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.Store.AWSProfile = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
