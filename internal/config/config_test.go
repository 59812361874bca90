package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

store:
  driver: "postgres"
  database_url: "postgres://console@localhost/leads?sslmode=disable"
  table: "leads"
  timeout_seconds: 10

log:
  level: "debug"

cors:
  allowed_origins: ["https://console.example.com"]
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "leads", cfg.Store.Table)
	assert.Equal(t, 10*time.Second, cfg.Store.Timeout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://console.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, DriverPostgREST, cfg.Store.Driver)
	assert.Equal(t, DefaultTable, cfg.Store.Table)
	assert.Equal(t, FallbackStoreURL, cfg.Store.URL)
	assert.Equal(t, FallbackStoreKey, cfg.Store.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Store.Timeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "store:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "database_url")

	_, err = Load(writeConfig(t, "store:\n  driver: redis\n"))
	assert.ErrorContains(t, err, "redis_url")

	_, err = Load(writeConfig(t, "store:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromEnv_MissingFileUsesFallbacks(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, FallbackStoreURL, cfg.Store.URL)
	assert.Equal(t, FallbackStoreKey, cfg.Store.APIKey)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeConfig(t, `
store:
  url: "https://from-file.example.com"
  api_key: "file-key"
`)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_URL", "https://vite.example.com")
	t.Setenv("SUPABASE_ANON_KEY", "env-key")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://env/leads")
	t.Setenv("LEADS_TABLE", "leads_v2")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "https://vite.example.com", cfg.Store.URL)
	assert.Equal(t, "env-key", cfg.Store.APIKey)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://env/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "leads_v2", cfg.Store.Table)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnv_BadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestServerConfig_GetHost(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	c := ServerConfig{Host: "localhost", Port: 8080}
	assert.Equal(t, "localhost:8080", c.Addr())

	t.Setenv("SERVER_HOST", "127.0.0.2")
	assert.Equal(t, "127.0.0.2", c.GetHost())

	t.Setenv("ECS_CONTAINER_METADATA_URI", "http://169.254.170.2/v4")
	assert.Equal(t, "0.0.0.0", c.GetHost())
}

func TestLoadExampleConfig(t *testing.T) {
	t.Setenv("SERVER_HOST", "")
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	cfg, err := Load("../../config/config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, DriverPostgREST, cfg.Store.Driver)
	assert.Equal(t, DefaultTable, cfg.Store.Table)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
}

func TestLoadFromEnv_DynamoDB(t *testing.T) {
	t.Setenv("STORE_DRIVER", "dynamodb")
	t.Setenv("AWS_REGION", "sa-east-1")
	t.Setenv("AWS_PROFILE", "leads")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverDynamoDB, cfg.Store.Driver)
	assert.Equal(t, "sa-east-1", cfg.Store.AWSRegion)
	assert.Equal(t, "leads", cfg.Store.AWSProfile)
	assert.Equal(t, DefaultTable, cfg.Store.Table)
}

func TestLoadDynamoDBRegionDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store:\n  driver: dynamodb\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAWSRegion, cfg.Store.AWSRegion)
}
