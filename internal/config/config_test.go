package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "PORT", "MONGODB_URI", "MONGO_URI", "MONGODB_DATABASE", "DB_READY_TIMEOUT", "DB_HEALTH_TIMEOUT", "DB_RETRY_AFTER", "KAFKA_BROKERS", "REDIS_ADDR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "restohub", cfg.Database.Name)
	assert.Equal(t, 45*time.Second, cfg.Database.ReadyTimeout)
	assert.Equal(t, 3*time.Second, cfg.Database.HealthTimeout)
	assert.Equal(t, 30*time.Second, cfg.Database.RetryAfter)
	assert.Empty(t, cfg.Events.Brokers)
	assert.Empty(t, cfg.Cache.Addr)
}

func TestLoad_MongoURIFallback(t *testing.T) {
	clearEnv(t, "MONGODB_URI")
	t.Setenv("MONGO_URI", "mongodb://legacy:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://legacy:27017", cfg.Database.URI)

	t.Setenv("MONGODB_URI", "mongodb://primary:27017")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://primary:27017", cfg.Database.URI)
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("DB_READY_TIMEOUT", "5s")
	t.Setenv("API_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Database.ReadyTimeout)
	assert.Equal(t, "https://api.example.com", cfg.Smoke.BaseURL)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("DB_READY_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_READY_TIMEOUT")
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	clearEnv(t, "JWT_SECRET")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	t.Setenv("JWT_SECRET", "x")
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestString_MasksCredentials(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{URI: "mongodb://root:hunter2@db:27017", Name: "restohub"}}
	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "db:27017")
}
