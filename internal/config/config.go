package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Events   EventsConfig
	Logging  LoggingConfig
	Smoke    SmokeConfig
}

type ServerConfig struct {
	Port string
}

// DatabaseConfig contains MongoDB settings and the readiness gate timings.
type DatabaseConfig struct {
	URI            string
	Name           string
	ConnectTimeout time.Duration // single connect+ping attempt
	ReadyTimeout   time.Duration // how long a request waits on the gate
	HealthTimeout  time.Duration // how long /api/health waits before reporting degraded
	RetryAfter     time.Duration // hint returned with 503 responses
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// StorageConfig configures the MinIO bucket used for maintenance snapshots.
// An empty Endpoint disables snapshots.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CacheConfig configures Redis. An empty Addr disables caching.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// EventsConfig configures the Kafka publisher. No brokers disables publishing.
type EventsConfig struct {
	Brokers     []string
	TopicPrefix string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type SmokeConfig struct {
	BaseURL string
}

// Load reads a .env file if one exists, then builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, err)
	}
	useSSL, err := getEnvBool("MINIO_USE_SSL", false)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
			Name:           getEnv("MONGODB_DATABASE", "restohub"),
			ConnectTimeout: duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			ReadyTimeout:   duration("DB_READY_TIMEOUT", 45*time.Second),
			HealthTimeout:  duration("DB_HEALTH_TIMEOUT", 3*time.Second),
			RetryAfter:     duration("DB_RETRY_AFTER", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  duration("JWT_TTL", 4*time.Hour),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "restohub-maintenance"),
			UseSSL:    useSSL,
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASS", ""),
			DB:       redisDB,
			TTL:      duration("CACHE_TTL", 60*time.Second),
		},
		Events: EventsConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "restohub"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Smoke: SmokeConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if c.Database.ReadyTimeout <= 0 {
		return errors.New("DB_READY_TIMEOUT must be positive")
	}
	return nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s/%s, MinIO: %q, Redis: %q, Kafka: %v, Auth: *** (masked) ***}",
		c.Server.Port, maskURI(c.Database.URI), c.Database.Name, c.Storage.Endpoint, c.Cache.Addr, c.Events.Brokers)
}

func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return uri
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// GetEnvInt is exported for the maintenance commands, which read a few extra keys.
func GetEnvInt(key string, defaultVal int) (int, error) { return getEnvInt(key, defaultVal) }

// GetEnvBool is the boolean counterpart of GetEnvInt.
func GetEnvBool(key string, defaultVal bool) (bool, error) { return getEnvBool(key, defaultVal) }

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
