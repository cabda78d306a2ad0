package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store drivers.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend  BackendConfig
	Session  SessionConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Reports  ReportsConfig
	Audit    AuditConfig
}

// BackendConfig points the gateway at the upstream REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig governs the lifetime and storage of browser sessions.
type SessionConfig struct {
	Store      string
	TTL        time.Duration
	CookieName string
	HeaderName string
	KeyPrefix  string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportsConfig tunes analytics report caching.
type ReportsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	Dashboard    []string
}

// AuditConfig toggles the action log sinks.
type AuditConfig struct {
	Enabled     bool
	PersistToDB bool
	AMQPURL     string
	Queue       string
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
	BufferSize  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 30*time.Second),
	}

	cfg.Session = SessionConfig{
		Store:      strings.ToLower(v.GetString("SESSION_STORE")),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 8*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		HeaderName: v.GetString("SESSION_HEADER_NAME"),
		KeyPrefix:  v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reports = ReportsConfig{
		CacheEnabled: v.GetBool("REPORTS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("REPORTS_CACHE_TTL"), 5*time.Minute),
		Dashboard:    splitAndTrim(v.GetString("DASHBOARD_REPORTS")),
	}

	cfg.Audit = AuditConfig{
		Enabled:     v.GetBool("ENABLE_ACTION_LOG"),
		PersistToDB: v.GetBool("ACTION_LOG_PERSIST"),
		AMQPURL:     v.GetString("ACTION_LOG_AMQP_URL"),
		Queue:       v.GetString("ACTION_LOG_QUEUE"),
		Workers:     v.GetInt("ACTION_LOG_WORKERS"),
		MaxRetries:  v.GetInt("ACTION_LOG_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("ACTION_LOG_RETRY_DELAY"), time.Second),
		BufferSize:  v.GetInt("ACTION_LOG_BUFFER"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("BACKEND_TIMEOUT", "30s")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "8h")
	v.SetDefault("SESSION_COOKIE_NAME", "changedesk_session")
	v.SetDefault("SESSION_HEADER_NAME", "X-Session-ID")
	v.SetDefault("SESSION_KEY_PREFIX", "changedesk:session:")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "changedesk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REPORTS_CACHE_ENABLED", false)
	v.SetDefault("REPORTS_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_REPORTS", "change-requests/summary,change-requests/by-status,tasks/summary,projects/summary")

	v.SetDefault("ENABLE_ACTION_LOG", false)
	v.SetDefault("ACTION_LOG_PERSIST", false)
	v.SetDefault("ACTION_LOG_AMQP_URL", "")
	v.SetDefault("ACTION_LOG_QUEUE", "changedesk_action_log")
	v.SetDefault("ACTION_LOG_WORKERS", 1)
	v.SetDefault("ACTION_LOG_RETRIES", 3)
	v.SetDefault("ACTION_LOG_RETRY_DELAY", "1s")
	v.SetDefault("ACTION_LOG_BUFFER", 64)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
