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

const (
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Context  ContextConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Import   ImportConfig
	Polls    PollConfig
	Reports  ReportsConfig
	Views    ViewCounterConfig
	Metrics  MetricsConfig
}

// UpstreamConfig points the gateway at the news REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig selects the backend holding per-browser client state.
type StorageConfig struct {
	Driver    string
	KeyPrefix string
}

// ContextConfig controls the signed cookie identifying a browser context.
type ContextConfig struct {
	CookieName   string
	CookieSecret string
	CookieTTL    time.Duration
	SecureCookie bool
}

// SessionConfig tunes session-scoped storage and restoration.
type SessionConfig struct {
	ScopeTTL    time.Duration
	RestoreWait time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ImportConfig bounds the bulk article import.
type ImportConfig struct {
	MaxFileSizeBytes int64
	PreviewRows      int
}

// PollConfig sets how many active polls are requested.
type PollConfig struct {
	ActiveLimit int
}

// ReportsConfig configures import outcome report storage.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// ViewCounterConfig sizes the background view-increment workers.
type ViewCounterConfig struct {
	Workers    int
	BufferSize int
}

type MetricsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Storage = StorageConfig{
		Driver:    strings.ToLower(v.GetString("STORAGE_DRIVER")),
		KeyPrefix: v.GetString("STORAGE_KEY_PREFIX"),
	}

	cfg.Context = ContextConfig{
		CookieName:   v.GetString("CONTEXT_COOKIE_NAME"),
		CookieSecret: v.GetString("CONTEXT_COOKIE_SECRET"),
		CookieTTL:    parseDuration(v.GetString("CONTEXT_COOKIE_TTL"), 365*24*time.Hour),
		SecureCookie: v.GetBool("CONTEXT_COOKIE_SECURE"),
	}

	cfg.Session = SessionConfig{
		ScopeTTL:    parseDuration(v.GetString("SESSION_SCOPE_TTL"), 30*time.Minute),
		RestoreWait: parseDuration(v.GetString("SESSION_RESTORE_WAIT"), 3*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxImportSize := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 5 * 1024 * 1024
	}
	previewRows := v.GetInt("IMPORT_PREVIEW_ROWS")
	if previewRows <= 0 {
		previewRows = 5
	}
	cfg.Import = ImportConfig{
		MaxFileSizeBytes: maxImportSize,
		PreviewRows:      previewRows,
	}

	activeLimit := v.GetInt("POLL_ACTIVE_LIMIT")
	if activeLimit <= 0 {
		activeLimit = 1
	}
	cfg.Polls = PollConfig{ActiveLimit: activeLimit}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.Views = ViewCounterConfig{
		Workers:    v.GetInt("VIEW_COUNTER_WORKERS"),
		BufferSize: v.GetInt("VIEW_COUNTER_BUFFER"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000/api/v1")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STORAGE_DRIVER", StorageDriverMemory)
	v.SetDefault("STORAGE_KEY_PREFIX", "newsroom")

	v.SetDefault("CONTEXT_COOKIE_NAME", "nr_ctx")
	v.SetDefault("CONTEXT_COOKIE_SECRET", "dev_context_secret")
	v.SetDefault("CONTEXT_COOKIE_TTL", "8760h")
	v.SetDefault("CONTEXT_COOKIE_SECURE", false)

	v.SetDefault("SESSION_SCOPE_TTL", "30m")
	v.SetDefault("SESSION_RESTORE_WAIT", "3s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("IMPORT_PREVIEW_ROWS", 5)
	v.SetDefault("POLL_ACTIVE_LIMIT", 1)

	v.SetDefault("REPORTS_STORAGE_DIR", "./reports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("VIEW_COUNTER_WORKERS", 2)
	v.SetDefault("VIEW_COUNTER_BUFFER", 64)
	v.SetDefault("ENABLE_METRICS", true)
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
