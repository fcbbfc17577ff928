package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Session    SessionConfig
	Simulation SimulationConfig
	Fees       FeeConfig
	Photo      PhotoConfig
	Dashboard  DashboardConfig
	Reports    ReportsConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig selects where client sessions are kept between restarts.
type SessionConfig struct {
	Store     string
	FilePath  string
	KeyPrefix string
}

// SimulationConfig holds the fixed latencies of simulated operations.
type SimulationConfig struct {
	SignInDelay         time.Duration
	RegisterDelay       time.Duration
	PhotoReadDelay      time.Duration
	SubmitDelay         time.Duration
	TrackDelay          time.Duration
	ForgotPasswordDelay time.Duration
	ReportDelay         time.Duration
}

// FeeConfig holds the ID card pricing, in whole currency units.
type FeeConfig struct {
	Base        int
	Replacement int
	Shipping    int
}

// PhotoConfig bounds photo uploads for the request wizard.
type PhotoConfig struct {
	MaxBytes       int64
	PlaceholderURL string
}

// DashboardConfig governs admin dashboard caching.
type DashboardConfig struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	CacheNamespace string
}

// ReportsConfig configures asynchronous report generation.
type ReportsConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Session = SessionConfig{
		Store:     strings.ToLower(v.GetString("SESSION_STORE")),
		FilePath:  v.GetString("SESSION_FILE_PATH"),
		KeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Simulation = SimulationConfig{
		SignInDelay:         parseDuration(v.GetString("SIGNIN_DELAY"), 0),
		RegisterDelay:       parseDuration(v.GetString("REGISTER_DELAY"), 0),
		PhotoReadDelay:      parseDuration(v.GetString("PHOTO_READ_DELAY"), 0),
		SubmitDelay:         parseDuration(v.GetString("SUBMIT_DELAY"), 1500*time.Millisecond),
		TrackDelay:          parseDuration(v.GetString("TRACK_DELAY"), 800*time.Millisecond),
		ForgotPasswordDelay: parseDuration(v.GetString("FORGOT_PASSWORD_DELAY"), time.Second),
		ReportDelay:         parseDuration(v.GetString("REPORT_DELAY"), 2*time.Second),
	}

	cfg.Fees = FeeConfig{
		Base:        v.GetInt("FEE_BASE"),
		Replacement: v.GetInt("FEE_REPLACEMENT"),
		Shipping:    v.GetInt("FEE_SHIPPING"),
	}

	cfg.Photo = PhotoConfig{
		MaxBytes:       v.GetInt64("PHOTO_MAX_BYTES"),
		PlaceholderURL: v.GetString("PHOTO_PLACEHOLDER_URL"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled:   v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:       parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		CacheNamespace: v.GetString("DASHBOARD_CACHE_NAMESPACE"),
	}

	cfg.Reports = ReportsConfig{
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "campus-id-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_FILE_PATH", "./data/sessions.json")
	v.SetDefault("SESSION_KEY_PREFIX", "campusid")

	v.SetDefault("SIGNIN_DELAY", "0s")
	v.SetDefault("REGISTER_DELAY", "0s")
	v.SetDefault("PHOTO_READ_DELAY", "0s")
	v.SetDefault("SUBMIT_DELAY", "1500ms")
	v.SetDefault("TRACK_DELAY", "800ms")
	v.SetDefault("FORGOT_PASSWORD_DELAY", "1s")
	v.SetDefault("REPORT_DELAY", "2s")

	v.SetDefault("FEE_BASE", 15)
	v.SetDefault("FEE_REPLACEMENT", 20)
	v.SetDefault("FEE_SHIPPING", 5)

	v.SetDefault("PHOTO_MAX_BYTES", 5*1024*1024)
	v.SetDefault("PHOTO_PLACEHOLDER_URL", "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_NAMESPACE", "campusid:cache")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
}

// isMissingFile tolerates an absent .env, which viper reports as a plain fs error
// when SetConfigFile is used.
func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
