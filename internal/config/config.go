package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevSeedPassword is only ever used when APP_ENV is development and
	// SEED_PASSWORD is unset.
	DevSeedPassword = "password123"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	App struct {
		ENV string
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Path     string
		LogSQL   bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Metrics struct {
		Addr string
	}

	Seed struct {
		Password        string
		HashCost        int
		AllowProduction bool
		MoodsAlways     bool
		DedupMessages   bool
	}

	Recommend struct {
		DefaultLimit int
		MaxLimit     int
		CacheTTL     time.Duration
	}
}

// New builds the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "friends")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	cfg.App.ENV = strings.ToLower(getEnvDefault("APP_ENV", EnvDevelopment))

	// Database
	cfg.DB.Driver = normalizeDriver(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.LogSQL = isTruthy(os.Getenv("DB_LOG_SQL"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" && cfg.DB.Driver == "mysql" {
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	cfg.Metrics.Addr = getEnvDefault("METRICS_ADDR", ":9090")

	// Seed credentials: a shared demo password must never leak into
	// non-development environments by default.
	cfg.Seed.Password = strings.TrimSpace(os.Getenv("SEED_PASSWORD"))
	if cfg.Seed.Password == "" && cfg.App.ENV == EnvDevelopment {
		cfg.Seed.Password = DevSeedPassword
	}
	cfg.Seed.HashCost = getEnvInt("SEED_HASH_COST", 10)
	cfg.Seed.AllowProduction = isTruthy(os.Getenv("SEED_ALLOW_PRODUCTION"))
	cfg.Seed.MoodsAlways = isTruthy(os.Getenv("SEED_MOODS_ALWAYS"))
	cfg.Seed.DedupMessages = isTruthy(os.Getenv("SEED_DEDUP_MESSAGES"))

	cfg.Recommend.DefaultLimit = getEnvInt("RECOMMEND_DEFAULT_LIMIT", 10)
	cfg.Recommend.MaxLimit = getEnvInt("RECOMMEND_MAX_LIMIT", 50)
	cfg.Recommend.CacheTTL = getEnvDuration("RECOMMEND_CACHE_TTL", time.Minute)
	cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit = clampLimits(cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit)

	return cfg
}

// ValidateSeed reports whether the seed loader may run with this config.
func (c *Config) ValidateSeed() error {
	if c.App.ENV == EnvProduction && !c.Seed.AllowProduction {
		return fmt.Errorf("refusing to seed demo data in %s (set SEED_ALLOW_PRODUCTION=true to override)", c.App.ENV)
	}
	if c.Seed.Password == "" {
		return fmt.Errorf("SEED_PASSWORD is required when APP_ENV=%s", c.App.ENV)
	}
	return nil
}

// normalizeDriver maps accepted aliases onto mysql, postgres or sqlite.
func normalizeDriver(driver string) string {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "postgresql":
		return "postgres"
	case "sqlite3":
		return "sqlite"
	default:
		return d
	}
}

// clampLimits keeps both limits at least 1 and def <= max.
func clampLimits(def, max int) (int, int) {
	if max < 1 {
		max = 1
	}
	if def < 1 {
		def = 1
	}
	if def > max {
		def = max
	}
	return def, max
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
		cfg.DB.User = getEnvDefault("DB_USER", "postgres")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "postgres")
		cfg.DB.Name = getEnvDefault("DB_NAME", "moodfriends")
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		cfg.DB.Path = getEnvDefault("DB_PATH", "moodfriends.db")
		return cfg.DB.Path
	default:
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "moodfriends")
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
