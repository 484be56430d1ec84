package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Catalog  CatalogConfig
	Cart     CartConfig
	Scope    ScopeConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type CatalogConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	WarmCron string // empty disables warm-up
}

type CartConfig struct {
	StorageKey    string
	FallbackPrice float64
	DeliveryFee   float64
	WriteTimeout  time.Duration
	LoadTimeout   time.Duration
	IdleEviction  time.Duration
	EvictionCron  string
	RecordTTL     time.Duration // redis only, 0 keeps records forever
}

type ScopeConfig struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

type StorageConfig struct {
	Driver string // memory, redis, postgres, sqlite, s3
}

type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible stores
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Catalog: CatalogConfig{
			BaseURL:  getEnv("CATALOG_BASE_URL", "https://api.escuelajs.co/api/v1"),
			Timeout:  parseDuration(getEnv("CATALOG_TIMEOUT", "10s"), 10*time.Second),
			CacheTTL: parseDuration(getEnv("CATALOG_CACHE_TTL", "300s"), 300*time.Second),
			WarmCron: getEnv("CATALOG_WARM_CRON", "@every 5m"),
		},
		Cart: CartConfig{
			StorageKey:    getEnv("CART_STORAGE_KEY", "kicks_cart"),
			FallbackPrice: parseFloat(getEnv("CART_FALLBACK_PRICE", "130"), 130),
			DeliveryFee:   parseFloat(getEnv("CART_DELIVERY_FEE", "6.99"), 6.99),
			WriteTimeout:  parseDuration(getEnv("CART_WRITE_TIMEOUT", "3s"), 3*time.Second),
			LoadTimeout:   parseDuration(getEnv("CART_LOAD_TIMEOUT", "3s"), 3*time.Second),
			IdleEviction:  parseDuration(getEnv("CART_IDLE_EVICTION", "30m"), 30*time.Minute),
			EvictionCron:  getEnv("CART_EVICTION_CRON", "@every 10m"),
			RecordTTL:     parseDuration(getEnv("CART_RECORD_TTL", "0s"), 0),
		},
		Scope: ScopeConfig{
			CookieName: getEnv("SCOPE_COOKIE_NAME", "kicks_scope"),
			Secret:     getEnv("SCOPE_SECRET", "change-me-scope-secret"),
			MaxAge:     parseDuration(getEnv("SCOPE_MAX_AGE", "8760h"), 365*24*time.Hour),
			Secure:     getEnv("SCOPE_COOKIE_SECURE", "false") == "true",
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "memory"),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "kicks"),
			Password:   getEnv("DB_PASSWORD", "kicks"),
			DBName:     getEnv("DB_NAME", "kicks"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "kicks.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "kicks-carts"),
			Prefix:          getEnv("AWS_S3_PREFIX", "carts/"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres", "sqlite", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Cart.StorageKey == "" {
		return fmt.Errorf("CART_STORAGE_KEY must not be empty")
	}
	if c.Scope.Secret == "" {
		return fmt.Errorf("SCOPE_SECRET must not be empty")
	}
	return nil
}

// LogLevel falls back to debug in development and info elsewhere.
func (c *Config) LogLevel() string {
	if c.Log.Level != "" {
		return c.Log.Level
	}
	if c.Server.Environment == "development" {
		return "debug"
	}
	return "info"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
