package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Booking   BookingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	Sentry    SentryConfig
	Tracing   TracingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
	MaxBodyBytes int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	MinConns      int
	RunMigrations bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	ReadTimeout  int // in seconds
	WriteTimeout int // in seconds
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// StorageConfig holds S3-compatible document storage configuration
type StorageConfig struct {
	Enabled       bool
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BaseURL       string
	MaxFileSizeMB int
}

// BookingConfig holds seat booking rules
type BookingConfig struct {
	// EditCutoffMinutes closes seat edits this many minutes before departure. 0 disables the cutoff.
	EditCutoffMinutes int
	ConflictRetries   int
	CatalogTimezone   string
}

// CacheConfig holds aggregate cache tuning
type CacheConfig struct {
	AggregateTTLSeconds     int
	BreakerIntervalSeconds  int
	BreakerTimeoutSeconds   int
	BreakerFailureThreshold int
	BreakerSuccessThreshold int
}

// AdminConfig holds the bootstrap administrator account
type AdminConfig struct {
	Phone    string
	Password string
	Name     string
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
			MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 12<<20)),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "seatshare"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 5),
			RunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 20),
			ReadTimeout:  getEnvAsInt("REDIS_READ_TIMEOUT", 3),
			WriteTimeout: getEnvAsInt("REDIS_WRITE_TIMEOUT", 3),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", defaultJWTSecret),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		Storage: StorageConfig{
			Enabled:       getEnvAsBool("STORAGE_ENABLED", false),
			Bucket:        getEnv("STORAGE_BUCKET", "seatshare-documents"),
			Region:        getEnv("STORAGE_REGION", "ap-south-1"),
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			BaseURL:       getEnv("STORAGE_BASE_URL", ""),
			MaxFileSizeMB: getEnvAsInt("STORAGE_MAX_FILE_SIZE_MB", 5),
		},
		Booking: BookingConfig{
			EditCutoffMinutes: getEnvAsInt("BOOKING_EDIT_CUTOFF_MINUTES", 0),
			ConflictRetries:   getEnvAsInt("BOOKING_CONFLICT_RETRIES", 3),
			CatalogTimezone:   getEnv("CATALOG_TIMEZONE", "Asia/Kolkata"),
		},
		Cache: CacheConfig{
			AggregateTTLSeconds:     getEnvAsInt("AGGREGATE_CACHE_TTL_SECONDS", 300),
			BreakerIntervalSeconds:  getEnvAsInt("CACHE_BREAKER_INTERVAL_SECONDS", 60),
			BreakerTimeoutSeconds:   getEnvAsInt("CACHE_BREAKER_TIMEOUT_SECONDS", 30),
			BreakerFailureThreshold: getEnvAsInt("CACHE_BREAKER_FAILURE_THRESHOLD", 5),
			BreakerSuccessThreshold: getEnvAsInt("CACHE_BREAKER_SUCCESS_THRESHOLD", 1),
		},
		RateLimit: loadRateLimitConfig(),
		Admin: AdminConfig{
			Phone:    getEnv("ADMIN_PHONE", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			TracesSampleRate: getEnvAsFloat("SENTRY_TRACES_SAMPLE_RATE", 0.1),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.Server.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Booking.ConflictRetries < 1 {
		errs = append(errs, errors.New("BOOKING_CONFLICT_RETRIES must be at least 1"))
	}
	if c.Booking.EditCutoffMinutes < 0 {
		errs = append(errs, errors.New("BOOKING_EDIT_CUTOFF_MINUTES must not be negative"))
	}
	if _, err := c.Booking.Location(); err != nil {
		errs = append(errs, fmt.Errorf("CATALOG_TIMEZONE: %w", err))
	}
	if (c.Admin.Phone == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("ADMIN_PHONE and ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as migrate expects
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ReadTimeoutDuration returns the read timeout, defaulting to 3s
func (c *RedisConfig) ReadTimeoutDuration() time.Duration {
	if c.ReadTimeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout, defaulting to 3s
func (c *RedisConfig) WriteTimeoutDuration() time.Duration {
	if c.WriteTimeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.WriteTimeout) * time.Second
}

// EditCutoff returns the edit cutoff as a duration
func (c BookingConfig) EditCutoff() time.Duration {
	return time.Duration(c.EditCutoffMinutes) * time.Minute
}

// Location resolves the catalog timezone used by time-of-day ride filters
func (c BookingConfig) Location() (*time.Location, error) {
	if c.CatalogTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.CatalogTimezone)
}

// AggregateTTL returns the aggregate cache TTL
func (c CacheConfig) AggregateTTL() time.Duration {
	return time.Duration(c.AggregateTTLSeconds) * time.Second
}

// AllowedOrigins splits the CORS origin list
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
