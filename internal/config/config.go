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

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

// Mail providers.
const (
	MailProviderSMTP   = "smtp"
	MailProviderSES    = "ses"
	MailProviderResend = "resend"
	MailProviderNoop   = "noop"
)

// Mail queue backends.
const (
	MailQueueMemory = "memory"
	MailQueueRedis  = "redis"
)

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET (or JWT) must be set")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mail     MailConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI                   string
	Database              string
	ConnectTimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	RefreshTokenTTLMinutes  int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// MailConfig configures outbound email and its delivery queue.
type MailConfig struct {
	Provider            string
	Host                string
	Port                int
	Secure              bool
	User                string
	Password            string
	From                string
	FromName            string
	SESRegion           string
	SESAccessKeyID      string
	SESSecretAccessKey  string
	ResendAPIKey        string
	Queue               string
	QueueKey            string
	Workers             int
	MaxAttempts         int
	RetryBackoffSeconds int
	RatePerSecond       float64
	SendTimeoutSeconds  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	mailUser := os.Getenv("EMAIL_USER")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "event-ticketing-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  firstEnv("4000", "APP_PORT", "PORT"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Mongo: MongoConfig{
			URI:                   os.Getenv("MONGO_URI"),
			Database:              getEnv("MONGO_DATABASE", "event_ticketing"),
			ConnectTimeoutSeconds: getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               firstEnv("", "AUTH_JWT_SECRET", "JWT"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLMinutes:  getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 7*24*60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 60),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Mail: MailConfig{
			Provider:            strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderNoop)),
			Host:                os.Getenv("EMAIL_HOST"),
			Port:                getEnvAsInt("EMAIL_PORT", 587),
			Secure:              getEnvAsBool("EMAIL_SECURE", false),
			User:                mailUser,
			Password:            os.Getenv("EMAIL_PASS"),
			From:                getEnv("MAIL_FROM", mailUser),
			FromName:            os.Getenv("MAIL_FROM_NAME"),
			SESRegion:           getEnv("MAIL_SES_REGION", "us-east-1"),
			SESAccessKeyID:      os.Getenv("MAIL_SES_ACCESS_KEY_ID"),
			SESSecretAccessKey:  os.Getenv("MAIL_SES_SECRET_ACCESS_KEY"),
			ResendAPIKey:        os.Getenv("MAIL_RESEND_API_KEY"),
			Queue:               strings.ToLower(getEnv("MAIL_QUEUE", MailQueueMemory)),
			QueueKey:            getEnv("MAIL_QUEUE_KEY", "mail:jobs"),
			Workers:             getEnvAsInt("MAIL_WORKERS", 2),
			MaxAttempts:         getEnvAsInt("MAIL_MAX_ATTEMPTS", 3),
			RetryBackoffSeconds: getEnvAsInt("MAIL_RETRY_BACKOFF_SECONDS", 5),
			RatePerSecond:       getEnvAsFloat("MAIL_RATE_PER_SECOND", 5),
			SendTimeoutSeconds:  getEnvAsInt("MAIL_SEND_TIMEOUT_SECONDS", 15),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that would otherwise fail at startup.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Storage.Driver {
	case StoragePostgres, StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Mail.Provider {
	case MailProviderSMTP, MailProviderSES, MailProviderResend, MailProviderNoop:
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}
	switch c.Mail.Queue {
	case MailQueueMemory:
	case MailQueueRedis:
		if !c.Redis.Enabled {
			return errors.New("MAIL_QUEUE=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown MAIL_QUEUE %q", c.Mail.Queue)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of access tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the lifetime of refresh tokens.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// PasswordResetTTL returns how long an emailed reset code stays valid.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

// ConnectTimeout returns the Mongo connection timeout.
func (m MongoConfig) ConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between delivery attempts.
func (m MailConfig) RetryBackoff() time.Duration {
	return time.Duration(m.RetryBackoffSeconds) * time.Second
}

// SendTimeout returns the deadline applied to a single delivery attempt.
func (m MailConfig) SendTimeout() time.Duration {
	return time.Duration(m.SendTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
