// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Kafka     KafkaConfig
	Sheets    SheetsConfig
	Recaptcha RecaptchaConfig
	Email     EmailConfig
	Fees      FeeConfig
	Telemetry TelemetryConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	Timezone    string
	SeedData    bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// SessionConfig selects where per-client session slots (cart, campus selection) live
type SessionConfig struct {
	Store     string // "redis" or "pebble"
	PebbleDir string
	TTL       time.Duration
	CookieTTL int
}

// JWTConfig contains the shared secret used to verify identity-provider tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// KafkaConfig contains order event stream configuration
type KafkaConfig struct {
	Brokers      []string
	OrderTopic   string
	WriteTimeout time.Duration
}

// SheetsConfig contains spreadsheet ledger configuration
type SheetsConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RelayInterval time.Duration
	RelayBatch    int
	MaxAttempts   int
}

// RecaptchaConfig contains reCAPTCHA verification configuration
type RecaptchaConfig struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

// EmailConfig contains customer notification configuration
type EmailConfig struct {
	Provider     string // "", "smtp" or "resend"
	FromEmail    string
	FromName     string
	ReplyTo      string
	SiteURL      string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	APIKey       string
	APIURL       string
	Timeout      time.Duration
	QueueSize    int
}

// FeeConfig contains the hard-coded fallback payee and delivery charge
type FeeConfig struct {
	PerPersonCharge float64
	PayeeName       string
	BankName        string
	AccountNumber   string
	CacheTTL        time.Duration
}

// TelemetryConfig contains tracing configuration
type TelemetryConfig struct {
	OTLPEndpoint string
	Stdout       bool
	ServiceName  string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Campus Delivery Backend"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timezone:    getEnv("APP_TIMEZONE", "Asia/Karachi"),
			SeedData:    getEnvAsBool("APP_SEED_DATA", true),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "campus_delivery"),
			User:         getEnv("DB_USER", "campus_user"),
			Password:     getEnv("DB_PASSWORD", "campus_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			Store:     getEnv("SESSION_STORE", "redis"),
			PebbleDir: getEnv("SESSION_PEBBLE_DIR", "data/sessions"),
			TTL:       getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
			CookieTTL: getEnvAsInt("SESSION_COOKIE_TTL", 30*86400),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "local-development-secret-change-me-please"),
			Issuer: getEnv("JWT_ISSUER", ""),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvAsSlice("KAFKA_BROKERS", []string{}),
			OrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "campus.orders"),
			WriteTimeout: getEnvAsDuration("KAFKA_WRITE_TIMEOUT", 5*time.Second),
		},
		Sheets: SheetsConfig{
			BaseURL:       getEnv("SHEETS_BASE_URL", ""),
			APIKey:        getEnv("SHEETS_API_KEY", ""),
			Timeout:       getEnvAsDuration("SHEETS_TIMEOUT", 10*time.Second),
			RelayInterval: getEnvAsDuration("SHEETS_RELAY_INTERVAL", 15*time.Second),
			RelayBatch:    getEnvAsInt("SHEETS_RELAY_BATCH", 20),
			MaxAttempts:   getEnvAsInt("SHEETS_MAX_ATTEMPTS", 10),
		},
		Recaptcha: RecaptchaConfig{
			Secret:    getEnv("RECAPTCHA_SECRET", ""),
			VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			Timeout:   getEnvAsDuration("RECAPTCHA_TIMEOUT", 5*time.Second),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", ""),
			FromEmail:    getEnv("EMAIL_FROM", "orders@campus-delivery.local"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Campus Delivery"),
			ReplyTo:      getEnv("EMAIL_REPLY_TO", ""),
			SiteURL:      getEnv("EMAIL_SITE_URL", "http://localhost:5173"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
			APIKey:       getEnv("EMAIL_API_KEY", ""),
			APIURL:       getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
			Timeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
			QueueSize:    getEnvAsInt("EMAIL_QUEUE_SIZE", 100),
		},
		Fees: FeeConfig{
			PerPersonCharge: getEnvAsFloat("DEFAULT_DELIVERY_FEE", 150),
			PayeeName:       getEnv("DEFAULT_PAYEE_NAME", "Maratib Ali"),
			BankName:        getEnv("DEFAULT_BANK_NAME", "SadaPay"),
			AccountNumber:   getEnv("DEFAULT_ACCOUNT_NUMBER", "03330374616"),
			CacheTTL:        getEnvAsDuration("FEE_CACHE_TTL", 5*time.Minute),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Stdout:       getEnvAsBool("OTEL_STDOUT", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "campus-delivery-api"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	switch c.Session.Store {
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
	case "pebble":
		if c.Session.PebbleDir == "" {
			return fmt.Errorf("SESSION_PEBBLE_DIR is required when SESSION_STORE=pebble")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be redis or pebble, got %q", c.Session.Store)
	}

	if c.Fees.PerPersonCharge <= 0 {
		return fmt.Errorf("DEFAULT_DELIVERY_FEE must be positive")
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	switch c.Email.Provider {
	case "":
	case "smtp":
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER=smtp")
		}
	case "resend":
		if c.Email.APIKey == "" {
			return fmt.Errorf("EMAIL_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be smtp or resend, got %q", c.Email.Provider)
	}

	if c.IsProduction() && c.Recaptcha.Secret == "" {
		return fmt.Errorf("RECAPTCHA_SECRET is required in production")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Location returns the campus time zone used for opening hours and day buckets
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
