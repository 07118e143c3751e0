package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const maxCodeLength = 43 // base-62 digits of a SHA-256 digest

type Config struct {
	Port                   string
	DatabaseURL            string
	BaseURL                string // Public base URL, prefixed to every short code
	RedisURL               string
	JWTSecret              string        // Secret key for JWT token signing
	JWTTTL                 int           // JWT token expiration time in hours
	CodeLength             int           // Length of generated short codes
	CodeMaxAttempts        int           // Attempts before a code collision is reported
	StoreTimeout           time.Duration // Deadline applied to each request's store work
	RateLimitRPS           float64       // Rate limit for general API endpoints (requests per second)
	RateLimitBurst         int           // Burst size for rate limiting
	RateLimitAuthRPS       float64       // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst     int           // Burst size for auth endpoints
	RateLimitShortenRPS    float64       // Rate limit for link creation (stricter)
	RateLimitShortenBurst  int           // Burst size for link creation
	RateLimitRedirectRPS   float64       // Rate limit for redirects (lenient)
	RateLimitRedirectBurst int           // Burst size for redirects
	QRSize                 int           // QR code PNG size in pixels
	LogFile                string        // Rotated log file, empty logs to stdout only
	SentryDSN              string
	AdminEmail             string // Bootstrap admin account, created when missing
	AdminPassword          string
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DatabaseURL:            getEnv("DATABASE_URL", "file:shortener.db?_pragma=busy_timeout(5000)"),
		BaseURL:                getEnv("BASE_URL", "http://localhost:8080"),
		RedisURL:               getEnv("REDIS_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTL:                 getEnvInt("JWT_TTL_HOURS", 24),
		CodeLength:             getEnvInt("CODE_LENGTH", 6),
		CodeMaxAttempts:        getEnvInt("CODE_MAX_ATTEMPTS", 5),
		StoreTimeout:           getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:       getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitShortenRPS:    getEnvFloat("RATE_LIMIT_SHORTEN_RPS", 2),
		RateLimitShortenBurst:  getEnvInt("RATE_LIMIT_SHORTEN_BURST", 5),
		RateLimitRedirectRPS:   getEnvFloat("RATE_LIMIT_REDIRECT_RPS", 30),
		RateLimitRedirectBurst: getEnvInt("RATE_LIMIT_REDIRECT_BURST", 60),
		QRSize:                 getEnvInt("QR_SIZE", 256),
		LogFile:                getEnv("LOG_FILE", ""),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
		AdminEmail:             getEnv("ADMIN_EMAIL", ""),
		AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.CodeLength < 1 || c.CodeLength > maxCodeLength {
		errs = append(errs, fmt.Errorf("CODE_LENGTH must be between 1 and %d, got %d", maxCodeLength, c.CodeLength))
	}
	if c.CodeMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("CODE_MAX_ATTEMPTS must be positive, got %d", c.CodeMaxAttempts))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
