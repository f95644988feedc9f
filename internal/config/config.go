package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Captcha   CaptchaConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DatabaseConfig describes the waitlist store. The service degrades
// gracefully when URL is empty: submissions are refused with 503 until
// an operator configures storage.
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// Configured reports whether a database connection can be attempted
func (c DatabaseConfig) Configured() bool {
	return c.URL != ""
}

// CaptchaConfig holds the hCaptcha settings. SiteKey is the public
// client-side key, not a server secret. An empty SecretKey disables
// server-side verification entirely.
type CaptchaConfig struct {
	SecretKey string
	SiteKey   string
	VerifyURL string
}

// Enabled reports whether server-side captcha verification runs
func (c CaptchaConfig) Enabled() bool {
	return c.SecretKey != ""
}

// EmailConfig holds the confirmation email settings. Both the region
// and a verified sender address must be present for sends to happen.
type EmailConfig struct {
	AWSRegion     string
	FromAddress   string
	TestRecipient string
}

// Enabled reports whether confirmation emails are sent
func (c EmailConfig) Enabled() bool {
	return c.AWSRegion != "" && c.FromAddress != ""
}

type RateLimitConfig struct {
	WaitlistMaxRequests int
	WaitlistWindow      time.Duration
	DefaultMaxRequests  int
	DefaultWindow       time.Duration
	SweepInterval       time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Captcha: CaptchaConfig{
			SecretKey: getEnv("HCAPTCHA_SECRET_KEY", ""),
			SiteKey:   getEnv("HCAPTCHA_SITE_KEY", ""),
			VerifyURL: getEnv("HCAPTCHA_VERIFY_URL", "https://hcaptcha.com/siteverify"),
		},
		Email: EmailConfig{
			AWSRegion:     getEnv("AWS_REGION", ""),
			FromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
			TestRecipient: getEnv("EMAIL_TEST_RECIPIENT", ""),
		},
		RateLimit: RateLimitConfig{
			WaitlistMaxRequests: getEnvAsInt("RATE_LIMIT_WAITLIST_MAX", 5),
			WaitlistWindow:      getEnvAsDuration("RATE_LIMIT_WAITLIST_WINDOW", time.Minute),
			DefaultMaxRequests:  getEnvAsInt("RATE_LIMIT_DEFAULT_MAX", 30),
			DefaultWindow:       getEnvAsDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
			SweepInterval:       getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
	}

	if cfg.RateLimit.WaitlistMaxRequests <= 0 || cfg.RateLimit.DefaultMaxRequests <= 0 {
		return nil, fmt.Errorf("rate limit max requests must be positive")
	}
	if cfg.RateLimit.WaitlistWindow <= 0 || cfg.RateLimit.DefaultWindow <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow local frontend dev servers
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
