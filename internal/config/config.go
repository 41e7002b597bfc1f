package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Session       SessionConfig
	Impersonation ImpersonationConfig
	Auth          AuthConfig
	Email         EmailConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	AllowOrigins string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type ImpersonationConfig struct {
	TTL          time.Duration
	AdminPrefix  string // path prefix blocked while impersonating
	UserHome     string // redirect target for blocked admin requests
	SweepExpired bool   // enable the hourly expired-row sweep
}

type AuthConfig struct {
	ResetTokenSecret string
	ResetTokenTTL    time.Duration
	MaxFailedLogins  int
	LockWindow       time.Duration
}

type EmailConfig struct {
	Enabled    bool
	APIKey     string
	FromName   string
	FromEmail  string
	ResetURL   string
	AudienceID string
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "tinychurch"),
			Password: getEnv("DB_PASSWORD", "tinychurch"),
			DBName:   getEnv("DB_NAME", "tinychurch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Session: SessionConfig{
			TTL: getDurationEnv("SESSION_TTL", 7*24*time.Hour),
		},
		Impersonation: ImpersonationConfig{
			TTL:          getDurationEnv("IMPERSONATION_TTL", time.Hour),
			AdminPrefix:  getEnv("IMPERSONATION_ADMIN_PREFIX", "/admin"),
			UserHome:     getEnv("IMPERSONATION_USER_HOME", "/dashboard"),
			SweepExpired: getBoolEnv("IMPERSONATION_SWEEP_EXPIRED", true),
		},
		Auth: AuthConfig{
			ResetTokenSecret: getEnv("AUTH_RESET_TOKEN_SECRET", ""),
			ResetTokenTTL:    getDurationEnv("AUTH_RESET_TOKEN_TTL", time.Hour),
			MaxFailedLogins:  getIntEnv("AUTH_MAX_FAILED_LOGINS", 5),
			LockWindow:       getDurationEnv("AUTH_LOCK_WINDOW", 15*time.Minute),
		},
		Email: EmailConfig{
			Enabled:    getBoolEnv("EMAIL_ENABLED", false),
			APIKey:     getEnv("RESEND_API_KEY", ""),
			FromName:   getEnv("EMAIL_FROM_NAME", "Tiny Church"),
			FromEmail:  getEnv("EMAIL_FROM_ADDRESS", ""),
			ResetURL:   getEnv("EMAIL_RESET_URL", "http://localhost:3000/protected/reset-password"),
			AudienceID: getEnv("RESEND_AUDIENCE_ID", ""),
		},
	}

	if cfg.Auth.ResetTokenSecret == "" {
		if cfg.Server.Environment == "production" {
			return nil, fmt.Errorf("AUTH_RESET_TOKEN_SECRET is required in production")
		}
		// Development fallback, long enough for the HMAC minimum
		cfg.Auth.ResetTokenSecret = "dev-only-reset-token-secret-change-me!!"
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
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

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
