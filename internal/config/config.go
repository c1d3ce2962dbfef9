package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DB        DBConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Server    ServerConfig
	OTP       OTPConfig
	Notify    NotifyConfig
	Lifecycle LifecycleConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type ServerConfig struct {
	Port            string
	SuperAdminEmail string
}

type OTPConfig struct {
	Lifetime time.Duration
}

type NotifyConfig struct {
	QueueSize int
}

type LifecycleConfig struct {
	// StrictTransitions rejects assigning or completing a request that is
	// already completed. Off by default: the portal historically allows
	// re-assignment and re-completion.
	StrictTransitions bool
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "insightdesk"),
			Password: getEnv("DB_PASSWORD", "insightdesk_secret"),
			Name:     getEnv("DB_NAME", "insightdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "InsightDesk Portal <noreply@insightdesk.local>"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			SuperAdminEmail: getEnv("SUPER_ADMIN_EMAIL", ""),
		},
		OTP: OTPConfig{
			Lifetime: getEnvAsDuration("OTP_LIFETIME", 5*time.Minute),
		},
		Notify: NotifyConfig{
			QueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 1000),
		},
		Lifecycle: LifecycleConfig{
			StrictTransitions: getEnvAsBool("LIFECYCLE_STRICT_TRANSITIONS", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
