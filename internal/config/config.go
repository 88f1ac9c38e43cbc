package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// SMTPConfig holds mail transport settings for the notification sender.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	// Admin inbox copied on booking and KYC events.
	AdminEmail string
}

// LoadSMTP reads mail settings from the environment.
func LoadSMTP() SMTPConfig {
	return SMTPConfig{
		Host:       GetEnv("SMTP_HOST", "localhost"),
		Port:       GetIntEnv("SMTP_PORT", 587),
		User:       GetEnv("SMTP_USER", ""),
		Pass:       GetEnv("SMTP_PASS", ""),
		From:       GetEnv("SMTP_FROM", "no-reply@tutorlink.local"),
		AdminEmail: GetEnv("ADMIN_EMAIL", "admin@tutorlink.local"),
	}
}
