// Package config loads the application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const envFile = ".env"

// Config holds every runtime setting of the accounts server.
type Config struct {
	Port        string
	LogLevel    string
	Environment string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	FrontendURL string

	MailgunAPIKey string
	MailgunDomain string
	MailFrom      string

	// ResetTokenStore selects where reset tokens live: "postgres" or "redis".
	ResetTokenStore string
	RedisAddr       string
	RedisPassword   string
}

// Load reads the .env file if present and assembles the configuration.
// Database settings are mandatory, everything else has a default.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          os.Getenv("DB_PORT"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASS"),
		DBName:          os.Getenv("DB_NAME"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		MailgunAPIKey:   os.Getenv("MAILGUN_API_KEY"),
		MailgunDomain:   getEnv("MAILGUN_DOMAIN", "mail.taskmanagement.app"),
		MailFrom:        getEnv("MAIL_FROM", "TaskManagement <no-reply@mail.taskmanagement.app>"),
		ResetTokenStore: getEnv("RESET_TOKEN_STORE", "postgres"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		return nil, errors.New("database environment variables not set")
	}

	if cfg.ResetTokenStore != "postgres" && cfg.ResetTokenStore != "redis" {
		return nil, fmt.Errorf("unsupported reset token store: %s", cfg.ResetTokenStore)
	}

	return cfg, nil
}

// DatabaseDSN renders the pgx connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
