package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// WhatsApp gateway
	WhatsAppAPIURL string
	WhatsAppAPIKey string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	ReminderInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finbot.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_transactions"),

		WhatsAppAPIURL: getEnv("WHATSAPP_API_URL", "https://www.wasenderapi.com"),
		WhatsAppAPIKey: getEnv("WHATSAPP_API_KEY", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),

		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", time.Hour),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.WhatsAppAPIURL != "" {
		if parsedURL, err := url.Parse(c.WhatsAppAPIURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid WhatsApp API URL '%s': %v", c.WhatsAppAPIURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid WhatsApp API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.ReminderInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at most 24 hours", c.ReminderInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
