package cmd

import (
	"fmt"
	"log/slog"
	"strings"
)

type Config struct {
	HTTPPort         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSslMode        string
	LogLevel         string
	RabbitMQURL      string
	RabbitMQExchange string
	PolicyFile       string
	TaxRatePct       string
	OverdueSchedule  string
}

// DSN is the PostgreSQL connection string for the gorm driver.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// EventsEnabled reports whether status changes are published to RabbitMQ.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// SlogLevel maps LOG_LEVEL to a slog level; anything unknown is info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
