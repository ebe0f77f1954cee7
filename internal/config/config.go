// Package config loads and validates configuration at startup.
// Fail-fast: if a required value is missing, the process exits with an error.
//
// Values come from environment variables, optionally layered over a YAML
// file named by CONFIG_FILE. Keys in the file are the lower-case variable
// names (tracker_port, database_url, ...).
package config

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration for the tracker service.
type Config struct {
	Port            string
	GRPCPort        string
	DatabaseDriver  string
	DatabaseURL     string
	RedisURL        string
	SessionCookie   string
	TrustUserHeader bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("tracker_port", "8082")
	v.SetDefault("grpc_port", "")
	v.SetDefault("database_driver", DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("session_cookie", "next-auth.session-token")
	v.SetDefault("trust_user_header", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// Load reads the environment (and CONFIG_FILE, when set) and returns a
// validated Config.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("tracker_port"),
		GRPCPort:        v.GetString("grpc_port"),
		DatabaseDriver:  strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:     v.GetString("database_url"),
		RedisURL:        v.GetString("redis_url"),
		SessionCookie:   v.GetString("session_cookie"),
		TrustUserHeader: v.GetBool("trust_user_header"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DatabaseDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not one of postgres, sqlite, mysql, memory", c.DatabaseDriver)
	}

	if c.RedisURL == "" && !c.TrustUserHeader {
		return fmt.Errorf("no authentication method: set REDIS_URL for sessions or TRUST_USER_HEADER")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT %q must be text or json", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// ConfigureLogging applies the level and format to the standard logrus
// logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
