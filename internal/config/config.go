package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Scopus  ScopusConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type ScopusConfig struct {
	Cookie      string
	Headless    bool
	Timeout     time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8000),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://localhost:*"}),
		},
		Scopus: ScopusConfig{
			Cookie:      getEnv("SCOPUS_COOKIE", ""),
			Headless:    !strings.EqualFold(strings.TrimSpace(getEnv("SCOPUS_HEADLESS", "true")), "false"),
			Timeout:     time.Duration(getEnvInt("SCOPUS_TIMEOUT", 30)) * time.Second,
			MinInterval: getEnvDuration("SCOPUS_MIN_INTERVAL", 0),
			MaxInterval: getEnvDuration("SCOPUS_MAX_INTERVAL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Scopus.MaxInterval < cfg.Scopus.MinInterval {
		cfg.Scopus.MaxInterval = cfg.Scopus.MinInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scopus.Timeout <= 0 {
		return fmt.Errorf("SCOPUS_TIMEOUT must be positive")
	}

	if c.Scopus.MinInterval < 0 {
		return fmt.Errorf("SCOPUS_MIN_INTERVAL cannot be negative")
	}

	if c.Scopus.MinInterval > c.Scopus.MaxInterval {
		return fmt.Errorf("SCOPUS_MIN_INTERVAL cannot be greater than SCOPUS_MAX_INTERVAL")
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
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

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
