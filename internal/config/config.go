package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("TAVILY_API_KEY is required")
)

type Config struct {
	Tavily   TavilyConfig
	Database DatabaseConfig
	Log      LogConfig
	Cache    CacheConfig
	Scan     ScanConfig
}

type TavilyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig - хранилище истории тредов. URL пустой = история выключена.
type DatabaseConfig struct {
	URL string
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	TTL time.Duration
}

type ScanConfig struct {
	Days       int
	MaxResults int
	Timeout    time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Tavily: TavilyConfig{
			APIKey:  os.Getenv("TAVILY_API_KEY"),
			BaseURL: getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
			Timeout: time.Duration(getEnvIntOrDefault("TAVILY_TIMEOUT_SEC", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		Scan: ScanConfig{
			Days:       getEnvIntOrDefault("SCAN_DAYS", 30),
			MaxResults: getEnvIntOrDefault("SCAN_MAX_RESULTS", 50),
			Timeout:    time.Duration(getEnvIntOrDefault("SCAN_TIMEOUT_SEC", 60)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tavily.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
