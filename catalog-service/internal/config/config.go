package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type CatalogConfig struct {
	Addr            string
	DatabaseURL     string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	RequestTimeout  time.Duration
	LogLevel        string
	LogFormat       string
}

const (
	defaultCatalogAddr     = ":3000"
	defaultMaxOpenConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultRequestTimeout  = 30 * time.Second
)

func LoadCatalog() (CatalogConfig, error) {
	cfg := CatalogConfig{
		Addr:            getEnv("CATALOG_SERVICE_ADDR", portAddr(defaultCatalogAddr)),
		DatabaseURL:     firstNonEmpty(os.Getenv("CATALOG_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		MaxOpenConns:    getInt("CATALOG_DB_MAX_OPEN_CONNS", defaultMaxOpenConns),
		ConnMaxLifetime: getDuration("CATALOG_DB_CONN_MAX_LIFETIME", defaultConnMaxLifetime),
		RequestTimeout:  getDuration("CATALOG_REQUEST_TIMEOUT", defaultRequestTimeout),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
	if cfg.DatabaseURL == "" {
		return CatalogConfig{}, fmt.Errorf("DATABASE_URL or CATALOG_DATABASE_URL required")
	}
	return cfg, nil
}

func portAddr(fallback string) string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
