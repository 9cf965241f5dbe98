package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type ChatbotConfig struct {
	Addr           string
	DatabaseURL    string
	MaxOpenConns   int
	ModelRunnerURL string
	Model          string
	ModelTimeout   time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

const (
	defaultChatbotAddr    = ":8082"
	defaultModel          = "ai/llama3.2:latest"
	defaultModelRunnerURL = "http://model-runner.docker.internal/engines/v1"
	defaultModelTimeout   = 30 * time.Second
	defaultRequestTimeout = 60 * time.Second
	defaultMaxOpenConns   = 10
)

func LoadChatbot() (ChatbotConfig, error) {
	cfg := ChatbotConfig{
		Addr:           getEnv("CHATBOT_SERVICE_ADDR", portAddr(defaultChatbotAddr)),
		DatabaseURL:    firstNonEmpty(os.Getenv("CHATBOT_DATABASE_URL"), os.Getenv("DATABASE_URL"), postgresURLFromParts()),
		MaxOpenConns:   getInt("CHATBOT_DB_MAX_OPEN_CONNS", defaultMaxOpenConns),
		ModelRunnerURL: getEnv("MODEL_RUNNER_URL", defaultModelRunnerURL),
		Model:          firstNonEmpty(os.Getenv("MODEL_RUNNER_MODEL"), os.Getenv("AI_MODEL"), defaultModel),
		ModelTimeout:   getDuration("MODEL_RUNNER_TIMEOUT", defaultModelTimeout),
		RequestTimeout: getDuration("CHATBOT_REQUEST_TIMEOUT", defaultRequestTimeout),
		AllowedOrigins: splitList(getEnv("CHATBOT_ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
	if cfg.DatabaseURL == "" {
		return ChatbotConfig{}, fmt.Errorf("DATABASE_URL or POSTGRES_HOST/POSTGRES_DB required")
	}
	return cfg, nil
}

// postgresURLFromParts assembles a DSN from the discrete POSTGRES_* variables
// used by the compose setup.
func postgresURLFromParts() string {
	host := os.Getenv("POSTGRES_HOST")
	db := os.Getenv("POSTGRES_DB")
	if host == "" || db == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, getEnv("POSTGRES_PORT", "5432")),
		Path:     "/" + db,
		RawQuery: "sslmode=" + getEnv("POSTGRES_SSLMODE", "disable"),
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		if pw := os.Getenv("POSTGRES_PASSWORD"); pw != "" {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
