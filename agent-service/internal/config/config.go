package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AgentConfig struct {
	Addr                string
	ModelRunnerURL      string
	Model               string
	ModelTimeout        time.Duration
	EvaluationThreshold int
	AcceptanceThreshold int
	CatalogURL          string
	CatalogTimeout      time.Duration
	MongoURL            string
	MongoDatabase       string
	MongoCollection     string
	KafkaBrokers        []string
	KafkaTopic          string
	S3Bucket            string
	S3Prefix            string
	SideEffectTimeout   time.Duration
	FallbackSeed        int64
	LogLevel            string
	LogFormat           string
}

const (
	defaultAgentAddr           = ":7777"
	defaultModelRunnerURL      = "http://model-runner.docker.internal"
	defaultModel               = "ai/llama3.2:latest"
	defaultModelTimeout        = 60 * time.Second
	defaultEvaluationThreshold = 70
	defaultAcceptanceThreshold = 70
	defaultCatalogURL          = "http://localhost:3000"
	defaultCatalogTimeout      = 5 * time.Second
	defaultMongoDatabase       = "agent_history"
	defaultMongoCollection     = "evaluations"
	defaultKafkaTopic          = "product-evaluations"
	defaultSideEffectTimeout   = 5 * time.Second
)

func LoadAgent() (AgentConfig, error) {
	cfg := AgentConfig{
		Addr:                getEnv("AGENT_SERVICE_ADDR", portAddr(defaultAgentAddr)),
		ModelRunnerURL:      getEnv("MODEL_RUNNER_URL", defaultModelRunnerURL),
		Model:               firstNonEmpty(os.Getenv("MODEL_RUNNER_MODEL"), os.Getenv("AI_DEFAULT_MODEL"), defaultModel),
		ModelTimeout:        getDuration("MODEL_RUNNER_TIMEOUT", defaultModelTimeout),
		EvaluationThreshold: getInt("VENDOR_EVALUATION_THRESHOLD", defaultEvaluationThreshold),
		AcceptanceThreshold: getInt("ACCEPTANCE_THRESHOLD", defaultAcceptanceThreshold),
		CatalogURL:          getEnv("CATALOG_SERVICE_URL", defaultCatalogURL),
		CatalogTimeout:      getDuration("CATALOG_TIMEOUT", defaultCatalogTimeout),
		MongoURL:            os.Getenv("MONGODB_URL"),
		MongoDatabase:       getEnv("MONGODB_DATABASE", defaultMongoDatabase),
		MongoCollection:     getEnv("MONGODB_COLLECTION", defaultMongoCollection),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", defaultKafkaTopic),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		S3Prefix:            os.Getenv("S3_PREFIX"),
		SideEffectTimeout:   getDuration("SIDE_EFFECT_TIMEOUT", defaultSideEffectTimeout),
		FallbackSeed:        getInt64("FALLBACK_SEED", time.Now().UnixNano()),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}
	if cfg.EvaluationThreshold < 0 || cfg.EvaluationThreshold > 100 {
		return AgentConfig{}, fmt.Errorf("VENDOR_EVALUATION_THRESHOLD must be within 0-100, got %d", cfg.EvaluationThreshold)
	}
	if cfg.AcceptanceThreshold < 1 || cfg.AcceptanceThreshold > 100 {
		return AgentConfig{}, fmt.Errorf("ACCEPTANCE_THRESHOLD must be within 1-100, got %d", cfg.AcceptanceThreshold)
	}
	if cfg.ModelTimeout <= 0 {
		return AgentConfig{}, fmt.Errorf("MODEL_RUNNER_TIMEOUT must be positive")
	}
	return cfg, nil
}

// portAddr honours the bare PORT variable used by container platforms.
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

func getInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
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
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
