package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ListenAddr  string
	DatabaseDSN string
	RedisAddr   string

	DifyBaseURL string
	DifyAPIKey  string
	// Per-workflow Dify keys, "workflowId=key" pairs. DifyAPIKey is the
	// fallback for ids without an entry.
	DifyAPIKeys map[string]string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Workflow runs block for minutes; this pool is dedicated to them and
	// sized independently of HTTP handling.
	WorkerCount int
}

// Load reads configuration from the environment, falling back to development
// defaults.
func Load() Config {
	return Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=sciz port=5432 sslmode=disable"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		DifyBaseURL:    getEnv("DIFY_BASE_URL", "http://localhost:5001"),
		DifyAPIKey:     getEnv("DIFY_API_KEY", ""),
		DifyAPIKeys:    getMapEnv("DIFY_API_KEYS"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "sciz-attachments"),
		MinioUseSSL:    getBoolEnv("MINIO_USE_SSL", false),
		WorkerCount:    getIntEnv("WORKFLOW_WORKERS", 4),
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getMapEnv parses a comma-separated list of "name=value" pairs.
func getMapEnv(key string) map[string]string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	entries := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		name, val, found := strings.Cut(strings.TrimSpace(pair), "=")
		if found && name != "" {
			entries[name] = val
		}
	}
	return entries
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
