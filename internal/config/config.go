package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the service depends on. Values come from the
// environment with sensible defaults for a local single-instance deployment.
type Config struct {
	Port string

	// Model endpoint.
	ModelName    string
	ModelTimeout time.Duration

	// Retry policy for the extraction pipelines.
	RetryAttempts int
	RetryDelay    time.Duration

	// Chat session lifecycle.
	SessionTimeout time.Duration
	SweepInterval  time.Duration
	// MaxMessages caps a session's history: one system message plus the most
	// recent conversational messages.
	MaxMessages int

	// BigQuery-backed transaction reader and insight sink.
	GCPProjectID string
	Dataset      string

	// Optional raw model-output archive. Disabled when empty.
	ArchiveBucket string

	// Optional Notion summary export.
	NotionToken string
	NotionDBID  string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		ModelName:    getEnv("INFLOW_MODEL_NAME", "gemini-2.5-flash"),
		ModelTimeout: getDurationEnv("INFLOW_MODEL_TIMEOUT", 60*time.Second),

		RetryAttempts: getIntEnv("INFLOW_RETRY_ATTEMPTS", 3),
		RetryDelay:    getDurationEnv("INFLOW_RETRY_DELAY", time.Second),

		SessionTimeout: getDurationEnv("INFLOW_SESSION_TIMEOUT", 30*time.Minute),
		SweepInterval:  getDurationEnv("INFLOW_SWEEP_INTERVAL", 5*time.Minute),
		MaxMessages:    getIntEnv("INFLOW_MAX_MESSAGES", 21),

		GCPProjectID: getEnv("INFLOW_GCP_PROJECT", ""),
		Dataset:      getEnv("INFLOW_BQ_DATASET", "inflow"),

		ArchiveBucket: getEnv("INFLOW_ARCHIVE_BUCKET", ""),

		NotionToken: getEnv("NOTION_TOKEN", ""),
		NotionDBID:  getEnv("NOTION_DB_ID", ""),
	}
}
