package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the environment settings of a run. Command-line flags take
// precedence over these values.
type Config struct {
	PolicyFile   string
	WorkerCount  int
	SheetName    string
	SnapshotPath string
	PendingDir   string
	DatabaseURL  string
	MetricsFile  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		PolicyFile:   getEnv("POLICY_FILE", ""),
		WorkerCount:  getEnvInt("WORKER_COUNT", 8),
		SheetName:    getEnv("SHEET_NAME", "cajeros"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "archivos/dataVersion.json"),
		PendingDir:   getEnv("PENDING_DIR", "."),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		MetricsFile:  getEnv("METRICS_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}
