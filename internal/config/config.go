package config

import (
	"os"
	"strconv"
)

// Storage backends understood by repository.OpenKVStore
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Persistence
	StorageBackend string
	StateDir       string
	BackupCount    int
	DatabaseURL    string
	TablePrefix    string
	SnapshotKey    string
	// Auth (disabled when empty)
	JWKSURL string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Runs the VFS consistency check after every mutation
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageFile),
		StateDir:       getEnv("STATE_DIR", "./data"),
		BackupCount:    getEnvInt("BACKUP_COUNT", 5),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		TablePrefix:    getTablePrefix(env),
		SnapshotKey:    getEnv("SNAPSHOT_KEY", DefaultSnapshotKey),
		JWKSURL:        getEnv("JWKS_URL", ""),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
