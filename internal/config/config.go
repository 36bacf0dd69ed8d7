package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // postgres:// URL or SQLite file path
	TablePrefix string
	CORSOrigins string
	// Auth - an empty JWKSURL runs the server in local single-user mode
	JWKSURL     string
	LocalUserID string
	// Filesystem
	DefaultWorkspace string
	TreeMode         string // lenient or strict
	// Logging
	LogDir      string // empty disables the log file
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", defaultDatabasePath()),
		TablePrefix:      getTablePrefix(env),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:          getEnv("JWKS_URL", ""),
		LocalUserID:      getEnv("LOCAL_USER_ID", "local"),
		DefaultWorkspace: getEnv("DEFAULT_WORKSPACE", "default"),
		TreeMode:         getEnv("TREE_MODE", "lenient"),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
	}
}

// UsesPostgres reports whether DatabaseURL points at a PostgreSQL server
func (c *Config) UsesPostgres() bool {
	return IsPostgresURL(c.DatabaseURL)
}

// LocalMode reports whether requests are attributed to LocalUserID instead of a verified token
func (c *Config) LocalMode() bool {
	return c.JWKSURL == ""
}

// IsPostgresURL reports whether dsn is a PostgreSQL connection URL
func IsPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// defaultDatabasePath returns ~/.filebox/data.db, or a relative path when there is no home
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".filebox", "data.db")
	}
	return filepath.Join(home, ".filebox", "data.db")
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
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
