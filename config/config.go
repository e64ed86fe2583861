package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BackendURL  string
	MaxRetries  int
	RetryBaseMs int

	MaxConcurrency  int
	RecentLimit     int
	CatalogPageSize int
	BrowseLimit     int
	DefaultMinDrop  float64
	BucketWidth     float64

	ExportDir  string
	ExportMode string
	ChromeBin  string

	ArchiveDriver    string
	ArchivePath      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	HTTPAddr string
	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:5000"),
		MaxRetries:  getEnvInt("MAX_RETRIES", 1),
		RetryBaseMs: getEnvInt("RETRY_BASE_MS", 500),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 4),
		RecentLimit:     getEnvInt("RECENT_LIMIT", 15),
		CatalogPageSize: getEnvInt("CATALOG_PAGE_SIZE", 200),
		BrowseLimit:     getEnvInt("BROWSE_LIMIT", 100),
		DefaultMinDrop:  getEnvFloat("DEFAULT_MIN_DROP", 10),
		BucketWidth:     getEnvFloat("BUCKET_WIDTH", 2000),

		ExportDir:  getEnv("EXPORT_DIR", "./output"),
		ExportMode: getEnv("EXPORT_MODE", "remote"),
		ChromeBin:  getEnv("CHROME_BIN", ""),

		ArchiveDriver:    getEnv("ARCHIVE_DRIVER", "sqlite"),
		ArchivePath:      getEnv("ARCHIVE_PATH", "./output/archive.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pricewatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pricewatch"),
		PostgresDB:       getEnv("POSTGRES_DB", "pricewatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8090"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// ArchiveSource returns the driver name and data source for the snapshot archive.
func (c *Config) ArchiveSource() (driver, source string) {
	if c.ArchiveDriver == "postgres" {
		return "postgres", c.DSN()
	}
	return "sqlite", c.ArchivePath
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
