package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DatabaseURL      string

	Port           int
	SecretKey      string
	AllowedOrigins []string
	Environment    string
	LogLevel       string

	RedisURL string
	CacheTTL time.Duration

	MaxUploadMB    int
	ExportWorkers  int
	ChromeBin      string
	PDFMaxAttempts int

	PBIReportURL string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "sales"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "sales123"),
		PostgresDB:       getEnv("POSTGRES_DB", "sales_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),

		Port:           getEnvInt("PORT", 5000),
		SecretKey:      getEnv("SECRET_KEY", "dev-secret-key-change"),
		AllowedOrigins: getEnvList("CORS_ORIGINS", "http://localhost:5000,http://localhost:3000"),
		Environment:    getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 32),
		ExportWorkers:  getEnvInt("EXPORT_WORKERS", 3),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		PDFMaxAttempts: getEnvInt("PDF_MAX_ATTEMPTS", 2),

		PBIReportURL: getEnv("PBI_REPORT_URL", ""),
	}
}

// DSN returns the PostgreSQL connection string. DATABASE_URL wins when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ReportURL returns the configured Power BI report URL, or "" when it is
// still a placeholder or too short to be real.
func (c *Config) ReportURL() string {
	u := strings.TrimSpace(c.PBIReportURL)
	if u == "" || strings.Contains(u, "YOUR_REPORT_ID") || len(u) < 20 {
		return ""
	}
	return u
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

func getEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
