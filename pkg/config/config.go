package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Local storage
	UploadDir   string
	MemoryDir   string
	MaxUploadMB int
	PDFMaxPages int

	// Scoring
	ScoringConfigPath string

	// Database (optional document registry)
	Database DatabaseConfig

	// Redis (optional cache + rate limiting)
	Redis RedisConfig

	// External services
	Gemini    GeminiConfig
	MCPMemory MCPMemoryConfig

	// Rate limiting
	AnalyzeRateLimit int // requests per client per minute

	// Maintenance
	RetentionDays   int
	CleanupSchedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// GeminiConfig holds Gemini (structured extraction) configuration
type GeminiConfig struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	RPS           float64
	MaxInputChars int
}

// MCPMemoryConfig holds settings for the MCP memory tool server
type MCPMemoryConfig struct {
	Enabled   bool
	Command   string
	Args      []string
	LibsqlURL string
	Timeout   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		// Local storage
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		MemoryDir:   getEnv("MEMORY_DIR", "memory"),
		MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 50),
		PDFMaxPages: getEnvAsInt("PDF_MAX_PAGES", 250),

		// Scoring
		ScoringConfigPath: getEnv("SCORING_CONFIG", ""),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External services
		Gemini: GeminiConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			Model:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:       getEnvAsDuration("GEMINI_TIMEOUT", "120s"),
			RPS:           getEnvAsFloat("GEMINI_RPS", 1),
			MaxInputChars: getEnvAsInt("GEMINI_MAX_INPUT_CHARS", 400000),
		},

		MCPMemory: MCPMemoryConfig{
			Enabled:   getEnvAsBool("MCP_MEMORY_ENABLED", true),
			Command:   getEnv("MCP_MEMORY_COMMAND", "npx"),
			Args:      strings.Fields(getEnv("MCP_MEMORY_ARGS", "-y mcp-memory-libsql")),
			LibsqlURL: getEnv("LIBSQL_URL", "file:./memory/ed.db"),
			Timeout:   getEnvAsDuration("MCP_MEMORY_TIMEOUT", "30s"),
		},

		AnalyzeRateLimit: getEnvAsInt("ANALYZE_RATE_LIMIT", 10),

		RetentionDays:   getEnvAsInt("RETENTION_DAYS", 30),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 30 3 * * *"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be > 0")
	}

	if c.PDFMaxPages <= 0 {
		return fmt.Errorf("PDF_MAX_PAGES must be > 0")
	}

	if c.Gemini.RPS <= 0 {
		return fmt.Errorf("GEMINI_RPS must be > 0")
	}

	if c.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be > 0")
	}

	// API key is only mandatory where documents are actually analyzed
	if c.Env == "production" && c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required in production")
	}

	return nil
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ResponseCacheDir is where structured extraction responses are cached
func (c *Config) ResponseCacheDir() string {
	return filepath.Join(c.MemoryDir, "responses")
}

// Retention returns the retention window for uploads and cached responses
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
