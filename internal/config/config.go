package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nidextract/internal/logger"
)

type Config struct {
	// Server
	Host string
	Port int

	// File Upload
	MaxFileSize       int64
	AllowedExtensions []string

	// OCR Engines
	FrontEngine         string // vision, documentai, tesseract
	BackEngine          string
	TesseractLanguages  []string
	ConfidenceThreshold float64
	OCRTimeout          time.Duration

	// Caching
	EnableCache  bool
	CacheMaxSize uint64
	CacheTTL     time.Duration

	// Extraction Heuristics
	MaxNameLines int

	// Rate Limiting
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Host:                getEnv("HOST", "0.0.0.0"),
		Port:                getEnvInt("PORT", 8080),
		MaxFileSize:         int64(getEnvInt("MAX_FILE_SIZE", 5*1024*1024)),
		AllowedExtensions:   getEnvList("ALLOWED_EXTENSIONS", "jpg,jpeg,png,bmp"),
		FrontEngine:         getEnv("OCR_FRONT_ENGINE", "vision"),
		BackEngine:          getEnv("OCR_BACK_ENGINE", "tesseract"),
		TesseractLanguages:  getEnvList("TESSERACT_LANGUAGES", "ben,eng"),
		ConfidenceThreshold: getEnvFloat("OCR_CONFIDENCE_THRESHOLD", 0.3),
		OCRTimeout:          time.Duration(getEnvInt("OCR_TIMEOUT_SECONDS", 60)) * time.Second,
		EnableCache:         getEnvBool("ENABLE_CACHE", true),
		CacheMaxSize:        uint64(getEnvInt("CACHE_MAX_SIZE", 1000)),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		MaxNameLines:        getEnvInt("MAX_NAME_LINES", 3),
		RateLimitEnabled:    getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:        getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:     time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:       getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:           getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("OCR_CONFIDENCE_THRESHOLD must be in [0,1], got %f", c.ConfidenceThreshold)
	}
	if c.CacheMaxSize == 0 {
		return fmt.Errorf("CACHE_MAX_SIZE must be positive")
	}
	if c.MaxNameLines <= 0 {
		return fmt.Errorf("MAX_NAME_LINES must be positive")
	}
	switch c.FrontEngine {
	case "vision", "documentai", "tesseract":
	default:
		return fmt.Errorf("OCR_FRONT_ENGINE must be vision, documentai or tesseract, got %q", c.FrontEngine)
	}
	switch c.BackEngine {
	case "vision", "documentai", "tesseract":
	default:
		return fmt.Errorf("OCR_BACK_ENGINE must be vision, documentai or tesseract, got %q", c.BackEngine)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
