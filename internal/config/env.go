package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// ServerConfig defines the local dashboard server.
type ServerConfig struct {
    Host        string
    Port        string
    OpenBrowser bool
}

// OCRConfig defines the external recognition engine.
type OCRConfig struct {
    Binary      string
    Language    string
    DPI         int
    PageTimeout time.Duration
}

// ExtractConfig defines extraction behavior.
type ExtractConfig struct {
    ProgressEvery   int
    DownloadTimeout time.Duration
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Server  ServerConfig
    OCR     OCRConfig
    Extract ExtractConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/pdfxtract.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "50"), 50),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "5"), 5),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Server defaults: loopback only, this is a desktop utility
    cfg.Server = ServerConfig{
        Host:        getEnv("HOST", "127.0.0.1"),
        Port:        getEnv("PORT", "8080"),
        OpenBrowser: parseBool(getEnv("OPEN_BROWSER", "true")),
    }

    // OCR defaults
    cfg.OCR = OCRConfig{
        Binary:      getEnv("OCR_BINARY", "tesseract"),
        Language:    getEnv("OCR_LANGUAGE", "eng"),
        DPI:         parseInt(getEnv("OCR_DPI", "300"), 300),
        PageTimeout: parseDuration(getEnv("OCR_PAGE_TIMEOUT", "120s"), 120*time.Second),
    }

    // Extraction defaults
    cfg.Extract = ExtractConfig{
        ProgressEvery:   parseInt(getEnv("PROGRESS_EVERY_PAGES", "5"), 5),
        DownloadTimeout: parseDuration(getEnv("DOWNLOAD_TIMEOUT", "60s"), 60*time.Second),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
