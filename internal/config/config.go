package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SuggestSourceRemote = "remote"
	SuggestSourceLocal  = "local"
)

type Config struct {
	Environment          string
	AppName              string
	Port                 string
	LogLevel             slog.Level
	SQLitePath           string
	MigrationsPath       string
	BackendBaseURL       string
	BackendTimeout       time.Duration
	BackendRatePerSecond float64
	SuggestSource        string
	SuggestRatePerSecond float64
	SearchTuningPath     string
	SessionTTL           time.Duration
	CatalogPreload       bool
	Tuning               Tuning
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		AppName:              getEnv("APP_NAME", "vyrlo-listing-browser"),
		Port:                 getEnv("APP_PORT", "8080"),
		SQLitePath:           getEnv("SQLITE_PATH", "./data/browse.sqlite"),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		BackendBaseURL:       strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"), "/"),
		BackendTimeout:       getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		BackendRatePerSecond: getEnvAsFloat("BACKEND_RATE_PER_SECOND", 10),
		SuggestSource:        strings.ToLower(getEnv("SUGGEST_SOURCE", SuggestSourceLocal)),
		SuggestRatePerSecond: getEnvAsFloat("SUGGEST_RATE_PER_SECOND", 5),
		SearchTuningPath:     getEnv("SEARCH_TUNING_PATH", ""),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CatalogPreload:       getEnvAsBool("CATALOG_PRELOAD", true),
	}

	if cfg.SuggestSource != SuggestSourceRemote && cfg.SuggestSource != SuggestSourceLocal {
		return Config{}, fmt.Errorf("invalid SUGGEST_SOURCE %q, expected remote|local", cfg.SuggestSource)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	tuning, err := LoadTuning(cfg.SearchTuningPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Tuning = tuning

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
