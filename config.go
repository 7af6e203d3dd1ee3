package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	Addr           string
	DatabaseURL    string
	F1APIURL       string
	WikiAPIURL     string
	LookupTimeout  time.Duration
	PlaceholderTTL time.Duration
	LogLevel       string
}

func loadConfig() (config, error) {
	_ = godotenv.Load() // loads .env into environment variables (safe to ignore error)

	cfg := config{
		Addr:        envOr("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		F1APIURL:    envOr("F1_API_URL", "https://f1api.dev/api"),
		WikiAPIURL:  envOr("WIKI_API_URL", "https://en.wikipedia.org/w/api.php"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.LookupTimeout, err = envDuration("IMAGE_LOOKUP_TIMEOUT", 8*time.Second); err != nil {
		return config{}, err
	}
	if cfg.PlaceholderTTL, err = envDuration("PLACEHOLDER_TTL", 0); err != nil {
		return config{}, err
	}
	if cfg.LookupTimeout <= 0 {
		return config{}, fmt.Errorf("IMAGE_LOOKUP_TIMEOUT must be positive, got %s", cfg.LookupTimeout)
	}
	if cfg.PlaceholderTTL < 0 {
		return config{}, fmt.Errorf("PLACEHOLDER_TTL must not be negative, got %s", cfg.PlaceholderTTL)
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
