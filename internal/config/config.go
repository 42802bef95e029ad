package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all tool settings, populated from environment variables.
type Config struct {
	ArchiveBaseURL string
	ArchiveTimeout time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// UP.DAT export settings.
	OutputPath     string
	SiteID         string
	TopPressureHPa float64
	DecorateNames  bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	archiveTimeout, err := parseDuration("RAOB_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	topPressure, err := parseFloat("UPDAT_TOP_PRESSURE", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ArchiveBaseURL:  envOrDefault("RAOB_BASE_URL", "https://ruc.noaa.gov/raobs"),
		ArchiveTimeout:  archiveTimeout,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		OutputPath:      envOrDefault("UPDAT_OUT", "UP.DAT"),
		SiteID:          os.Getenv("UPDAT_SITE_ID"),
		TopPressureHPa:  topPressure,
		DecorateNames:   os.Getenv("UPDAT_DECORATE_NAMES") == "true",
	}

	if cfg.ArchiveBaseURL == "" {
		return nil, errors.New("RAOB_BASE_URL is required")
	}
	if cfg.TopPressureHPa <= 0 {
		return nil, errors.New("UPDAT_TOP_PRESSURE must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
