package server

import (
	"log"
	"os"
	"strconv"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel  = "IMAGE_REDUCE_LOG_LEVEL"
	EnvMaxColors = "IMAGE_REDUCE_MAX_COLORS"
	EnvLevels    = "IMAGE_REDUCE_LEVELS"
)

// Config holds server-wide settings.
type Config struct {
	// Debug enables per-call logging to stderr.
	Debug bool

	// DefaultMaxColors is used when a quantize call omits max_colors.
	DefaultMaxColors int

	// DefaultLevels is used when a dithering call omits levels.
	DefaultLevels int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DefaultMaxColors: 16,
		DefaultLevels:    2,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies any environment
// overrides. Malformed numbers are logged and ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Debug = os.Getenv(EnvLogLevel) == "debug"
	cfg.DefaultMaxColors = envInt(EnvMaxColors, cfg.DefaultMaxColors)
	cfg.DefaultLevels = envInt(EnvLevels, cfg.DefaultLevels)
	return cfg
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", name, raw, err)
		return fallback
	}
	return v
}
