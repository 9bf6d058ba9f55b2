// Package config provides configuration helpers for go-focus commands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default host configuration.
const (
	DefaultPort     = "8080"
	DefaultStore    = "json:data/results.json"
	DefaultLogLevel = "info"
	DefaultProfile  = "default"
)

// LoadEnv loads variables from a .env file in the working directory, if any.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Port returns the HTTP port from FOCUS_PORT or the default.
func Port() string {
	if port := os.Getenv("FOCUS_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// LogLevel returns the log level from FOCUS_LOG_LEVEL or the default.
func LogLevel() string {
	if level := os.Getenv("FOCUS_LOG_LEVEL"); level != "" {
		return level
	}
	return DefaultLogLevel
}

// Profile returns the engine preset name from FOCUS_PROFILE ("default" or "legacy").
func Profile() string {
	if p := os.Getenv("FOCUS_PROFILE"); p != "" {
		return strings.ToLower(p)
	}
	return DefaultProfile
}

// StoreSpec describes where finished-session results are persisted.
type StoreSpec struct {
	Kind string // "json" or "sqlite"
	Path string
}

// Store parses FOCUS_STORE, formatted as "json:<path>" or "sqlite:<path>".
func Store() (StoreSpec, error) {
	raw := os.Getenv("FOCUS_STORE")
	if raw == "" {
		raw = DefaultStore
	}
	kind, path, ok := strings.Cut(raw, ":")
	if !ok || path == "" {
		return StoreSpec{}, fmt.Errorf("invalid FOCUS_STORE %q: want kind:path", raw)
	}
	switch kind {
	case "json", "sqlite":
		return StoreSpec{Kind: kind, Path: path}, nil
	default:
		return StoreSpec{}, fmt.Errorf("invalid FOCUS_STORE kind %q", kind)
	}
}

// Cooldown returns the popup/pause cooldown from FOCUS_COOLDOWN (seconds).
// Falls back to the provided default if unset or invalid.
func Cooldown(fallback time.Duration) time.Duration {
	raw := os.Getenv("FOCUS_COOLDOWN")
	if raw == "" {
		return fallback
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
