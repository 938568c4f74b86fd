package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/httprunner/OpenActivity/internal/env"
)

// Environment variables read by openactivity. Command-line flags take precedence.
const (
	EnvAndroidHome    = "ANDROID_HOME"
	EnvAndroidSDKRoot = "ANDROID_SDK_ROOT"
	EnvEditor         = "OPENACTIVITY_EDITOR"
	EnvADBTimeout     = "OPENACTIVITY_ADB_TIMEOUT"
	EnvProjectDir     = "OPENACTIVITY_PROJECT_DIR"
	EnvVerbose        = "OPENACTIVITY_VERBOSE"
)

var ensureOnce sync.Once

func ensureEnvLoaded() {
	ensureOnce.Do(func() {
		_ = env.Ensure()
	})
}

// String returns the trimmed environment variable or fallback when unset.
func String(key, fallback string) string {
	ensureEnvLoaded()
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Duration parses a time duration from environment or returns fallback when
// unset. A malformed value is an error rather than the fallback.
func Duration(key string, fallback time.Duration) (time.Duration, error) {
	ensureEnvLoaded()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback, errors.Wrapf(err, "invalid $%s %q", key, val)
	}
	return parsed, nil
}

// Bool parses a boolean environment variable.
func Bool(key string, fallback bool) bool {
	ensureEnvLoaded()
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		lower := strings.ToLower(val)
		if lower == "1" || lower == "true" || lower == "yes" {
			return true
		}
		if lower == "0" || lower == "false" || lower == "no" {
			return false
		}
	}
	return fallback
}
