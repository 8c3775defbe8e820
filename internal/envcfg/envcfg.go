// Package envcfg provides environment-based configuration shared by all
// binaries. A .env file in the working directory is loaded best-effort
// before any lookup.
package envcfg

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/agentground/agentground/internal/logging"
)

var loadOnce sync.Once

// Load reads the .env file from the working directory, if present. Missing
// files are not an error; malformed files are logged and skipped. Called
// implicitly by the lookup helpers.
func Load() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			if !os.IsNotExist(err) {
				log := logging.WithComponent("config")
				log.Warn().Err(err).Msg("failed to load .env file")
			}
		}
	})
}

// String reads a string from an environment variable or returns the default.
func String(key, defaultValue string) string {
	Load()
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// Int reads an integer from an environment variable, falling back to the
// default on absence or parse errors.
func Int(key string, defaultValue int) int {
	Load()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		warnInvalid(key, v, "invalid integer, using default")
		return defaultValue
	}
	return parsed
}

// Bool reads a boolean from an environment variable, falling back to the
// default on absence or parse errors.
func Bool(key string, defaultValue bool) bool {
	Load()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		warnInvalid(key, v, "invalid boolean, using default")
		return defaultValue
	}
	return parsed
}

// Duration reads a duration from an environment variable, falling back to
// the default on absence or parse errors.
func Duration(key string, defaultValue time.Duration) time.Duration {
	Load()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		warnInvalid(key, v, "invalid duration, using default")
		return defaultValue
	}
	return parsed
}

func warnInvalid(key, value, msg string) {
	log := logging.WithComponent("config")
	log.Warn().Str("key", key).Str("value", value).Msg(msg)
}
