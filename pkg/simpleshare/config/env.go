package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	NATIVE_URL     - Native boundary (one of):
//	                 - "" or "memory" - In-memory boundary (default)
//	                 - "http://..." or "https://..." - Remote boundary served by cmd/native-server
//	                 - "postgres://..." or "postgresql://..." - Postgres-backed boundary
//	                 - "none" - No boundary; every operation is a no-op
//	NATIVE_TIMEOUT - Remote call timeout as a duration (default: "10s")
//	HANDLE_TTL     - Handle lifetime for local boundaries, "0" disables expiry
//	CAPABILITIES   - Comma-separated capabilities, or "all" (default)
//	LINK_BASE_URL  - Base URL of generated links
//	ENABLE_METRICS - Register Prometheus metrics
//	DEBUG_NATIVE   - Log every native call
func WithEnv(prefix string) Option {
	return func(c *ClientConfig) error {
		if err := applyNativeEnv(prefix, c); err != nil {
			return err
		}

		if d, ok, err := parseDurationEnv(prefix, "NATIVE_TIMEOUT"); err != nil {
			return err
		} else if ok {
			c.NativeTimeout = d
		}
		if d, ok, err := parseDurationEnv(prefix, "HANDLE_TTL"); err != nil {
			return err
		} else if ok {
			c.HandleTTL = d
		}

		if v, ok := lookupEnv(prefix, "CAPABILITIES"); ok {
			c.Capabilities = ParseCapabilities(v)
		}
		if v, ok := lookupEnv(prefix, "LINK_BASE_URL"); ok && v != "" {
			c.LinkBaseURL = v
		}

		if b, ok, err := parseBoolEnv(prefix, "ENABLE_METRICS"); err != nil {
			return err
		} else if ok {
			c.EnableMetrics = b
		}
		if b, ok, err := parseBoolEnv(prefix, "DEBUG_NATIVE"); err != nil {
			return err
		} else if ok {
			c.DebugNative = b
		}

		return nil
	}
}

// applyNativeEnv selects the native boundary from NATIVE_URL
func applyNativeEnv(prefix string, c *ClientConfig) error {
	nativeURL, hasURL := lookupEnv(prefix, "NATIVE_URL")

	switch {
	case !hasURL || nativeURL == "" || nativeURL == NativeMemory:
		c.NativeType = NativeMemory
		c.NativeURL = ""
	case nativeURL == NativeNone:
		c.NativeType = NativeNone
		c.NativeURL = ""
	case strings.HasPrefix(nativeURL, "http://"), strings.HasPrefix(nativeURL, "https://"):
		c.NativeType = NativeRemote
		c.NativeURL = nativeURL
	case strings.HasPrefix(nativeURL, "postgres://"), strings.HasPrefix(nativeURL, "postgresql://"):
		c.NativeType = NativePostgres
		c.NativeURL = nativeURL
	default:
		return fmt.Errorf("unsupported NATIVE_URL format: %s (use 'memory', 'none', 'http(s)://...' or 'postgres://...')", nativeURL)
	}

	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}

func parseDurationEnv(prefix, key string) (time.Duration, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid duration for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
