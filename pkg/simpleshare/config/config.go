package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/native/memory"
	nativepg "github.com/tendant/simple-share/pkg/simpleshare/native/postgres"
	"github.com/tendant/simple-share/pkg/simpleshare/native/remote"
)

// Native boundary types
const (
	NativeMemory   = "memory"
	NativeRemote   = "remote"
	NativePostgres = "postgres"
	NativeNone     = "none"
)

// ErrNativeRequired is returned when a remote or postgres boundary has no URL
var ErrNativeRequired = errors.New("native_url is required for this native type")

// Option applies configuration to a ClientConfig instance.
type Option func(*ClientConfig) error

// Load constructs a ClientConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ClientConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ClientConfig {
	return ClientConfig{
		NativeType:    NativeMemory,
		NativeTimeout: 10 * time.Second,
		LinkBaseURL:   memory.DefaultLinkBaseURL,
	}
}

// ClientConfig represents configuration for a simple-share service
type ClientConfig struct {
	// Native boundary configuration
	NativeType    string // "memory", "remote", "postgres", "none"
	NativeURL     string
	NativeTimeout time.Duration

	// Boundary options honored by the memory and postgres boundaries
	HandleTTL    time.Duration
	Capabilities []simpleshare.Capability // nil means all
	LinkBaseURL  string

	// Observability
	EnableMetrics bool
	Registerer    prometheus.Registerer
	Logger        *slog.Logger
	DebugNative   bool
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	switch c.NativeType {
	case NativeMemory, NativeNone:
	case NativeRemote, NativePostgres:
		if c.NativeURL == "" {
			return fmt.Errorf("%s: %w", c.NativeType, ErrNativeRequired)
		}
	default:
		return fmt.Errorf("unsupported native type: %s", c.NativeType)
	}

	if c.NativeTimeout <= 0 {
		return errors.New("native_timeout must be positive")
	}
	if c.HandleTTL < 0 {
		return errors.New("handle_ttl cannot be negative")
	}

	for _, capability := range c.Capabilities {
		if capability != simpleshare.CapabilitySpotlight && capability != simpleshare.CapabilityShareSheet {
			return fmt.Errorf("unknown capability: %s", capability)
		}
	}

	return nil
}

// BuildNative creates the native boundary selected by the configuration. A
// nil boundary means none is installed.
func (c *ClientConfig) BuildNative(ctx context.Context) (simpleshare.NativeBoundary, error) {
	native, err := c.buildNative(ctx)
	if err != nil || native == nil {
		return native, err
	}
	if c.DebugNative {
		return simpleshare.NewLoggingNative(native, c.logger()), nil
	}
	return native, nil
}

func (c *ClientConfig) buildNative(ctx context.Context) (simpleshare.NativeBoundary, error) {
	switch c.NativeType {
	case NativeNone:
		return nil, nil
	case NativeMemory:
		opts := []memory.Option{
			memory.WithHandleTTL(c.HandleTTL),
			memory.WithLinkBaseURL(c.LinkBaseURL),
		}
		if c.Capabilities != nil {
			opts = append(opts, memory.WithCapabilities(c.Capabilities...))
		}
		return memory.New(opts...), nil
	case NativeRemote:
		client := remote.New(c.NativeURL,
			remote.WithTimeout(c.NativeTimeout),
			remote.WithLogger(c.logger()))
		refreshCtx, cancel := context.WithTimeout(ctx, c.NativeTimeout)
		defer cancel()
		if err := client.Refresh(refreshCtx); err != nil {
			c.logger().Warn("Native boundary unreachable, operations are no-ops until a retried refresh succeeds",
				"native_url", c.NativeURL, "error", err)
		}
		return client, nil
	case NativePostgres:
		pool, err := pgxpool.New(ctx, c.NativeURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		native := nativepg.NewWithPool(pool,
			nativepg.WithHandleTTL(c.HandleTTL),
			nativepg.WithLinkBaseURL(c.LinkBaseURL))
		if err := native.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return native, nil
	default:
		return nil, fmt.Errorf("unsupported native type: %s", c.NativeType)
	}
}

// BuildService creates a Service instance from the client configuration
func (c *ClientConfig) BuildService(ctx context.Context) (simpleshare.Service, error) {
	native, err := c.BuildNative(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build native boundary: %w", err)
	}

	options := []simpleshare.Option{simpleshare.WithLogger(c.logger())}
	if native != nil {
		options = append(options, simpleshare.WithNative(native))
	}
	if c.EnableMetrics {
		options = append(options, simpleshare.WithMetrics(simpleshare.NewMetrics(c.Registerer)))
	}

	return simpleshare.New(options...)
}

func (c *ClientConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ParseCapabilities parses a comma-separated capability list. "all" or an
// empty string yields nil, meaning every capability.
func ParseCapabilities(raw string) []simpleshare.Capability {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return nil
	}
	caps := []simpleshare.Capability{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			caps = append(caps, simpleshare.Capability(part))
		}
	}
	return caps
}
