package config

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

// WithNative sets the native boundary type and URL
func WithNative(nativeType, url string) Option {
	return func(c *ClientConfig) error {
		c.NativeType = nativeType
		c.NativeURL = url
		return nil
	}
}

// WithNativeTimeout sets the timeout of remote boundary calls
func WithNativeTimeout(timeout time.Duration) Option {
	return func(c *ClientConfig) error {
		c.NativeTimeout = timeout
		return nil
	}
}

// WithHandleTTL sets how long handles issued by local boundaries stay valid
func WithHandleTTL(ttl time.Duration) Option {
	return func(c *ClientConfig) error {
		c.HandleTTL = ttl
		return nil
	}
}

// WithCapabilities restricts the capabilities of the memory boundary
func WithCapabilities(caps ...simpleshare.Capability) Option {
	return func(c *ClientConfig) error {
		c.Capabilities = caps
		return nil
	}
}

// WithLinkBaseURL sets the base URL of links generated by local boundaries
func WithLinkBaseURL(baseURL string) Option {
	return func(c *ClientConfig) error {
		c.LinkBaseURL = baseURL
		return nil
	}
}

// WithMetrics enables Prometheus metrics registered on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *ClientConfig) error {
		c.EnableMetrics = true
		c.Registerer = reg
		return nil
	}
}

// WithLogger sets the logger handed to the service and boundaries
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) error {
		c.Logger = logger
		return nil
	}
}

// WithDebugNative logs every native call at debug level
func WithDebugNative(enabled bool) Option {
	return func(c *ClientConfig) error {
		c.DebugNative = enabled
		return nil
	}
}
