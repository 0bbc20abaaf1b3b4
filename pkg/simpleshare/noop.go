package simpleshare

import (
	"context"
	"log/slog"
)

// UnavailableNative is a native boundary that is installed but never
// initialized. Services built on it degrade every operation to a no-op.
type UnavailableNative struct{}

// NewUnavailableNative creates a boundary that reports itself unavailable
func NewUnavailableNative() NativeBoundary {
	return &UnavailableNative{}
}

// Available always returns false
func (u *UnavailableNative) Available() bool { return false }

func (u *UnavailableNative) CreateReference(ctx context.Context, payload Payload) (HandleID, error) {
	return "", ErrNativeUnavailable
}

func (u *UnavailableNative) ReleaseReference(ctx context.Context, handle HandleID) error {
	return ErrNativeUnavailable
}

func (u *UnavailableNative) LogEvent(ctx context.Context, handles []HandleID, name string, payload Payload) error {
	return ErrNativeUnavailable
}

func (u *UnavailableNative) GenerateShortURL(ctx context.Context, handle HandleID, linkProperties Payload, controlParams Payload) (*Link, error) {
	return nil, ErrNativeUnavailable
}

func (u *UnavailableNative) ShowShareSheet(ctx context.Context, handle HandleID, shareOptions Payload, linkProperties Payload, controlParams Payload) (*ShareResult, error) {
	return nil, ErrNativeUnavailable
}

func (u *UnavailableNative) RegisterView(ctx context.Context, handle HandleID) error {
	return ErrNativeUnavailable
}

func (u *UnavailableNative) UserCompletedAction(ctx context.Context, handle HandleID, action string, state Payload) error {
	return ErrNativeUnavailable
}

func (u *UnavailableNative) ListOnSpotlight(ctx context.Context, handle HandleID) error {
	return ErrNativeUnavailable
}

// LoggingNative decorates a native boundary with debug logs of every call.
// Useful for development and debugging
type LoggingNative struct {
	inner  NativeBoundary
	logger *slog.Logger
}

// NewLoggingNative wraps inner. Availability and capabilities of inner are
// preserved.
func NewLoggingNative(inner NativeBoundary, logger *slog.Logger) *LoggingNative {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingNative{inner: inner, logger: logger}
}

// Available delegates to the wrapped boundary
func (l *LoggingNative) Available() bool {
	if a, ok := l.inner.(Availability); ok {
		return a.Available()
	}
	return true
}

// Supports delegates to the wrapped boundary
func (l *LoggingNative) Supports(capability Capability) bool {
	if c, ok := l.inner.(Capabilities); ok {
		return c.Supports(capability)
	}
	return true
}

func (l *LoggingNative) CreateReference(ctx context.Context, payload Payload) (HandleID, error) {
	handle, err := l.inner.CreateReference(ctx, payload)
	l.log(ctx, "create_reference", err, "handle", handle, "canonical_identifier", payload["canonicalIdentifier"])
	return handle, err
}

func (l *LoggingNative) ReleaseReference(ctx context.Context, handle HandleID) error {
	err := l.inner.ReleaseReference(ctx, handle)
	l.log(ctx, "release_reference", err, "handle", handle)
	return err
}

func (l *LoggingNative) LogEvent(ctx context.Context, handles []HandleID, name string, payload Payload) error {
	err := l.inner.LogEvent(ctx, handles, name, payload)
	l.log(ctx, "log_event", err, "name", name, "handles", len(handles))
	return err
}

func (l *LoggingNative) GenerateShortURL(ctx context.Context, handle HandleID, linkProperties Payload, controlParams Payload) (*Link, error) {
	link, err := l.inner.GenerateShortURL(ctx, handle, linkProperties, controlParams)
	l.log(ctx, "generate_short_url", err, "handle", handle)
	return link, err
}

func (l *LoggingNative) ShowShareSheet(ctx context.Context, handle HandleID, shareOptions Payload, linkProperties Payload, controlParams Payload) (*ShareResult, error) {
	result, err := l.inner.ShowShareSheet(ctx, handle, shareOptions, linkProperties, controlParams)
	l.log(ctx, "show_share_sheet", err, "handle", handle)
	return result, err
}

func (l *LoggingNative) RegisterView(ctx context.Context, handle HandleID) error {
	err := l.inner.RegisterView(ctx, handle)
	l.log(ctx, "register_view", err, "handle", handle)
	return err
}

func (l *LoggingNative) UserCompletedAction(ctx context.Context, handle HandleID, action string, state Payload) error {
	err := l.inner.UserCompletedAction(ctx, handle, action, state)
	l.log(ctx, "user_completed_action", err, "handle", handle, "action", action)
	return err
}

func (l *LoggingNative) ListOnSpotlight(ctx context.Context, handle HandleID) error {
	err := l.inner.ListOnSpotlight(ctx, handle)
	l.log(ctx, "list_on_spotlight", err, "handle", handle)
	return err
}

func (l *LoggingNative) log(ctx context.Context, op string, err error, args ...any) {
	args = append(args, "op", op)
	if err != nil {
		l.logger.DebugContext(ctx, "Native call failed", append(args, "error", err)...)
		return
	}
	l.logger.DebugContext(ctx, "Native call", args...)
}

// MetricsNative decorates a native boundary with call counters. It lets a
// process serving a boundary directly expose the same calls_total series a
// Service records.
type MetricsNative struct {
	inner   NativeBoundary
	metrics *Metrics
}

// NewMetricsNative wraps inner. The caller registers metrics.
func NewMetricsNative(inner NativeBoundary, metrics *Metrics) *MetricsNative {
	return &MetricsNative{inner: inner, metrics: metrics}
}

// Available delegates to the wrapped boundary
func (m *MetricsNative) Available() bool {
	if a, ok := m.inner.(Availability); ok {
		return a.Available()
	}
	return true
}

// Supports delegates to the wrapped boundary
func (m *MetricsNative) Supports(capability Capability) bool {
	if c, ok := m.inner.(Capabilities); ok {
		return c.Supports(capability)
	}
	return true
}

func (m *MetricsNative) CreateReference(ctx context.Context, payload Payload) (HandleID, error) {
	handle, err := m.inner.CreateReference(ctx, payload)
	m.metrics.recordCall("create_reference", err)
	return handle, err
}

func (m *MetricsNative) ReleaseReference(ctx context.Context, handle HandleID) error {
	err := m.inner.ReleaseReference(ctx, handle)
	m.metrics.recordCall("release_reference", err)
	return err
}

func (m *MetricsNative) LogEvent(ctx context.Context, handles []HandleID, name string, payload Payload) error {
	err := m.inner.LogEvent(ctx, handles, name, payload)
	m.metrics.recordCall("log_event", err)
	return err
}

func (m *MetricsNative) GenerateShortURL(ctx context.Context, handle HandleID, linkProperties Payload, controlParams Payload) (*Link, error) {
	link, err := m.inner.GenerateShortURL(ctx, handle, linkProperties, controlParams)
	m.metrics.recordCall("generate_short_url", err)
	return link, err
}

func (m *MetricsNative) ShowShareSheet(ctx context.Context, handle HandleID, shareOptions Payload, linkProperties Payload, controlParams Payload) (*ShareResult, error) {
	result, err := m.inner.ShowShareSheet(ctx, handle, shareOptions, linkProperties, controlParams)
	m.metrics.recordCall("show_share_sheet", err)
	return result, err
}

func (m *MetricsNative) RegisterView(ctx context.Context, handle HandleID) error {
	err := m.inner.RegisterView(ctx, handle)
	m.metrics.recordCall("register_view", err)
	return err
}

func (m *MetricsNative) UserCompletedAction(ctx context.Context, handle HandleID, action string, state Payload) error {
	err := m.inner.UserCompletedAction(ctx, handle, action, state)
	m.metrics.recordCall("user_completed_action", err)
	return err
}

func (m *MetricsNative) ListOnSpotlight(ctx context.Context, handle HandleID) error {
	err := m.inner.ListOnSpotlight(ctx, handle)
	m.metrics.recordCall("list_on_spotlight", err)
	return err
}
