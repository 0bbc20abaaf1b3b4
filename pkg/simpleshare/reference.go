package simpleshare

import (
	"context"
	"log/slog"
	"strings"
)

// referenceManager owns the mapping from a content reference to its current
// native handle. It is the only writer of ContentReference.handle.
type referenceManager struct {
	native     *guardedNative
	normalizer *Normalizer
	logger     *slog.Logger
	metrics    *Metrics
	hooks      *Hooks
}

// create validates the identifier, captures the normalized payload and
// registers it with the native boundary. With the boundary absent the
// returned reference has no handle.
func (m *referenceManager) create(ctx context.Context, canonicalIdentifier string, md ContentMetadata) (*ContentReference, error) {
	if strings.TrimSpace(canonicalIdentifier) == "" {
		return nil, &ValidationError{Field: "canonicalIdentifier", Err: ErrInvalidIdentifier}
	}

	payload := m.normalizer.ContentMetadata(md)
	payload["canonicalIdentifier"] = canonicalIdentifier

	if err := m.hooks.executeBeforeCreate(ctx, canonicalIdentifier, payload); err != nil {
		return nil, &ReferenceError{CanonicalIdentifier: canonicalIdentifier, Op: "create", Err: err}
	}

	ref := &ContentReference{
		canonicalIdentifier: canonicalIdentifier,
		payload:             clonePayload(payload),
	}

	handle, err := m.native.CreateReference(ctx, ref.Payload())
	if m.native.available() {
		m.metrics.recordCall("create_reference", err)
	}
	if err != nil {
		return nil, err
	}
	ref.setHandle(handle)

	if handle == "" {
		m.logger.Debug("Native boundary unavailable, reference has no handle",
			"canonical_identifier", canonicalIdentifier)
		return ref, nil
	}

	if err := m.hooks.executeAfterCreate(ctx, ref); err != nil {
		m.logger.Warn("After-create hook failed", "canonical_identifier", canonicalIdentifier, "error", err)
	}

	return ref, nil
}

// recreate re-registers the payload captured at creation and replaces the
// reference's handle. The previous native handle is not reclaimed.
func (m *referenceManager) recreate(ctx context.Context, ref *ContentReference) (HandleID, error) {
	handle, err := m.native.CreateReference(ctx, ref.Payload())
	m.metrics.recordCall("create_reference", err)
	if err != nil {
		return "", err
	}
	ref.setHandle(handle)
	return handle, nil
}

// release asks the native boundary to drop the current handle. Failures are
// logged and never returned.
func (m *referenceManager) release(ctx context.Context, ref *ContentReference) {
	handle := ref.Handle()
	if handle == "" {
		return
	}

	err := m.native.ReleaseReference(ctx, handle)
	m.metrics.recordCall("release_reference", err)
	if err != nil {
		m.logger.Warn("Failed to release content handle",
			"canonical_identifier", ref.canonicalIdentifier, "handle", handle, "error", err)
		m.hooks.executeError(ctx, "release_reference", err)
	}
}
