package simpleshare

import "context"

// NativeBoundary defines the asynchronous native service this library
// delegates storage, event ingestion and share UI to. Any call may fail with a
// *NativeError; CodeHandleNotFound marks a handle the native side has evicted.
type NativeBoundary interface {
	// CreateReference registers a normalized descriptor and returns its handle
	CreateReference(ctx context.Context, payload Payload) (HandleID, error)

	// ReleaseReference drops a handle on the native side
	ReleaseReference(ctx context.Context, handle HandleID) error

	// LogEvent records an event against an ordered list of handles
	LogEvent(ctx context.Context, handles []HandleID, name string, payload Payload) error

	// GenerateShortURL creates a share link for a handle
	GenerateShortURL(ctx context.Context, handle HandleID, linkProperties Payload, controlParams Payload) (*Link, error)

	// ShowShareSheet presents a share sheet for a handle
	ShowShareSheet(ctx context.Context, handle HandleID, shareOptions Payload, linkProperties Payload, controlParams Payload) (*ShareResult, error)

	// RegisterView records a view of the content behind a handle
	RegisterView(ctx context.Context, handle HandleID) error

	// UserCompletedAction records a named action against a handle
	UserCompletedAction(ctx context.Context, handle HandleID, action string, state Payload) error

	// ListOnSpotlight lists the content behind a handle in the platform index
	ListOnSpotlight(ctx context.Context, handle HandleID) error
}

// Availability is implemented by boundaries that can be installed but not
// initialized. A boundary without it is assumed available.
type Availability interface {
	Available() bool
}

// Capabilities is implemented by boundaries with platform-specific features.
// A boundary without it is assumed to support every capability.
type Capabilities interface {
	Supports(capability Capability) bool
}
