package simpleshare

import "context"

// Service defines the main interface for the simple-share library
type Service interface {
	// Content reference operations
	CreateReference(ctx context.Context, canonicalIdentifier string, metadata ContentMetadata) (*ContentReference, error)
	ReleaseReference(ctx context.Context, ref *ContentReference)

	// Sharing operations
	GenerateShortURL(ctx context.Context, ref *ContentReference, linkProperties LinkProperties, controlParams ControlParams) (*Link, error)
	ShowShareSheet(ctx context.Context, ref *ContentReference, shareOptions ShareOptions, linkProperties LinkProperties, controlParams ControlParams) (*ShareResult, error)

	// Content engagement operations
	RegisterView(ctx context.Context, ref *ContentReference) error
	ListOnSpotlight(ctx context.Context, ref *ContentReference) error

	// Deprecated: use NewEvent with a standard or custom event name.
	UserCompletedAction(ctx context.Context, ref *ContentReference, action string, state map[string]interface{}) error

	// Event operations
	NewEvent(name string, fields EventFields, refs ...*ContentReference) *Event
	LogEvent(ctx context.Context, event *Event) error

	// Native boundary state
	Available() bool
	Supports(capability Capability) bool
}
