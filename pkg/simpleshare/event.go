package simpleshare

import (
	"context"
	"errors"
)

// StandardEvent is one of the predefined event names. Any other non-empty
// string is accepted as a custom event name.
type StandardEvent string

// Standard event constants (typed).
const (
	EventAddToCart            StandardEvent = "ADD_TO_CART"
	EventAddToWishlist        StandardEvent = "ADD_TO_WISHLIST"
	EventViewCart             StandardEvent = "VIEW_CART"
	EventInitiatePurchase     StandardEvent = "INITIATE_PURCHASE"
	EventPurchase             StandardEvent = "PURCHASE"
	EventSearch               StandardEvent = "SEARCH"
	EventViewItem             StandardEvent = "VIEW_ITEM"
	EventViewItems            StandardEvent = "VIEW_ITEMS"
	EventRate                 StandardEvent = "RATE"
	EventShare                StandardEvent = "SHARE"
	EventCompleteRegistration StandardEvent = "COMPLETE_REGISTRATION"
	EventLogin                StandardEvent = "LOGIN"
)

var (
	// ErrEventNameRequired indicates an event was built without a name
	ErrEventNameRequired = errors.New("event name is required")

	// ErrEventUnbound indicates an event was not built by a Service
	ErrEventUnbound = errors.New("event is not bound to a service")
)

// EventFields are the optional commerce, descriptive and custom fields of an
// event. Unset fields are omitted from the native payload.
type EventFields struct {
	TransactionID string
	Currency      string
	Revenue       *float64
	Shipping      *float64
	Tax           *float64
	Coupon        string
	Affiliation   string

	Description string
	SearchQuery string
	Alias       string

	// CustomData values should be strings; other types are transmitted
	// unchanged with a warning.
	CustomData map[string]interface{}
}

// Event is a single analytics or commerce event. It carries references to
// content, never handles; handles are read from the references when the
// event is logged.
type Event struct {
	name       string
	references []*ContentReference
	fields     EventFields
	svc        *service
}

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// References returns the event's content references in insertion order.
func (e *Event) References() []*ContentReference {
	return append([]*ContentReference(nil), e.references...)
}

// Fields returns the event fields as supplied by the caller.
func (e *Event) Fields() EventFields { return e.fields }

// Log sends the event to the native boundary, recreating any content handle
// that turns out to be stale. It returns nil on success and the native
// failure unchanged when the failure is fatal; callers must not rely on it
// failing for business logic.
func (e *Event) Log(ctx context.Context) error {
	if e == nil || e.svc == nil {
		return &ValidationError{Field: "event", Err: ErrEventUnbound}
	}
	return e.svc.LogEvent(ctx, e)
}

func newEvent(svc *service, name string, fields EventFields, refs []*ContentReference) *Event {
	references := make([]*ContentReference, 0, len(refs))
	for _, ref := range refs {
		if ref != nil {
			references = append(references, ref)
		}
	}
	if fields.CustomData != nil {
		fields.CustomData = cloneValue(fields.CustomData).(map[string]interface{})
	}
	return &Event{
		name:       name,
		references: references,
		fields:     fields,
		svc:        svc,
	}
}
