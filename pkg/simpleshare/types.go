package simpleshare

import (
	"sync"
	"time"
)

// HandleID is the opaque identifier the native boundary issues for a
// registered content reference. The empty value means no handle.
type HandleID string

// Payload is the primitive, already-normalized map handed to the native
// boundary. Absent fields are omitted, never sent as nil.
type Payload map[string]interface{}

// Capability names an optional native-boundary feature.
type Capability string

// Capability constants (typed).
const (
	CapabilitySpotlight  Capability = "spotlight"
	CapabilityShareSheet Capability = "share_sheet"
)

// IndexMode is the deprecated single-field indexing switch.
type IndexMode string

// Index mode constants (typed).
const (
	IndexModePublic  IndexMode = "public"
	IndexModePrivate IndexMode = "private"
)

// ProductMetadata holds the structured commerce fields of a content descriptor.
type ProductMetadata struct {
	ContentSchema   string
	Quantity        *float64
	Price           *float64
	Currency        string
	SKU             string
	ProductName     string
	ProductBrand    string
	ProductCategory string
	ProductVariant  string
	Condition       string
	RatingAverage   *float64
	RatingCount     *float64
	RatingMax       *float64
	ImageCaptions   []string
	CustomMetadata  map[string]interface{}
}

// ContentMetadata is the caller-supplied descriptor of a content reference.
//
// Price, Currency, Metadata and ContentIndexingMode are deprecated: they are
// still accepted, logged with a warning and folded into ContentMetadata,
// ContentMetadata.CustomMetadata and PubliclyIndex during normalization.
type ContentMetadata struct {
	CanonicalURL       string
	Title              string
	ContentDescription string
	ContentImageURL    string
	Keywords           []string
	LocallyIndex       *bool
	PubliclyIndex      *bool
	ExpirationDate     *time.Time
	ContentMetadata    *ProductMetadata

	Price               *float64
	Currency            string
	Metadata            map[string]interface{}
	ContentIndexingMode IndexMode
}

// ContentReference is the caller-owned logical descriptor of shareable
// content. Its payload is captured once at creation and reused verbatim for
// every recreation; its handle is a cache key that may be evicted at any time.
type ContentReference struct {
	canonicalIdentifier string
	payload             Payload

	mu     sync.RWMutex
	handle HandleID
}

// CanonicalIdentifier returns the immutable identity key of the reference.
func (r *ContentReference) CanonicalIdentifier() string {
	return r.canonicalIdentifier
}

// Handle returns the current native handle, or "" if none was ever issued.
func (r *ContentReference) Handle() HandleID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handle
}

// HasHandle reports whether the reference holds a native handle.
func (r *ContentReference) HasHandle() bool {
	return r.Handle() != ""
}

// Payload returns a deep copy of the normalized creation payload.
func (r *ContentReference) Payload() Payload {
	return clonePayload(r.payload)
}

func (r *ContentReference) setHandle(h HandleID) {
	r.mu.Lock()
	r.handle = h
	r.mu.Unlock()
}

// LinkProperties describes analytics attribution for a generated share link.
type LinkProperties struct {
	Alias    string
	Campaign string
	Channel  string
	Feature  string
	Stage    string
	Tags     []string
}

// ControlParams are link control parameters ($desktop_url, $fallback_url, ...).
type ControlParams map[string]string

// ShareOptions configures the text shown by a native share sheet.
type ShareOptions struct {
	MessageHeader string
	MessageBody   string
	EmailSubject  string
	Title         string
	Text          string
}

// Link is the result of share link generation.
type Link struct {
	URL string `json:"url"`
}

// ShareResult reports how a share sheet was dismissed.
type ShareResult struct {
	Channel   string `json:"channel,omitempty"`
	Completed bool   `json:"completed"`
	Error     string `json:"error,omitempty"`
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for optional flag fields.
func Bool(v bool) *bool {
	return &v
}
