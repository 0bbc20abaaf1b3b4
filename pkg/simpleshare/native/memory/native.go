package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

// DefaultLinkBaseURL is the base of links generated by the in-memory boundary.
const DefaultLinkBaseURL = "https://share.local"

// RecordedEvent is an event accepted by the in-memory boundary
type RecordedEvent struct {
	ID        string
	Name      string
	Handles   []simpleshare.HandleID
	Payload   simpleshare.Payload
	CreatedAt time.Time
}

// RecordedCall is a single-handle call accepted by the in-memory boundary
// (view, action, spotlight listing, share sheet or link).
type RecordedCall struct {
	Op      string
	Handle  simpleshare.HandleID
	Action  string
	Payload simpleshare.Payload
}

var (
	_ simpleshare.NativeBoundary = (*Native)(nil)
	_ simpleshare.Availability   = (*Native)(nil)
	_ simpleshare.Capabilities   = (*Native)(nil)
)

type reference struct {
	payload   simpleshare.Payload
	createdAt time.Time
}

// Native is an in-memory implementation of simpleshare.NativeBoundary. It
// issues UUID handles, can evict them on demand or after a TTL, and records
// every accepted call for inspection.
type Native struct {
	mu          sync.RWMutex
	references  map[simpleshare.HandleID]*reference
	events      []RecordedEvent
	calls       []RecordedCall
	createCalls int
	failures    []error

	available    bool
	capabilities map[simpleshare.Capability]bool
	handleTTL    time.Duration
	linkBaseURL  string
	now          func() time.Time
}

// Option configures the in-memory boundary
type Option func(*Native)

// WithHandleTTL evicts handles older than ttl. Zero disables expiry.
func WithHandleTTL(ttl time.Duration) Option {
	return func(n *Native) {
		n.handleTTL = ttl
	}
}

// WithCapabilities restricts the supported capabilities to caps. Without
// this option every capability is supported.
func WithCapabilities(caps ...simpleshare.Capability) Option {
	return func(n *Native) {
		n.capabilities = make(map[simpleshare.Capability]bool, len(caps))
		for _, c := range caps {
			n.capabilities[c] = true
		}
	}
}

// WithLinkBaseURL sets the base URL of generated links
func WithLinkBaseURL(baseURL string) Option {
	return func(n *Native) {
		n.linkBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClock replaces the time source used for TTL expiry
func WithClock(now func() time.Time) Option {
	return func(n *Native) {
		n.now = now
	}
}

// New creates a new in-memory native boundary
func New(opts ...Option) *Native {
	n := &Native{
		references:  make(map[simpleshare.HandleID]*reference),
		available:   true,
		linkBaseURL: DefaultLinkBaseURL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Available reports whether the boundary is initialized
func (n *Native) Available() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.available
}

// SetAvailable toggles availability, simulating an uninitialized module
func (n *Native) SetAvailable(available bool) {
	n.mu.Lock()
	n.available = available
	n.mu.Unlock()
}

// Supports reports whether capability is enabled
func (n *Native) Supports(capability simpleshare.Capability) bool {
	if n.capabilities == nil {
		return true
	}
	return n.capabilities[capability]
}

// Evict drops a handle, as the native cache would
func (n *Native) Evict(handle simpleshare.HandleID) {
	n.mu.Lock()
	delete(n.references, handle)
	n.mu.Unlock()
}

// EvictAll drops every handle
func (n *Native) EvictAll() {
	n.mu.Lock()
	n.references = make(map[simpleshare.HandleID]*reference)
	n.mu.Unlock()
}

// FailNext makes the next native call fail with err. Queued failures are
// consumed in order.
func (n *Native) FailNext(err error) {
	n.mu.Lock()
	n.failures = append(n.failures, err)
	n.mu.Unlock()
}

// CreateCalls returns how many times CreateReference was called
func (n *Native) CreateCalls() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.createCalls
}

// Len returns the number of live handles
func (n *Native) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.references)
}

// Reference returns the payload stored for a handle
func (n *Native) Reference(handle simpleshare.HandleID) (simpleshare.Payload, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ref, ok := n.references[handle]
	if !ok {
		return nil, false
	}
	return ref.payload, true
}

// Events returns the recorded events in arrival order
func (n *Native) Events() []RecordedEvent {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]RecordedEvent(nil), n.events...)
}

// Calls returns the recorded single-handle calls in arrival order
func (n *Native) Calls() []RecordedCall {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]RecordedCall(nil), n.calls...)
}

// NativeBoundary operations

func (n *Native) CreateReference(ctx context.Context, payload simpleshare.Payload) (simpleshare.HandleID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.createCalls++
	if err := n.popFailure(); err != nil {
		return "", err
	}

	handle := simpleshare.HandleID(uuid.NewString())
	n.references[handle] = &reference{payload: payload, createdAt: n.now()}
	return handle, nil
}

func (n *Native) ReleaseReference(ctx context.Context, handle simpleshare.HandleID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.popFailure(); err != nil {
		return err
	}
	delete(n.references, handle)
	return nil
}

func (n *Native) LogEvent(ctx context.Context, handles []simpleshare.HandleID, name string, payload simpleshare.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.popFailure(); err != nil {
		return err
	}
	for _, h := range handles {
		if err := n.lookup(h); err != nil {
			return err
		}
	}

	n.events = append(n.events, RecordedEvent{
		ID:        ulid.Make().String(),
		Name:      name,
		Handles:   append([]simpleshare.HandleID(nil), handles...),
		Payload:   payload,
		CreatedAt: n.now(),
	})
	return nil
}

func (n *Native) GenerateShortURL(ctx context.Context, handle simpleshare.HandleID, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.Link, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.record("link", handle, "", linkProperties); err != nil {
		return nil, err
	}

	code := strings.ToLower(ulid.Make().String())
	if alias, ok := linkProperties["alias"].(string); ok && alias != "" {
		code = alias
	}
	return &simpleshare.Link{URL: fmt.Sprintf("%s/%s", n.linkBaseURL, code)}, nil
}

func (n *Native) ShowShareSheet(ctx context.Context, handle simpleshare.HandleID, shareOptions simpleshare.Payload, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.ShareResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.record("share_sheet", handle, "", shareOptions); err != nil {
		return nil, err
	}

	channel, _ := linkProperties["channel"].(string)
	return &simpleshare.ShareResult{Channel: channel, Completed: true}, nil
}

func (n *Native) RegisterView(ctx context.Context, handle simpleshare.HandleID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("view", handle, "", nil)
}

func (n *Native) UserCompletedAction(ctx context.Context, handle simpleshare.HandleID, action string, state simpleshare.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("action", handle, action, state)
}

func (n *Native) ListOnSpotlight(ctx context.Context, handle simpleshare.HandleID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("spotlight", handle, "", nil)
}

// record must be called with n.mu held
func (n *Native) record(op string, handle simpleshare.HandleID, action string, payload simpleshare.Payload) error {
	if err := n.popFailure(); err != nil {
		return err
	}
	if err := n.lookup(handle); err != nil {
		return err
	}
	n.calls = append(n.calls, RecordedCall{Op: op, Handle: handle, Action: action, Payload: payload})
	return nil
}

// lookup must be called with n.mu held
func (n *Native) lookup(handle simpleshare.HandleID) error {
	ref, ok := n.references[handle]
	if !ok {
		return simpleshare.NewHandleNotFoundError(handle)
	}
	if n.handleTTL > 0 && n.now().Sub(ref.createdAt) > n.handleTTL {
		delete(n.references, handle)
		return simpleshare.NewHandleNotFoundError(handle)
	}
	return nil
}

// popFailure must be called with n.mu held
func (n *Native) popFailure() error {
	if len(n.failures) == 0 {
		return nil
	}
	err := n.failures[0]
	n.failures = n.failures[1:]
	return err
}
