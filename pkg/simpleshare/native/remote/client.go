package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tendant/simple-share/internal/jsoncodec"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/api"
)

var (
	_ simpleshare.NativeBoundary = (*Client)(nil)
	_ simpleshare.Availability   = (*Client)(nil)
	_ simpleshare.Capabilities   = (*Client)(nil)
)

// Client is a native boundary backed by a NativeHandler served over HTTP.
// Failures reported by the server are returned as *simpleshare.NativeError
// with the server's code and message. Transport failures are retried with
// exponential backoff; boundary failures are never retried here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries uint64

	mu           sync.RWMutex
	available    bool
	capabilities map[simpleshare.Capability]bool

	// Set after a failed Refresh. Available retries once nextRefresh passes.
	refreshFailed  bool
	refreshing     bool
	nextRefresh    time.Time
	refreshBackOff *backoff.ExponentialBackOff
	refreshTimeout time.Duration
	now            func() time.Time
}

// Option configures the remote client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: timeout}
		cl.refreshTimeout = timeout
	}
}

// WithRefreshInterval sets the first delay before Available retries a failed
// Refresh. Later retries back off exponentially up to maxInterval.
func WithRefreshInterval(initial, maxInterval time.Duration) Option {
	return func(cl *Client) {
		cl.refreshBackOff.InitialInterval = initial
		cl.refreshBackOff.MaxInterval = maxInterval
		cl.refreshBackOff.Reset()
	}
}

// WithClock sets the time source used to schedule refresh retries
func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

// WithLogger sets the logger for transport retries
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithMaxRetries sets how many times a transport failure is retried
func WithMaxRetries(n uint64) Option {
	return func(cl *Client) {
		cl.maxRetries = n
	}
}

// New creates a client for the boundary served at baseURL. Until Refresh
// succeeds the boundary is assumed available with every capability.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
		maxRetries: 2,
		available:  true,

		refreshBackOff: newRefreshBackOff(),
		refreshTimeout: 10 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newRefreshBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 5 * time.Minute
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Refresh fetches availability and capabilities from the server. On failure
// the boundary is marked unavailable, a retry is scheduled for Available and
// the error is returned.
func (c *Client) Refresh(ctx context.Context) error {
	var resp api.CapabilitiesResponse
	err := c.do(ctx, http.MethodGet, "/capabilities", nil, &resp)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if err != nil {
		c.available = false
		c.refreshFailed = true
		c.nextRefresh = c.now().Add(c.refreshBackOff.NextBackOff())
		return err
	}
	c.refreshFailed = false
	c.refreshBackOff.Reset()
	c.available = resp.Available
	c.capabilities = make(map[simpleshare.Capability]bool, len(resp.Capabilities))
	for _, name := range resp.Capabilities {
		c.capabilities[simpleshare.Capability(name)] = true
	}
	return nil
}

// Available reports the availability seen by the last Refresh. After a
// failed Refresh it retries once the backoff delay has elapsed.
func (c *Client) Available() bool {
	c.mu.Lock()
	if c.available || !c.refreshFailed || c.refreshing || c.now().Before(c.nextRefresh) {
		available := c.available
		c.mu.Unlock()
		return available
	}
	c.refreshing = true
	c.mu.Unlock()

	timeout := c.refreshTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Refresh(ctx); err != nil {
		c.logger.Debug("Native boundary refresh failed", "base_url", c.baseURL, "error", err)
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// Supports reports whether the last Refresh listed capability
func (c *Client) Supports(capability simpleshare.Capability) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.capabilities == nil {
		return true
	}
	return c.capabilities[capability]
}

// NativeBoundary operations

func (c *Client) CreateReference(ctx context.Context, payload simpleshare.Payload) (simpleshare.HandleID, error) {
	var resp api.CreateReferenceResponse
	if err := c.do(ctx, http.MethodPost, "/references", api.CreateReferenceRequest{Payload: payload}, &resp); err != nil {
		return "", err
	}
	return simpleshare.HandleID(resp.Handle), nil
}

func (c *Client) ReleaseReference(ctx context.Context, handle simpleshare.HandleID) error {
	return c.do(ctx, http.MethodDelete, referencePath(handle, ""), nil, nil)
}

func (c *Client) LogEvent(ctx context.Context, handles []simpleshare.HandleID, name string, payload simpleshare.Payload) error {
	req := api.LogEventRequest{Name: name, Handles: make([]string, len(handles)), Payload: payload}
	for i, h := range handles {
		req.Handles[i] = string(h)
	}
	return c.do(ctx, http.MethodPost, "/events", req, nil)
}

func (c *Client) GenerateShortURL(ctx context.Context, handle simpleshare.HandleID, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.Link, error) {
	var resp api.LinkResponse
	req := api.LinkRequest{LinkProperties: linkProperties, ControlParams: controlParams}
	if err := c.do(ctx, http.MethodPost, referencePath(handle, "links"), req, &resp); err != nil {
		return nil, err
	}
	return &simpleshare.Link{URL: resp.URL}, nil
}

func (c *Client) ShowShareSheet(ctx context.Context, handle simpleshare.HandleID, shareOptions simpleshare.Payload, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.ShareResult, error) {
	var resp api.ShareSheetResponse
	req := api.ShareSheetRequest{ShareOptions: shareOptions, LinkProperties: linkProperties, ControlParams: controlParams}
	if err := c.do(ctx, http.MethodPost, referencePath(handle, "share-sheet"), req, &resp); err != nil {
		return nil, err
	}
	return &simpleshare.ShareResult{Channel: resp.Channel, Completed: resp.Completed, Error: resp.Error}, nil
}

func (c *Client) RegisterView(ctx context.Context, handle simpleshare.HandleID) error {
	return c.do(ctx, http.MethodPost, referencePath(handle, "views"), struct{}{}, nil)
}

func (c *Client) UserCompletedAction(ctx context.Context, handle simpleshare.HandleID, action string, state simpleshare.Payload) error {
	return c.do(ctx, http.MethodPost, referencePath(handle, "actions"), api.ActionRequest{Action: action, State: state}, nil)
}

func (c *Client) ListOnSpotlight(ctx context.Context, handle simpleshare.HandleID) error {
	return c.do(ctx, http.MethodPost, referencePath(handle, "spotlight"), struct{}{}, nil)
}

func referencePath(handle simpleshare.HandleID, action string) string {
	p := "/references/" + url.PathEscape(string(handle))
	if action != "" {
		p += "/" + action
	}
	return p
}

// do sends one request, retrying transport failures. A non-2xx response is
// decoded into a *simpleshare.NativeError and returned without retry.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = jsoncodec.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)

	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return backoff.Permanent(decodeError(resp))
		}
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := jsoncodec.Decode(resp.Body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Native transport failed, retrying", "method", method, "path", path, "wait", wait, "error", err)
	}

	return backoff.RetryNotify(operation, policy, notify)
}

func decodeError(resp *http.Response) error {
	var body api.ErrorResponse
	if err := jsoncodec.Decode(resp.Body, &body); err != nil || body.Code == "" {
		return &simpleshare.NativeError{
			Code:    api.CodeInternal,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return &simpleshare.NativeError{Code: body.Code, Message: body.Message}
}
