package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/tendant/simple-share/internal/jsoncodec"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DefaultLinkBaseURL is the base of links generated when none is configured
const DefaultLinkBaseURL = "https://share.local"

// CodeUnsupported is returned for operations a headless boundary cannot perform
const CodeUnsupported = "unsupported"

const schema = `
CREATE TABLE IF NOT EXISTS share_reference (
	handle     UUID PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS share_event (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	handles    JSONB NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS share_link (
	code            TEXT PRIMARY KEY,
	handle          UUID NOT NULL,
	url             TEXT NOT NULL,
	link_properties JSONB NOT NULL,
	control_params  JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);`

var (
	_ simpleshare.NativeBoundary = (*Native)(nil)
	_ simpleshare.Capabilities   = (*Native)(nil)
)

// Native is a headless native boundary persisting references, events and
// links in PostgreSQL. Handles expire after the configured TTL; an expired
// or unknown handle fails with the reserved handle_not_found code.
type Native struct {
	db          DBTX
	handleTTL   time.Duration
	linkBaseURL string
	now         func() time.Time
}

// Option configures the postgres boundary
type Option func(*Native)

// WithHandleTTL sets how long a handle stays valid. Zero means forever.
func WithHandleTTL(ttl time.Duration) Option {
	return func(n *Native) {
		n.handleTTL = ttl
	}
}

// WithLinkBaseURL sets the base URL of generated links
func WithLinkBaseURL(baseURL string) Option {
	return func(n *Native) {
		n.linkBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClock replaces the time source used for creation and expiry
func WithClock(now func() time.Time) Option {
	return func(n *Native) {
		n.now = now
	}
}

// New creates a new PostgreSQL native boundary
func New(db DBTX, opts ...Option) *Native {
	n := &Native{
		db:          db,
		linkBaseURL: DefaultLinkBaseURL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewWithPool creates a new PostgreSQL native boundary with connection pool
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Native {
	return New(pool, opts...)
}

// EnsureSchema creates the boundary's tables if they do not exist
func (n *Native) EnsureSchema(ctx context.Context) error {
	if _, err := n.db.Exec(ctx, schema); err != nil {
		return n.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Supports reports whether capability is available. A database has no share
// sheet to present.
func (n *Native) Supports(capability simpleshare.Capability) bool {
	return capability != simpleshare.CapabilityShareSheet
}

// Error handling helper
func (n *Native) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "share_link") {
				return &simpleshare.NativeError{Code: "alias_taken", Message: "link alias already in use"}
			}
			return fmt.Errorf("duplicate entry")
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - call EnsureSchema first")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// NativeBoundary operations

func (n *Native) CreateReference(ctx context.Context, payload simpleshare.Payload) (simpleshare.HandleID, error) {
	data, err := jsoncodec.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	now := n.now().UTC()
	var expiresAt *time.Time
	if n.handleTTL > 0 {
		t := now.Add(n.handleTTL)
		expiresAt = &t
	}

	handle := uuid.New()
	query := `
		INSERT INTO share_reference (handle, payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := n.db.Exec(ctx, query, handle, data, now, expiresAt); err != nil {
		return "", n.handlePostgresError("create reference", err)
	}

	return simpleshare.HandleID(handle.String()), nil
}

func (n *Native) ReleaseReference(ctx context.Context, handle simpleshare.HandleID) error {
	id, err := uuid.Parse(string(handle))
	if err != nil {
		return nil
	}
	if _, err := n.db.Exec(ctx, `DELETE FROM share_reference WHERE handle = $1`, id); err != nil {
		return n.handlePostgresError("release reference", err)
	}
	return nil
}

func (n *Native) LogEvent(ctx context.Context, handles []simpleshare.HandleID, name string, payload simpleshare.Payload) error {
	for _, h := range handles {
		if _, err := n.lookup(ctx, h); err != nil {
			return err
		}
	}
	if handles == nil {
		handles = []simpleshare.HandleID{}
	}
	return n.insertEvent(ctx, name, handles, payload)
}

func (n *Native) GenerateShortURL(ctx context.Context, handle simpleshare.HandleID, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.Link, error) {
	id, err := n.lookup(ctx, handle)
	if err != nil {
		return nil, err
	}

	code := strings.ToLower(ulid.Make().String())
	if alias, ok := linkProperties["alias"].(string); ok && alias != "" {
		code = alias
	}
	url := fmt.Sprintf("%s/%s", n.linkBaseURL, code)

	lp, err := jsoncodec.Marshal(orEmpty(linkProperties))
	if err != nil {
		return nil, fmt.Errorf("failed to encode link properties: %w", err)
	}
	cp, err := jsoncodec.Marshal(orEmpty(controlParams))
	if err != nil {
		return nil, fmt.Errorf("failed to encode control params: %w", err)
	}

	query := `
		INSERT INTO share_link (code, handle, url, link_properties, control_params, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := n.db.Exec(ctx, query, code, id, url, lp, cp, n.now().UTC()); err != nil {
		return nil, n.handlePostgresError("generate short url", err)
	}

	return &simpleshare.Link{URL: url}, nil
}

func (n *Native) ShowShareSheet(ctx context.Context, handle simpleshare.HandleID, shareOptions simpleshare.Payload, linkProperties simpleshare.Payload, controlParams simpleshare.Payload) (*simpleshare.ShareResult, error) {
	return nil, &simpleshare.NativeError{Code: CodeUnsupported, Message: "share sheet is not available on a headless boundary"}
}

func (n *Native) RegisterView(ctx context.Context, handle simpleshare.HandleID) error {
	return n.recordHandleEvent(ctx, "$view", handle, nil)
}

func (n *Native) UserCompletedAction(ctx context.Context, handle simpleshare.HandleID, action string, state simpleshare.Payload) error {
	return n.recordHandleEvent(ctx, action, handle, state)
}

func (n *Native) ListOnSpotlight(ctx context.Context, handle simpleshare.HandleID) error {
	return n.recordHandleEvent(ctx, "$spotlight", handle, nil)
}

func (n *Native) recordHandleEvent(ctx context.Context, name string, handle simpleshare.HandleID, payload simpleshare.Payload) error {
	if _, err := n.lookup(ctx, handle); err != nil {
		return err
	}
	return n.insertEvent(ctx, name, []simpleshare.HandleID{handle}, payload)
}

func (n *Native) insertEvent(ctx context.Context, name string, handles []simpleshare.HandleID, payload simpleshare.Payload) error {
	h, err := jsoncodec.Marshal(handles)
	if err != nil {
		return fmt.Errorf("failed to encode handles: %w", err)
	}
	p, err := jsoncodec.Marshal(orEmpty(payload))
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	query := `
		INSERT INTO share_event (id, name, handles, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := n.db.Exec(ctx, query, ulid.Make().String(), name, h, p, n.now().UTC()); err != nil {
		return n.handlePostgresError("log event", err)
	}
	return nil
}

// lookup resolves a live handle. Malformed, unknown and expired handles all
// fail with handle_not_found.
func (n *Native) lookup(ctx context.Context, handle simpleshare.HandleID) (uuid.UUID, error) {
	id, err := uuid.Parse(string(handle))
	if err != nil {
		return uuid.Nil, simpleshare.NewHandleNotFoundError(handle)
	}

	query := `
		SELECT handle FROM share_reference
		WHERE handle = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var found uuid.UUID
	if err := n.db.QueryRow(ctx, query, id, n.now().UTC()).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, simpleshare.NewHandleNotFoundError(handle)
		}
		return uuid.Nil, n.handlePostgresError("lookup reference", err)
	}
	return found, nil
}

// Reference returns the payload stored for a live handle
func (n *Native) Reference(ctx context.Context, handle simpleshare.HandleID) (simpleshare.Payload, error) {
	id, err := n.lookup(ctx, handle)
	if err != nil {
		return nil, err
	}

	var data []byte
	if err := n.db.QueryRow(ctx, `SELECT payload FROM share_reference WHERE handle = $1`, id).Scan(&data); err != nil {
		return nil, n.handlePostgresError("get reference", err)
	}

	var payload simpleshare.Payload
	if err := jsoncodec.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return payload, nil
}

// PurgeExpired deletes expired references and returns how many were removed
func (n *Native) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := n.db.Exec(ctx, `DELETE FROM share_reference WHERE expires_at IS NOT NULL AND expires_at <= $1`, n.now().UTC())
	if err != nil {
		return 0, n.handlePostgresError("purge expired", err)
	}
	return tag.RowsAffected(), nil
}

func orEmpty(p simpleshare.Payload) simpleshare.Payload {
	if p == nil {
		return simpleshare.Payload{}
	}
	return p
}
