package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

func TestNative_CreateAndEvict(t *testing.T) {
	n := New()
	ctx := context.Background()

	handle, err := n.CreateReference(ctx, simpleshare.Payload{"canonicalIdentifier": "item/1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n.Len())
	assert.Equal(t, 1, n.CreateCalls())

	_, ok := simpleshare.ParseStaleHandle("ident " + string(handle))
	assert.True(t, ok, "issued handles must satisfy the stale-handle grammar")

	require.NoError(t, n.RegisterView(ctx, handle))

	n.Evict(handle)
	err = n.RegisterView(ctx, handle)
	require.True(t, simpleshare.IsHandleNotFound(err))

	var nerr *simpleshare.NativeError
	require.ErrorAs(t, err, &nerr)
	stale, ok := simpleshare.ParseStaleHandle(nerr.Message)
	require.True(t, ok)
	assert.Equal(t, handle, stale)
}

func TestNative_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	n := New(WithHandleTTL(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	handle, err := n.CreateReference(ctx, simpleshare.Payload{})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	require.NoError(t, n.ListOnSpotlight(ctx, handle))

	now = now.Add(time.Second)
	assert.True(t, simpleshare.IsHandleNotFound(n.ListOnSpotlight(ctx, handle)))
	assert.Equal(t, 0, n.Len())
}

func TestNative_FailNextIsConsumedInOrder(t *testing.T) {
	n := New()
	ctx := context.Background()
	first, second := errors.New("first"), errors.New("second")
	n.FailNext(first)
	n.FailNext(second)

	_, err := n.CreateReference(ctx, simpleshare.Payload{})
	assert.Same(t, first, err)
	assert.Same(t, second, n.LogEvent(ctx, nil, "SEARCH", nil))
	assert.NoError(t, n.LogEvent(ctx, nil, "SEARCH", nil))
	assert.Equal(t, 1, n.CreateCalls())
}

func TestNative_LogEventChecksEveryHandle(t *testing.T) {
	n := New()
	ctx := context.Background()
	live, err := n.CreateReference(ctx, simpleshare.Payload{})
	require.NoError(t, err)

	err = n.LogEvent(ctx, []simpleshare.HandleID{live, "abc-def"}, "VIEW_ITEMS", nil)
	var nerr *simpleshare.NativeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "no content reference for ident abc-def", nerr.Message)
	assert.Empty(t, n.Events())
}

func TestNative_GenerateShortURL(t *testing.T) {
	n := New(WithLinkBaseURL("https://s.example.com/"))
	ctx := context.Background()
	handle, err := n.CreateReference(ctx, simpleshare.Payload{})
	require.NoError(t, err)

	link, err := n.GenerateShortURL(ctx, handle, simpleshare.Payload{"alias": "promo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://s.example.com/promo", link.URL)

	link, err = n.GenerateShortURL(ctx, handle, simpleshare.Payload{}, nil)
	require.NoError(t, err)
	assert.Regexp(t, `^https://s\.example\.com/[0-9a-z]{26}$`, link.URL)
}

func TestNative_AvailabilityAndCapabilities(t *testing.T) {
	n := New()
	assert.True(t, n.Available())
	assert.True(t, n.Supports(simpleshare.CapabilityShareSheet))

	n.SetAvailable(false)
	assert.False(t, n.Available())

	limited := New(WithCapabilities())
	assert.False(t, limited.Supports(simpleshare.CapabilitySpotlight))
}
