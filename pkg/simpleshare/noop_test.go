package simpleshare_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/native/memory"
)

func TestUnavailableNative(t *testing.T) {
	n := simpleshare.NewUnavailableNative()
	_, err := n.CreateReference(context.Background(), simpleshare.Payload{})
	assert.ErrorIs(t, err, simpleshare.ErrNativeUnavailable)

	a, ok := n.(simpleshare.Availability)
	require.True(t, ok)
	assert.False(t, a.Available())
}

func TestLoggingNative(t *testing.T) {
	logger, buf := newCapturingLogger()
	inner := memory.New(memory.WithCapabilities(simpleshare.CapabilitySpotlight))
	n := simpleshare.NewLoggingNative(inner, logger)

	assert.True(t, n.Available())
	assert.False(t, n.Supports(simpleshare.CapabilityShareSheet))

	svc := setupService(t, n)
	ref := createRef(t, svc, "item/1")
	inner.Evict(ref.Handle())
	require.NoError(t, svc.RegisterView(context.Background(), ref))

	assert.Equal(t, 2, inner.CreateCalls())
	assert.Contains(t, buf.String(), `"op":"create_reference"`)
	assert.Contains(t, buf.String(), "Native call failed")
}

func TestMetricsNative(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := simpleshare.NewMetrics(reg)
	require.NoError(t, metrics.Register())

	inner := memory.New()
	n := simpleshare.NewMetricsNative(inner, metrics)
	assert.True(t, n.Available())
	ctx := context.Background()

	handle, err := n.CreateReference(ctx, simpleshare.Payload{"canonicalIdentifier": "item/1"})
	require.NoError(t, err)
	require.NoError(t, n.RegisterView(ctx, handle))
	require.Error(t, n.RegisterView(ctx, "deadbeef"))

	expected := `
# HELP simpleshare_native_calls_total Native boundary calls by operation and outcome
# TYPE simpleshare_native_calls_total counter
simpleshare_native_calls_total{operation="create_reference",outcome="ok"} 1
simpleshare_native_calls_total{operation="register_view",outcome="ok"} 1
simpleshare_native_calls_total{operation="register_view",outcome="stale_handle"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"simpleshare_native_calls_total"))
}
