package config

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/api"
	"github.com/tendant/simple-share/pkg/simpleshare/native/memory"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, NativeMemory, cfg.NativeType)
	assert.Equal(t, 10*time.Second, cfg.NativeTimeout)
	assert.Equal(t, memory.DefaultLinkBaseURL, cfg.LinkBaseURL)
	assert.Nil(t, cfg.Capabilities)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "remote without url", opts: []Option{WithNative(NativeRemote, "")}, wantErr: ErrNativeRequired},
		{name: "postgres without url", opts: []Option{WithNative(NativePostgres, "")}, wantErr: ErrNativeRequired},
		{name: "unknown type", opts: []Option{WithNative("carrier-pigeon", "")}},
		{name: "zero timeout", opts: []Option{WithNativeTimeout(0)}},
		{name: "negative ttl", opts: []Option{WithHandleTTL(-time.Second)}},
		{name: "unknown capability", opts: []Option{WithCapabilities("hologram")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opts...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBuildService_Memory(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg, err := Load(
		WithCapabilities(simpleshare.CapabilitySpotlight),
		WithMetrics(reg),
	)
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)

	assert.True(t, svc.Available())
	assert.True(t, svc.Supports(simpleshare.CapabilitySpotlight))
	assert.False(t, svc.Supports(simpleshare.CapabilityShareSheet))

	ref, err := svc.CreateReference(context.Background(), "item/1", simpleshare.ContentMetadata{Title: "Shoes"})
	require.NoError(t, err)
	assert.True(t, ref.HasHandle())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestBuildService_None(t *testing.T) {
	cfg, err := Load(WithNative(NativeNone, ""))
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.False(t, svc.Available())

	ref, err := svc.CreateReference(context.Background(), "item/1", simpleshare.ContentMetadata{})
	require.NoError(t, err)
	assert.False(t, ref.HasHandle())
}

func TestBuildService_Remote(t *testing.T) {
	native := memory.New()
	server := httptest.NewServer(api.NewNativeHandler(native, nil).Routes())
	defer server.Close()

	cfg, err := Load(WithNative(NativeRemote, server.URL), WithDebugNative(true))
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	require.True(t, svc.Available())

	ref, err := svc.CreateReference(context.Background(), "item/2", simpleshare.ContentMetadata{Title: "Hat"})
	require.NoError(t, err)

	_, ok := native.Reference(ref.Handle())
	assert.True(t, ok)
}

func TestParseCapabilities(t *testing.T) {
	assert.Nil(t, ParseCapabilities(""))
	assert.Nil(t, ParseCapabilities("all"))
	assert.Equal(t,
		[]simpleshare.Capability{simpleshare.CapabilitySpotlight, simpleshare.CapabilityShareSheet},
		ParseCapabilities(" spotlight , share_sheet ,"))
	assert.Equal(t, []simpleshare.Capability{}, ParseCapabilities(","))
}
