package simpleshare

import "context"

// guardedNative is the single availability check in front of the native
// boundary. When the boundary is absent every call resolves to a zero result
// with no error, and calls naming an empty handle are no-ops, so operations
// built on top of it never re-check either condition.
type guardedNative struct {
	inner NativeBoundary
}

func newGuardedNative(inner NativeBoundary) *guardedNative {
	return &guardedNative{inner: inner}
}

func (g *guardedNative) available() bool {
	if g.inner == nil {
		return false
	}
	if a, ok := g.inner.(Availability); ok {
		return a.Available()
	}
	return true
}

func (g *guardedNative) supports(capability Capability) bool {
	if !g.available() {
		return false
	}
	if c, ok := g.inner.(Capabilities); ok {
		return c.Supports(capability)
	}
	return true
}

func (g *guardedNative) CreateReference(ctx context.Context, payload Payload) (HandleID, error) {
	if !g.available() {
		return "", nil
	}
	return g.inner.CreateReference(ctx, payload)
}

func (g *guardedNative) ReleaseReference(ctx context.Context, handle HandleID) error {
	if !g.available() || handle == "" {
		return nil
	}
	return g.inner.ReleaseReference(ctx, handle)
}

func (g *guardedNative) LogEvent(ctx context.Context, handles []HandleID, name string, payload Payload) error {
	if !g.available() {
		return nil
	}
	return g.inner.LogEvent(ctx, handles, name, payload)
}

func (g *guardedNative) GenerateShortURL(ctx context.Context, handle HandleID, linkProperties Payload, controlParams Payload) (*Link, error) {
	if !g.available() || handle == "" {
		return nil, nil
	}
	return g.inner.GenerateShortURL(ctx, handle, linkProperties, controlParams)
}

func (g *guardedNative) ShowShareSheet(ctx context.Context, handle HandleID, shareOptions Payload, linkProperties Payload, controlParams Payload) (*ShareResult, error) {
	if !g.available() || handle == "" {
		return nil, nil
	}
	return g.inner.ShowShareSheet(ctx, handle, shareOptions, linkProperties, controlParams)
}

func (g *guardedNative) RegisterView(ctx context.Context, handle HandleID) error {
	if !g.available() || handle == "" {
		return nil
	}
	return g.inner.RegisterView(ctx, handle)
}

func (g *guardedNative) UserCompletedAction(ctx context.Context, handle HandleID, action string, state Payload) error {
	if !g.available() || handle == "" {
		return nil
	}
	return g.inner.UserCompletedAction(ctx, handle, action, state)
}

func (g *guardedNative) ListOnSpotlight(ctx context.Context, handle HandleID) error {
	if !g.available() || handle == "" {
		return nil
	}
	return g.inner.ListOnSpotlight(ctx, handle)
}
