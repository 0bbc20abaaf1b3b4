package simpleshare

import (
	"context"
)

// Hook system allows extending reference and event behavior without
// modifying core code. Hooks are called at specific points in a reference's
// lifecycle and around the recovery protocol.

// Hooks defines all available lifecycle hooks
type Hooks struct {
	// Reference lifecycle hooks
	BeforeCreate []BeforeCreateHook
	AfterCreate  []AfterCreateHook

	// Recovery hooks
	OnHandleRecreated []HandleRecreatedHook

	// Error hooks
	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// BeforeCreateHook is called before a reference is registered. The payload
// may be amended; returning an error aborts the creation.
type BeforeCreateHook func(hctx *HookContext, canonicalIdentifier string, payload Payload) error

// AfterCreateHook is called after a reference received its first handle
type AfterCreateHook func(hctx *HookContext, ref *ContentReference) error

// HandleRecreatedHook is called after the recovery protocol replaced a stale handle
type HandleRecreatedHook func(hctx *HookContext, ref *ContentReference, staleHandle HandleID) error

// ErrorHook is called when an operation fails
type ErrorHook func(hctx *HookContext, operation string, err error)

func (h *Hooks) executeBeforeCreate(ctx context.Context, canonicalIdentifier string, payload Payload) error {
	if h == nil || len(h.BeforeCreate) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeCreate {
		if err := hook(hctx, canonicalIdentifier, payload); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeAfterCreate(ctx context.Context, ref *ContentReference) error {
	if h == nil || len(h.AfterCreate) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterCreate {
		if err := hook(hctx, ref); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeHandleRecreated(ctx context.Context, ref *ContentReference, stale HandleID) error {
	if h == nil || len(h.OnHandleRecreated) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnHandleRecreated {
		if err := hook(hctx, ref, stale); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeError(ctx context.Context, operation string, err error) {
	if h == nil || len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}
