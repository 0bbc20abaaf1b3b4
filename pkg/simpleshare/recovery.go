package simpleshare

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tendant/simple-share/pkg/simpleshare"

// nativeCall performs one native operation against the current handles of
// the references it was invoked with, in order.
type nativeCall func(ctx context.Context, handles []HandleID) error

// Recovery failure reasons, used as metric labels.
const (
	reasonUnparseable      = "unparseable_message"
	reasonUnknownHandle    = "unknown_handle"
	reasonAlreadyRecreated = "already_recreated"
	reasonRecreateFailed   = "recreate_failed"
)

// recoverer runs native calls and transparently replaces stale handles.
//
// A call that fails with CodeHandleNotFound is retried after recreating the
// one reference whose handle the failure names. Every other failure, and any
// stale-handle failure that cannot be tied to exactly one reference, is
// returned unchanged. Each reference is recreated at most once per
// invocation: both the stale handle and its replacement are remembered, and a
// later failure naming either is returned as-is.
type recoverer struct {
	refs    *referenceManager
	logger  *slog.Logger
	metrics *Metrics
	hooks   *Hooks
}

func (r *recoverer) invoke(ctx context.Context, operation string, refs []*ContentReference, call nativeCall) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "simpleshare."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("simpleshare.operation", operation),
		attribute.Int("simpleshare.references", len(refs)),
	)

	recreated := make(map[HandleID]struct{})
	for attempt := 1; ; attempt++ {
		err := call(ctx, handlesOf(refs))
		if r.refs.native.available() {
			r.metrics.recordCall(operation, err)
		}
		if err == nil {
			span.SetAttributes(attribute.Int("simpleshare.attempts", attempt))
			return nil
		}

		ref, stale, reason := recoveryTarget(err, refs, recreated)
		if ref == nil {
			if reason != "" {
				r.metrics.recordRecoveryFailure(operation, reason)
				r.logger.Warn("Stale content handle could not be recovered",
					"operation", operation, "stale_handle", stale, "reason", reason)
			}
			r.fail(ctx, span, operation, err)
			return err
		}

		handle, rerr := r.refs.recreate(ctx, ref)
		if rerr != nil {
			r.metrics.recordRecoveryFailure(operation, reasonRecreateFailed)
			r.fail(ctx, span, operation, rerr)
			return rerr
		}
		recreated[stale] = struct{}{}
		recreated[handle] = struct{}{}

		r.metrics.recordRecovery(operation)
		r.logger.Info("Recreated stale content handle",
			"operation", operation,
			"canonical_identifier", ref.canonicalIdentifier,
			"stale_handle", stale,
			"handle", handle,
			"attempt", attempt)
		span.AddEvent("handle_recreated")

		if herr := r.hooks.executeHandleRecreated(ctx, ref, stale); herr != nil {
			r.logger.Warn("Handle-recreated hook failed", "canonical_identifier", ref.canonicalIdentifier, "error", herr)
		}
	}
}

func (r *recoverer) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.hooks.executeError(ctx, operation, err)
}

// recoveryTarget decides whether err is a recoverable stale-handle failure
// and, if so, which reference to recreate. A nil reference with an empty
// reason means err is fatal; a non-empty reason names why a stale-handle
// failure could not be recovered.
func recoveryTarget(err error, refs []*ContentReference, recreated map[HandleID]struct{}) (*ContentReference, HandleID, string) {
	var nerr *NativeError
	if !errors.As(err, &nerr) || nerr.Code != CodeHandleNotFound {
		return nil, "", ""
	}

	stale, ok := ParseStaleHandle(nerr.Message)
	if !ok {
		return nil, "", reasonUnparseable
	}
	if _, seen := recreated[stale]; seen {
		return nil, stale, reasonAlreadyRecreated
	}
	for _, ref := range refs {
		if ref != nil && ref.Handle() == stale {
			return ref, stale, ""
		}
	}
	return nil, stale, reasonUnknownHandle
}

func handlesOf(refs []*ContentReference) []HandleID {
	handles := make([]HandleID, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if h := ref.Handle(); h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}
