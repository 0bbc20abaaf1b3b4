package simpleshare

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// service implements the Service interface
type service struct {
	native     *guardedNative
	logger     *slog.Logger
	metrics    *Metrics
	hooks      *Hooks
	normalizer *Normalizer
	refs       *referenceManager
	recovery   *recoverer

	deprecationOnce sync.Once
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithNative sets the native boundary. Without it every operation is a no-op.
func WithNative(native NativeBoundary) Option {
	return func(s *service) {
		s.native = newGuardedNative(native)
	}
}

// WithLogger sets the structured logger used for warnings and recovery logs
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithMetrics sets the Prometheus metrics collector
func WithMetrics(metrics *Metrics) Option {
	return func(s *service) {
		s.metrics = metrics
	}
}

// WithHooks sets the lifecycle hooks
func WithHooks(hooks *Hooks) Option {
	return func(s *service) {
		s.hooks = hooks
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		native: newGuardedNative(nil),
	}

	for _, option := range options {
		option(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.hooks == nil {
		s.hooks = &Hooks{}
	}
	if s.metrics != nil {
		if err := s.metrics.Register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	s.normalizer = &Normalizer{logger: s.logger, metrics: s.metrics}
	s.refs = &referenceManager{
		native:     s.native,
		normalizer: s.normalizer,
		logger:     s.logger,
		metrics:    s.metrics,
		hooks:      s.hooks,
	}
	s.recovery = &recoverer{
		refs:    s.refs,
		logger:  s.logger,
		metrics: s.metrics,
		hooks:   s.hooks,
	}

	return s, nil
}

func (s *service) Available() bool {
	return s.native.available()
}

func (s *service) Supports(capability Capability) bool {
	return s.native.supports(capability)
}

// Content reference operations

func (s *service) CreateReference(ctx context.Context, canonicalIdentifier string, metadata ContentMetadata) (*ContentReference, error) {
	ref, err := s.refs.create(ctx, canonicalIdentifier, metadata)
	if err != nil {
		s.hooks.executeError(ctx, "create_reference", err)
		return nil, err
	}
	return ref, nil
}

func (s *service) ReleaseReference(ctx context.Context, ref *ContentReference) {
	if ref == nil {
		return
	}
	s.refs.release(ctx, ref)
}

// Sharing operations

func (s *service) GenerateShortURL(ctx context.Context, ref *ContentReference, linkProperties LinkProperties, controlParams ControlParams) (*Link, error) {
	if ref == nil {
		return nil, &ValidationError{Field: "reference", Err: ErrNilReference}
	}

	lp := s.normalizer.LinkProperties(linkProperties)
	cp := s.normalizer.ControlParams(controlParams)

	var link *Link
	err := s.recovery.invoke(ctx, "generate_short_url", []*ContentReference{ref}, func(ctx context.Context, _ []HandleID) error {
		var err error
		link, err = s.native.GenerateShortURL(ctx, ref.Handle(), lp, cp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *service) ShowShareSheet(ctx context.Context, ref *ContentReference, shareOptions ShareOptions, linkProperties LinkProperties, controlParams ControlParams) (*ShareResult, error) {
	if ref == nil {
		return nil, &ValidationError{Field: "reference", Err: ErrNilReference}
	}
	if !s.native.supports(CapabilityShareSheet) {
		s.unsupported(CapabilityShareSheet)
		return nil, nil
	}

	so := s.normalizer.ShareOptions(shareOptions)
	lp := s.normalizer.LinkProperties(linkProperties)
	cp := s.normalizer.ControlParams(controlParams)

	var result *ShareResult
	err := s.recovery.invoke(ctx, "show_share_sheet", []*ContentReference{ref}, func(ctx context.Context, _ []HandleID) error {
		var err error
		result, err = s.native.ShowShareSheet(ctx, ref.Handle(), so, lp, cp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Content engagement operations

func (s *service) RegisterView(ctx context.Context, ref *ContentReference) error {
	if ref == nil {
		return &ValidationError{Field: "reference", Err: ErrNilReference}
	}
	return s.recovery.invoke(ctx, "register_view", []*ContentReference{ref}, func(ctx context.Context, _ []HandleID) error {
		return s.native.RegisterView(ctx, ref.Handle())
	})
}

func (s *service) ListOnSpotlight(ctx context.Context, ref *ContentReference) error {
	if ref == nil {
		return &ValidationError{Field: "reference", Err: ErrNilReference}
	}
	if !s.native.supports(CapabilitySpotlight) {
		s.unsupported(CapabilitySpotlight)
		return nil
	}
	return s.recovery.invoke(ctx, "list_on_spotlight", []*ContentReference{ref}, func(ctx context.Context, _ []HandleID) error {
		return s.native.ListOnSpotlight(ctx, ref.Handle())
	})
}

func (s *service) UserCompletedAction(ctx context.Context, ref *ContentReference, action string, state map[string]interface{}) error {
	if ref == nil {
		return &ValidationError{Field: "reference", Err: ErrNilReference}
	}
	if action == "" {
		return &ValidationError{Field: "action", Err: ErrEventNameRequired}
	}
	s.deprecationOnce.Do(func() {
		s.logger.Warn("UserCompletedAction is deprecated, log a standard or custom event instead")
		s.metrics.recordWarning("deprecated")
	})

	payload := Payload{}
	for k, v := range state {
		payload[k] = cloneValue(v)
	}
	return s.recovery.invoke(ctx, "user_completed_action", []*ContentReference{ref}, func(ctx context.Context, _ []HandleID) error {
		return s.native.UserCompletedAction(ctx, ref.Handle(), action, payload)
	})
}

// Event operations

func (s *service) NewEvent(name string, fields EventFields, refs ...*ContentReference) *Event {
	return newEvent(s, name, fields, refs)
}

func (s *service) LogEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return &ValidationError{Field: "event", Err: ErrEventUnbound}
	}
	if event.name == "" {
		return &ValidationError{Field: "name", Err: ErrEventNameRequired}
	}

	payload := s.normalizer.EventFields(event.fields)
	return s.recovery.invoke(ctx, "log_event", event.references, func(ctx context.Context, handles []HandleID) error {
		return s.native.LogEvent(ctx, handles, event.name, payload)
	})
}

func (s *service) unsupported(capability Capability) {
	if !s.native.available() {
		return
	}
	s.logger.Warn("Operation not supported by the native boundary", "capability", string(capability))
}
