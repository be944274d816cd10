package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/ehr/hospital/internal/platform/auth"
)

// IdentityLookup is the signature of the user lookup run by authentication
// on every request. It is never audited.
const IdentityLookup = "UserService.LoadByUsername"

// ErrWriteFailure wraps a failed audit append. The wrapped business call
// reports it as its own error.
var ErrWriteFailure = errors.New("audit: write failed")

var appendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hospital_audit_appends_total",
	Help: "Audit record appends by entity and result.",
}, []string{"entity", "result"})

// Auditor records one audit entry per successful business-service call.
type Auditor struct {
	store    Store
	logger   zerolog.Logger
	now      func() time.Time
	excluded map[string]struct{}
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithClock overrides the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

// WithExcluded adds call signatures that must never be audited.
func WithExcluded(signatures ...string) Option {
	return func(a *Auditor) {
		for _, s := range signatures {
			entity, action := SplitSignature(s)
			a.excluded[entity+"."+action] = struct{}{}
		}
	}
}

// NewAuditor returns an Auditor appending to store. IdentityLookup is
// always excluded.
func NewAuditor(store Store, logger zerolog.Logger, opts ...Option) *Auditor {
	a := &Auditor{
		store:    store,
		logger:   logger.With().Str("component", "audit").Logger(),
		now:      time.Now,
		excluded: make(map[string]struct{}),
	}
	WithExcluded(IdentityLookup)(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Excluded reports whether signature is exempt from auditing.
func (a *Auditor) Excluded(signature string) bool {
	entity, action := SplitSignature(signature)
	_, ok := a.excluded[entity+"."+action]
	return ok
}

// Record appends an entry for a call to signature that returned
// successfully. The actor is the principal in ctx, or Anonymous.
func (a *Auditor) Record(ctx context.Context, signature string, args ...any) error {
	if a.Excluded(signature) {
		return nil
	}
	entity, action := SplitSignature(signature)

	actor := auth.UsernameFromContext(ctx)
	if actor == "" {
		actor = Anonymous
	}

	rec := &Record{
		Actor:     actor,
		Entity:    entity,
		Action:    action,
		Details:   RenderDetails(action, args),
		Timestamp: a.now().UTC(),
	}
	if err := a.store.Append(ctx, rec); err != nil {
		appendsTotal.WithLabelValues(entity, "error").Inc()
		a.logger.Error().Err(err).
			Str("actor", actor).
			Str("entity", entity).
			Str("action", action).
			Msg("audit append failed")
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, signature, err)
	}

	appendsTotal.WithLabelValues(entity, "ok").Inc()
	a.logger.Debug().
		Str("type", "audit").
		Int64("id", rec.ID).
		Str("actor", actor).
		Str("entity", entity).
		Str("action", action).
		Msg("audit record appended")
	return nil
}

// Call runs fn and, when it succeeds, records an audit entry for signature
// with args. A failing fn produces no record. A failing append replaces
// the result with ErrWriteFailure.
func Call[T any](ctx context.Context, a *Auditor, signature string, fn func(context.Context) (T, error), args ...any) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	if err := a.Record(ctx, signature, args...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Exec is Call for functions without a result value.
func Exec(ctx context.Context, a *Auditor, signature string, fn func(context.Context) error, args ...any) error {
	_, err := Call(ctx, a, signature, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, args...)
	return err
}
