package audit

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker around audit appends.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive append failures that
	// opens the breaker.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before a trial append.
	Timeout time.Duration
}

// breakerStore fails appends fast while the underlying store is down.
// Append errors still propagate to the audited call.
type breakerStore struct {
	Store
	cb *gobreaker.CircuitBreaker[struct{}]
}

// WithBreaker wraps next so that after cfg.FailureThreshold consecutive
// append failures further appends fail immediately with
// gobreaker.ErrOpenState until cfg.Timeout elapses. Reads pass through.
func WithBreaker(next Store, cfg BreakerConfig, logger zerolog.Logger) Store {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "audit-store",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("audit store circuit breaker state changed")
		},
	}
	return &breakerStore{
		Store: next,
		cb:    gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (s *breakerStore) Append(ctx context.Context, r *Record) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.Store.Append(ctx, r)
	})
	return err
}

// ErrBreakerOpen reports that audit appends are currently failing fast.
var ErrBreakerOpen = errors.New("audit store circuit breaker open")

// HealthProbe reports ErrBreakerOpen while store is a breaker-guarded store
// whose breaker is open. Other stores are always healthy.
func HealthProbe(store Store) func(context.Context) error {
	return func(context.Context) error {
		if bs, ok := store.(*breakerStore); ok && bs.cb.State() == gobreaker.StateOpen {
			return ErrBreakerOpen
		}
		return nil
	}
}
