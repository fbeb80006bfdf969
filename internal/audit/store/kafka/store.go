package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"coursehub/internal/audit"
	"coursehub/pkg/platform/circuit"
)

// Producer is the subset of the platform producer the sink needs.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Store publishes events as JSON keyed by user id, so one user's events stay
// ordered within a partition.
type Store struct {
	producer Producer
	breaker  *circuit.Breaker
	fallback audit.Store
	logger   *slog.Logger
}

type Option func(*Store)

// WithFallback routes events to fallback while the breaker is open instead
// of waiting on an unhealthy broker for every emit.
func WithFallback(breaker *circuit.Breaker, fallback audit.Store) Option {
	return func(s *Store) {
		s.breaker = breaker
		s.fallback = fallback
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(producer Producer, opts ...Option) *Store {
	s := &Store{producer: producer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lifecycle event: %w", err)
	}
	if s.breaker == nil {
		return s.producer.Publish(ctx, []byte(event.UserID.String()), payload)
	}

	if !s.breaker.Allow() {
		return s.fallback.Append(ctx, event)
	}
	if err := s.producer.Publish(ctx, []byte(event.UserID.String()), payload); err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "lifecycle event sink degraded",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return s.fallback.Append(ctx, event)
		}
		return err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "lifecycle event sink recovered", "breaker", s.breaker.Name())
	}
	return nil
}
