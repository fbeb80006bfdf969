package audit

import (
	"context"
	"log/slog"
	"time"

	id "coursehub/pkg/domain"
)

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by sinks that can be read back (memory).
type Lister interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Publisher emits lifecycle events with fail-open semantics: a sink failure
// is logged and never surfaces to the business operation.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "lifecycle event emit failed",
			"action", event.Action,
			"user_id", event.UserID.String(),
			"error", err,
		)
	}
}

// List returns the events recorded for a user when the sink supports reads.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Event, error) {
	l, ok := p.store.(Lister)
	if !ok {
		return nil, nil
	}
	return l.ListByUser(ctx, userID)
}
