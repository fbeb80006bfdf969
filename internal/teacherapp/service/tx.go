package service

import (
	"context"
	"sync"

	dErrors "coursehub/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for a unit of work. Stores
// called with the callback's context join the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Snapshotter is implemented by in-memory stores that can roll back.
type Snapshotter interface {
	Snapshot() (restore func())
}

type inMemoryTxKey struct{}

// InMemoryTx serializes units of work with one lock and restores every
// registered store when the callback fails.
type InMemoryTx struct {
	mu     sync.Mutex
	stores []Snapshotter
}

func NewInMemoryTx(stores ...Snapshotter) *InMemoryTx {
	return &InMemoryTx{stores: stores}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if ctx.Value(inMemoryTxKey{}) == t {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.Snapshot())
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(restores)
			panic(r)
		}
		if err != nil {
			rollback(restores)
		}
	}()

	if err := fn(context.WithValue(ctx, inMemoryTxKey{}, t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}

func rollback(restores []func()) {
	for i := len(restores) - 1; i >= 0; i-- {
		restores[i]()
	}
}

// snapshotters collects the stores that can take part in an in-memory tx.
func snapshotters(stores ...any) []Snapshotter {
	var out []Snapshotter
	for _, s := range stores {
		if sn, ok := s.(Snapshotter); ok {
			out = append(out, sn)
		}
	}
	return out
}
