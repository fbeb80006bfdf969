package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coursehub/pkg/domain-errors"
)

type counterStore struct {
	n int
}

func (c *counterStore) Snapshot() func() {
	saved := c.n
	return func() { c.n = saved }
}

func TestInMemoryTx(t *testing.T) {
	t.Run("error restores every store", func(t *testing.T) {
		a, b := &counterStore{n: 1}, &counterStore{n: 2}
		tx := NewInMemoryTx(a, b)

		err := tx.RunInTx(context.Background(), func(context.Context) error {
			a.n, b.n = 10, 20
			return errors.New("boom")
		})
		require.Error(t, err)
		assert.Equal(t, 1, a.n)
		assert.Equal(t, 2, b.n)
	})

	t.Run("success keeps changes", func(t *testing.T) {
		a := &counterStore{}
		tx := NewInMemoryTx(a)
		require.NoError(t, tx.RunInTx(context.Background(), func(context.Context) error {
			a.n = 5
			return nil
		}))
		assert.Equal(t, 5, a.n)
	})

	t.Run("panic restores and re-panics", func(t *testing.T) {
		a := &counterStore{n: 1}
		tx := NewInMemoryTx(a)
		assert.Panics(t, func() {
			_ = tx.RunInTx(context.Background(), func(context.Context) error {
				a.n = 99
				panic("bad")
			})
		})
		assert.Equal(t, 1, a.n)
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		a := &counterStore{n: 1}
		tx := NewInMemoryTx(a)
		err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
			a.n = 2
			require.NoError(t, tx.RunInTx(ctx, func(context.Context) error {
				a.n = 3
				return nil
			}))
			return errors.New("outer fails")
		})
		require.Error(t, err)
		assert.Equal(t, 1, a.n)
	})

	t.Run("cancelled context never runs the callback", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ran := false
		err := NewInMemoryTx().RunInTx(ctx, func(context.Context) error {
			ran = true
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, ran)
	})
}

func TestSnapshotters(t *testing.T) {
	a := &counterStore{}
	got := snapshotters(a, "not a store", nil, &counterStore{})
	assert.Len(t, got, 2)
}
