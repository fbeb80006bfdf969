package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextCarriesTx(t *testing.T) {
	ctx := context.Background()

	_, ok := From(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithTx(ctx, nil), "nil tx leaves the context untouched")

	sqlTx := &sql.Tx{}
	got, ok := From(WithTx(ctx, sqlTx))
	assert.True(t, ok)
	assert.Same(t, sqlTx, got)
}

func TestExecutorPrefersTx(t *testing.T) {
	db := &sql.DB{}
	sqlTx := &sql.Tx{}

	assert.Same(t, db, Executor(context.Background(), db))
	assert.Same(t, sqlTx, Executor(WithTx(context.Background(), sqlTx), db))
}
