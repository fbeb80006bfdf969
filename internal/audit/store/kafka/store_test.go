package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/audit"
	"coursehub/internal/audit/store/memory"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/circuit"
)

type captureProducer struct {
	key, value []byte
}

func (c *captureProducer) Publish(_ context.Context, key, value []byte) error {
	c.key, c.value = key, value
	return nil
}

func TestStore_Append(t *testing.T) {
	userID := id.UserID(uuid.New())
	p := &captureProducer{}

	err := New(p).Append(context.Background(), audit.Event{
		Action:        audit.ActionCredentialsReconciled,
		UserID:        userID,
		ApplicationID: 7,
		Attributes:    map[string]string{"kind": "certificate"},
	})
	require.NoError(t, err)

	assert.Equal(t, userID.String(), string(p.key))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(p.value, &decoded))
	assert.Equal(t, "teacher_credentials_reconciled", decoded["action"])
	assert.Equal(t, userID.String(), decoded["user_id"])
	assert.EqualValues(t, 7, decoded["application_id"])
}

type failingProducer struct {
	calls int
	err   error
}

func (f *failingProducer) Publish(context.Context, []byte, []byte) error {
	f.calls++
	return f.err
}

func TestStore_AppendFallsBackWhenBreakerOpens(t *testing.T) {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	p := &failingProducer{err: errors.New("broker unreachable")}
	fallback := memory.NewInMemoryStore()
	s := New(p,
		WithFallback(circuit.New("lifecycle-kafka", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)), fallback),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	event := audit.Event{Action: audit.ActionApplicationCreated, UserID: userID}

	require.Error(t, s.Append(ctx, event), "below the threshold the broker error surfaces")
	require.NoError(t, s.Append(ctx, event), "opening the breaker hands the event to the fallback")
	require.NoError(t, s.Append(ctx, event))
	assert.Equal(t, 2, p.calls, "an open breaker skips the broker")

	stored, err := fallback.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
