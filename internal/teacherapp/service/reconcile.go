package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"coursehub/internal/teacherapp/metrics"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/requestcontext"
)

// Reconciler is the batch create-or-update engine shared by every
// credential kind. T is the record struct, P its pointer and F its input.
type Reconciler[T any, P models.RecordPtr[T], F models.Fields[P]] struct {
	kind     models.Kind
	store    CredentialStore[P]
	tx       StoreTx
	maxBatch int
	metrics  *metrics.Metrics
}

func NewReconciler[T any, P models.RecordPtr[T], F models.Fields[P]](kind models.Kind, store CredentialStore[P], tx StoreTx, maxBatch int, m *metrics.Metrics) *Reconciler[T, P, F] {
	return &Reconciler[T, P, F]{kind: kind, store: store, tx: tx, maxBatch: maxBatch, metrics: m}
}

// Plan is a validated batch split into creates and updates.
type Plan[F any] struct {
	creates []F
	updates []plannedUpdate[F]
}

type plannedUpdate[F any] struct {
	id     id.CredentialID
	fields F
}

func (p *Plan[F]) Size() int {
	return len(p.creates) + len(p.updates)
}

// Prepare checks the batch bound, validates every item and rejects an id
// targeted twice. It touches no store, so a rejected batch has no
// persistence side effect.
func (r *Reconciler[T, P, F]) Prepare(items []models.Item[F]) (*Plan[F], error) {
	if len(items) == 0 || len(items) > r.maxBatch {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch must contain between 1 and %d items", r.maxBatch)).
			WithReason(models.ReasonBatchSizeInvalid).
			WithDetail("size", len(items)).
			WithDetail("max", r.maxBatch)
	}

	plan := &Plan[F]{}
	targets := make(map[id.CredentialID]struct{}, len(items))
	for i, item := range items {
		f := item.Fields()
		if err := f.Validate(); err != nil {
			return nil, itemErr(i, err)
		}
		if recordID, ok := item.Target(); ok {
			if recordID <= 0 {
				return nil, itemErr(i, dErrors.New(dErrors.CodeValidation, "id must be positive").WithDetail("field", "id"))
			}
			if _, dup := targets[recordID]; dup {
				return nil, itemErr(i, dErrors.New(dErrors.CodeValidation, "duplicate id").WithDetail("field", "id"))
			}
			targets[recordID] = struct{}{}
			plan.updates = append(plan.updates, plannedUpdate[F]{id: recordID, fields: f})
			continue
		}
		plan.creates = append(plan.creates, f)
	}
	return plan, nil
}

func itemErr(i int, cause error) error {
	msg := cause.Error()
	var field any
	if de, ok := dErrors.As(cause); ok {
		msg = de.Message
		field = de.Details["field"]
	}
	e := dErrors.New(dErrors.CodeValidation, fmt.Sprintf("item[%d]: %s", i, msg)).
		WithReason(models.ReasonInvalidItem).
		WithDetail("index", i)
	if field != nil {
		e = e.WithDetail("field", field)
	}
	return e
}

// Reconcile validates and applies a batch in one transaction.
func (r *Reconciler[T, P, F]) Reconcile(ctx context.Context, owner id.ApplicationID, items []models.Item[F], hook func(ctx context.Context) error) (*models.UpsertResult[P], error) {
	plan, err := r.Prepare(items)
	if err != nil {
		return nil, err
	}
	return r.Apply(ctx, owner, plan, hook)
}

// Apply writes a prepared plan. Updates are checked for existence and
// ownership first, then creates are inserted in bulk, then hook runs; all in
// one transaction so any failure leaves the store unchanged.
func (r *Reconciler[T, P, F]) Apply(ctx context.Context, owner id.ApplicationID, plan *Plan[F], hook func(ctx context.Context) error) (*models.UpsertResult[P], error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "teacherapp.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("credential.kind", string(r.kind)),
		attribute.Int64("application.id", int64(owner)),
		attribute.Int("batch.creates", len(plan.creates)),
		attribute.Int("batch.updates", len(plan.updates)),
	)

	var created, updated []P
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		updated = make([]P, 0, len(plan.updates))
		for _, u := range plan.updates {
			rec, err := r.loadOwned(txCtx, owner, u.id)
			if err != nil {
				return err
			}
			u.fields.MergeInto(rec)
			rec.Base().UpdatedAt = now
			if err := r.store.Save(txCtx, rec); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save "+string(r.kind))
			}
			updated = append(updated, rec)
		}

		created = make([]P, 0, len(plan.creates))
		for _, f := range plan.creates {
			rec := f.Build()
			b := rec.Base()
			b.ApplicationID = owner
			b.CreatedAt = now
			b.UpdatedAt = now
			created = append(created, rec)
		}
		if len(created) > 0 {
			if err := r.store.InsertMany(txCtx, created); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert "+string(r.kind))
			}
		}

		if hook != nil {
			return hook(txCtx)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.AddReconciled(string(r.kind), len(created), len(updated))
		r.metrics.ObserveReconcile(string(r.kind), start)
	}

	records := make([]P, 0, len(created)+len(updated))
	records = append(records, created...)
	records = append(records, updated...)
	models.SortNewestFirst(records)
	return &models.UpsertResult[P]{
		Created:      created,
		Updated:      updated,
		Records:      records,
		CreatedCount: len(created),
		UpdatedCount: len(updated),
	}, nil
}

// loadOwned fetches a record and checks it belongs to owner. A foreign
// record is an authorization failure, not a miss.
func (r *Reconciler[T, P, F]) loadOwned(ctx context.Context, owner id.ApplicationID, recordID id.CredentialID) (P, error) {
	rec, err := r.store.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s %d not found", r.kind, recordID)).
				WithReason(models.ReasonRecordNotFound).
				WithDetail("id", int64(recordID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+string(r.kind))
	}
	if rec.Base().ApplicationID != owner {
		return nil, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("%s %d belongs to another application", r.kind, recordID)).
			WithReason(models.ReasonOwnershipMismatch).
			WithDetail("id", int64(recordID))
	}
	return rec, nil
}

// List returns the owner's records newest first.
func (r *Reconciler[T, P, F]) List(ctx context.Context, owner id.ApplicationID) ([]P, error) {
	recs, err := r.store.ListByApplication(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list "+string(r.kind))
	}
	return recs, nil
}

// Delete removes one owned record and runs hook in the same transaction.
func (r *Reconciler[T, P, F]) Delete(ctx context.Context, owner id.ApplicationID, recordID id.CredentialID, hook func(ctx context.Context) error) error {
	return r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := r.loadOwned(txCtx, owner, recordID); err != nil {
			return err
		}
		if err := r.store.Delete(txCtx, recordID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete "+string(r.kind))
		}
		if hook != nil {
			return hook(txCtx)
		}
		return nil
	})
}
