package service

import (
	"context"
	"strconv"

	"coursehub/internal/audit"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/requestcontext"
)

// CredentialBook exposes one credential collection to the owner. It resolves
// the caller's application and permission, then delegates to the reconciler
// with the status transition as an in-transaction hook.
type CredentialBook[T any, P models.RecordPtr[T], F models.Fields[P]] struct {
	svc        *Service
	reconciler *Reconciler[T, P, F]
}

func newBook[T any, P models.RecordPtr[T], F models.Fields[P]](svc *Service, r *Reconciler[T, P, F]) *CredentialBook[T, P, F] {
	return &CredentialBook[T, P, F]{svc: svc, reconciler: r}
}

func (b *CredentialBook[T, P, F]) Kind() models.Kind {
	return b.reconciler.kind
}

func (b *CredentialBook[T, P, F]) List(ctx context.Context, userID id.UserID) ([]P, error) {
	app, err := b.svc.loadOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	return b.reconciler.List(ctx, app.ID)
}

// Create adds a single record through the batch engine.
func (b *CredentialBook[T, P, F]) Create(ctx context.Context, userID id.UserID, fields F) (P, error) {
	res, err := b.Upsert(ctx, userID, []models.Item[F]{models.NewItem(fields)})
	if err != nil {
		return nil, err
	}
	return res.Created[0], nil
}

// Upsert reconciles a batch. The batch is validated before the application
// is loaded, so an invalid batch never reaches the store.
func (b *CredentialBook[T, P, F]) Upsert(ctx context.Context, userID id.UserID, items []models.Item[F]) (*models.UpsertResult[P], error) {
	plan, err := b.reconciler.Prepare(items)
	if err != nil {
		return nil, err
	}
	app, transition, err := b.svc.authorizeCredentialEdit(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := app.Status
	res, err := b.reconciler.Apply(ctx, app.ID, plan, b.svc.transitionHook(app, transition))
	if err != nil {
		return nil, err
	}
	b.svc.recordTransition(from, app.Status)
	b.svc.emit(ctx, audit.ActionCredentialsReconciled, app, map[string]string{
		"kind":          string(b.Kind()),
		"created_count": strconv.Itoa(res.CreatedCount),
		"updated_count": strconv.Itoa(res.UpdatedCount),
	})
	return res, nil
}

func (b *CredentialBook[T, P, F]) Delete(ctx context.Context, userID id.UserID, recordID id.CredentialID) error {
	app, transition, err := b.svc.authorizeCredentialEdit(ctx, userID)
	if err != nil {
		return err
	}
	from := app.Status
	if err := b.reconciler.Delete(ctx, app.ID, recordID, b.svc.transitionHook(app, transition)); err != nil {
		return err
	}
	b.svc.recordTransition(from, app.Status)
	b.svc.emit(ctx, audit.ActionCredentialsReconciled, app, map[string]string{
		"kind":       string(b.Kind()),
		"deleted_id": recordID.String(),
	})
	return nil
}

// authorizeCredentialEdit picks the transition a credential mutation causes:
// an APPROVED profile re-enters review via profile_edit and needs the
// teacher role; otherwise edit applies and either permission suffices.
func (s *Service) authorizeCredentialEdit(ctx context.Context, userID id.UserID) (*models.Application, models.Transition, error) {
	app, err := s.loadOwned(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	perm, err := s.roles.ResolvePermission(ctx, userID, app)
	if err != nil {
		return nil, "", err
	}

	transition := models.TransitionEdit
	allowed := perm.Any()
	if app.Status == models.StatusApproved {
		transition = models.TransitionProfileEdit
		allowed = perm.CanEditApprovedProfile
	}
	if !allowed {
		return nil, "", permissionDenied()
	}
	if err := app.CanAdvance(transition, models.Change{At: requestcontext.Now(ctx)}); err != nil {
		return nil, "", err
	}
	return app, transition, nil
}

// transitionHook advances app and persists it inside the caller's
// transaction. On rollback the in-memory app is discarded by the caller.
func (s *Service) transitionHook(app *models.Application, t models.Transition) func(ctx context.Context) error {
	return func(txCtx context.Context) error {
		if err := app.Advance(t, models.Change{At: requestcontext.Now(txCtx)}); err != nil {
			return err
		}
		return s.saveApplication(txCtx, app)
	}
}
