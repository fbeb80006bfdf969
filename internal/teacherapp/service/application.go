package service

import (
	"context"
	"errors"

	"coursehub/internal/audit"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/requestcontext"
)

func duplicateApplication() error {
	return dErrors.New(dErrors.CodeConflict, "user already has a teacher application").
		WithReason(models.ReasonDuplicateApplication)
}

// Apply starts the workflow: eligibility, uniqueness and taxonomy are
// checked, then the application is created and the applicant role granted in
// one transaction.
func (s *Service) Apply(ctx context.Context, userID id.UserID, fields models.ApplicationFields) (*models.Application, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if err := s.eligibility.Validate(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.applications.FindByUserID(ctx, userID); err == nil {
		return nil, duplicateApplication()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing application")
	}
	if err := s.taxonomy.Validate(ctx, fields.PrimaryCategoryID, fields.SecondaryCategoryIDs); err != nil {
		return nil, err
	}

	var (
		app     *models.Application
		granted bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := models.NewApplication(userID, fields, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.applications.Create(txCtx, a); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return duplicateApplication()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create teacher application")
		}
		granted, err = s.roles.GrantApplicantRole(txCtx, userID)
		if err != nil {
			return err
		}
		app = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementApplicationsCreated()
	}
	s.recordTransition(models.StatusNone, app.Status)
	s.emit(ctx, audit.ActionApplicationCreated, app, nil)
	if granted {
		s.emit(ctx, audit.ActionApplicantRoleGranted, app, nil)
	}
	return app, nil
}

func (s *Service) GetApplication(ctx context.Context, userID id.UserID) (*models.Application, error) {
	return s.loadOwned(ctx, userID)
}

// UpdateApplication applies a partial edit on the applicant path. An
// APPROVED application must go through UpdateProfile instead.
func (s *Service) UpdateApplication(ctx context.Context, userID id.UserID, patch models.ApplicationPatch) (*models.Application, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.edit(ctx, userID, patch, models.TransitionEdit, audit.ActionApplicationUpdated, false)
}

// UpdateProfile is the approved-teacher edit path. Any successful edit
// returns the application to PENDING with review metadata cleared.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, patch models.ApplicationPatch) (*models.Application, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.edit(ctx, userID, patch, models.TransitionProfileEdit, audit.ActionProfileUpdated, true)
}

func (s *Service) edit(ctx context.Context, userID id.UserID, patch models.ApplicationPatch, t models.Transition, action audit.Action, needPermission bool) (*models.Application, error) {
	current, err := s.loadOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	if needPermission {
		perm, err := s.roles.ResolvePermission(ctx, userID, current)
		if err != nil {
			return nil, err
		}
		if !perm.Any() {
			return nil, permissionDenied()
		}
	}
	now := requestcontext.Now(ctx)
	if err := current.CanAdvance(t, models.Change{At: now}); err != nil {
		return nil, err
	}

	next := current.Patched(patch)
	if patch.TouchesTaxonomy() {
		if err := s.taxonomy.Validate(ctx, next.PrimaryCategoryID, next.SecondaryCategoryIDs); err != nil {
			return nil, err
		}
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := next.Advance(t, models.Change{At: requestcontext.Now(txCtx)}); err != nil {
			return err
		}
		return s.saveApplication(txCtx, next)
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(current.Status, next.Status)
	s.emit(ctx, action, next, map[string]string{"from_status": string(current.Status)})
	return next, nil
}

// Resubmit re-enters review from REJECTED only.
func (s *Service) Resubmit(ctx context.Context, userID id.UserID) (*models.Application, error) {
	app, err := s.loadOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := app.Status
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := app.Advance(models.TransitionResubmit, models.Change{At: requestcontext.Now(txCtx)}); err != nil {
			return err
		}
		return s.saveApplication(txCtx, app)
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(from, app.Status)
	s.emit(ctx, audit.ActionApplicationResubmitted, app, nil)
	return app, nil
}

// Submit is the first submission for review. It requires no prior
// submission and a passing completeness gate; the first missing category is
// reported, with the full list under all_missing.
func (s *Service) Submit(ctx context.Context, userID id.UserID) (*models.Application, error) {
	app, err := s.loadOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := app.CanAdvance(models.TransitionSubmit, models.Change{At: requestcontext.Now(ctx)}); err != nil {
		return nil, err
	}

	missing, err := s.completeness.Check(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		if s.metrics != nil {
			s.metrics.IncrementIncomplete(string(missing[0]))
		}
		return nil, incompleteErr(missing)
	}

	from := app.Status
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := app.Advance(models.TransitionSubmit, models.Change{At: requestcontext.Now(txCtx)}); err != nil {
			return err
		}
		return s.saveApplication(txCtx, app)
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(from, app.Status)
	s.emit(ctx, audit.ActionApplicationSubmitted, app, nil)
	return app, nil
}

// GetProfile is the approved-teacher view of the application. It requires
// the applicant or the teacher permission.
func (s *Service) GetProfile(ctx context.Context, userID id.UserID) (*models.Application, error) {
	app, err := s.loadOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	perm, err := s.roles.ResolvePermission(ctx, userID, app)
	if err != nil {
		return nil, err
	}
	if !perm.Any() {
		return nil, permissionDenied()
	}
	return app, nil
}
