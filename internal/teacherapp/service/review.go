package service

import (
	"context"

	"coursehub/internal/audit"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/requestcontext"
)

// Review records a reviewer's decision on a submitted application. Who may
// review, and on what grounds, is decided by the caller. Approval also grants
// the teacher role in the same transaction.
func (s *Service) Review(ctx context.Context, reviewerID, ownerID id.UserID, decision models.ReviewDecision, notes *string) (*models.Application, error) {
	t, ok := decision.Transition()
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "decision must be approve or reject").
			WithDetail("field", "decision")
	}
	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reviewer id is required")
	}

	app, err := s.loadOwned(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	from := app.Status
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		change := models.Change{At: requestcontext.Now(txCtx), Reviewer: &reviewerID, Notes: notes}
		if err := app.Advance(t, change); err != nil {
			return err
		}
		if err := s.saveApplication(txCtx, app); err != nil {
			return err
		}
		if decision == models.DecisionApprove {
			return s.roles.GrantTeacherRole(txCtx, ownerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(from, app.Status)
	s.emit(ctx, audit.ActionApplicationReviewed, app, map[string]string{
		"decision":    string(decision),
		"reviewer_id": reviewerID.String(),
	})
	return app, nil
}
