package service

import (
	"context"
	"errors"

	identity "coursehub/internal/identity/models"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
)

// EligibilityValidator gates entry into the workflow: the owner must exist,
// hold the base role and have an active account, checked in that order.
type EligibilityValidator struct {
	identity IdentityStore
}

func NewEligibilityValidator(identity IdentityStore) *EligibilityValidator {
	return &EligibilityValidator{identity: identity}
}

func (v *EligibilityValidator) Validate(ctx context.Context, userID id.UserID) error {
	user, err := v.identity.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notEligible(dErrors.CodeNotFound, models.ReasonUserNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	hasBase, err := v.identity.HasRole(ctx, userID, identity.RoleStudent)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user roles")
	}
	if !hasBase {
		return notEligible(dErrors.CodeForbidden, models.ReasonRoleForbidden, "user does not hold the student role")
	}
	if !user.IsActive() {
		return notEligible(dErrors.CodeForbidden, models.ReasonAccountInactive, "user account is not active").
			WithDetail("account_status", string(user.Status))
	}
	return nil
}

func notEligible(code dErrors.Code, reason dErrors.Reason, msg string) *dErrors.Error {
	return dErrors.New(code, msg).WithReason(reason).WithGroup(models.ReasonNotEligible)
}
