package service

import (
	"context"
	"errors"
	"log/slog"

	identity "coursehub/internal/identity/models"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
)

// RoleManager owns the role side effects of the lifecycle and resolves the
// caller's edit permission.
type RoleManager struct {
	identity IdentityStore
	logger   *slog.Logger
}

func NewRoleManager(identity IdentityStore, logger *slog.Logger) *RoleManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleManager{identity: identity, logger: logger}
}

// GrantApplicantRole adds the applicant role unless the user already holds
// it. granted reports whether a write happened.
func (m *RoleManager) GrantApplicantRole(ctx context.Context, userID id.UserID) (granted bool, err error) {
	return m.grant(ctx, userID, identity.RoleTeacherApplicant)
}

// GrantTeacherRole runs when an application is approved.
func (m *RoleManager) GrantTeacherRole(ctx context.Context, userID id.UserID) error {
	_, err := m.grant(ctx, userID, identity.RoleTeacher)
	return err
}

func (m *RoleManager) grant(ctx context.Context, userID id.UserID, role identity.Role) (bool, error) {
	has, err := m.identity.HasRole(ctx, userID, role)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user roles")
	}
	if has {
		return false, nil
	}
	if err := m.identity.AddRole(ctx, userID, role); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "user not found").WithReason(models.ReasonUserNotFound)
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant role")
	}
	return true, nil
}

// ResolvePermission computes the caller's edit capabilities once. The
// applicant path needs the applicant role and an editable status; the
// approved-profile path needs the teacher role.
func (m *RoleManager) ResolvePermission(ctx context.Context, userID id.UserID, app *models.Application) (models.Permission, error) {
	isTeacher, err := m.identity.HasRole(ctx, userID, identity.RoleTeacher)
	if err != nil {
		return models.Permission{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user roles")
	}
	isApplicant, err := m.identity.HasRole(ctx, userID, identity.RoleTeacherApplicant)
	if err != nil {
		return models.Permission{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user roles")
	}
	editable := app != nil && (app.Status == models.StatusPending || app.Status == models.StatusRejected)
	return models.Permission{
		CanEditApplication:     isApplicant && editable,
		CanEditApprovedProfile: isTeacher,
	}, nil
}

func permissionDenied() error {
	return dErrors.New(dErrors.CodeForbidden, "caller may not edit this teacher profile").
		WithReason(models.ReasonPermissionDenied)
}
