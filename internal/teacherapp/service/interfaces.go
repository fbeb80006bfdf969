package service

import (
	"context"

	"coursehub/internal/audit"
	identity "coursehub/internal/identity/models"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
)

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	ListPage(ctx context.Context, after id.ApplicationID, limit int) ([]*models.Application, error)
}

// CredentialStore persists one credential kind.
type CredentialStore[P any] interface {
	FindByID(ctx context.Context, recordID id.CredentialID) (P, error)
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]P, error)
	InsertMany(ctx context.Context, records []P) error
	Save(ctx context.Context, record P) error
	Delete(ctx context.Context, recordID id.CredentialID) error
	CountByApplication(ctx context.Context, appID id.ApplicationID, withDocument bool) (int, error)
}

// IdentityStore is the identity/role collaborator.
type IdentityStore interface {
	FindUser(ctx context.Context, userID id.UserID) (*identity.User, error)
	HasRole(ctx context.Context, userID id.UserID, role identity.Role) (bool, error)
	AddRole(ctx context.Context, userID id.UserID, role identity.Role) error
}

// TaxonomyValidator checks a primary/secondary category selection.
type TaxonomyValidator interface {
	Validate(ctx context.Context, primary id.CategoryID, secondaries []id.CategoryID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}
