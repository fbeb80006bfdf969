// Package teacherapp assembles the teacher-application module: stores,
// service and HTTP handler, over either Postgres or memory.
package teacherapp

import (
	"database/sql"
	"log/slog"

	identitystore "coursehub/internal/identity/store"
	"coursehub/internal/taxonomy"
	taxonomystore "coursehub/internal/taxonomy/store"
	"coursehub/internal/teacherapp/handler"
	"coursehub/internal/teacherapp/models"
	"coursehub/internal/teacherapp/service"
	"coursehub/internal/teacherapp/store/application"
	"coursehub/internal/teacherapp/store/credential"
	"coursehub/pkg/platform/middleware/auth"
)

// Stores is the persistence the module runs on.
type Stores struct {
	Applications service.ApplicationStore
	Credentials  service.CredentialStores
	Identity     service.IdentityStore
	Categories   taxonomy.Store
}

// MemoryStores builds an in-memory set. Identity and categories are
// returned concretely so callers can seed them.
func MemoryStores() (Stores, *identitystore.InMemoryStore, *taxonomystore.InMemoryStore) {
	users := identitystore.NewInMemory()
	categories := taxonomystore.NewInMemory()
	return Stores{
		Applications: application.NewInMemory(),
		Credentials: service.CredentialStores{
			Work:     credential.NewInMemory[models.WorkExperience, *models.WorkExperience](),
			Learning: credential.NewInMemory[models.LearningExperience, *models.LearningExperience](),
			Certs:    credential.NewInMemory[models.Certificate, *models.Certificate](),
		},
		Identity:   users,
		Categories: categories,
	}, users, categories
}

// PostgresStores builds the Postgres-backed set over one pool.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Applications: application.NewPostgres(db),
		Credentials: service.CredentialStores{
			Work:     credential.NewPostgresWorkExperiences(db),
			Learning: credential.NewPostgresLearningExperiences(db),
			Certs:    credential.NewPostgresCertificates(db),
		},
		Identity:   identitystore.NewPostgres(db),
		Categories: taxonomystore.NewPostgres(db),
	}
}

type Module struct {
	Service *service.Service
	Handler *handler.Handler
}

func New(stores Stores, tokens auth.TokenValidator, logger *slog.Logger, opts ...service.Option) (*Module, error) {
	svc, err := service.New(
		stores.Applications,
		stores.Credentials,
		stores.Identity,
		taxonomy.NewValidator(stores.Categories),
		append([]service.Option{service.WithLogger(logger)}, opts...)...,
	)
	if err != nil {
		return nil, err
	}
	h := handler.New(svc, tokens, logger,
		handler.WorkExperienceRoutes(svc.WorkExperiences()),
		handler.LearningExperienceRoutes(svc.LearningExperiences()),
		handler.CertificateRoutes(svc.Certificates()),
	)
	return &Module{Service: svc, Handler: h}, nil
}
