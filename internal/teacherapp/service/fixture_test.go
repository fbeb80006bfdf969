package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coursehub/internal/audit"
	auditmemory "coursehub/internal/audit/store/memory"
	identity "coursehub/internal/identity/models"
	identitystore "coursehub/internal/identity/store"
	"coursehub/internal/taxonomy"
	taxonomymodels "coursehub/internal/taxonomy/models"
	taxonomystore "coursehub/internal/taxonomy/store"
	"coursehub/internal/teacherapp/models"
	"coursehub/internal/teacherapp/store/application"
	"coursehub/internal/teacherapp/store/credential"
	id "coursehub/pkg/domain"
	"coursehub/pkg/requestcontext"
)

var (
	t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

// Categories seeded by newFixture: 1 is a primary with children 2 and 3;
// 5 is another primary with child 4; 6 is an inactive child of 1.
const (
	catPrimary       id.CategoryID = 1
	catChildA        id.CategoryID = 2
	catChildB        id.CategoryID = 3
	catForeignChild  id.CategoryID = 4
	catOtherPrimary  id.CategoryID = 5
	catInactiveChild id.CategoryID = 6
)

type fixture struct {
	identity   *identitystore.InMemoryStore
	categories *taxonomystore.InMemoryStore
	apps       *application.InMemoryStore
	work       *credential.InMemoryStore[models.WorkExperience, *models.WorkExperience]
	learning   *credential.InMemoryStore[models.LearningExperience, *models.LearningExperience]
	certs      *credential.InMemoryStore[models.Certificate, *models.Certificate]
	events     *auditmemory.InMemoryStore
	logger     *slog.Logger
}

func newFixture() *fixture {
	f := &fixture{
		identity:   identitystore.NewInMemory(),
		categories: taxonomystore.NewInMemory(),
		apps:       application.NewInMemory(),
		work:       credential.NewInMemory[models.WorkExperience, *models.WorkExperience](),
		learning:   credential.NewInMemory[models.LearningExperience, *models.LearningExperience](),
		certs:      credential.NewInMemory[models.Certificate, *models.Certificate](),
		events:     auditmemory.NewInMemoryStore(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	parent := func(p id.CategoryID) *id.CategoryID { return &p }
	for _, c := range []taxonomymodels.Category{
		{ID: catPrimary, Name: "Music", Active: true},
		{ID: catChildA, Name: "Piano", ParentID: parent(catPrimary), Active: true},
		{ID: catChildB, Name: "Guitar", ParentID: parent(catPrimary), Active: true},
		{ID: catForeignChild, Name: "Algebra", ParentID: parent(catOtherPrimary), Active: true},
		{ID: catOtherPrimary, Name: "Maths", Active: true},
		{ID: catInactiveChild, Name: "Lute", ParentID: parent(catPrimary), Active: false},
	} {
		if err := f.categories.Create(context.Background(), &c); err != nil {
			panic(err)
		}
	}
	return f
}

func (f *fixture) creds() CredentialStores {
	return CredentialStores{Work: f.work, Learning: f.learning, Certs: f.certs}
}

func (f *fixture) newService(opts ...Option) *Service {
	opts = append([]Option{
		WithLogger(f.logger),
		WithAuditPublisher(audit.NewPublisher(f.events, audit.WithLogger(f.logger))),
	}, opts...)
	svc, err := New(f.apps, f.creds(), f.identity, taxonomy.NewValidator(f.categories), opts...)
	if err != nil {
		panic(err)
	}
	return svc
}

// newUser seeds an account with the given status and roles.
func (f *fixture) newUser(status identity.AccountStatus, roles ...identity.Role) id.UserID {
	userID := id.UserID(uuid.New())
	if err := f.identity.CreateUser(context.Background(), &identity.User{
		ID:     userID,
		Email:  userID.String() + "@example.test",
		Status: status,
	}, roles...); err != nil {
		panic(err)
	}
	return userID
}

func (f *fixture) newStudent() id.UserID {
	return f.newUser(identity.AccountActive, identity.RoleStudent)
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), t0)
}

func validFields() models.ApplicationFields {
	return models.ApplicationFields{
		Country:              "FR",
		Region:               "Ile-de-France",
		City:                 "Paris",
		Address:              "1 rue de Rivoli",
		PrimaryCategoryID:    catPrimary,
		SecondaryCategoryIDs: []id.CategoryID{catChildA, catChildB},
		Introduction:         "Piano teacher with ten years of practice.",
	}
}

func ptr[T any](v T) *T { return &v }

func finished(startYear int) models.Period {
	return models.Period{StartYear: startYear, StartMonth: 1, EndYear: ptr(startYear + 1), EndMonth: ptr(6)}
}

func work(company string) models.WorkExperienceFields {
	return models.WorkExperienceFields{Company: company, Title: "Teacher", Period: finished(2018)}
}

func learning(doc *string) models.LearningExperienceFields {
	return models.LearningExperienceFields{School: "Conservatoire", Degree: "BA", Major: "Piano", Period: finished(2012), DocumentURL: doc}
}

func certificate(doc *string) models.CertificateFields {
	return models.CertificateFields{Name: "ABRSM Grade 8", Issuer: "ABRSM", Period: finished(2014), DocumentURL: doc}
}
