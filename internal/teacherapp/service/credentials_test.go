package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/requestcontext"
)

// =============================================================================
// Credential Reconciliation Test Suite
// =============================================================================
// Batches are all-or-nothing: these tests assert on store contents after
// failures as well as on the returned result.

type CredentialSuite struct {
	lifecycleSuite
}

func TestCredentialSuite(t *testing.T) {
	suite.Run(t, new(CredentialSuite))
}

func (s *CredentialSuite) listWork(owner id.UserID) []*models.WorkExperience {
	recs, err := s.service.WorkExperiences().List(s.ctx, owner)
	s.Require().NoError(err)
	return recs
}

func (s *CredentialSuite) TestUpsert() {
	s.Run("counts match the batch and the store", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		first, err := s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
		s.Require().NoError(err)

		ctx := requestcontext.WithTime(s.ctx, t1)
		res, err := s.service.WorkExperiences().Upsert(ctx, owner, []models.Item[models.WorkExperienceFields]{
			models.UpdateItem(first.ID, work("Acme Corp")),
			models.NewItem(work("Beta")),
			models.NewItem(work("Gamma")),
		})
		s.Require().NoError(err)

		s.Equal(3, res.CreatedCount+res.UpdatedCount)
		s.Equal(2, res.CreatedCount)
		s.Equal(1, res.UpdatedCount)
		s.Len(s.listWork(owner), 3)

		s.Require().Len(res.Records, 3)
		s.Equal("Gamma", res.Records[0].Company)
		s.Equal("Beta", res.Records[1].Company)
		s.Equal("Acme Corp", res.Records[2].Company)
		s.Equal(first.ID, res.Records[2].ID)
		s.Equal(t0, res.Records[2].CreatedAt)
		s.Equal(t1, res.Records[2].UpdatedAt)
	})

	s.Run("foreign record aborts the whole batch", func() {
		other := s.f.newStudent()
		s.apply(other)
		foreign, err := s.service.WorkExperiences().Create(s.ctx, other, work("Other Co"))
		s.Require().NoError(err)

		owner := s.f.newStudent()
		s.apply(owner)
		_, err = s.service.WorkExperiences().Upsert(s.ctx, owner, []models.Item[models.WorkExperienceFields]{
			models.NewItem(work("Acme")),
			models.UpdateItem(foreign.ID, work("Beta")),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.True(dErrors.HasReason(err, models.ReasonOwnershipMismatch))
		detail, _ := dErrors.DetailOf(err, "id")
		s.Equal(int64(foreign.ID), detail)

		s.Empty(s.listWork(owner))
		stored, err := s.f.work.FindByID(context.Background(), foreign.ID)
		s.Require().NoError(err)
		s.Equal("Other Co", stored.Company)
	})

	s.Run("unknown record is not found and rolls back creates", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		_, err := s.service.WorkExperiences().Upsert(s.ctx, owner, []models.Item[models.WorkExperienceFields]{
			models.NewItem(work("Acme")),
			models.UpdateItem(9999, work("Beta")),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.True(dErrors.HasReason(err, models.ReasonRecordNotFound))
		s.Empty(s.listWork(owner))
	})

	s.Run("invalid item is reported by index", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		bad := work("Beta")
		bad.Period = models.Period{StartYear: 2020, StartMonth: 5, EndYear: ptr(2019), EndMonth: ptr(1)}

		_, err := s.service.WorkExperiences().Upsert(s.ctx, owner, []models.Item[models.WorkExperienceFields]{
			models.NewItem(work("Acme")),
			models.NewItem(bad),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.True(dErrors.HasReason(err, models.ReasonInvalidItem))
		s.ErrorContains(err, "item[1]:")
		index, _ := dErrors.DetailOf(err, "index")
		s.Equal(1, index)
		s.Empty(s.listWork(owner))
	})

	s.Run("same id twice is rejected before any write", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		first, err := s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
		s.Require().NoError(err)

		_, err = s.service.WorkExperiences().Upsert(s.ctx, owner, []models.Item[models.WorkExperienceFields]{
			models.UpdateItem(first.ID, work("One")),
			models.NewItem(work("Beta")),
			models.UpdateItem(first.ID, work("Two")),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.True(dErrors.HasReason(err, models.ReasonInvalidItem))
		s.ErrorContains(err, "item[2]: duplicate id")
		index, _ := dErrors.DetailOf(err, "index")
		s.Equal(2, index)
		field, _ := dErrors.DetailOf(err, "field")
		s.Equal("id", field)

		recs := s.listWork(owner)
		s.Require().Len(recs, 1)
		s.Equal("Acme", recs[0].Company)
	})

	s.Run("upsert on a REJECTED application re-enters PENDING", func() {
		owner := s.f.newStudent()
		s.rejected(owner)

		_, err := s.service.Certificates().Upsert(s.ctx, owner, []models.Item[models.CertificateFields]{
			models.NewItem(certificate(ptr("https://files.example.test/scan.pdf"))),
		})
		s.Require().NoError(err)
		app := s.stored(owner)
		s.Equal(models.StatusPending, app.Status)
		s.assertReviewCleared(app)
	})

	s.Run("approved teacher edit re-opens review", func() {
		owner := s.f.newStudent()
		s.approved(owner)

		_, err := s.service.LearningExperiences().Create(s.ctx, owner, learning(nil))
		s.Require().NoError(err)
		s.Equal(models.StatusPending, s.stored(owner).Status)
	})

	s.Run("caller without edit permission is denied", func() {
		owner := s.f.newStudent()
		legacy, err := models.NewApplication(owner, validFields(), t0)
		s.Require().NoError(err)
		s.Require().NoError(s.f.apps.Create(context.Background(), legacy))

		_, err = s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
		s.True(dErrors.HasReason(err, models.ReasonPermissionDenied))
		s.Empty(s.listWork(owner))
	})

	s.Run("no application is not found", func() {
		_, err := s.service.WorkExperiences().Create(s.ctx, id.UserID(uuid.New()), work("Acme"))
		s.True(dErrors.HasReason(err, models.ReasonApplicationNotFound))
	})
}

func (s *CredentialSuite) TestBatchBound() {
	s.Run("21 items fail before any store call", func() {
		apps := &countingApplications{ApplicationStore: s.f.apps}
		works := &countingCredentials[*models.WorkExperience]{CredentialStore: s.f.work}
		creds := s.f.creds()
		creds.Work = works
		svc, err := New(apps, creds, s.f.identity, passingValidator{}, WithLogger(s.f.logger))
		s.Require().NoError(err)

		items := make([]models.Item[models.WorkExperienceFields], 21)
		for i := range items {
			items[i] = models.NewItem(work("Acme"))
		}
		_, err = svc.WorkExperiences().Upsert(s.ctx, s.f.newStudent(), items)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.True(dErrors.HasReason(err, models.ReasonBatchSizeInvalid))
		size, _ := dErrors.DetailOf(err, "size")
		s.Equal(21, size)
		s.Zero(apps.calls)
		s.Zero(works.calls)
	})

	s.Run("empty batch is rejected", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		_, err := s.service.WorkExperiences().Upsert(s.ctx, owner, nil)
		s.True(dErrors.HasReason(err, models.ReasonBatchSizeInvalid))
	})

	s.Run("20 items are accepted", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		items := make([]models.Item[models.WorkExperienceFields], 20)
		for i := range items {
			items[i] = models.NewItem(work("Acme"))
		}
		res, err := s.service.WorkExperiences().Upsert(s.ctx, owner, items)
		s.Require().NoError(err)
		s.Equal(20, res.CreatedCount)
	})
}

func (s *CredentialSuite) TestDelete() {
	s.Run("owner deletes own record", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		rec, err := s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
		s.Require().NoError(err)

		s.Require().NoError(s.service.WorkExperiences().Delete(s.ctx, owner, rec.ID))
		s.Empty(s.listWork(owner))
	})

	s.Run("foreign record is an ownership mismatch", func() {
		other := s.f.newStudent()
		s.apply(other)
		rec, err := s.service.WorkExperiences().Create(s.ctx, other, work("Other Co"))
		s.Require().NoError(err)

		owner := s.f.newStudent()
		s.apply(owner)
		err = s.service.WorkExperiences().Delete(s.ctx, owner, rec.ID)
		s.True(dErrors.HasReason(err, models.ReasonOwnershipMismatch))
		s.Len(s.listWork(other), 1)
	})
}

// countingApplications records every call that reaches the application store.
type countingApplications struct {
	ApplicationStore
	calls int
}

func (c *countingApplications) Create(ctx context.Context, app *models.Application) error {
	c.calls++
	return c.ApplicationStore.Create(ctx, app)
}

func (c *countingApplications) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	c.calls++
	return c.ApplicationStore.FindByID(ctx, appID)
}

func (c *countingApplications) FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error) {
	c.calls++
	return c.ApplicationStore.FindByUserID(ctx, userID)
}

func (c *countingApplications) Update(ctx context.Context, app *models.Application) error {
	c.calls++
	return c.ApplicationStore.Update(ctx, app)
}

func (c *countingApplications) ListPage(ctx context.Context, after id.ApplicationID, limit int) ([]*models.Application, error) {
	c.calls++
	return c.ApplicationStore.ListPage(ctx, after, limit)
}

type countingCredentials[P any] struct {
	CredentialStore[P]
	calls int
}

func (c *countingCredentials[P]) FindByID(ctx context.Context, recordID id.CredentialID) (P, error) {
	c.calls++
	return c.CredentialStore.FindByID(ctx, recordID)
}

func (c *countingCredentials[P]) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]P, error) {
	c.calls++
	return c.CredentialStore.ListByApplication(ctx, appID)
}

func (c *countingCredentials[P]) InsertMany(ctx context.Context, records []P) error {
	c.calls++
	return c.CredentialStore.InsertMany(ctx, records)
}

func (c *countingCredentials[P]) Save(ctx context.Context, record P) error {
	c.calls++
	return c.CredentialStore.Save(ctx, record)
}

func (c *countingCredentials[P]) Delete(ctx context.Context, recordID id.CredentialID) error {
	c.calls++
	return c.CredentialStore.Delete(ctx, recordID)
}

func (c *countingCredentials[P]) CountByApplication(ctx context.Context, appID id.ApplicationID, withDocument bool) (int, error) {
	c.calls++
	return c.CredentialStore.CountByApplication(ctx, appID, withDocument)
}

type passingValidator struct{}

func (passingValidator) Validate(context.Context, id.CategoryID, []id.CategoryID) error {
	return nil
}
