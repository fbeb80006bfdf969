package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks IdentityStore,TaxonomyValidator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"coursehub/internal/audit"
	identity "coursehub/internal/identity/models"
	"coursehub/internal/teacherapp/models"
	"coursehub/internal/teacherapp/service/mocks"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/requestcontext"
)

// =============================================================================
// Application State Controller Test Suite
// =============================================================================
// Exercises the lifecycle operations against in-memory stores so status
// changes, role side effects and emitted events are observed end to end.

// lifecycleSuite holds the shared fixture and lifecycle helpers.
type lifecycleSuite struct {
	suite.Suite
	f       *fixture
	service *Service
	ctx     context.Context
}

type ApplicationSuite struct {
	lifecycleSuite
}

func TestApplicationSuite(t *testing.T) {
	suite.Run(t, new(ApplicationSuite))
}

func (s *lifecycleSuite) SetupTest() {
	s.f = newFixture()
	s.service = s.f.newService()
	s.ctx = testCtx()
}

func (s *lifecycleSuite) apply(owner id.UserID) *models.Application {
	app, err := s.service.Apply(s.ctx, owner, validFields())
	s.Require().NoError(err)
	return app
}

// complete adds the three credentials the completeness gate requires.
func (s *lifecycleSuite) complete(owner id.UserID) {
	doc := ptr("https://files.example.test/doc.pdf")
	_, err := s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
	s.Require().NoError(err)
	_, err = s.service.LearningExperiences().Create(s.ctx, owner, learning(doc))
	s.Require().NoError(err)
	_, err = s.service.Certificates().Create(s.ctx, owner, certificate(doc))
	s.Require().NoError(err)
}

func (s *lifecycleSuite) submitted(owner id.UserID) *models.Application {
	s.apply(owner)
	s.complete(owner)
	app, err := s.service.Submit(s.ctx, owner)
	s.Require().NoError(err)
	return app
}

func (s *lifecycleSuite) rejected(owner id.UserID) *models.Application {
	s.submitted(owner)
	app, err := s.service.Review(s.ctx, id.UserID(uuid.New()), owner, models.DecisionReject, ptr("needs a certificate scan"))
	s.Require().NoError(err)
	return app
}

func (s *lifecycleSuite) approved(owner id.UserID) *models.Application {
	s.submitted(owner)
	app, err := s.service.Review(s.ctx, id.UserID(uuid.New()), owner, models.DecisionApprove, nil)
	s.Require().NoError(err)
	return app
}

func (s *lifecycleSuite) stored(owner id.UserID) *models.Application {
	app, err := s.f.apps.FindByUserID(context.Background(), owner)
	s.Require().NoError(err)
	return app
}

func (s *lifecycleSuite) hasRole(owner id.UserID, role identity.Role) bool {
	has, err := s.f.identity.HasRole(context.Background(), owner, role)
	s.Require().NoError(err)
	return has
}

func (s *lifecycleSuite) assertReviewCleared(app *models.Application) {
	s.Nil(app.ReviewedAt)
	s.Nil(app.ReviewerID)
	s.Nil(app.ReviewNotes)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ApplicationSuite) TestNew() {
	validator := mocks.NewMockTaxonomyValidator(gomock.NewController(s.T()))

	s.Run("nil application store returns error", func() {
		_, err := New(nil, s.f.creds(), s.f.identity, validator)
		s.ErrorContains(err, "application store is required")
	})

	s.Run("missing credential store returns error", func() {
		creds := s.f.creds()
		creds.Certs = nil
		_, err := New(s.f.apps, creds, s.f.identity, validator)
		s.ErrorContains(err, "all credential stores are required")
	})

	s.Run("nil identity store returns error", func() {
		_, err := New(s.f.apps, s.f.creds(), nil, validator)
		s.ErrorContains(err, "identity store is required")
	})

	s.Run("nil taxonomy validator returns error", func() {
		_, err := New(s.f.apps, s.f.creds(), s.f.identity, nil)
		s.ErrorContains(err, "taxonomy validator is required")
	})

	s.Run("non-positive batch bound returns error", func() {
		_, err := New(s.f.apps, s.f.creds(), s.f.identity, validator, WithBatchMax(0))
		s.ErrorContains(err, "batch bound must be positive")
	})

	s.Run("options are applied", func() {
		svc, err := New(s.f.apps, s.f.creds(), s.f.identity, validator, WithLogger(s.f.logger), WithBatchMax(5))
		s.Require().NoError(err)
		s.Equal(s.f.logger, svc.logger)
		s.Equal(5, svc.work.reconciler.maxBatch)
	})
}

// =============================================================================
// Apply
// =============================================================================

func (s *ApplicationSuite) TestApply() {
	s.Run("creates a PENDING application and grants the applicant role", func() {
		owner := s.f.newStudent()

		app, err := s.service.Apply(s.ctx, owner, validFields())
		s.Require().NoError(err)

		s.Equal(models.StatusPending, app.Status)
		s.Nil(app.SubmittedAt)
		s.Equal([]id.CategoryID{catChildA, catChildB}, app.SecondaryCategoryIDs)
		s.Equal(t0, app.CreatedAt)
		s.True(s.hasRole(owner, identity.RoleTeacherApplicant))
		s.Equal([]audit.Action{audit.ActionApplicationCreated, audit.ActionApplicantRoleGranted}, s.f.events.Actions(owner))
	})

	s.Run("second application for the same owner is a duplicate", func() {
		owner := s.f.newStudent()
		first := s.apply(owner)

		_, err := s.service.Apply(s.ctx, owner, validFields())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.True(dErrors.HasReason(err, models.ReasonDuplicateApplication))

		s.Equal(first.ID, s.stored(owner).ID)
		all, err := s.f.apps.ListPage(context.Background(), 0, 100)
		s.Require().NoError(err)
		count := 0
		for _, a := range all {
			if a.UserID == owner {
				count++
			}
		}
		s.Equal(1, count)
	})

	s.Run("ineligible owners are rejected with the not_eligible group", func() {
		cases := []struct {
			name   string
			owner  id.UserID
			code   dErrors.Code
			reason dErrors.Reason
		}{
			{"unknown user", id.UserID(uuid.New()), dErrors.CodeNotFound, models.ReasonUserNotFound},
			{"missing student role", s.f.newUser(identity.AccountActive), dErrors.CodeForbidden, models.ReasonRoleForbidden},
			{"suspended account", s.f.newUser(identity.AccountSuspended, identity.RoleStudent), dErrors.CodeForbidden, models.ReasonAccountInactive},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				_, err := s.service.Apply(s.ctx, tc.owner, validFields())
				s.True(dErrors.HasCode(err, tc.code))
				s.True(dErrors.HasReason(err, tc.reason))
				s.True(dErrors.HasReason(err, models.ReasonNotEligible))
				_, findErr := s.f.apps.FindByUserID(context.Background(), tc.owner)
				s.Error(findErr)
			})
		}
	})

	s.Run("invalid taxonomy creates nothing and grants no role", func() {
		owner := s.f.newStudent()
		fields := validFields()
		fields.SecondaryCategoryIDs = []id.CategoryID{catChildA, catForeignChild}

		_, err := s.service.Apply(s.ctx, owner, fields)
		s.True(dErrors.HasReason(err, "secondary_not_in_primary"))
		s.True(dErrors.HasReason(err, "invalid_taxonomy"))
		s.False(s.hasRole(owner, identity.RoleTeacherApplicant))
		_, findErr := s.f.apps.FindByUserID(context.Background(), owner)
		s.Error(findErr)
	})

	s.Run("secondary count is a taxonomy error", func() {
		for name, secondaries := range map[string][]id.CategoryID{
			"too many": {catChildA, catChildB, catChildA, catChildB},
			"none":     {},
		} {
			s.Run(name, func() {
				owner := s.f.newStudent()
				fields := validFields()
				fields.SecondaryCategoryIDs = secondaries

				_, err := s.service.Apply(s.ctx, owner, fields)
				s.True(dErrors.HasCode(err, dErrors.CodeValidation))
				s.True(dErrors.HasReason(err, "invalid_secondary_count"))
				s.True(dErrors.HasReason(err, "invalid_taxonomy"))
				s.False(s.hasRole(owner, identity.RoleTeacherApplicant))
			})
		}
	})

	s.Run("missing required field is a validation error", func() {
		fields := validFields()
		fields.City = "   "
		_, err := s.service.Apply(s.ctx, s.f.newStudent(), fields)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("taxonomy collaborator failure surfaces unchanged", func() {
		ctrl := gomock.NewController(s.T())
		validator := mocks.NewMockTaxonomyValidator(ctrl)
		boom := dErrors.New(dErrors.CodeInternal, "taxonomy unavailable")
		validator.EXPECT().Validate(gomock.Any(), catPrimary, []id.CategoryID{catChildA, catChildB}).Return(boom)

		svc, err := New(s.f.apps, s.f.creds(), s.f.identity, validator, WithLogger(s.f.logger))
		s.Require().NoError(err)
		owner := s.f.newStudent()
		_, err = svc.Apply(s.ctx, owner, validFields())
		s.ErrorIs(err, boom)
		s.False(s.hasRole(owner, identity.RoleTeacherApplicant))
	})

	s.Run("role grant failure rolls back the application", func() {
		ctrl := gomock.NewController(s.T())
		ids := mocks.NewMockIdentityStore(ctrl)
		owner := id.UserID(uuid.New())
		ids.EXPECT().FindUser(gomock.Any(), owner).Return(&identity.User{ID: owner, Status: identity.AccountActive}, nil)
		ids.EXPECT().HasRole(gomock.Any(), owner, identity.RoleStudent).Return(true, nil)
		ids.EXPECT().HasRole(gomock.Any(), owner, identity.RoleTeacherApplicant).Return(false, nil)
		ids.EXPECT().AddRole(gomock.Any(), owner, identity.RoleTeacherApplicant).Return(errors.New("connection reset"))

		validator := mocks.NewMockTaxonomyValidator(ctrl)
		validator.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		f := newFixture()
		svc, err := New(f.apps, f.creds(), ids, validator, WithLogger(f.logger))
		s.Require().NoError(err)
		_, err = svc.Apply(s.ctx, owner, validFields())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		_, findErr := f.apps.FindByUserID(context.Background(), owner)
		s.Error(findErr)
	})
}

// =============================================================================
// UpdateApplication
// =============================================================================

func (s *ApplicationSuite) TestUpdateApplication() {
	s.Run("editing a REJECTED application returns it to PENDING", func() {
		owner := s.f.newStudent()
		s.rejected(owner)

		ctx := requestcontext.WithTime(s.ctx, t1)
		app, err := s.service.UpdateApplication(ctx, owner, models.ApplicationPatch{Introduction: ptr("Updated intro.")})
		s.Require().NoError(err)

		s.Equal(models.StatusPending, app.Status)
		s.Equal("Updated intro.", app.Introduction)
		s.assertReviewCleared(app)
		s.Equal(t1, app.UpdatedAt)
		s.Equal(app, s.stored(owner))
	})

	s.Run("editing a PENDING application keeps untouched fields", func() {
		owner := s.f.newStudent()
		before := s.apply(owner)

		app, err := s.service.UpdateApplication(s.ctx, owner, models.ApplicationPatch{City: ptr(" Lyon ")})
		s.Require().NoError(err)
		s.Equal("Lyon", app.City)
		s.Equal(before.Country, app.Country)
		s.Equal(before.SecondaryCategoryIDs, app.SecondaryCategoryIDs)
	})

	s.Run("APPROVED application is a state conflict", func() {
		owner := s.f.newStudent()
		before := s.approved(owner)

		_, err := s.service.UpdateApplication(s.ctx, owner, models.ApplicationPatch{City: ptr("Lyon")})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.True(dErrors.HasReason(err, models.ReasonInvalidState))
		s.Equal(before, s.stored(owner))
	})

	s.Run("changed categories are re-validated against the merged selection", func() {
		owner := s.f.newStudent()
		before := s.apply(owner)

		_, err := s.service.UpdateApplication(s.ctx, owner, models.ApplicationPatch{PrimaryCategoryID: ptr(catOtherPrimary)})
		s.True(dErrors.HasReason(err, "secondary_not_in_primary"))
		s.Equal(before, s.stored(owner))

		app, err := s.service.UpdateApplication(s.ctx, owner, models.ApplicationPatch{
			SecondaryCategoryIDs: &[]id.CategoryID{catChildB},
		})
		s.Require().NoError(err)
		s.Equal([]id.CategoryID{catChildB}, app.SecondaryCategoryIDs)
	})

	s.Run("emptied secondaries are a taxonomy error", func() {
		owner := s.f.newStudent()
		before := s.apply(owner)

		_, err := s.service.UpdateApplication(s.ctx, owner, models.ApplicationPatch{
			SecondaryCategoryIDs: &[]id.CategoryID{},
		})
		s.True(dErrors.HasReason(err, "invalid_secondary_count"))
		s.True(dErrors.HasReason(err, "invalid_taxonomy"))
		s.Equal(before, s.stored(owner))
	})

	s.Run("missing application is not found", func() {
		_, err := s.service.UpdateApplication(s.ctx, s.f.newStudent(), models.ApplicationPatch{City: ptr("Lyon")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.True(dErrors.HasReason(err, models.ReasonApplicationNotFound))
	})
}

// =============================================================================
// Resubmit
// =============================================================================

func (s *ApplicationSuite) TestResubmit() {
	s.Run("REJECTED application re-enters review", func() {
		owner := s.f.newStudent()
		s.rejected(owner)

		ctx := requestcontext.WithTime(s.ctx, t1)
		app, err := s.service.Resubmit(ctx, owner)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.Require().NotNil(app.SubmittedAt)
		s.Equal(t1, *app.SubmittedAt)
		s.assertReviewCleared(app)
		s.Contains(s.f.events.Actions(owner), audit.ActionApplicationResubmitted)
	})

	s.Run("any other status is a conflict and leaves the record unchanged", func() {
		pending := s.f.newStudent()
		s.apply(pending)
		approved := s.f.newStudent()
		s.approved(approved)

		for _, owner := range []id.UserID{pending, approved} {
			before := s.stored(owner)
			_, err := s.service.Resubmit(s.ctx, owner)
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
			s.True(dErrors.HasReason(err, models.ReasonInvalidState))
			s.Equal(before, s.stored(owner))
		}
	})
}

// =============================================================================
// Submit
// =============================================================================

func (s *ApplicationSuite) TestSubmit() {
	s.Run("reports the first missing category in check order", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		_, err := s.service.WorkExperiences().Create(s.ctx, owner, work("Acme"))
		s.Require().NoError(err)
		_, err = s.service.LearningExperiences().Create(s.ctx, owner, learning(nil))
		s.Require().NoError(err)

		_, err = s.service.Submit(s.ctx, owner)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.True(dErrors.HasReason(err, models.ReasonIncompleteApplication))
		missing, _ := dErrors.DetailOf(err, "missing")
		s.Equal("learning_experience", missing)
		all, _ := dErrors.DetailOf(err, "all_missing")
		s.Equal([]string{"learning_experience", "certificate"}, all)
		s.Nil(s.stored(owner).SubmittedAt)
	})

	s.Run("empty application reports work experience first", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		_, err := s.service.Submit(s.ctx, owner)
		missing, _ := dErrors.DetailOf(err, "missing")
		s.Equal("work_experience", missing)
	})

	s.Run("complete application is submitted once", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		s.complete(owner)

		app, err := s.service.Submit(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.Require().NotNil(app.SubmittedAt)
		s.Equal(t0, *app.SubmittedAt)

		_, err = s.service.Submit(s.ctx, owner)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.True(dErrors.HasReason(err, models.ReasonAlreadySubmitted))
	})
}

// =============================================================================
// Profile
// =============================================================================

func (s *ApplicationSuite) TestUpdateProfile() {
	s.Run("approved teacher edit forces re-review", func() {
		owner := s.f.newStudent()
		s.approved(owner)
		s.True(s.hasRole(owner, identity.RoleTeacher))

		app, err := s.service.UpdateProfile(s.ctx, owner, models.ApplicationPatch{Introduction: ptr("New bio.")})
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.assertReviewCleared(app)
		s.Contains(s.f.events.Actions(owner), audit.ActionProfileUpdated)
	})

	s.Run("applicant edit of a REJECTED application ends PENDING", func() {
		owner := s.f.newStudent()
		s.rejected(owner)

		app, err := s.service.UpdateProfile(s.ctx, owner, models.ApplicationPatch{City: ptr("Nice")})
		s.Require().NoError(err)
		s.Equal(models.StatusPending, app.Status)
		s.assertReviewCleared(app)
	})

	s.Run("caller with neither permission is denied", func() {
		owner := s.f.newStudent()
		legacy, err := models.NewApplication(owner, validFields(), t0)
		s.Require().NoError(err)
		s.Require().NoError(s.f.apps.Create(context.Background(), legacy))

		_, err = s.service.UpdateProfile(s.ctx, owner, models.ApplicationPatch{City: ptr("Nice")})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.True(dErrors.HasReason(err, models.ReasonPermissionDenied))

		_, err = s.service.GetProfile(s.ctx, owner)
		s.True(dErrors.HasReason(err, models.ReasonPermissionDenied))
	})

	s.Run("profile view is available to applicants", func() {
		owner := s.f.newStudent()
		created := s.apply(owner)
		app, err := s.service.GetProfile(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal(created.ID, app.ID)
	})
}

// =============================================================================
// Review
// =============================================================================

func (s *ApplicationSuite) TestReview() {
	s.Run("unsubmitted application cannot be reviewed", func() {
		owner := s.f.newStudent()
		s.apply(owner)
		_, err := s.service.Review(s.ctx, id.UserID(uuid.New()), owner, models.DecisionApprove, nil)
		s.True(dErrors.HasReason(err, models.ReasonInvalidState))
		s.False(s.hasRole(owner, identity.RoleTeacher))
	})

	s.Run("approval records the reviewer and grants the teacher role", func() {
		owner := s.f.newStudent()
		s.submitted(owner)
		reviewer := id.UserID(uuid.New())

		app, err := s.service.Review(s.ctx, reviewer, owner, models.DecisionApprove, ptr("welcome"))
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, app.Status)
		s.Equal(&reviewer, app.ReviewerID)
		s.Equal(ptr("welcome"), app.ReviewNotes)
		s.True(s.hasRole(owner, identity.RoleTeacher))
		s.Contains(s.f.events.Actions(owner), audit.ActionApplicationReviewed)
	})

	s.Run("rejection does not grant the teacher role", func() {
		owner := s.f.newStudent()
		app := s.rejected(owner)
		s.Equal(models.StatusRejected, app.Status)
		s.False(s.hasRole(owner, identity.RoleTeacher))
	})

	s.Run("unknown decision is a validation error", func() {
		owner := s.f.newStudent()
		s.submitted(owner)
		_, err := s.service.Review(s.ctx, id.UserID(uuid.New()), owner, "maybe", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
