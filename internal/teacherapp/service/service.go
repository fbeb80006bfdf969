// Package service implements the teacher-application lifecycle: the state
// controller, eligibility checks, credential reconciliation, the
// completeness gate and the applicant-role side effects.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"coursehub/internal/audit"
	"coursehub/internal/teacherapp/metrics"
	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/requestcontext"
)

// DefaultBatchMax bounds a credential batch when no option overrides it.
const DefaultBatchMax = 20

var tracer = otel.Tracer("coursehub/internal/teacherapp/service")

// CredentialStores groups the three per-kind stores.
type CredentialStores struct {
	Work     CredentialStore[*models.WorkExperience]
	Learning CredentialStore[*models.LearningExperience]
	Certs    CredentialStore[*models.Certificate]
}

type (
	WorkBook     = CredentialBook[models.WorkExperience, *models.WorkExperience, models.WorkExperienceFields]
	LearningBook = CredentialBook[models.LearningExperience, *models.LearningExperience, models.LearningExperienceFields]
	CertBook     = CredentialBook[models.Certificate, *models.Certificate, models.CertificateFields]
)

// Service is the application state controller. It composes the validators,
// the reconciliation engine and the completeness gate.
type Service struct {
	applications ApplicationStore
	taxonomy     TaxonomyValidator
	eligibility  *EligibilityValidator
	roles        *RoleManager
	completeness *CompletenessGate
	tx           StoreTx

	work     *WorkBook
	learning *LearningBook
	certs    *CertBook

	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
}

type config struct {
	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
	tx        StoreTx
	batchMax  int
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *config) {
		c.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTx sets the transaction runner. Without it, an in-memory runner is
// built over every store that supports snapshots.
func WithTx(tx StoreTx) Option {
	return func(c *config) {
		c.tx = tx
	}
}

// WithBatchMax overrides the credential batch bound.
func WithBatchMax(n int) Option {
	return func(c *config) {
		c.batchMax = n
	}
}

func New(applications ApplicationStore, creds CredentialStores, identity IdentityStore, taxonomy TaxonomyValidator, opts ...Option) (*Service, error) {
	if applications == nil {
		return nil, errors.New("application store is required")
	}
	if creds.Work == nil || creds.Learning == nil || creds.Certs == nil {
		return nil, errors.New("all credential stores are required")
	}
	if identity == nil {
		return nil, errors.New("identity store is required")
	}
	if taxonomy == nil {
		return nil, errors.New("taxonomy validator is required")
	}

	cfg := &config{batchMax: DefaultBatchMax}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.batchMax < 1 {
		return nil, errors.New("credential batch bound must be positive")
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = NewInMemoryTx(snapshotters(applications, creds.Work, creds.Learning, creds.Certs, identity)...)
	}

	s := &Service{
		applications: applications,
		taxonomy:     taxonomy,
		eligibility:  NewEligibilityValidator(identity),
		roles:        NewRoleManager(identity, cfg.logger),
		completeness: NewCompletenessGate(creds.Work, creds.Learning, creds.Certs),
		tx:           cfg.tx,
		logger:       cfg.logger,
		publisher:    cfg.publisher,
		metrics:      cfg.metrics,
	}
	s.work = newBook(s, NewReconciler[models.WorkExperience, *models.WorkExperience, models.WorkExperienceFields](models.KindWorkExperience, creds.Work, cfg.tx, cfg.batchMax, cfg.metrics))
	s.learning = newBook(s, NewReconciler[models.LearningExperience, *models.LearningExperience, models.LearningExperienceFields](models.KindLearningExperience, creds.Learning, cfg.tx, cfg.batchMax, cfg.metrics))
	s.certs = newBook(s, NewReconciler[models.Certificate, *models.Certificate, models.CertificateFields](models.KindCertificate, creds.Certs, cfg.tx, cfg.batchMax, cfg.metrics))
	return s, nil
}

func (s *Service) WorkExperiences() *WorkBook         { return s.work }
func (s *Service) LearningExperiences() *LearningBook { return s.learning }
func (s *Service) Certificates() *CertBook            { return s.certs }

// Roles exposes the role side-effect manager for the backfill job.
func (s *Service) Roles() *RoleManager { return s.roles }

// loadOwned fetches the caller's application.
func (s *Service) loadOwned(ctx context.Context, userID id.UserID) (*models.Application, error) {
	app, err := s.applications.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "teacher application not found").
				WithReason(models.ReasonApplicationNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load teacher application")
	}
	return app, nil
}

func (s *Service) saveApplication(ctx context.Context, app *models.Application) error {
	if err := s.applications.Update(ctx, app); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save teacher application")
	}
	return nil
}

// emit publishes a lifecycle event and writes the matching audit log line.
// Failures never reach the caller.
func (s *Service) emit(ctx context.Context, action audit.Action, app *models.Application, attrs map[string]string) {
	requestID := requestcontext.RequestID(ctx)
	args := []any{
		"event", string(action),
		"log_type", "audit",
		"user_id", app.UserID.String(),
		"application_id", int64(app.ID),
		"status", string(app.Status),
	}
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	for k, v := range attrs {
		args = append(args, k, v)
	}
	s.logger.InfoContext(ctx, string(action), args...)

	if s.publisher == nil {
		return
	}
	s.publisher.Emit(ctx, audit.Event{
		Action:        action,
		Timestamp:     requestcontext.Now(ctx),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Status:        string(app.Status),
		RequestID:     requestID,
		Attributes:    attrs,
	})
}

func (s *Service) recordTransition(from, to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(from), string(to))
	}
}
