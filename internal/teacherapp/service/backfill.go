package service

import (
	"context"
	"errors"
	"log/slog"

	identity "coursehub/internal/identity/models"
	"coursehub/internal/teacherapp/metrics"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
)

const defaultBackfillPage = 100

// BackfillReport summarizes one backfill run.
type BackfillReport struct {
	Scanned int
	Granted int
	Skipped int
	Failed  int
	DryRun  bool
}

// Backfill grants the applicant role to owners of applications created
// before the role existed. It is run explicitly, never at startup.
type Backfill struct {
	applications ApplicationStore
	roles        *RoleManager
	logger       *slog.Logger
	metrics      *metrics.Metrics
	pageSize     int
}

func NewBackfill(applications ApplicationStore, roles *RoleManager, logger *slog.Logger, m *metrics.Metrics, pageSize int) (*Backfill, error) {
	if applications == nil {
		return nil, errors.New("application store is required")
	}
	if roles == nil {
		return nil, errors.New("role manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = defaultBackfillPage
	}
	return &Backfill{applications: applications, roles: roles, logger: logger, metrics: m, pageSize: pageSize}, nil
}

// Run scans every application page by page. A failed grant is logged and
// counted; the scan continues. With dryRun no role is written.
func (b *Backfill) Run(ctx context.Context, dryRun bool) (BackfillReport, error) {
	report := BackfillReport{DryRun: dryRun}
	var after id.ApplicationID
	for {
		if err := ctx.Err(); err != nil {
			return report, dErrors.Wrap(err, dErrors.CodeTimeout, "backfill interrupted")
		}
		page, err := b.applications.ListPage(ctx, after, b.pageSize)
		if err != nil {
			return report, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list teacher applications")
		}
		for _, app := range page {
			report.Scanned++
			after = app.ID
			b.backfillOne(ctx, app.UserID, app.ID, dryRun, &report)
		}
		if len(page) < b.pageSize {
			break
		}
	}

	b.logger.InfoContext(ctx, "applicant role backfill finished",
		"event", "applicant_role_backfill_finished",
		"log_type", "audit",
		"scanned", report.Scanned,
		"granted", report.Granted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"dry_run", dryRun,
	)
	return report, nil
}

func (b *Backfill) backfillOne(ctx context.Context, userID id.UserID, appID id.ApplicationID, dryRun bool, report *BackfillReport) {
	if dryRun {
		has, err := b.roles.identity.HasRole(ctx, userID, identity.RoleTeacherApplicant)
		switch {
		case err != nil:
			report.Failed++
			b.logFailure(ctx, userID, appID, err)
		case has:
			report.Skipped++
		default:
			report.Granted++
			b.logger.InfoContext(ctx, "applicant role would be granted",
				"event", "applicant_role_granted",
				"log_type", "audit",
				"user_id", userID.String(),
				"application_id", int64(appID),
				"dry_run", true,
			)
		}
		return
	}

	granted, err := b.roles.GrantApplicantRole(ctx, userID)
	if err != nil {
		report.Failed++
		b.logFailure(ctx, userID, appID, err)
		return
	}
	if !granted {
		report.Skipped++
		return
	}
	report.Granted++
	if b.metrics != nil {
		b.metrics.IncrementRolesBackfilled()
	}
	b.logger.InfoContext(ctx, "applicant role granted",
		"event", "applicant_role_granted",
		"log_type", "audit",
		"user_id", userID.String(),
		"application_id", int64(appID),
	)
}

func (b *Backfill) logFailure(ctx context.Context, userID id.UserID, appID id.ApplicationID, err error) {
	b.logger.WarnContext(ctx, "applicant role backfill failed",
		"event", "applicant_role_backfill_failed",
		"user_id", userID.String(),
		"application_id", int64(appID),
		"error", err,
	)
}
