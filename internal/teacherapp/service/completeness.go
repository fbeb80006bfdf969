package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
)

type credentialCounter interface {
	CountByApplication(ctx context.Context, appID id.ApplicationID, withDocument bool) (int, error)
}

// CompletenessGate checks the submission prerequisites: one work
// experience, one documented learning experience and one documented
// certificate.
type CompletenessGate struct {
	checks []completenessCheck
}

type completenessCheck struct {
	missing      models.MissingCategory
	store        credentialCounter
	withDocument bool
}

func NewCompletenessGate(work, learning, certs credentialCounter) *CompletenessGate {
	return &CompletenessGate{checks: []completenessCheck{
		{missing: models.MissingWorkExperience, store: work},
		{missing: models.MissingLearningExperience, store: learning, withDocument: true},
		{missing: models.MissingCertificate, store: certs, withDocument: true},
	}}
}

// Check runs the independent counts concurrently and returns every missing
// category in check order. An empty result means the gate passes.
func (g *CompletenessGate) Check(ctx context.Context, appID id.ApplicationID) ([]models.MissingCategory, error) {
	counts := make([]int, len(g.checks))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, c := range g.checks {
		eg.Go(func() error {
			n, err := c.store.CountByApplication(egCtx, appID, c.withDocument)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check application completeness")
	}

	var missing []models.MissingCategory
	for i, c := range g.checks {
		if counts[i] == 0 {
			missing = append(missing, c.missing)
		}
	}
	return missing, nil
}

func incompleteErr(missing []models.MissingCategory) error {
	all := make([]string, len(missing))
	for i, m := range missing {
		all[i] = string(m)
	}
	return dErrors.New(dErrors.CodeValidation, "application is incomplete: missing "+all[0]).
		WithReason(models.ReasonIncompleteApplication).
		WithDetail("missing", all[0]).
		WithDetail("all_missing", all)
}
