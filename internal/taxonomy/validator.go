// Package taxonomy validates a teacher's primary/secondary category selection.
package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"coursehub/internal/taxonomy/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/platform/validation"
)

const (
	ReasonInvalidTaxonomy       dErrors.Reason = "invalid_taxonomy"
	ReasonInvalidCategory       dErrors.Reason = "invalid_category"
	ReasonInvalidSecondaryCount dErrors.Reason = "invalid_secondary_count"
	ReasonDuplicateSecondary    dErrors.Reason = "duplicate_secondary"
	ReasonSecondaryNotInPrimary dErrors.Reason = "secondary_not_in_primary"
)

// Store is the taxonomy lookup collaborator.
type Store interface {
	FindActivePrimary(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	FindActiveSecondaries(ctx context.Context, ids []id.CategoryID, parent id.CategoryID) ([]models.Category, error)
}

// Validator performs read-only checks; it never mutates the taxonomy.
type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate checks that primary is an active primary category and that
// secondaries holds 1..3 unique active children of it. Secondaries are
// resolved with one lookup; a partial match fails the whole selection.
func (v *Validator) Validate(ctx context.Context, primary id.CategoryID, secondaries []id.CategoryID) error {
	if _, err := v.store.FindActivePrimary(ctx, primary); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return taxonomyErr(dErrors.CodeNotFound, ReasonInvalidCategory,
				"primary category is not an active primary category").
				WithDetail("category_id", int64(primary))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load primary category")
	}

	if len(secondaries) == 0 || len(secondaries) > validation.MaxSecondaryCategories {
		return taxonomyErr(dErrors.CodeValidation, ReasonInvalidSecondaryCount,
			fmt.Sprintf("between 1 and %d secondary categories are required", validation.MaxSecondaryCategories)).
			WithDetail("count", len(secondaries))
	}

	seen := make(map[id.CategoryID]struct{}, len(secondaries))
	for _, sid := range secondaries {
		if _, dup := seen[sid]; dup {
			return taxonomyErr(dErrors.CodeValidation, ReasonDuplicateSecondary,
				"secondary categories must be unique").
				WithDetail("category_id", int64(sid))
		}
		seen[sid] = struct{}{}
	}

	found, err := v.store.FindActiveSecondaries(ctx, secondaries, primary)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load secondary categories")
	}
	if len(found) != len(secondaries) {
		resolved := make(map[id.CategoryID]struct{}, len(found))
		for _, c := range found {
			resolved[c.ID] = struct{}{}
		}
		var missing []int64
		for _, sid := range secondaries {
			if _, ok := resolved[sid]; !ok {
				missing = append(missing, int64(sid))
			}
		}
		return taxonomyErr(dErrors.CodeNotFound, ReasonSecondaryNotInPrimary,
			"secondary categories must be active children of the primary category").
			WithDetail("category_ids", missing)
	}
	return nil
}

func taxonomyErr(code dErrors.Code, reason dErrors.Reason, msg string) *dErrors.Error {
	return dErrors.New(code, msg).WithReason(reason).WithGroup(ReasonInvalidTaxonomy)
}
