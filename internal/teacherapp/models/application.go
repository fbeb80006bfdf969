package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/validation"
)

// Status is the review status of an application. The zero value means the
// application does not exist yet.
type Status string

const (
	StatusNone     Status = ""
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Application tracks one user's progress through teacher approval. There is
// at most one per user.
type Application struct {
	ID       id.ApplicationID
	PublicID uuid.UUID
	UserID   id.UserID

	Country string
	Region  string
	City    string
	Address string

	PrimaryCategoryID    id.CategoryID
	SecondaryCategoryIDs []id.CategoryID
	Introduction         string

	Status      Status
	SubmittedAt *time.Time
	ReviewedAt  *time.Time
	ReviewerID  *id.UserID
	ReviewNotes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicationFields is the full profile captured by apply.
type ApplicationFields struct {
	Country              string          `json:"country" validate:"required,max=255"`
	Region               string          `json:"region" validate:"required,max=255"`
	City                 string          `json:"city" validate:"required,max=255"`
	Address              string          `json:"address" validate:"required,max=255"`
	PrimaryCategoryID    id.CategoryID   `json:"primary_category_id" validate:"required,gt=0"`
	SecondaryCategoryIDs []id.CategoryID `json:"secondary_category_ids" validate:"omitempty,dive,gt=0"`
	Introduction         string          `json:"introduction" validate:"required,max=2000"`
}

func (f *ApplicationFields) Normalize() {
	f.Country = strings.TrimSpace(f.Country)
	f.Region = strings.TrimSpace(f.Region)
	f.City = strings.TrimSpace(f.City)
	f.Address = strings.TrimSpace(f.Address)
	f.Introduction = strings.TrimSpace(f.Introduction)
}

func (f *ApplicationFields) Validate() error {
	return validation.Struct(f)
}

// ApplicationPatch is a partial update. Nil fields are left unchanged.
type ApplicationPatch struct {
	Country              *string          `json:"country,omitempty" validate:"omitempty,min=1,max=255"`
	Region               *string          `json:"region,omitempty" validate:"omitempty,min=1,max=255"`
	City                 *string          `json:"city,omitempty" validate:"omitempty,min=1,max=255"`
	Address              *string          `json:"address,omitempty" validate:"omitempty,min=1,max=255"`
	PrimaryCategoryID    *id.CategoryID   `json:"primary_category_id,omitempty" validate:"omitempty,gt=0"`
	SecondaryCategoryIDs *[]id.CategoryID `json:"secondary_category_ids,omitempty" validate:"omitempty,dive,gt=0"`
	Introduction         *string          `json:"introduction,omitempty" validate:"omitempty,max=2000"`
}

func (p *ApplicationPatch) Normalize() {
	for _, f := range []*string{p.Country, p.Region, p.City, p.Address, p.Introduction} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (p *ApplicationPatch) Validate() error {
	return validation.Struct(p)
}

// TouchesTaxonomy reports whether the patch changes either category field.
func (p *ApplicationPatch) TouchesTaxonomy() bool {
	return p.PrimaryCategoryID != nil || p.SecondaryCategoryIDs != nil
}

// NewApplication builds a PENDING application through the apply transition.
func NewApplication(userID id.UserID, f ApplicationFields, now time.Time) (*Application, error) {
	a := &Application{
		PublicID:             uuid.New(),
		UserID:               userID,
		Country:              f.Country,
		Region:               f.Region,
		City:                 f.City,
		Address:              f.Address,
		PrimaryCategoryID:    f.PrimaryCategoryID,
		SecondaryCategoryIDs: append([]id.CategoryID(nil), f.SecondaryCategoryIDs...),
		Introduction:         f.Introduction,
		CreatedAt:            now,
	}
	if err := a.Advance(TransitionApply, Change{At: now}); err != nil {
		return nil, err
	}
	return a, nil
}

// Patched returns a copy of a with the patch applied. The receiver is left
// untouched so a failed validation has no effect.
func (a *Application) Patched(p ApplicationPatch) *Application {
	c := a.Clone()
	if p.Country != nil {
		c.Country = *p.Country
	}
	if p.Region != nil {
		c.Region = *p.Region
	}
	if p.City != nil {
		c.City = *p.City
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.PrimaryCategoryID != nil {
		c.PrimaryCategoryID = *p.PrimaryCategoryID
	}
	if p.SecondaryCategoryIDs != nil {
		c.SecondaryCategoryIDs = append([]id.CategoryID(nil), (*p.SecondaryCategoryIDs)...)
	}
	if p.Introduction != nil {
		c.Introduction = *p.Introduction
	}
	return c
}

// Clone deep-copies the application, including pointer fields.
func (a *Application) Clone() *Application {
	c := *a
	c.SecondaryCategoryIDs = append([]id.CategoryID(nil), a.SecondaryCategoryIDs...)
	c.SubmittedAt = clonePtr(a.SubmittedAt)
	c.ReviewedAt = clonePtr(a.ReviewedAt)
	c.ReviewerID = clonePtr(a.ReviewerID)
	c.ReviewNotes = clonePtr(a.ReviewNotes)
	return &c
}

func (a *Application) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

func (a *Application) clearReview() {
	a.ReviewedAt = nil
	a.ReviewerID = nil
	a.ReviewNotes = nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
