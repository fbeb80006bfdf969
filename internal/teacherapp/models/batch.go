package models

import (
	"cmp"
	"slices"

	id "coursehub/pkg/domain"
)

// Item is one entry of a credential batch: either a new record or an update
// of an existing one. Construct with NewItem or UpdateItem.
type Item[F any] struct {
	id     id.CredentialID
	update bool
	fields F
}

func NewItem[F any](fields F) Item[F] {
	return Item[F]{fields: fields}
}

func UpdateItem[F any](recordID id.CredentialID, fields F) Item[F] {
	return Item[F]{id: recordID, update: true, fields: fields}
}

// Target returns the record id for update items.
func (i Item[F]) Target() (id.CredentialID, bool) {
	return i.id, i.update
}

func (i Item[F]) Fields() F {
	return i.fields
}

// UpsertResult reports a reconciled batch. Records merges Created and
// Updated ordered by created_at desc, then id desc.
type UpsertResult[P any] struct {
	Created      []P
	Updated      []P
	Records      []P
	CreatedCount int
	UpdatedCount int
}

// MissingCategory tags a collection that blocks submission.
type MissingCategory string

const (
	MissingWorkExperience     MissingCategory = "work_experience"
	MissingLearningExperience MissingCategory = "learning_experience"
	MissingCertificate        MissingCategory = "certificate"
)

// Permission is resolved once per request from the caller's roles and
// application status.
type Permission struct {
	CanEditApplication     bool
	CanEditApprovedProfile bool
}

func (p Permission) Any() bool {
	return p.CanEditApplication || p.CanEditApprovedProfile
}

// ReviewDecision is the outcome recorded by a reviewer.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// Transition maps the decision onto the status table.
func (d ReviewDecision) Transition() (Transition, bool) {
	switch d {
	case DecisionApprove:
		return TransitionApprove, true
	case DecisionReject:
		return TransitionReject, true
	}
	return "", false
}

// SortNewestFirst orders records by created_at desc, then id desc.
func SortNewestFirst[P Record](records []P) {
	slices.SortFunc(records, func(a, b P) int {
		ab, bb := a.Base(), b.Base()
		if c := bb.CreatedAt.Compare(ab.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(bb.ID, ab.ID)
	})
}
