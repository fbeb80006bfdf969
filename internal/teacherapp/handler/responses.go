package handler

import (
	"time"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
)

type applicationResponse struct {
	ID                   int64      `json:"id"`
	PublicID             string     `json:"public_id"`
	UserID               id.UserID  `json:"user_id"`
	Country              string     `json:"country"`
	Region               string     `json:"region"`
	City                 string     `json:"city"`
	Address              string     `json:"address"`
	PrimaryCategoryID    int64      `json:"primary_category_id"`
	SecondaryCategoryIDs []int64    `json:"secondary_category_ids"`
	Introduction         string     `json:"introduction"`
	Status               string     `json:"status"`
	SubmittedAt          *time.Time `json:"submitted_at"`
	ReviewedAt           *time.Time `json:"reviewed_at"`
	ReviewerID           *id.UserID `json:"reviewer_id"`
	ReviewNotes          *string    `json:"review_notes"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func toApplicationResponse(a *models.Application) applicationResponse {
	secondaries := make([]int64, len(a.SecondaryCategoryIDs))
	for i, c := range a.SecondaryCategoryIDs {
		secondaries[i] = int64(c)
	}
	return applicationResponse{
		ID:                   int64(a.ID),
		PublicID:             a.PublicID.String(),
		UserID:               a.UserID,
		Country:              a.Country,
		Region:               a.Region,
		City:                 a.City,
		Address:              a.Address,
		PrimaryCategoryID:    int64(a.PrimaryCategoryID),
		SecondaryCategoryIDs: secondaries,
		Introduction:         a.Introduction,
		Status:               string(a.Status),
		SubmittedAt:          a.SubmittedAt,
		ReviewedAt:           a.ReviewedAt,
		ReviewerID:           a.ReviewerID,
		ReviewNotes:          a.ReviewNotes,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// credentialBase is the part of every credential response shared by kinds.
type credentialBase struct {
	ID            int64   `json:"id"`
	ApplicationID int64   `json:"application_id"`
	Kind          string  `json:"kind"`
	DocumentURL   *string `json:"document_url"`
	models.Period
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func baseOf(r models.Record) credentialBase {
	b := r.Base()
	return credentialBase{
		ID:            int64(b.ID),
		ApplicationID: int64(b.ApplicationID),
		Kind:          string(r.Kind()),
		DocumentURL:   b.DocumentURL,
		Period:        b.Period,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type workExperienceResponse struct {
	credentialBase
	Company     string `json:"company"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func presentWork(r *models.WorkExperience) any {
	return workExperienceResponse{credentialBase: baseOf(r), Company: r.Company, Title: r.Title, Description: r.Description}
}

type learningExperienceResponse struct {
	credentialBase
	School string `json:"school"`
	Degree string `json:"degree"`
	Major  string `json:"major"`
}

func presentLearning(r *models.LearningExperience) any {
	return learningExperienceResponse{credentialBase: baseOf(r), School: r.School, Degree: r.Degree, Major: r.Major}
}

type certificateResponse struct {
	credentialBase
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	LicenseNumber string `json:"license_number"`
}

func presentCertificate(r *models.Certificate) any {
	return certificateResponse{credentialBase: baseOf(r), Name: r.Name, Issuer: r.Issuer, LicenseNumber: r.LicenseNumber}
}

type listResponse struct {
	Items []any `json:"items"`
}

type upsertResponse struct {
	Created      []any `json:"created"`
	Updated      []any `json:"updated"`
	Records      []any `json:"records"`
	CreatedCount int   `json:"created_count"`
	UpdatedCount int   `json:"updated_count"`
}

func presentAll[P any](recs []P, present func(P) any) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = present(r)
	}
	return out
}
