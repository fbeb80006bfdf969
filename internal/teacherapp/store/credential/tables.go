package credential

import (
	"database/sql"

	"coursehub/internal/teacherapp/models"
)

var WorkExperienceTable = Table[*models.WorkExperience]{
	Name:    "teacher_work_experiences",
	Columns: []string{"company", "title", "description"},
	Values: func(r *models.WorkExperience) []any {
		return []any{r.Company, r.Title, r.Description}
	},
	Targets: func(r *models.WorkExperience) []any {
		return []any{&r.Company, &r.Title, &r.Description}
	},
}

var LearningExperienceTable = Table[*models.LearningExperience]{
	Name:    "teacher_learning_experiences",
	Columns: []string{"school", "degree", "major"},
	Values: func(r *models.LearningExperience) []any {
		return []any{r.School, r.Degree, r.Major}
	},
	Targets: func(r *models.LearningExperience) []any {
		return []any{&r.School, &r.Degree, &r.Major}
	},
}

var CertificateTable = Table[*models.Certificate]{
	Name:    "teacher_certificates",
	Columns: []string{"name", "issuer", "license_number"},
	Values: func(r *models.Certificate) []any {
		return []any{r.Name, r.Issuer, r.LicenseNumber}
	},
	Targets: func(r *models.Certificate) []any {
		return []any{&r.Name, &r.Issuer, &r.LicenseNumber}
	},
}

func NewPostgresWorkExperiences(db *sql.DB) *PostgresStore[models.WorkExperience, *models.WorkExperience] {
	return NewPostgres[models.WorkExperience](db, WorkExperienceTable)
}

func NewPostgresLearningExperiences(db *sql.DB) *PostgresStore[models.LearningExperience, *models.LearningExperience] {
	return NewPostgres[models.LearningExperience](db, LearningExperienceTable)
}

func NewPostgresCertificates(db *sql.DB) *PostgresStore[models.Certificate, *models.Certificate] {
	return NewPostgres[models.Certificate](db, CertificateTable)
}
