package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/platform/tx"
)

const uniqueViolation = "23505"

const selectColumns = `
	id, public_id, user_id, country, region, city, address,
	primary_category_id, secondary_category_ids, introduction, status,
	submitted_at, reviewed_at, reviewer_id, review_notes, created_at, updated_at`

// PostgresStore persists applications in teacher_applications. The user_id
// unique constraint enforces one application per owner.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	var appID int64
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO teacher_applications (
			public_id, user_id, country, region, city, address,
			primary_category_id, secondary_category_ids, introduction, status,
			submitted_at, reviewed_at, reviewer_id, review_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`,
		app.PublicID, uuid.UUID(app.UserID), app.Country, app.Region, app.City, app.Address,
		int64(app.PrimaryCategoryID), pq.Array(categoryInts(app.SecondaryCategoryIDs)), app.Introduction, string(app.Status),
		app.SubmittedAt, app.ReviewedAt, nullableUUID(app.ReviewerID), app.ReviewNotes, app.CreatedAt, app.UpdatedAt,
	).Scan(&appID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM teacher_applications WHERE id = $1`, int64(appID))
	return scanOne(row)
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM teacher_applications WHERE user_id = $1`, uuid.UUID(userID))
	return scanOne(row)
}

func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE teacher_applications SET
			country = $2, region = $3, city = $4, address = $5,
			primary_category_id = $6, secondary_category_ids = $7, introduction = $8,
			status = $9, submitted_at = $10, reviewed_at = $11, reviewer_id = $12,
			review_notes = $13, updated_at = $14
		WHERE id = $1
	`,
		int64(app.ID), app.Country, app.Region, app.City, app.Address,
		int64(app.PrimaryCategoryID), pq.Array(categoryInts(app.SecondaryCategoryIDs)), app.Introduction,
		string(app.Status), app.SubmittedAt, app.ReviewedAt, nullableUUID(app.ReviewerID),
		app.ReviewNotes, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListPage(ctx context.Context, after id.ApplicationID, limit int) ([]*models.Application, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+selectColumns+` FROM teacher_applications WHERE id > $1 ORDER BY id LIMIT $2`,
		int64(after), limit)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Application, error) {
	app, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return app, err
}

func scan(sc scanner) (*models.Application, error) {
	var (
		app         models.Application
		appID       int64
		userID      uuid.UUID
		primary     int64
		secondaries pq.Int64Array
		status      string
		reviewer    uuid.NullUUID
		submittedAt sql.NullTime
		reviewedAt  sql.NullTime
		notes       sql.NullString
	)
	err := sc.Scan(
		&appID, &app.PublicID, &userID, &app.Country, &app.Region, &app.City, &app.Address,
		&primary, &secondaries, &app.Introduction, &status,
		&submittedAt, &reviewedAt, &reviewer, &notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.UserID = id.UserID(userID)
	app.PrimaryCategoryID = id.CategoryID(primary)
	app.SecondaryCategoryIDs = make([]id.CategoryID, len(secondaries))
	for i, v := range secondaries {
		app.SecondaryCategoryIDs[i] = id.CategoryID(v)
	}
	app.Status = models.Status(status)
	if submittedAt.Valid {
		app.SubmittedAt = &submittedAt.Time
	}
	if reviewedAt.Valid {
		app.ReviewedAt = &reviewedAt.Time
	}
	if reviewer.Valid {
		r := id.UserID(reviewer.UUID)
		app.ReviewerID = &r
	}
	if notes.Valid {
		app.ReviewNotes = &notes.String
	}
	return &app, nil
}

func categoryInts(ids []id.CategoryID) []int64 {
	out := make([]int64, len(ids))
	for i, v := range ids {
		out[i] = int64(v)
	}
	return out
}

func nullableUUID(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}
