package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"coursehub/internal/identity/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists users in the users and user_roles tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User, roles ...models.Role) error {
	exec := tx.Executor(ctx, s.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO users (id, email, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(user.ID), user.Email, string(user.Status), user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	for _, r := range roles {
		if err := s.AddRole(ctx, user.ID, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u      models.User
		raw    uuid.UUID
		status string
	)
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, email, status, created_at FROM users WHERE id = $1
	`, uuid.UUID(userID)).Scan(&raw, &u.Email, &status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(raw)
	u.Status = models.AccountStatus(status)
	return &u, nil
}

func (s *PostgresStore) HasRole(ctx context.Context, userID id.UserID, role models.Role) (bool, error) {
	var exists bool
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)
	`, uuid.UUID(userID), string(role)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) AddRole(ctx context.Context, userID id.UserID, role models.Role) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`, uuid.UUID(userID), string(role))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("add role: %w", err)
	}
	return nil
}
