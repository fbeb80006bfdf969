package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coursehub/internal/taxonomy/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Category) error {
	var parent sql.NullInt64
	if c.ParentID != nil {
		parent = sql.NullInt64{Int64: int64(*c.ParentID), Valid: true}
	}
	exec := tx.Executor(ctx, s.db)
	if c.ID != 0 {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO categories (id, name, parent_id, active) VALUES ($1, $2, $3, $4)
		`, int64(c.ID), c.Name, parent, c.Active)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	}
	var newID int64
	err := exec.QueryRowContext(ctx, `
		INSERT INTO categories (name, parent_id, active) VALUES ($1, $2, $3) RETURNING id
	`, c.Name, parent, c.Active).Scan(&newID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id.CategoryID(newID)
	return nil
}

func (s *PostgresStore) FindActivePrimary(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	var c models.Category
	var rawID int64
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name FROM categories
		WHERE id = $1 AND parent_id IS NULL AND active
	`, int64(categoryID)).Scan(&rawID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find primary category: %w", err)
	}
	c.ID = id.CategoryID(rawID)
	c.Active = true
	return &c, nil
}

// FindActiveSecondaries resolves every id in one round trip.
func (s *PostgresStore) FindActiveSecondaries(ctx context.Context, ids []id.CategoryID, parent id.CategoryID) ([]models.Category, error) {
	raw := make([]int64, len(ids))
	for i, cid := range ids {
		raw[i] = int64(cid)
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, parent_id FROM categories
		WHERE id = ANY($1) AND parent_id = $2 AND active
		ORDER BY array_position($1, id)
	`, pq.Array(raw), int64(parent))
	if err != nil {
		return nil, fmt.Errorf("find secondary categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var (
			c         models.Category
			rawID     int64
			rawParent int64
		)
		if err := rows.Scan(&rawID, &c.Name, &rawParent); err != nil {
			return nil, fmt.Errorf("scan secondary category: %w", err)
		}
		c.ID = id.CategoryID(rawID)
		p := id.CategoryID(rawParent)
		c.ParentID = &p
		c.Active = true
		out = append(out, c)
	}
	return out, rows.Err()
}
