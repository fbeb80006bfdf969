package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
	"coursehub/pkg/platform/tx"
)

// baseColumns are shared by every credential table, in this order.
var baseColumns = []string{
	"application_id", "start_year", "start_month", "end_year", "end_month",
	"is_current", "document_url", "created_at", "updated_at",
}

// Table maps one credential kind onto its table. Columns, Values and Targets
// describe only the kind-specific columns and must agree in order.
type Table[P any] struct {
	Name    string
	Columns []string
	Values  func(P) []any
	Targets func(P) []any
}

// PostgresStore is the database/sql implementation for one credential kind.
type PostgresStore[T any, P models.RecordPtr[T]] struct {
	db    *sql.DB
	table Table[P]
}

func NewPostgres[T any, P models.RecordPtr[T]](db *sql.DB, table Table[P]) *PostgresStore[T, P] {
	return &PostgresStore[T, P]{db: db, table: table}
}

func (s *PostgresStore[T, P]) selectSQL() string {
	cols := append([]string{"id"}, baseColumns...)
	cols = append(cols, s.table.Columns...)
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + s.table.Name
}

func (s *PostgresStore[T, P]) scan(sc interface{ Scan(...any) error }) (P, error) {
	p := P(new(T))
	b := p.Base()
	targets := []any{
		&b.ID, &b.ApplicationID, &b.StartYear, &b.StartMonth, &b.EndYear, &b.EndMonth,
		&b.Current, &b.DocumentURL, &b.CreatedAt, &b.UpdatedAt,
	}
	targets = append(targets, s.table.Targets(p)...)
	if err := sc.Scan(targets...); err != nil {
		return nil, err
	}
	return p, nil
}

func baseValues(b *models.CredentialBase) []any {
	return []any{
		int64(b.ApplicationID), b.StartYear, b.StartMonth, b.EndYear, b.EndMonth,
		b.Current, b.DocumentURL, b.CreatedAt, b.UpdatedAt,
	}
}

func (s *PostgresStore[T, P]) FindByID(ctx context.Context, recordID id.CredentialID) (P, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, s.selectSQL()+" WHERE id = $1", int64(recordID))
	p, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.table.Name, err)
	}
	return p, nil
}

func (s *PostgresStore[T, P]) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]P, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		s.selectSQL()+" WHERE application_id = $1 ORDER BY created_at DESC, id DESC", int64(appID))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table.Name, err)
	}
	defer rows.Close()

	var out []P
	for rows.Next() {
		p, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table.Name, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertMany reserves one id per record from the table's sequence, assigns
// them in batch order, then writes every record in one multi-row INSERT.
// RETURNING row order is not guaranteed, so ids are never read back from it.
func (s *PostgresStore[T, P]) InsertMany(ctx context.Context, records []P) error {
	if len(records) == 0 {
		return nil
	}
	exec := tx.Executor(ctx, s.db)
	ids, err := s.reserveIDs(ctx, exec, len(records))
	if err != nil {
		return err
	}

	cols := append(append([]string{"id"}, baseColumns...), s.table.Columns...)
	var (
		sb   strings.Builder
		args = make([]any, 0, len(records)*len(cols))
	)
	sb.WriteString("INSERT INTO " + s.table.Name + " (" + strings.Join(cols, ", ") + ") VALUES ")
	for i, r := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(len(args)+j+1))
		}
		sb.WriteByte(')')
		args = append(args, ids[i])
		args = append(args, baseValues(r.Base())...)
		args = append(args, s.table.Values(r)...)
	}

	if _, err := exec.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert %s: %w", s.table.Name, err)
	}
	for i, r := range records {
		r.Base().ID = id.CredentialID(ids[i])
	}
	return nil
}

// reserveIDs draws n values from the id sequence, ascending.
func (s *PostgresStore[T, P]) reserveIDs(ctx context.Context, exec tx.DBTX, n int) ([]int64, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT nextval(pg_get_serial_sequence($1, 'id')) FROM generate_series(1, $2)`,
		s.table.Name, n)
	if err != nil {
		return nil, fmt.Errorf("reserve %s ids: %w", s.table.Name, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("reserve %s ids: %w", s.table.Name, err)
		}
		ids = append(ids, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reserve %s ids: %w", s.table.Name, err)
	}
	if len(ids) != n {
		return nil, fmt.Errorf("reserve %s ids: expected %d, got %d", s.table.Name, n, len(ids))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *PostgresStore[T, P]) Save(ctx context.Context, record P) error {
	cols := append(append([]string{}, baseColumns...), s.table.Columns...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = $" + strconv.Itoa(i+2)
	}
	args := append([]any{int64(record.Base().ID)}, baseValues(record.Base())...)
	args = append(args, s.table.Values(record)...)

	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		"UPDATE "+s.table.Name+" SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.table.Name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore[T, P]) Delete(ctx context.Context, recordID id.CredentialID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM "+s.table.Name+" WHERE id = $1", int64(recordID))
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.table.Name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore[T, P]) CountByApplication(ctx context.Context, appID id.ApplicationID, withDocument bool) (int, error) {
	query := "SELECT count(*) FROM " + s.table.Name + " WHERE application_id = $1"
	if withDocument {
		query += " AND document_url IS NOT NULL AND btrim(document_url) <> ''"
	}
	var n int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, int64(appID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Name, err)
	}
	return n, nil
}
