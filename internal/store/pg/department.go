package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

type departmentRepo struct {
	pool *pgxpool.Pool
}

func (r *departmentRepo) Get(ctx context.Context, name string) (*repository.Department, error) {
	var d repository.Department
	err := r.pool.QueryRow(ctx, `
		SELECT name, label, is_allowed, created_at
		FROM department
		WHERE name = $1
	`, name).Scan(&d.Name, &d.Label, &d.IsAllowed, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get department: %w", err)
	}
	return &d, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]repository.Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, label, is_allowed, created_at
		FROM department
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("pg: list departments: %w", err)
	}
	defer rows.Close()

	var out []repository.Department
	for rows.Next() {
		var d repository.Department
		if err := rows.Scan(&d.Name, &d.Label, &d.IsAllowed, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("pg: scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: list departments: %w", err)
	}
	return out, nil
}

func (r *departmentRepo) Upsert(ctx context.Context, d *repository.Department) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO department (name, label, is_allowed, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET
			label = EXCLUDED.label,
			is_allowed = EXCLUDED.is_allowed
	`, d.Name, d.Label, d.IsAllowed)
	if err != nil {
		return fmt.Errorf("pg: upsert department: %w", err)
	}
	return nil
}

func (r *departmentRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM department WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("pg: delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
