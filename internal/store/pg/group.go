package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

type groupRepo struct {
	pool *pgxpool.Pool
}

const selectGroup = `
	SELECT slug, title, access, created_at
	FROM department_group
	WHERE slug = $1
`

func (r *groupRepo) Ensure(ctx context.Context, slug, title string) (*repository.Group, error) {
	// DO NOTHING plus re-select keeps the original created_at when the group
	// already exists.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO department_group (slug, title, access, created_at)
		VALUES ($1, $2, 'public_invite', NOW())
		ON CONFLICT (slug) DO NOTHING
	`, slug, title)
	if err != nil {
		return nil, fmt.Errorf("pg: ensure group: %w", err)
	}
	return r.Get(ctx, slug)
}

func (r *groupRepo) Get(ctx context.Context, slug string) (*repository.Group, error) {
	var g repository.Group
	err := r.pool.QueryRow(ctx, selectGroup, slug).Scan(&g.Slug, &g.Title, &g.Access, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get group: %w", err)
	}
	return &g, nil
}

func (r *groupRepo) Delete(ctx context.Context, slug string) error {
	// group_member rows go with the group via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM department_group WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("pg: delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *groupRepo) Member(ctx context.Context, slug, username string) (*repository.GroupMember, error) {
	var m repository.GroupMember
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT group_slug, username, role, joined_at
		FROM group_member
		WHERE group_slug = $1 AND username = $2
	`, slug, username).Scan(&m.GroupSlug, &m.Username, &role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get membership: %w", err)
	}
	m.Role = repository.GroupRole(role)
	return &m, nil
}
