// Package pg implements the PostgreSQL store adapter over pgxpool.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

// Store is the PostgreSQL-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool

	profiles    *profileRepo
	departments *departmentRepo
	groups      *groupRepo
}

// Open connects to the database and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool (tests, shared pools).
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:        pool,
		profiles:    &profileRepo{pool: pool},
		departments: &departmentRepo{pool: pool},
		groups:      &groupRepo{pool: pool},
	}
}

// Pool expone el pool subyacente (migraciones, métricas).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Profiles() repository.ProfileRepository       { return s.profiles }
func (s *Store) Departments() repository.DepartmentRepository { return s.departments }
func (s *Store) Groups() repository.GroupRepository           { return s.groups }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

// Provision saves the profile and applies the membership change in one
// transaction. The lookup-then-mutate on the membership row runs under the
// same tx to avoid the lost-update race between concurrent logins.
func (s *Store) Provision(ctx context.Context, p *repository.Profile, membership *repository.MembershipChange) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pg: begin provision: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertProfile = `
		INSERT INTO profile (
			username, email, first_name, last_name, country, city, zipcode,
			organization, voice, language, timezone, preferred_username,
			employee_number, fiscal_code, department, auth_method,
			claim_groups, claim_roles, keywords, is_manager, is_active,
			last_login_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,NOW(),NOW())
		ON CONFLICT (username) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			zipcode = EXCLUDED.zipcode,
			organization = EXCLUDED.organization,
			voice = EXCLUDED.voice,
			language = EXCLUDED.language,
			timezone = EXCLUDED.timezone,
			preferred_username = EXCLUDED.preferred_username,
			employee_number = EXCLUDED.employee_number,
			fiscal_code = EXCLUDED.fiscal_code,
			department = EXCLUDED.department,
			auth_method = EXCLUDED.auth_method,
			claim_groups = EXCLUDED.claim_groups,
			claim_roles = EXCLUDED.claim_roles,
			keywords = EXCLUDED.keywords,
			is_manager = EXCLUDED.is_manager,
			is_active = EXCLUDED.is_active,
			last_login_at = EXCLUDED.last_login_at,
			updated_at = NOW()
	`
	_, err = tx.Exec(ctx, upsertProfile,
		p.Username, p.Email, p.FirstName, p.LastName, p.Country, p.City, p.Zipcode,
		p.Organization, p.Voice, p.Language, p.Timezone, p.PreferredUsername,
		p.EmployeeNumber, p.FiscalCode, p.Department, p.AuthMethod,
		p.Groups, p.Roles, p.Keywords, p.IsManager, p.IsActive,
		p.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("pg: upsert profile: %w", err)
	}

	if membership != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO department_group (slug, title, access, created_at)
			VALUES ($1, $2, 'public_invite', NOW())
			ON CONFLICT (slug) DO NOTHING
		`, membership.GroupSlug, membership.GroupTitle)
		if err != nil {
			return fmt.Errorf("pg: ensure group: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO group_member (group_slug, username, role, joined_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (group_slug, username) DO UPDATE SET role = EXCLUDED.role
		`, membership.GroupSlug, p.Username, string(membership.Role))
		if err != nil {
			return fmt.Errorf("pg: upsert membership: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pg: commit provision: %w", err)
	}
	return nil
}
