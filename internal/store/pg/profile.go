package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

type profileRepo struct {
	pool *pgxpool.Pool
}

const selectProfile = `
	SELECT username, email, first_name, last_name, country, city, zipcode,
	       organization, voice, language, timezone, preferred_username,
	       employee_number, fiscal_code, department, auth_method,
	       claim_groups, claim_roles, keywords, is_manager, is_active,
	       last_login_at, created_at, updated_at
	FROM profile
	WHERE username = $1
`

func (r *profileRepo) Get(ctx context.Context, username string) (*repository.Profile, error) {
	var p repository.Profile
	err := r.pool.QueryRow(ctx, selectProfile, username).Scan(
		&p.Username, &p.Email, &p.FirstName, &p.LastName, &p.Country, &p.City, &p.Zipcode,
		&p.Organization, &p.Voice, &p.Language, &p.Timezone, &p.PreferredUsername,
		&p.EmployeeNumber, &p.FiscalCode, &p.Department, &p.AuthMethod,
		&p.Groups, &p.Roles, &p.Keywords, &p.IsManager, &p.IsActive,
		&p.LastLoginAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get profile: %w", err)
	}
	return &p, nil
}
