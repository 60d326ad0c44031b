package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	// Get returns the profile or ErrNotFound.
	Get(ctx context.Context, username string) (*Profile, error)
}

// DepartmentRepository manages the department allow-list.
type DepartmentRepository interface {
	// Get returns the department or ErrNotFound.
	Get(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context) ([]Department, error)
	// Upsert creates or updates the entry. The name invariant (one entry per
	// department name) is enforced here.
	Upsert(ctx context.Context, d *Department) error
	// Delete removes the entry. Returns ErrNotFound when absent.
	Delete(ctx context.Context, name string) error
}

// GroupRepository manages department groups and their memberships.
type GroupRepository interface {
	// Ensure returns the group for slug, creating it when absent.
	Ensure(ctx context.Context, slug, title string) (*Group, error)
	// Get returns the group or ErrNotFound.
	Get(ctx context.Context, slug string) (*Group, error)
	// Delete removes the group and its memberships.
	Delete(ctx context.Context, slug string) error
	// Member returns the membership row or ErrNotFound.
	Member(ctx context.Context, slug, username string) (*GroupMember, error)
}

// Store bundles the repositories plus the one transactional operation the
// provisioning engine needs: profile save and membership mutation have to
// land atomically so concurrent logins cannot observe half a login.
type Store interface {
	Profiles() ProfileRepository
	Departments() DepartmentRepository
	Groups() GroupRepository

	// Provision persists the profile and, when membership is non-nil,
	// ensures the group exists and upserts the caller's membership role,
	// all in a single transaction.
	Provision(ctx context.Context, p *Profile, membership *MembershipChange) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close()
}
