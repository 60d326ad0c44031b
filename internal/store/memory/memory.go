// Package memory implements an in-process store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
)

// Store keeps everything behind a single mutex. Provision mutates profile
// and membership under one lock acquisition, which gives it the same
// all-or-nothing visibility as the pg transaction.
type Store struct {
	mu sync.Mutex

	profiles    map[string]repository.Profile
	departments map[string]repository.Department
	groups      map[string]repository.Group
	members     map[string]map[string]repository.GroupMember // slug -> username -> member
}

// New returns an empty store.
func New() *Store {
	return &Store{
		profiles:    make(map[string]repository.Profile),
		departments: make(map[string]repository.Department),
		groups:      make(map[string]repository.Group),
		members:     make(map[string]map[string]repository.GroupMember),
	}
}

func (s *Store) Profiles() repository.ProfileRepository       { return profileRepo{s} }
func (s *Store) Departments() repository.DepartmentRepository { return departmentRepo{s} }
func (s *Store) Groups() repository.GroupRepository           { return groupRepo{s} }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) Provision(_ context.Context, p *repository.Profile, membership *repository.MembershipChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	saved := *p
	if prev, ok := s.profiles[p.Username]; ok {
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	saved.Keywords = append([]string(nil), p.Keywords...)
	s.profiles[p.Username] = saved

	if membership != nil {
		s.ensureGroupLocked(membership.GroupSlug, membership.GroupTitle, now)
		byUser := s.members[membership.GroupSlug]
		if byUser == nil {
			byUser = make(map[string]repository.GroupMember)
			s.members[membership.GroupSlug] = byUser
		}
		m, ok := byUser[p.Username]
		if !ok {
			m = repository.GroupMember{
				GroupSlug: membership.GroupSlug,
				Username:  p.Username,
				JoinedAt:  now,
			}
		}
		m.Role = membership.Role
		byUser[p.Username] = m
	}
	return nil
}

func (s *Store) ensureGroupLocked(slug, title string, now time.Time) repository.Group {
	g, ok := s.groups[slug]
	if !ok {
		g = repository.Group{Slug: slug, Title: title, Access: "public_invite", CreatedAt: now}
		s.groups[slug] = g
	}
	return g
}

type profileRepo struct{ s *Store }

func (r profileRepo) Get(_ context.Context, username string) (*repository.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := p
	cp.Keywords = append([]string(nil), p.Keywords...)
	return &cp, nil
}

type departmentRepo struct{ s *Store }

func (r departmentRepo) Get(_ context.Context, name string) (*repository.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := d
	return &cp, nil
}

func (r departmentRepo) List(_ context.Context) ([]repository.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]repository.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r departmentRepo) Upsert(_ context.Context, d *repository.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saved := *d
	if prev, ok := r.s.departments[d.Name]; ok {
		saved.CreatedAt = prev.CreatedAt
	} else if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}
	r.s.departments[d.Name] = saved
	return nil
}

func (r departmentRepo) Delete(_ context.Context, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.departments, name)
	return nil
}

type groupRepo struct{ s *Store }

func (r groupRepo) Ensure(_ context.Context, slug, title string) (*repository.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.s.ensureGroupLocked(slug, title, time.Now().UTC())
	cp := g
	return &cp, nil
}

func (r groupRepo) Get(_ context.Context, slug string) (*repository.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := g
	return &cp, nil
}

func (r groupRepo) Delete(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.groups, slug)
	delete(r.s.members, slug)
	return nil
}

func (r groupRepo) Member(_ context.Context, slug, username string) (*repository.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[slug][username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := m
	return &cp, nil
}
