// Package admin implementa los services del surface administrativo.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/wso2gate/internal/audit"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
	"github.com/dropDatabas3/wso2gate/internal/validation"
)

// DepartmentsService manages the department allow-list and keeps each
// department's group in step with it.
type DepartmentsService interface {
	List(ctx context.Context) ([]repository.Department, error)
	Get(ctx context.Context, name string) (*repository.Department, error)
	// Upsert creates or updates the entry and ensures the linked group
	// exists.
	Upsert(ctx context.Context, d *repository.Department) (*repository.Department, error)
	// Delete removes the entry and its linked group, memberships included.
	Delete(ctx context.Context, name string) error
}

// Errors for the departments service.
var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentName     = errors.New("invalid department name")
)

type departmentsService struct {
	store repository.Store
}

// NewDepartmentsService creates a DepartmentsService.
func NewDepartmentsService(store repository.Store) DepartmentsService {
	return &departmentsService{store: store}
}

func (s *departmentsService) List(ctx context.Context) ([]repository.Department, error) {
	return s.store.Departments().List(ctx)
}

func (s *departmentsService) Get(ctx context.Context, name string) (*repository.Department, error) {
	d, err := s.store.Departments().Get(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *departmentsService) Upsert(ctx context.Context, d *repository.Department) (*repository.Department, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("admin.departments"))

	d.Name = strings.TrimSpace(d.Name)
	if !validation.ValidDepartmentName(d.Name) {
		return nil, ErrDepartmentName
	}

	if err := s.store.Departments().Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("upsert department %q: %w", d.Name, err)
	}

	// A department always carries its group. The group slug is the
	// department name; the title falls back to it when label is empty.
	if _, err := s.store.Groups().Ensure(ctx, d.Name, d.Title()); err != nil {
		return nil, fmt.Errorf("ensure group for department %q: %w", d.Name, err)
	}

	log.Info("department upserted",
		logger.Department(d.Name),
		logger.Bool("is_allowed", d.IsAllowed),
	)
	audit.Log(audit.EventDepartmentUpsert,
		logger.Department(d.Name),
		logger.Bool("is_allowed", d.IsAllowed),
	)

	return s.Get(ctx, d.Name)
}

func (s *departmentsService) Delete(ctx context.Context, name string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("admin.departments"))

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrDepartmentName
	}

	if err := s.store.Departments().Delete(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDepartmentNotFound
		}
		return fmt.Errorf("delete department %q: %w", name, err)
	}

	// Cascade: the group and its memberships go with the department.
	if err := s.store.Groups().Delete(ctx, name); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete group for department %q: %w", name, err)
	}

	log.Info("department deleted", logger.Department(name))
	audit.Log(audit.EventDepartmentDeleted, logger.Department(name))
	return nil
}
