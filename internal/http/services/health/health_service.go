// Package health implementa el service de los endpoints de salud.
package health

import (
	"context"

	"github.com/dropDatabas3/wso2gate/internal/cache"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	dto "github.com/dropDatabas3/wso2gate/internal/http/dto/health"
)

// Service reports the health of the service dependencies.
type Service interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type service struct {
	store   repository.Store
	cache   cache.Client
	version string
}

// NewService creates the health service.
func NewService(store repository.Store, c cache.Client, version string) Service {
	return &service{store: store, cache: c, version: version}
}

func (s *service) Check(ctx context.Context) *dto.HealthResponse {
	resp := &dto.HealthResponse{
		Status:  "ok",
		Checks:  map[string]string{},
		Version: s.version,
	}

	if err := s.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["store"] = err.Error()
	} else {
		resp.Checks["store"] = "ok"
	}

	if err := s.cache.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["cache"] = err.Error()
	} else {
		resp.Checks["cache"] = "ok"
	}

	return resp
}
