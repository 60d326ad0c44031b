// Package admin contiene los controllers del surface administrativo.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	dto "github.com/dropDatabas3/wso2gate/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/wso2gate/internal/http/errors"
	svc "github.com/dropDatabas3/wso2gate/internal/http/services/admin"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// DepartmentsController expone el CRUD del allow-list de departamentos.
type DepartmentsController struct {
	service svc.DepartmentsService
}

// NewDepartmentsController crea el controller.
func NewDepartmentsController(service svc.DepartmentsService) *DepartmentsController {
	return &DepartmentsController{service: service}
}

// List handles GET /admin/departments.
func (c *DepartmentsController) List(w http.ResponseWriter, r *http.Request) {
	depts, err := c.service.List(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("list departments failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	resp := dto.DepartmentListResponse{Departments: make([]dto.DepartmentResponse, 0, len(depts))}
	for _, d := range depts {
		resp.Departments = append(resp.Departments, toResponse(&d))
	}
	httperrors.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /admin/departments/{name}.
func (c *DepartmentsController) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := c.service.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, svc.ErrDepartmentNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		logger.From(r.Context()).Error("get department failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, toResponse(d))
}

// Create handles POST /admin/departments.
func (c *DepartmentsController) Create(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, "", http.StatusCreated)
}

// Upsert handles PUT /admin/departments/{name}.
func (c *DepartmentsController) Upsert(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, chi.URLParam(r, "name"), http.StatusOK)
}

func (c *DepartmentsController) save(w http.ResponseWriter, r *http.Request, name string, okStatus int) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.DepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	// En el PUT manda el name de la URL; en el POST viene del body.
	if name == "" {
		name = req.Name
	}

	dept := &repository.Department{
		Name:      name,
		Label:     req.Label,
		IsAllowed: true,
	}
	if req.IsAllowed != nil {
		dept.IsAllowed = *req.IsAllowed
	}

	saved, err := c.service.Upsert(ctx, dept)
	if err != nil {
		if errors.Is(err, svc.ErrDepartmentName) {
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("invalid department name"))
			return
		}
		logger.From(ctx).Error("upsert department failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	httperrors.WriteJSON(w, okStatus, toResponse(saved))
}

// Delete handles DELETE /admin/departments/{name}.
func (c *DepartmentsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if err := c.service.Delete(ctx, name); err != nil {
		switch {
		case errors.Is(err, svc.ErrDepartmentNotFound):
			httperrors.WriteError(w, httperrors.ErrNotFound)
		case errors.Is(err, svc.ErrDepartmentName):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name is required"))
		default:
			logger.From(ctx).Error("delete department failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toResponse(d *repository.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		Name:      d.Name,
		Label:     d.Label,
		IsAllowed: d.IsAllowed,
		CreatedAt: d.CreatedAt,
	}
}
