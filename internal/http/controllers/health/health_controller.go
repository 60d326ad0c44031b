// Package health contiene el controller de los endpoints de salud.
package health

import (
	"net/http"

	httperrors "github.com/dropDatabas3/wso2gate/internal/http/errors"
	svc "github.com/dropDatabas3/wso2gate/internal/http/services/health"
)

// Controller handles GET /healthz.
type Controller struct {
	service svc.Service
}

// NewController crea el controller.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Health responde 200 con el detalle de checks, o 503 si algo está caído.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httperrors.WriteJSON(w, status, resp)
}
