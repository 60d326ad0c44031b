package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/wso2gate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/wso2gate/internal/http/errors"
	svc "github.com/dropDatabas3/wso2gate/internal/http/services/auth"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// ExchangeController handles POST /auth/wso2/exchange.
type ExchangeController struct {
	service svc.ExchangeService
}

// NewExchangeController creates the exchange controller.
func NewExchangeController(service svc.ExchangeService) *ExchangeController {
	return &ExchangeController{service: service}
}

// Exchange redeems a one-shot login code for the login result.
func (c *ExchangeController) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ExchangeController.Exchange"))

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10) // 32KB

	var req dto.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	result, err := c.service.Exchange(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrCodeMissing):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code is required"))
		case errors.Is(err, svc.ErrCodeNotFound):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("code not found or expired"))
		default:
			log.Error("exchange failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, result)
	log.Debug("login code exchanged")
}
