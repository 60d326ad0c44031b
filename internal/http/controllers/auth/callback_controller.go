package auth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/wso2gate/internal/claims"
	httpx "github.com/dropDatabas3/wso2gate/internal/http"
	httperrors "github.com/dropDatabas3/wso2gate/internal/http/errors"
	svc "github.com/dropDatabas3/wso2gate/internal/http/services/auth"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// CallbackController handles GET /auth/wso2/callback.
type CallbackController struct {
	service svc.CallbackService
}

// NewCallbackController creates the callback controller.
func NewCallbackController(service svc.CallbackService) *CallbackController {
	return &CallbackController{service: service}
}

// Callback completes the login after the provider redirects back.
// An `error` query parameter means the provider aborted: access_denied maps
// to an explicit user cancellation, anything else to a generic failure.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		log.Warn("provider returned error", logger.String("error", errParam))
		httpx.ObserveLogin(claims.WSO2ProviderID, "failed")
		if errParam == "access_denied" {
			httperrors.WriteError(w, httperrors.ErrAuthCancelled)
			return
		}
		httperrors.WriteError(w, httperrors.ErrAuthFailed.WithDetail(errParam))
		return
	}

	result, err := c.service.Callback(ctx, svc.CallbackRequest{
		State: q.Get("state"),
		Code:  q.Get("code"),
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrCallbackMissingState), errors.Is(err, svc.ErrCallbackMissingCode):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing code or state"))
		case errors.Is(err, svc.ErrCallbackInvalidState), errors.Is(err, svc.ErrCallbackProviderMismatch):
			httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("invalid state"))
		case errors.Is(err, svc.ErrCallbackExchangeFailed):
			httpx.ObserveTokenExchangeFailure()
			httpx.ObserveLogin(claims.WSO2ProviderID, "failed")
			httperrors.WriteError(w, httperrors.ErrAuthFailed.WithDetail("token exchange failed"))
		case errors.Is(err, svc.ErrCallbackUserInfoFailed):
			httpx.ObserveLogin(claims.WSO2ProviderID, "failed")
			httperrors.WriteError(w, httperrors.ErrAuthFailed.WithDetail("userinfo fetch failed"))
		default:
			log.Error("callback failed", logger.Err(err))
			httpx.ObserveLogin(claims.WSO2ProviderID, "failed")
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	if result.Active {
		httpx.ObserveLogin(claims.WSO2ProviderID, "active")
	} else {
		httpx.ObserveLogin(claims.WSO2ProviderID, "inactive")
	}

	if result.RedirectURL != "" {
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, result.Result)
}
