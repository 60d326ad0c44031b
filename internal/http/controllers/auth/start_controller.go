package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/wso2gate/internal/http/errors"
	svc "github.com/dropDatabas3/wso2gate/internal/http/services/auth"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// StartController handles GET /auth/wso2/start.
type StartController struct {
	service svc.StartService
}

// NewStartController creates the start controller.
func NewStartController(service svc.StartService) *StartController {
	return &StartController{service: service}
}

// Start redirects the user agent to the provider's authorize endpoint.
// Optional query parameters:
//   - redirect_uri: where to send the user after the callback completes
//   - any other parameter is forwarded to the authorize URL verbatim
func (c *StartController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("StartController.Start"))

	q := r.URL.Query()
	req := svc.StartRequest{RedirectURI: q.Get("redirect_uri")}
	for key, vals := range q {
		if key == "redirect_uri" || len(vals) == 0 {
			continue
		}
		if req.Extra == nil {
			req.Extra = make(map[string]string)
		}
		req.Extra[key] = vals[0]
	}

	result, err := c.service.Start(ctx, req)
	if err != nil {
		log.Error("start failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
