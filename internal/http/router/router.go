// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	httpx "github.com/dropDatabas3/wso2gate/internal/http"
	ctrladmin "github.com/dropDatabas3/wso2gate/internal/http/controllers/admin"
	ctrlauth "github.com/dropDatabas3/wso2gate/internal/http/controllers/auth"
	ctrlhealth "github.com/dropDatabas3/wso2gate/internal/http/controllers/health"
	mw "github.com/dropDatabas3/wso2gate/internal/http/middlewares"
	"github.com/dropDatabas3/wso2gate/internal/rate"
)

// Deps contiene los controllers y la configuración del router.
type Deps struct {
	Auth        *ctrlauth.Controllers
	Departments *ctrladmin.DepartmentsController
	Health      *ctrlhealth.Controller

	// AdminAPIKeyHash es el hash bcrypt de la API key administrativa.
	// Vacío deshabilita el surface de admin.
	AdminAPIKeyHash string

	// MetricsRegistry registra las métricas; nil usa el registry global.
	MetricsRegistry prometheus.Registerer

	// RateLimiter limita los endpoints de login por IP. nil lo deshabilita.
	RateLimiter rate.Limiter
}

// New construye el router chi con todas las rutas del servicio.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithLogging())

	metricsHandler := httpx.RegisterMetrics(deps.MetricsRegistry)

	r.Get("/healthz", deps.Health.Health)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/auth/wso2", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		if deps.RateLimiter != nil {
			r.Use(mw.WithRateLimit(deps.RateLimiter))
		}

		r.With(httpx.WithMetrics("/auth/wso2/start")).
			Get("/start", deps.Auth.Start.Start)
		r.With(httpx.WithMetrics("/auth/wso2/callback")).
			Get("/callback", deps.Auth.Callback.Callback)
		r.With(httpx.WithMetrics("/auth/wso2/exchange")).
			Post("/exchange", deps.Auth.Exchange.Exchange)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Use(mw.RequireAPIKey(deps.AdminAPIKeyHash))

		r.With(httpx.WithMetrics("/admin/departments")).
			Get("/departments", deps.Departments.List)
		r.With(httpx.WithMetrics("/admin/departments")).
			Post("/departments", deps.Departments.Create)
		r.Route("/departments/{name}", func(r chi.Router) {
			r.Use(httpx.WithMetrics("/admin/departments/{name}"))
			r.Get("/", deps.Departments.Get)
			r.Put("/", deps.Departments.Upsert)
			r.Delete("/", deps.Departments.Delete)
		})
	})

	return r
}
