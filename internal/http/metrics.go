// Package http aloja la capa HTTP del servicio: errores, middlewares,
// métricas, controllers, services y router.
package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/dropDatabas3/wso2gate/internal/http/middlewares"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	loginsTotal       *prometheus.CounterVec
	tokenExchangeFail prometheus.Counter
)

// RegisterMetrics inicializa las métricas y devuelve el handler para /metrics.
func RegisterMetrics(registry prometheus.Registerer) http.Handler {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_logins_total",
			Help: "Logins sociales completados por resultado",
		}, []string{"provider", "result"}) // result: active|inactive|failed

		tokenExchangeFail = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "token_exchange_failures_total",
			Help: "Intercambios de código fallidos contra el IdP",
		})

		registry.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			httpInflight,
			loginsTotal,
			tokenExchangeFail,
		)
	})

	return promhttp.Handler()
}

// ObserveLogin registra el resultado de un login social.
func ObserveLogin(provider, result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(provider, result).Inc()
	}
}

// ObserveTokenExchangeFailure registra un intercambio de código fallido.
func ObserveTokenExchangeFailure() {
	if tokenExchangeFail != nil {
		tokenExchangeFail.Inc()
	}
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}

// WithMetrics instrumenta requests con contadores, histograma e inflight.
// path es la plantilla de la ruta, no la URL cruda, para acotar cardinalidad.
func WithMetrics(path string) mw.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			httpInflight.WithLabelValues(r.Method, path).Inc()
			defer httpInflight.WithLabelValues(r.Method, path).Dec()

			rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
