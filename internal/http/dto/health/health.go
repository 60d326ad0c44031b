// Package health define los DTOs de los endpoints de salud.
package health

// HealthResponse es la respuesta de GET /healthz.
type HealthResponse struct {
	Status  string            `json:"status"` // "ok" | "degraded"
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}
