// Package audit registra eventos de negocio (logins, cambios administrativos)
// en un logger dedicado. Hoy el sink es el logger estructurado; el formato de
// los eventos está pensado para poder moverlos a un sink externo sin tocar a
// los llamadores.
package audit

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// Eventos emitidos por el servicio.
const (
	EventLoginCompleted    = "login.completed"
	EventLoginDenied       = "login.denied"
	EventDepartmentUpsert  = "department.upserted"
	EventDepartmentDeleted = "department.deleted"
)

// Log escribe un evento de auditoría con campos estructurados.
func Log(event string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+1)
	all = append(all, zap.String("event", event))
	all = append(all, fields...)
	logger.Named("audit").Info("audit event", all...)
}
