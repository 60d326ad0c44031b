// Package logger es el wrapper de zap del servicio: un singleton global más
// un logger por request propagado por contexto.
//
// El middleware de request id inyecta con ToContext un logger que ya trae
// request_id; controllers y services lo recuperan con From(ctx) y le agregan
// sus propios campos tipados (Username, Provider, Department). Los valores
// sensibles pasan por los helpers de fields.go, que enmascaran antes de
// loguear.
//
// En "dev" la salida es consola con colores; en "prod", JSON por stdout. El
// nivel se controla con LOG_LEVEL.
package logger
