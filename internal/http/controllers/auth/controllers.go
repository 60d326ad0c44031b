// Package auth contiene los controllers del flujo de login social.
package auth

import svc "github.com/dropDatabas3/wso2gate/internal/http/services/auth"

// Controllers agrupa los controllers del flujo de login.
type Controllers struct {
	Start    *StartController
	Callback *CallbackController
	Exchange *ExchangeController
}

// NewControllers construye el grupo completo.
func NewControllers(start svc.StartService, callback svc.CallbackService, exchange svc.ExchangeService) *Controllers {
	return &Controllers{
		Start:    NewStartController(start),
		Callback: NewCallbackController(callback),
		Exchange: NewExchangeController(exchange),
	}
}
