// Package email envía los correos transaccionales del servicio por SMTP.
package email

import "errors"

// Sender es la interfaz para enviar emails.
// Implementada por SMTPSender.
type Sender interface {
	// Send envía un email con contenido HTML y texto plano.
	// El destinatario recibe ambas versiones como multipart/alternative.
	Send(to string, subject string, htmlBody string, textBody string) error
}

var (
	ErrTemplateRender = errors.New("email: template render failed")
	ErrSendFailed     = errors.New("email: send failed")
)

// Noop descarta todos los envíos. Útil en dev y tests.
type Noop struct{}

func (Noop) Send(string, string, string, string) error { return nil }
