package email

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	ttemplate "text/template"
)

// WelcomeVars son las variables disponibles en los templates de bienvenida.
type WelcomeVars struct {
	Name     string
	SiteName string
	SiteURL  string
}

const defaultWelcomeSubject = "Welcome to {{.SiteName}}"

const defaultWelcomeHTML = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your account on <strong>{{.SiteName}}</strong> has been activated.</p>
  <p>You can sign in at <a href="{{.SiteURL}}">{{.SiteURL}}</a>.</p>
</body>
</html>`

const defaultWelcomeText = `Welcome, {{.Name}}!

Your account on {{.SiteName}} has been activated.
You can sign in at {{.SiteURL}}.`

// WelcomeMailer renderiza y envía el correo de bienvenida en la primera
// activación de una cuenta.
type WelcomeMailer struct {
	Sender   Sender
	SiteName string
	SiteURL  string

	// Overrides opcionales; vacío usa los templates por defecto.
	SubjectTmpl string
	HTMLTmpl    string
	TextTmpl    string
}

// Send renderiza los templates y envía el correo.
func (w *WelcomeMailer) Send(to, name string) error {
	vars := WelcomeVars{Name: name, SiteName: w.SiteName, SiteURL: w.SiteURL}
	if vars.Name == "" {
		vars.Name = to
	}

	subject, err := renderText(pick(w.SubjectTmpl, defaultWelcomeSubject), vars)
	if err != nil {
		return fmt.Errorf("%w: subject: %v", ErrTemplateRender, err)
	}
	html, err := renderHTML(pick(w.HTMLTmpl, defaultWelcomeHTML), vars)
	if err != nil {
		return fmt.Errorf("%w: html: %v", ErrTemplateRender, err)
	}
	text, err := renderText(pick(w.TextTmpl, defaultWelcomeText), vars)
	if err != nil {
		return fmt.Errorf("%w: text: %v", ErrTemplateRender, err)
	}

	return w.Sender.Send(to, subject, html, text)
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func renderHTML(tmpl string, vars WelcomeVars) (string, error) {
	t, err := htemplate.New("welcome").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tmpl string, vars WelcomeVars) (string, error) {
	t, err := ttemplate.New("welcome").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
