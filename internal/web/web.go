// Package web holds the embedded HTML templates for the server's pages and
// renders them.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the embedded templates.
type Pages struct {
	templates *template.Template
}

// NewPages parses every embedded template. Parse failures are programmer
// error and surface at startup.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Pages{templates: tmpl}, nil
}

// Render writes the named page with the given data.
func (p *Pages) Render(w io.Writer, name string, data any) error {
	if err := p.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

var emailTmpl = template.Must(template.ParseFS(templateFS, "templates/email.html"))

// MagicLinkEmail renders the sign-in mail body for the given link.
func MagicLinkEmail(link string) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.ExecuteTemplate(&buf, "email", struct{ Link string }{link}); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// IndexData feeds the landing page.
type IndexData struct {
	PlaylistName string
	SignedIn     bool
}

// LoginData feeds the login form and its result states.
type LoginData struct {
	Sent  bool
	Error string
}

// AppData feeds the signed-in application page.
type AppData struct {
	PlaylistName string
	PlaylistURL  string
	TrackCount   int
}
