// Package views holds the HTML pages and static assets served by the
// marina server. Everything is embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates static
var assets embed.FS

// Page names accepted by Renderer.Render.
const (
	PageLogin           = "index"
	PageDashboard       = "dashboard"
	PageError           = "error"
	PageCatways         = "catways/index"
	PageCatwayForm      = "catways/form"
	PageReservations    = "reservations/index"
	PageReservationForm = "reservations/form"
	PageUsers           = "users/index"
	PageUserForm        = "users/form"
)

var pages = []string{
	PageLogin,
	PageDashboard,
	PageError,
	PageCatways,
	PageCatwayForm,
	PageReservations,
	PageReservationForm,
	PageUsers,
	PageUserForm,
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02/01/2006 15:04")
	},
}

// Renderer executes page templates. Each page is parsed together with the
// shared layout so pages can redefine the "title" and "content" blocks.
type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render writes page name with status. The page is rendered into a buffer
// first so a template error never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the stylesheet and other assets served under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
