package handlers

import (
	"errors"
	"net/http"

	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/logging"
	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/internal/views"
	"github.com/port-russell/marina/types"
)

// Page is the view model handed to every template. The layout reads User
// and Flash; each page reads the fields it needs.
type Page struct {
	Title  string
	User   *auth.Identity
	Flash  *Flash
	Error  string
	Errors map[string]string
	Form   map[string]string

	Action       string
	BasePath     string
	Editing      bool
	CatwayNumber int
	CatwayTypes  []types.CatwayType

	Catways      []types.Catway
	Reservations []types.Reservation
	Users        []types.User
}

// Responder renders pages and translates service errors into responses.
type Responder struct {
	renderer *views.Renderer
}

func NewResponder(renderer *views.Renderer) *Responder {
	return &Responder{renderer: renderer}
}

func (rs *Responder) render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		page.User = &identity
	}
	if flash, ok := FlashFromContext(r.Context()); ok {
		page.Flash = &flash
	}
	if err := rs.renderer.Render(w, status, name, page); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (rs *Responder) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	rs.render(w, r, status, views.PageError, Page{
		Title: http.StatusText(status),
		Error: message,
	})
}

// redirect queues flash and sends the client to location.
func (rs *Responder) redirect(w http.ResponseWriter, r *http.Request, location string, flash Flash) {
	setFlash(w, flash)
	http.Redirect(w, r, location, http.StatusFound)
}

// fail renders the error page matching err. notFound is shown for
// store.ErrNotFound.
func (rs *Responder) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		rs.renderError(w, r, http.StatusNotFound, notFound)
	case errors.As(err, &vErr):
		rs.renderError(w, r, http.StatusBadRequest, vErr.Error())
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
		rs.renderError(w, r, http.StatusInternalServerError, "Erreur serveur")
	}
}

// failJSON is fail for JSON endpoints.
func (rs *Responder) failJSON(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: vErr.FieldErrors})
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// formError re-renders a rejected form with its field errors and a 400, or
// falls back to fail for any other error.
func (rs *Responder) formError(w http.ResponseWriter, r *http.Request, err error, notFound, name string, page Page) {
	var vErr *services.ValidationError
	if !errors.As(err, &vErr) {
		rs.fail(w, r, err, notFound)
		return
	}
	page.Errors = vErr.FieldErrors
	rs.render(w, r, http.StatusBadRequest, name, page)
}
