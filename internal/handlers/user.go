package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/views"
)

const userNotFound = "Utilisateur non trouvé"

// UserHandler provides HTTP handlers for the user directory.
type UserHandler struct {
	userService *services.UserService
	responder   *Responder
}

func NewUserHandler(userService *services.UserService, responder *Responder) *UserHandler {
	return &UserHandler{userService: userService, responder: responder}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, handler *UserHandler) {
	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Get("/new", handler.NewUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
		r.Get("/edit", handler.EditUser)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		if wantsJSON(r) {
			h.responder.failJSON(w, r, err, userNotFound)
			return
		}
		h.responder.fail(w, r, err, userNotFound)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, users)
		return
	}
	h.responder.render(w, r, http.StatusOK, views.PageUsers, Page{Title: "Utilisateurs", Users: users})
}

func (h *UserHandler) NewUser(w http.ResponseWriter, r *http.Request) {
	h.responder.render(w, r, http.StatusOK, views.PageUserForm, Page{Title: "Nouvel utilisateur", Action: "/users"})
}

func bindUser(r *http.Request) (services.UserInput, map[string]string) {
	form := formValues(r, "username", "email")
	return services.UserInput{
		Username: form["username"],
		Email:    form["email"],
		Password: r.PostFormValue("password"),
	}, form
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	input, form := bindUser(r)
	if _, err := h.userService.Create(r.Context(), input); err != nil {
		page := Page{Title: "Nouvel utilisateur", Action: "/users", Form: form}
		h.responder.formError(w, r, err, userNotFound, views.PageUserForm, page)
		return
	}

	h.responder.redirect(w, r, "/users", Flash{Type: FlashSuccess, Text: "Utilisateur ajouté avec succès"})
}

// GetUser returns one user as JSON. The password hash is never serialised.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.responder.failJSON(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.responder.fail(w, r, err, userNotFound)
		return
	}

	h.responder.render(w, r, http.StatusOK, views.PageUserForm, Page{
		Title:   "Modifier l'utilisateur",
		Action:  "/users/" + user.ID,
		Editing: true,
		Form:    map[string]string{"username": user.Username, "email": user.Email},
	})
}

// UpdateUser replaces username and email. The password is rehashed only
// when a new one is supplied.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	input, form := bindUser(r)
	if _, err := h.userService.Update(r.Context(), id, input); err != nil {
		page := Page{Title: "Modifier l'utilisateur", Action: "/users/" + id, Editing: true, Form: form}
		h.responder.formError(w, r, err, userNotFound, views.PageUserForm, page)
		return
	}

	h.responder.redirect(w, r, "/users", Flash{Type: FlashSuccess, Text: "Utilisateur mis à jour avec succès"})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.responder.fail(w, r, err, userNotFound)
		return
	}

	h.responder.redirect(w, r, "/users", Flash{Type: FlashDanger, Text: "Utilisateur supprimé avec succès"})
}
