package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/logging"
	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/views"
	"github.com/port-russell/marina/types"
)

const (
	tokenCookieName = "token"

	loginFailedMessage = "Email ou mot de passe incorrect"
)

// AuthHandler provides the login page, login/logout endpoints and the session gate.
type AuthHandler struct {
	userService  *services.UserService
	issuer       *auth.Issuer
	responder    *Responder
	cookieSecure bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, issuer *auth.Issuer, responder *Responder, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		issuer:       issuer,
		responder:    responder,
		cookieSecure: cookieSecure,
	}
}

// AuthRouter registers the public auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/", handler.LoginPage)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.responder.render(w, r, http.StatusOK, views.PageLogin, Page{Title: "Connexion"})
}

// Login verifies credentials. Form posts get the session cookie and a
// redirect to the dashboard; JSON posts get the token in the body as well.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	jsonRequest := isJSONRequest(r)

	var req LoginRequest
	if jsonRequest {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	} else {
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}
	req.Email = strings.TrimSpace(req.Email)

	logger := logging.FromContext(r.Context())

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.InfoContext(r.Context(), "login rejected", "email", req.Email)
			if jsonRequest {
				writeError(w, http.StatusUnauthorized, loginFailedMessage)
				return
			}
			h.responder.render(w, r, http.StatusUnauthorized, views.PageLogin, Page{
				Title: "Connexion",
				Error: loginFailedMessage,
				Form:  map[string]string{"email": req.Email},
			})
			return
		}
		logger.ErrorContext(r.Context(), "login failed", "error", err)
		if jsonRequest {
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
			return
		}
		h.responder.renderError(w, r, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	token, err := h.issuer.Issue(auth.Identity{ID: user.ID, Email: user.Email, Username: user.Username})
	if err != nil {
		logger.ErrorContext(r.Context(), "issue token", "error", err)
		if jsonRequest {
			writeError(w, http.StatusInternalServerError, "failed to create token")
			return
		}
		h.responder.renderError(w, r, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	h.setSessionCookie(w, token)
	logger.InfoContext(r.Context(), "user logged in", "user_id", user.ID)

	if jsonRequest {
		writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout drops the session cookie. Tokens are not revoked server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// RequireSession admits requests carrying a valid token cookie and attaches
// the identity to the context. Everything else goes back to the login page.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return RequireSession(h.issuer)(next)
}

// RequireSession constructs the session gate for other routers.
func RequireSession(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(tokenCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			identity, err := issuer.Verify(cookie.Value)
			if err != nil {
				logging.FromContext(r.Context()).DebugContext(r.Context(), "session rejected", "error", err)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), identity)))
		})
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
