package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/store/memory"
	"github.com/port-russell/marina/internal/views"
)

const testSecret = "handlers-test-secret"

type fixture struct {
	users        *services.UserService
	catways      *services.CatwayService
	reservations *services.ReservationService
	issuer       *auth.Issuer
	responder    *Responder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.New()
	issuer, err := auth.NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	renderer, err := views.New()
	require.NoError(t, err)

	return &fixture{
		users:        services.NewUserService(mem.Users(), auth.NewHasher(bcrypt.MinCost), nil),
		catways:      services.NewCatwayService(mem.Catways(), nil),
		reservations: services.NewReservationService(mem.Reservations(), nil),
		issuer:       issuer,
		responder:    NewResponder(renderer),
	}
}

// sessionCookie returns a valid token cookie for a freshly created user.
func (f *fixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	user, err := f.users.Create(context.Background(), services.UserInput{
		Username: "capitaine",
		Email:    "capitaine@port.fr",
		Password: "s3cret",
	})
	require.NoError(t, err)

	token, err := f.issuer.Issue(auth.Identity{ID: user.ID, Email: user.Email, Username: user.Username})
	require.NoError(t, err)
	return &http.Cookie{Name: tokenCookieName, Value: token}
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func (f *fixture) router() http.Handler {
	authHandler := NewAuthHandler(f.users, f.issuer, f.responder, false)
	reservationHandler := NewReservationHandler(f.reservations, f.responder)

	r := chi.NewRouter()
	r.Use(MethodOverride, FlashMiddleware)
	AuthRouter(r, authHandler)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireSession)
		r.Get("/dashboard", NewDashboardHandler(f.reservations, f.responder).Show)
		r.Route("/catways", func(r chi.Router) {
			CatwayRouter(r, NewCatwayHandler(f.catways, f.responder), reservationHandler)
		})
		r.Route("/reservations", func(r chi.Router) {
			ReservationRouter(r, reservationHandler)
		})
		r.Route("/users", func(r chi.Router) {
			UserRouter(r, NewUserHandler(f.users, f.responder))
		})
	})
	return r
}

// do sends req through router with the session cookie attached.
func do(router http.Handler, req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
