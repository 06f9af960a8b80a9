package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/types"
)

func TestCatwayRoutes_Lifecycle(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()

	rec := do(router, postForm("/catways", url.Values{
		"catwayNumber": {"7"},
		"catwayType":   {"Long"},
		"catwayState":  {"bon état"},
	}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catways", rec.Header().Get("Location"))
	flash := findCookie(rec, flashCookieName)
	require.NotNil(t, flash)

	// The flash is shown on the next page and cleared in the same response.
	req := httptest.NewRequest(http.MethodGet, "/catways", nil)
	req.AddCookie(flash)
	rec = do(router, req, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Catway 7 ajouté avec succès")
	cleared := findCookie(rec, flashCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways", nil), session)
	assert.NotContains(t, rec.Body.String(), "Catway 7 ajouté avec succès")

	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways/7", nil), session)
	require.Equal(t, http.StatusOK, rec.Code)
	var catway types.Catway
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catway))
	assert.Equal(t, 7, catway.Number)
	assert.Equal(t, types.CatwayLong, catway.Type)
	assert.Equal(t, "bon état", catway.State)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways/7/edit", nil), session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="_method" value="PUT"`)

	rec = do(router, postForm("/catways/7", url.Values{
		"_method":      {"PUT"},
		"catwayNumber": {"99"},
		"catwayType":   {"short"},
		"catwayState":  {"planches à changer"},
	}), session)
	require.Equal(t, http.StatusFound, rec.Code)

	updated, err := f.catways.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, types.CatwayShort, updated.Type)
	assert.Equal(t, "planches à changer", updated.State)
	_, err = f.catways.Get(context.Background(), 99)
	assert.Error(t, err)

	rec = do(router, postForm("/catways/7", url.Values{"_method": {"DELETE"}}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catways", rec.Header().Get("Location"))

	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways/7", nil), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"`+catwayNotFound+`"}`, rec.Body.String())
}

func TestCatwayRoutes_ValidationRerendersForm(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()

	rec := do(router, postForm("/catways", url.Values{
		"catwayNumber": {"abc"},
		"catwayType":   {"huge"},
		"catwayState":  {"  "},
	}), session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "must be a positive integer")
	assert.Contains(t, body, "must be short or long")
	assert.Contains(t, body, "is required")
	assert.Nil(t, findCookie(rec, flashCookieName))

	_, err := f.catways.Create(context.Background(), types.Catway{Number: 3, Type: types.CatwayShort, State: "ok"})
	require.NoError(t, err)
	rec = do(router, postForm("/catways", url.Values{
		"catwayNumber": {"3"},
		"catwayType":   {"short"},
		"catwayState":  {"ok"},
	}), session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCatwayRoutes_NotFound(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()

	for _, path := range []string{"/catways/42", "/catways/zero", "/catways/-1"} {
		rec := do(router, httptest.NewRequest(http.MethodGet, path, nil), session)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := do(router, httptest.NewRequest(http.MethodGet, "/catways/42/edit", nil), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), catwayNotFound)

	rec = do(router, postForm("/catways/42", url.Values{"_method": {"DELETE"}}), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatwayRoutes_ListJSON(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	for _, n := range []int{2, 1} {
		_, err := f.catways.Create(context.Background(), types.Catway{Number: n, Type: types.CatwayShort, State: "ok"})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/catways", nil)
	req.Header.Set("Accept", "application/json")
	rec := do(f.router(), req, session)
	require.Equal(t, http.StatusOK, rec.Code)

	var catways []types.Catway
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catways))
	require.Len(t, catways, 2)
	assert.Equal(t, 1, catways[0].Number)
	assert.Equal(t, 2, catways[1].Number)
}

func reservationForm(clientName string) url.Values {
	return url.Values{
		"clientName": {clientName},
		"boatName":   {"Albatros"},
		"startDate":  {"2026-05-01"},
		"endDate":    {"2026-05-10"},
	}
}

func TestReservationRoutes_Scoped(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()
	ctx := context.Background()

	rec := do(router, postForm("/catways/1/reservations", reservationForm("Marie")), session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catways/1/reservations", rec.Header().Get("Location"))

	list, err := f.reservations.ListByCatway(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID
	assert.Equal(t, "Marie", list[0].ClientName)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways/1/reservations/"+id, nil), session)
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.CatwayNumber)

	// Another catway's scope never exposes the reservation.
	rec = do(router, httptest.NewRequest(http.MethodGet, "/catways/2/reservations/"+id, nil), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(router, postForm("/catways/2/reservations/"+id, url.Values{"_method": {"DELETE"}}), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/reservations/"+id, nil), session)
	assert.Equal(t, http.StatusOK, rec.Code)

	form := reservationForm("Marie Curie")
	form.Set("_method", "PUT")
	form.Set("catwayNumber", "5")
	rec = do(router, postForm("/catways/1/reservations/"+id, form), session)
	require.Equal(t, http.StatusFound, rec.Code)
	updated, err := f.reservations.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie", updated.ClientName)
	assert.Equal(t, 1, updated.CatwayNumber)

	rec = do(router, postForm("/catways/1/reservations/"+id, url.Values{"_method": {"DELETE"}}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = f.reservations.Get(ctx, id)
	assert.Error(t, err)
}

func TestReservationRoutes_GlobalLedger(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()

	form := reservationForm("Jean")
	form.Set("catwayNumber", "4")
	rec := do(router, postForm("/reservations", form), session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/reservations", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
	req.Header.Set("Accept", "application/json")
	rec = do(router, req, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].CatwayNumber)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/reservations", nil), session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jean")
}

func TestReservationRoutes_Validation(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)

	form := reservationForm("")
	form.Set("startDate", "2026-05-10")
	form.Set("endDate", "2026-05-01")
	rec := do(f.router(), postForm("/catways/1/reservations", form), session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, "must not be before startDate")

	list, err := f.reservations.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRoutes_Lifecycle(t *testing.T) {
	f := newFixture(t)
	session := f.sessionCookie(t)
	router := f.router()
	ctx := context.Background()

	rec := do(router, postForm("/users", url.Values{
		"username": {"matelot"},
		"email":    {"Matelot@Port.fr"},
		"password": {"first-pass"},
	}), session)
	require.Equal(t, http.StatusFound, rec.Code)

	created, err := f.users.Authenticate(ctx, "matelot@port.fr", "first-pass")
	require.NoError(t, err)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/users/"+created.ID, nil), session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), created.PasswordHash)

	// A blank password leaves the existing one in place.
	rec = do(router, postForm("/users/"+created.ID, url.Values{
		"_method":  {"PUT"},
		"username": {"mousse"},
		"email":    {"matelot@port.fr"},
		"password": {""},
	}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	user, err := f.users.Authenticate(ctx, "matelot@port.fr", "first-pass")
	require.NoError(t, err)
	assert.Equal(t, "mousse", user.Username)

	rec = do(router, postForm("/users/"+created.ID, url.Values{
		"_method":  {"PUT"},
		"username": {"mousse"},
		"email":    {"matelot@port.fr"},
		"password": {"second-pass"},
	}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = f.users.Authenticate(ctx, "matelot@port.fr", "first-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "matelot@port.fr", "second-pass")
	assert.NoError(t, err)

	rec = do(router, postForm("/users", url.Values{
		"username": {"copie"},
		"email":    {"matelot@port.fr"},
		"password": {"x"},
	}), session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "is already registered")

	rec = do(router, postForm("/users/"+created.ID, url.Values{"_method": {"DELETE"}}), session)
	require.Equal(t, http.StatusFound, rec.Code)
	rec = do(router, httptest.NewRequest(http.MethodGet, "/users/"+created.ID, nil), session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
