package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_DeliveredOnceThenCleared(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, Flash{Type: FlashSuccess, Text: `Catway "7" ajouté`})
	cookie := findCookie(rec, flashCookieName)
	require.NotNil(t, cookie)

	var seen []Flash
	handler := FlashMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if flash, ok := FlashFromContext(r.Context()); ok {
			seen = append(seen, flash)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/catways", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Len(t, seen, 1)
	assert.Equal(t, Flash{Type: FlashSuccess, Text: `Catway "7" ajouté`}, seen[0])
	cleared := findCookie(rec, flashCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	// The browser dropped the cookie, so the next request sees nothing.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catways", nil))
	assert.Len(t, seen, 1)
	assert.Nil(t, findCookie(rec, flashCookieName))
}

func TestFlash_MalformedCookieIsDropped(t *testing.T) {
	called := false
	handler := FlashMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := FlashFromContext(r.Context())
		assert.False(t, ok)
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "not-base64!"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	require.NotNil(t, findCookie(rec, flashCookieName))
}
