package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "flash"

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// FlashFromContext returns the flash delivered with the current request.
func FlashFromContext(ctx context.Context) (Flash, bool) {
	flash, ok := ctx.Value(contextFlashKey).(Flash)
	return flash, ok
}

// setFlash queues flash for the next request. The JSON payload is base64url
// encoded because cookie values cannot carry quotes.
func setFlash(w http.ResponseWriter, flash Flash) {
	payload, err := json.Marshal(flash)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlash(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeFlash(value string) (Flash, bool) {
	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Flash{}, false
	}
	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil || flash.Text == "" {
		return Flash{}, false
	}
	return flash, true
}

// FlashMiddleware consumes the flash cookie. A flash is delivered to exactly
// one request and cleared whether or not it decoded.
func FlashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(flashCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		clearFlash(w)
		if flash, ok := decodeFlash(cookie.Value); ok {
			r = r.WithContext(context.WithValue(r.Context(), contextFlashKey, flash))
		}
		next.ServeHTTP(w, r)
	})
}
