package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	visitorCookieName = "visitor_id"
	visitorTTL        = 365 * 24 * time.Hour
)

// visitorID returns the visitor id from the request cookie, minting and
// setting a fresh one for first-time visitors. Photos are owned by this id;
// there is no login.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(visitorTTL.Seconds()),
	})
	return id
}
