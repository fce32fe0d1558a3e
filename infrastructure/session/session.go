package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const CookieName = "almox_session"

const DefaultTTL = 12 * time.Hour

// SessionCookie builds the session cookie. A negative maxAge clears it.
func SessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// Expiry returns when a session created at now ends.
func Expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// NewToken returns a random 48 hex character session token.
func NewToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
