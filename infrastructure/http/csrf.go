package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	sessioncontext "almoxarifado/frontend/shared/context"
)

const (
	csrfCookieName = "almox_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfFieldName  = "_csrf"
)

// CSRFMiddleware checks the double-submit cookie on unsafe methods and exposes
// the token to page rendering. Clients echo it in the _csrf field or the
// X-CSRF-Token header.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ensureCSRFToken(w, r, s.Options.SecureCookie)
		r = r.WithContext(sessioncontext.NewContextWithCSRFToken(r.Context(), token))
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		provided := strings.TrimSpace(r.Header.Get(csrfHeaderName))
		if provided == "" {
			provided = strings.TrimSpace(r.FormValue(csrfFieldName))
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
			log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("csrf token rejected")
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func ensureCSRFToken(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	token := randomToken(32)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func randomToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
