package login

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	sharedcontext "almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/cache"
	sessioncookie "almoxarifado/infrastructure/session"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

// Options carries session settings from config.
type Options struct {
	TTL          time.Duration
	SecureCookie bool
}

// GetLoginScreenHandler renders the login screen with the configured branding.
func GetLoginScreenHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := st.Settings(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("login: settings unavailable, using defaults")
			cfg = html.DefaultBranding
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := LoginScreen(cfg, sharedcontext.GetCSRFTokenFromContext(r.Context()), r.URL.Query().Get("error"), r.URL.Query().Get("status")).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render login screen", http.StatusInternalServerError)
			return
		}
	}
}

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(st *store.Store, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, "/login", "invalid form data")
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			respond.WithErrorText(w, r, "/login", "username and password are required")
			return
		}

		user, err := authenticateUser(r.Context(), st, username, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				log.Info().Str("username", username).Msg("login rejected")
				respond.WithErrorText(w, r, "/login", err.Error())
				return
			}
			log.Error().Err(err).Msg("login: authentication failed")
			respond.WithErrorText(w, r, "/login", "authentication failed")
			return
		}

		token, err := sessioncookie.NewToken()
		if err != nil {
			log.Error().Err(err).Msg("login: token generation failed")
			respond.WithErrorText(w, r, "/login", "failed to create session")
			return
		}
		session := models.Session{
			ID:        token,
			UserID:    user.ID,
			User:      user,
			ExpiresAt: sessioncookie.Expiry(time.Now(), opts.TTL),
		}
		if err := PersistSession(r.Context(), st.DB(), session); err != nil {
			log.Error().Err(err).Msg("login: persist session")
			respond.WithErrorText(w, r, "/login", "failed to create session")
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user)

		log.Info().Int64("user_id", user.ID).Str("level", user.AccessLevel).Msg("user signed in")
		http.SetCookie(w, sessioncookie.SessionCookie(session.ID, int(time.Until(session.ExpiresAt).Seconds()), opts.SecureCookie))
		http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
	}
}

// LogoutHandler removes session state and clears cookie.
func LogoutHandler(st *store.Store, sessionCache *cache.UserSessionCache, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessionCache.DeleteSessionBySessionToken(cookie.Value)
			if err := DeleteSessionByToken(r.Context(), st.DB(), cookie.Value); err != nil {
				log.Error().Err(err).Msg("logout: delete session")
			}
		}
		http.SetCookie(w, sessioncookie.SessionCookie("", -1, opts.SecureCookie))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
