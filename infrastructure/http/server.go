package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	loginflow "almoxarifado/frontend/login"
	sessioncontext "almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/backup"
	"almoxarifado/infrastructure/cache"
	"almoxarifado/infrastructure/ledger"
	"almoxarifado/infrastructure/metrics"
	"almoxarifado/infrastructure/rbac"
	"almoxarifado/infrastructure/reporting"
	sessioncookie "almoxarifado/infrastructure/session"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 5 * time.Second

// Options are the request-level settings taken from configuration.
type Options struct {
	SessionTTL   time.Duration
	SecureCookie bool
	UploadDir    string
}

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Store        *store.Store
	Audit        *audit.Service
	Engine       *ledger.Engine
	Projector    *reporting.Projector
	Backups      *backup.Service
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	SessionCache *cache.UserSessionCache
	UserCache    *cache.UserCache
	Rbac         *rbac.Rbac
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	Deps
	Options Options
}

// NewServer creates a new http server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = sessioncookie.DefaultTTL
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewService()
	}
	s := &Server{
		Addr:    addr,
		router:  chi.NewRouter(),
		Deps:    deps,
		Options: opts,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(s.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		log.Error().Err(err).Msg("assets subfs init failed; serving fallback fs")
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterPublicRoutes()

	s.router.Route("/app", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterFrontendRoutes(r)
		s.RegisterAdminRoutes(r)
		s.RegisterAPIRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware resolves the session to a principal and applies the
// route capability check. Unregistered routes are denied.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api := strings.HasPrefix(r.URL.Path, "/app/api/")
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			s.unauthenticated(w, r, api, false)
			return
		}

		token := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), token)
		if !ok {
			s.unauthenticated(w, r, api, true)
			return
		}

		user, err := s.resolveUser(r.Context(), session.UserID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				log.Error().Err(err).Int64("user_id", session.UserID).Msg("load session user failed")
			}
			s.SessionCache.DeleteSessionBySessionToken(token)
			s.unauthenticated(w, r, api, true)
			return
		}

		principal := access.FromUser(user)
		if !s.Rbac.Allowed(principal.Capabilities(), r.Method, r.URL.Path) {
			log.Warn().Str("user", principal.Username).Str("level", principal.Level).
				Str("method", r.Method).Str("path", r.URL.Path).Msg("route denied")
			if api {
				respond.JSONError(w, models.ErrPermissionDenied)
				return
			}
			http.Error(w, "you do not have permission to open this page", http.StatusForbidden)
			return
		}

		session.User = user
		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		ctx = sessioncontext.NewContextWithPrincipal(ctx, principal)
		if cfg, err := s.Store.Settings(ctx); err == nil {
			ctx = sessioncontext.NewContextWithSettings(ctx, cfg)
		} else {
			log.Warn().Err(err).Msg("settings unavailable; using default branding")
			ctx = sessioncontext.NewContextWithSettings(ctx, html.DefaultBranding)
		}
		logger := log.Ctx(ctx).With().Int64("user_id", principal.UserID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

func (s *Server) unauthenticated(w http.ResponseWriter, r *http.Request, api, clearCookie bool) {
	if clearCookie {
		http.SetCookie(w, sessioncookie.SessionCookie("", -1, s.Options.SecureCookie))
	}
	if api {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) resolveSession(ctx context.Context, token string) (models.Session, bool) {
	if cached, found := s.SessionCache.FindSessionBySessionToken(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.Store.DB(), token)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Error().Err(err).Msg("load session from db failed")
		}
		return models.Session{}, false
	}

	s.SessionCache.AddSession(dbSession)
	return dbSession, true
}

func (s *Server) resolveUser(ctx context.Context, id int64) (models.User, error) {
	if u, ok := s.UserCache.Get(id); ok {
		return u, nil
	}
	u, err := loginflow.LoadActiveUser(ctx, s.Store.DB(), id)
	if err != nil {
		return models.User{}, err
	}
	s.UserCache.Add(u)
	return u, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
