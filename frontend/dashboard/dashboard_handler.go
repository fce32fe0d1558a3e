package dashboard

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/reporting"
)

// DashboardPageQueryHandler renders alerts and recent movements for the caller's scope.
func DashboardPageQueryHandler(proj *reporting.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		now := time.Now()
		data, err := proj.Dashboard(r.Context(), access.Resolve(p), now)
		if err != nil {
			log.Error().Err(err).Msg("dashboard: failed to load data")
			http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
			return
		}
		html.Render(w, r, "Dashboard", DashboardPage(data, now))
	}
}

// StatsQueryHandler returns chart data as JSON.
func StatsQueryHandler(proj *reporting.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			return
		}
		stats, err := proj.Stats(r.Context(), access.Resolve(p), time.Now())
		if err != nil {
			respond.JSONError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, stats)
	}
}
