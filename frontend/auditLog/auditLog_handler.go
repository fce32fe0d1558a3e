package auditlog

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/sqlite"
)

func AuditPageQueryHandler(db *sqlite.DB, svc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data, err := LoadAuditPageData(r.Context(), db, svc, q.Get("entity_type"), q.Get("entity_id"))
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("audit: failed to load rows")
			http.Error(w, "failed to load audit log", http.StatusInternalServerError)
			return
		}
		html.Render(w, r, "Audit log", AuditPage(data))
	}
}
