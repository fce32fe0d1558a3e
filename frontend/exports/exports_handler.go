package exports

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/reports"
	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/reporting"
)

// StockCSVQueryHandler exports every active item in scope.
func StockCSVQueryHandler(proj *reporting.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		now := time.Now()
		scope := access.Resolve(p).Narrow(form.QueryID(r, "warehouse_id"))
		rep, err := proj.StockReport(r.Context(), scope, now)
		if err != nil {
			respond.Page(w, err)
			return
		}
		setCSVHeaders(w, "estoque-"+now.Format("20060102")+".csv")
		if err := writeStockCSV(w, rep.Items, now); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("exports: stock csv failed")
			return
		}
		log.Ctx(r.Context()).Info().Int64("user_id", p.UserID).Int("rows", len(rep.Items)).Msg("stock csv exported")
	}
}

// MovementCSVQueryHandler exports the full movement history in the requested
// window, using the same defaults as the movement report.
func MovementCSVQueryHandler(proj *reporting.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		from, to := reports.Window(form.QueryDate(r, "from"), form.QueryDate(r, "to"), time.Now())
		if !from.Before(to) {
			respond.WithErrorText(w, r, "/app/reports", "the start date must not be after the end date")
			return
		}
		scope := access.Resolve(p).Narrow(form.QueryID(r, "warehouse_id"))
		rows, err := proj.MovementsBetween(r.Context(), scope, from, to)
		if err != nil {
			respond.Page(w, err)
			return
		}
		setCSVHeaders(w, "movimentacoes-"+from.Format("20060102")+".csv")
		if err := writeMovementCSV(w, rows); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("exports: movement csv failed")
			return
		}
		log.Ctx(r.Context()).Info().Int64("user_id", p.UserID).Int("rows", len(rows)).Msg("movement csv exported")
	}
}

func setCSVHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
}
