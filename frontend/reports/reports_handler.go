package reports

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/settings"
	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/reporting"
	"almoxarifado/infrastructure/store"
)

// ReportsPageQueryHandler renders the report chooser.
func ReportsPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		scope := access.Resolve(p)
		data := PageData{
			ShowWarehouse: scope.Unrestricted(),
			From:          time.Now().AddDate(0, 0, -reporting.TrailingDays),
			To:            time.Now(),
		}
		if data.ShowWarehouse {
			rows, err := st.ListWarehouses(r.Context(), scope, false)
			if err != nil {
				respond.Page(w, err)
				return
			}
			for _, wh := range rows {
				data.Warehouses = append(data.Warehouses, html.Option{Value: html.ID(wh.ID), Label: wh.Name})
			}
		}
		html.Render(w, r, "Reports", ReportsPage(data))
	}
}

// StockReportPDFQueryHandler prints every active item in scope.
func StockReportPDFQueryHandler(st *store.Store, proj *reporting.Projector, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		cfg, err := st.Settings(r.Context())
		if err != nil {
			respond.Page(w, err)
			return
		}
		scope := access.Resolve(p).Narrow(form.QueryID(r, "warehouse_id"))
		rep, err := proj.StockReport(r.Context(), scope, time.Now())
		if err != nil {
			respond.Page(w, err)
			return
		}
		out, err := renderStockReportPDF(cfg, settings.LogoFile(uploadDir, cfg), rep)
		if err != nil {
			log.Error().Err(err).Msg("reports: stock pdf failed")
			http.Error(w, "failed to render report", http.StatusInternalServerError)
			return
		}
		writePDF(w, "estoque-"+rep.GeneratedAt.Format("20060102")+".pdf", out)
	}
}

// MovementReportPDFQueryHandler prints movements between from and to, both
// inclusive calendar days. The default window is the trailing 30 days.
func MovementReportPDFQueryHandler(st *store.Store, proj *reporting.Projector, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		now := time.Now()
		from, to := Window(form.QueryDate(r, "from"), form.QueryDate(r, "to"), now)
		if !from.Before(to) {
			respond.WithErrorText(w, r, "/app/reports", "the start date must not be after the end date")
			return
		}
		cfg, err := st.Settings(r.Context())
		if err != nil {
			respond.Page(w, err)
			return
		}
		scope := access.Resolve(p).Narrow(form.QueryID(r, "warehouse_id"))
		rep, err := proj.MovementReport(r.Context(), scope, from, to, now)
		if err != nil {
			respond.Page(w, err)
			return
		}
		out, err := renderMovementReportPDF(cfg, settings.LogoFile(uploadDir, cfg), rep)
		if err != nil {
			log.Error().Err(err).Msg("reports: movement pdf failed")
			http.Error(w, "failed to render report", http.StatusInternalServerError)
			return
		}
		writePDF(w, "movimentacoes-"+from.Format("20060102")+".pdf", out)
	}
}

// Window turns optional inclusive dates into a [from, to) range.
func Window(from, to *time.Time, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1)
	if to != nil {
		end = to.AddDate(0, 0, 1)
	}
	start := end.AddDate(0, 0, -reporting.TrailingDays)
	if from != nil {
		start = *from
	}
	return start, end
}

func writePDF(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	_, _ = w.Write(body)
}
