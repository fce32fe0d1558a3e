package stock

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
)

const importPath = "/app/items/import"

func StockImportPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data := PageData{ShowWarehouse: access.Unrestricted(p.Level)}
		if data.ShowWarehouse {
			rows, err := st.ListWarehouses(r.Context(), access.Resolve(p), false)
			if err != nil {
				respond.Page(w, err)
				return
			}
			for _, wh := range rows {
				data.Warehouses = append(data.Warehouses, html.Option{Value: html.ID(wh.ID), Label: wh.Name})
			}
		}
		html.Render(w, r, "Import items", StockImportPage(data))
	}
}

func StockImportCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes+1<<10)
		if err := r.ParseMultipartForm(MaxImportBytes); err != nil {
			respond.WithErrorText(w, r, importPath, "upload too large or malformed")
			return
		}
		errs := form.Errors{}
		warehouseID := form.OptionalID(r, "warehouse_id", errs)
		if err := errs.Err(); err != nil {
			respond.WithError(w, r, importPath, err)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			respond.WithErrorText(w, r, importPath, "choose a CSV file")
			return
		}
		defer file.Close()

		summary, err := ImportItemsCSV(r.Context(), st, p, warehouseID, file)
		if err != nil {
			respond.WithError(w, r, importPath, err)
			return
		}
		log.Ctx(r.Context()).Info().
			Int("inserted", summary.Inserted).
			Int("skipped", summary.Skipped).
			Int("errors", summary.Errors).
			Msg("item csv imported")

		msg := fmt.Sprintf("imported %d, skipped %d existing, %d with errors", summary.Inserted, summary.Skipped, summary.Errors)
		if len(summary.Messages) > 0 {
			respond.WithErrorText(w, r, importPath, msg+": "+strings.Join(summary.Messages, "; "))
			return
		}
		respond.WithStatus(w, r, importPath, msg)
	}
}
