package movements

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/ledger"
	"almoxarifado/infrastructure/store"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

var kinds = map[string]bool{
	models.MovementEntry:      true,
	models.MovementExit:       true,
	models.MovementAdjustment: true,
}

// MovementsPageQueryHandler lists the ledger newest first.
func MovementsPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		q := r.URL.Query()
		filter := store.MovementFilter{
			WarehouseID: form.QueryID(r, "warehouse_id"),
			SectorID:    form.QueryID(r, "sector_id"),
			From:        form.QueryDate(r, "from"),
			Page:        form.QueryInt(r, "page"),
		}
		if id := form.QueryID(r, "item_id"); id != nil {
			filter.ItemID = *id
		}
		if kinds[q.Get("kind")] {
			filter.Kind = q.Get("kind")
		}
		if to := form.QueryDate(r, "to"); to != nil {
			end := to.AddDate(0, 0, 1)
			filter.To = &end
		}
		scope := access.Resolve(p)
		page, err := st.ListMovements(r.Context(), scope, filter)
		if err != nil {
			log.Error().Err(err).Msg("movements: list failed")
			respond.Page(w, err)
			return
		}
		warehouses, err := st.ListWarehouses(r.Context(), scope, true)
		if err != nil {
			respond.Page(w, err)
			return
		}
		sectors, err := sectorOptions(r, st, true)
		if err != nil {
			respond.Page(w, err)
			return
		}
		wopts := make([]html.Option, 0, len(warehouses))
		for _, wh := range warehouses {
			wopts = append(wopts, html.Option{Value: html.ID(wh.ID), Label: wh.Name})
		}
		html.Render(w, r, "Movements", MovementsListPage(ListPageData{
			Page:          page,
			Query:         q,
			Warehouses:    wopts,
			Sectors:       sectors,
			ShowWarehouse: access.Unrestricted(p.Level),
			CanRecord:     p.Capabilities().ManageStock,
		}))
	}
}

func sectorOptions(r *http.Request, st *store.Store, includeInactive bool) ([]html.Option, error) {
	sectors, err := st.ListSectors(r.Context(), includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]html.Option, 0, len(sectors))
	for _, s := range sectors {
		out = append(out, html.Option{Value: html.ID(s.ID), Label: s.Name})
	}
	return out, nil
}

// MovementFormPageQueryHandler renders the entry, exit or adjustment form for one item.
func MovementFormPageQueryHandler(st *store.Store, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data := FormPageData{Kind: kind}
		if id := form.QueryID(r, "item_id"); id != nil {
			item, err := st.GetItem(r.Context(), access.Resolve(p), *id)
			if err != nil {
				respond.Page(w, err)
				return
			}
			data.Item = &item
		}
		if kind == models.MovementExit {
			sectors, err := sectorOptions(r, st, false)
			if err != nil {
				respond.Page(w, err)
				return
			}
			data.Sectors = sectors
		}
		html.Render(w, r, html.KindLabel(kind), MovementFormPage(data))
	}
}

// RecordMovementCommandHandler posts one movement through the ledger engine.
func RecordMovementCommandHandler(engine *ledger.Engine, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, "/app/movements/"+kind, "invalid form data")
			return
		}
		errs := form.Errors{}
		itemID := form.OptionalID(r, "item_id", errs)
		formPath := "/app/movements/" + kind
		if itemID != nil {
			formPath += "?item_id=" + html.ID(*itemID)
		} else {
			errs["item_id"] = "is required"
		}
		note := form.String(r, "note")

		var (
			res ledger.Result
			err error
		)
		switch kind {
		case models.MovementEntry:
			qty := form.Float(r, "quantity", errs)
			if err = errs.Err(); err == nil {
				res, err = engine.RecordEntry(r.Context(), ledger.EntryInput{
					ItemID: *itemID, Quantity: qty, Actor: p, Note: note, InvoiceRef: form.String(r, "invoice_ref"),
				})
			}
		case models.MovementExit:
			qty := form.Float(r, "quantity", errs)
			sector := form.OptionalID(r, "sector_id", errs)
			if err = errs.Err(); err == nil {
				res, err = engine.RecordExit(r.Context(), ledger.ExitInput{
					ItemID: *itemID, Quantity: qty, Actor: p, SectorID: sector, Note: note,
				})
			}
		case models.MovementAdjustment:
			if form.String(r, "new_balance") == "" {
				errs["new_balance"] = "is required"
			}
			balance := form.Float(r, "new_balance", errs)
			if err = errs.Err(); err == nil {
				res, err = engine.RecordAdjustment(r.Context(), ledger.AdjustmentInput{
					ItemID: *itemID, NewBalance: balance, Actor: p, Note: note,
				})
			}
		default:
			err = validation.Field("kind", "is not a movement kind")
		}
		if err != nil {
			respond.WithError(w, r, formPath, err)
			return
		}
		log.Info().
			Str("kind", res.Kind).
			Int64("item_id", res.ItemID).
			Float64("quantity", res.Quantity).
			Float64("balance", res.NewBalance).
			Int64("user_id", p.UserID).
			Msg("stock movement recorded")
		respond.WithStatus(w, r, "/app/items/"+html.ID(res.ItemID),
			html.KindLabel(res.Kind)+" recorded, balance now "+html.Qty(res.NewBalance)+" "+res.Unit)
	}
}

// MovementsJSONQueryHandler returns one page of movements as JSON.
func MovementsJSONQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			return
		}
		filter := store.MovementFilter{Page: form.QueryInt(r, "page"), PerPage: form.QueryInt(r, "per_page")}
		if id := form.QueryID(r, "item_id"); id != nil {
			filter.ItemID = *id
		}
		if from := form.QueryDate(r, "from"); from != nil {
			filter.From = from
		} else {
			since := time.Now().AddDate(0, 0, -30)
			filter.From = &since
		}
		page, err := st.ListMovements(r.Context(), access.Resolve(p), filter)
		if err != nil {
			respond.JSONError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, page)
	}
}
