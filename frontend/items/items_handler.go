package items

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
	"almoxarifado/infrastructure/validation"
)

const listPath = "/app/items"

// ItemsPageQueryHandler lists items in scope with filters and pagination.
func ItemsPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		filter := store.ItemFilter{
			WarehouseID:     form.QueryID(r, "warehouse_id"),
			CategoryID:      form.QueryID(r, "category_id"),
			Query:           r.URL.Query().Get("q"),
			BelowMinimum:    r.URL.Query().Get("below_minimum") != "",
			IncludeInactive: r.URL.Query().Get("inactive") != "" && p.Capabilities().ManageStock,
			Page:            form.QueryInt(r, "page"),
		}
		page, err := st.ListItems(r.Context(), access.Resolve(p), filter)
		if err != nil {
			log.Error().Err(err).Msg("items: list failed")
			respond.Page(w, err)
			return
		}
		warehouses, categories, err := loadOptions(r.Context(), st, p)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Items", ItemsListPage(ListPageData{
			Page:          page,
			Query:         r.URL.Query(),
			Warehouses:    warehouses,
			Categories:    categories,
			ShowWarehouse: access.Unrestricted(p.Level),
			CanEdit:       p.Capabilities().ManageStock,
			Today:         time.Now(),
		}))
	}
}

// ItemDetailPageQueryHandler shows one item with its movement history.
func ItemDetailPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		scope := access.Resolve(p)
		item, err := st.GetItem(r.Context(), scope, id)
		if err != nil {
			respond.Page(w, err)
			return
		}
		movements, err := st.ListMovements(r.Context(), scope, store.MovementFilter{ItemID: id, Page: form.QueryInt(r, "page")})
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, item.Name, ItemDetailPage(DetailPageData{
			Item:      item,
			Movements: movements,
			Query:     r.URL.Query(),
			CanEdit:   p.Capabilities().ManageStock,
			Today:     time.Now(),
		}))
	}
}

// NewItemPageQueryHandler renders the empty item form.
func NewItemPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		warehouses, categories, err := loadOptions(r.Context(), st, p)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "New item", ItemFormPage(FormPageData{
			Input:         store.ItemInput{Unit: "UN"},
			Warehouses:    warehouses,
			Categories:    categories,
			ShowWarehouse: access.Unrestricted(p.Level),
		}))
	}
}

// EditItemPageQueryHandler renders the item form with current values.
func EditItemPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		item, err := st.GetItem(r.Context(), access.Resolve(p), id)
		if err != nil {
			respond.Page(w, err)
			return
		}
		warehouses, categories, err := loadOptions(r.Context(), st, p)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Edit item", ItemFormPage(FormPageData{
			ItemID:        id,
			Input:         inputFromView(item),
			Warehouses:    warehouses,
			Categories:    categories,
			ShowWarehouse: access.Unrestricted(p.Level),
		}))
	}
}

func parseItemInput(r *http.Request) (store.ItemInput, error) {
	if err := r.ParseForm(); err != nil {
		return store.ItemInput{}, validation.Field("form", "could not be read")
	}
	errs := form.Errors{}
	in := store.ItemInput{
		Barcode:     form.String(r, "barcode"),
		Name:        form.String(r, "name"),
		Description: form.String(r, "description"),
		Brand:       form.String(r, "brand"),
		Unit:        form.String(r, "unit"),
		MinStock:    form.Float(r, "min_stock", errs),
		Lot:         form.String(r, "lot"),
		ExpiryDate:  form.Date(r, "expiry_date", errs),
		CategoryID:  form.OptionalID(r, "category_id", errs),
		WarehouseID: form.OptionalID(r, "warehouse_id", errs),
	}
	return in, errs.Err()
}

// CreateItemCommandHandler creates an item with a zero balance.
func CreateItemCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		in, err := parseItemInput(r)
		if err != nil {
			respond.WithError(w, r, "/app/items/new", err)
			return
		}
		item, err := st.CreateItem(r.Context(), p, in)
		if err != nil {
			respond.WithError(w, r, "/app/items/new", err)
			return
		}
		respond.WithStatus(w, r, "/app/items/"+html.ID(item.ID), "item created")
	}
}

// UpdateItemCommandHandler saves item master data. The balance is not editable here.
func UpdateItemCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		back := "/app/items/" + html.ID(id)
		in, err := parseItemInput(r)
		if err == nil {
			_, err = st.UpdateItem(r.Context(), p, id, in)
		}
		if err != nil {
			respond.WithError(w, r, back+"/edit", err)
			return
		}
		respond.WithStatus(w, r, back, "item updated")
	}
}

// DeactivateItemCommandHandler soft-deletes an item; its ledger stays.
func DeactivateItemCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := st.DeactivateItem(r.Context(), p, id); err != nil {
			respond.WithError(w, r, "/app/items/"+html.ID(id), err)
			return
		}
		respond.WithStatus(w, r, listPath, "item deactivated")
	}
}

// ItemJSONQueryHandler returns one scoped item as JSON.
func ItemJSONQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			respond.JSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		item, err := st.GetItem(r.Context(), access.Resolve(p), id)
		if err != nil {
			respond.JSONError(w, err)
			return
		}
		today := time.Now()
		respond.JSON(w, http.StatusOK, itemJSON{
			ItemView:     item,
			Status:       item.Status(),
			ExpiryStatus: item.ExpiryStatus(today),
		})
	}
}

type itemJSON struct {
	store.ItemView
	Status       string `json:"status"`
	ExpiryStatus string `json:"expiry_status,omitempty"`
}

// SearchPageQueryHandler matches barcode, name or lot within scope.
func SearchPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		term := r.URL.Query().Get("q")
		found, err := st.SearchItems(r.Context(), access.Resolve(p), term, 50)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Search", SearchPage(SearchPageData{Term: term, Items: found, Today: time.Now()}))
	}
}

// ItemLabelPDFQueryHandler prints a Code 128 label for barcode-lot.
func ItemLabelPDFQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id, ok := form.PathID(r, "id")
		if !ok {
			http.NotFound(w, r)
			return
		}
		item, err := st.GetItem(r.Context(), access.Resolve(p), id)
		if err != nil {
			respond.Page(w, err)
			return
		}
		pdfBytes, code, err := renderItemLabelPDF(item, time.Now())
		if err != nil {
			log.Error().Err(err).Int64("item_id", id).Msg("items: label render failed")
			http.Error(w, "failed to render label", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="label-`+sanitizeFilename(code)+`.pdf"`)
		_, _ = w.Write(pdfBytes)
	}
}
