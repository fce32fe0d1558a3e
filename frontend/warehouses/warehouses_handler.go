package warehouses

import (
	"net/http"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

const listPath = "/app/warehouses"

// WarehousesPageQueryHandler lists the warehouses the caller can see.
func WarehousesPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		caps := p.Capabilities()
		rows, err := st.ListWarehouses(r.Context(), access.Resolve(p), caps.ManageWarehouses)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Warehouses", WarehousesPage(PageData{
			Warehouses:  rows,
			CanManage:   caps.ManageWarehouses,
			CanActivate: p.Level == models.LevelSuperAdmin,
		}))
	}
}

// EditWarehousePageQueryHandler renders the edit form.
func EditWarehousePageQueryHandler(st *store.Store) http.HandlerFunc {
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
		wh, err := st.GetWarehouse(r.Context(), access.Resolve(p), id)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Edit warehouse", WarehouseFormPage(wh))
	}
}

func parseInput(r *http.Request) (store.WarehouseInput, bool) {
	if err := r.ParseForm(); err != nil {
		return store.WarehouseInput{}, false
	}
	return store.WarehouseInput{
		Name:        form.String(r, "name"),
		Description: form.String(r, "description"),
		Address:     form.String(r, "address"),
		Responsible: form.String(r, "responsible"),
		Phone:       form.String(r, "phone"),
	}, true
}

func CreateWarehouseCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		in, ok := parseInput(r)
		if !ok {
			respond.WithErrorText(w, r, listPath, "invalid form data")
			return
		}
		if _, err := st.CreateWarehouse(r.Context(), p, in); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		respond.WithStatus(w, r, listPath, "warehouse created")
	}
}

func UpdateWarehouseCommandHandler(st *store.Store) http.HandlerFunc {
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
		in, ok := parseInput(r)
		if !ok {
			respond.WithErrorText(w, r, listPath, "invalid form data")
			return
		}
		if _, err := st.UpdateWarehouse(r.Context(), p, id, in); err != nil {
			respond.WithError(w, r, listPath+"/"+html.ID(id)+"/edit", err)
			return
		}
		respond.WithStatus(w, r, listPath, "warehouse updated")
	}
}

// SetWarehouseActiveCommandHandler activates or deactivates a warehouse.
func SetWarehouseActiveCommandHandler(st *store.Store, active bool) http.HandlerFunc {
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
		if err := st.SetWarehouseActive(r.Context(), p, id, active); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		msg := "warehouse deactivated"
		if active {
			msg = "warehouse activated"
		}
		respond.WithStatus(w, r, listPath, msg)
	}
}

// DeleteWarehouseCommandHandler removes a warehouse nothing references.
func DeleteWarehouseCommandHandler(st *store.Store) http.HandlerFunc {
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
		if err := st.DeleteWarehouse(r.Context(), p, id); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		respond.WithStatus(w, r, listPath, "warehouse deleted")
	}
}
