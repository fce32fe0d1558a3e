package catalog

import (
	"net/http"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
)

// command wraps the boilerplate shared by catalog POST handlers: principal,
// form parsing, optional path id and redirect with a flash message.
func command(back string, needsID bool, fn func(r *http.Request, p access.Principal, id int64) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		var id int64
		if needsID {
			if id, ok = form.PathID(r, "id"); !ok {
				http.NotFound(w, r)
				return
			}
		}
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, back, "invalid form data")
			return
		}
		msg, err := fn(r, p, id)
		if err != nil {
			respond.WithError(w, r, back, err)
			return
		}
		respond.WithStatus(w, r, back, msg)
	}
}

// CategoriesPageQueryHandler lists categories with item counts in scope.
func CategoriesPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		rows, err := st.ListCategories(r.Context(), access.Resolve(p))
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Categories", CategoriesPage(rows, p.Capabilities().ManageStock))
	}
}

func categoryInput(r *http.Request) store.CategoryInput {
	return store.CategoryInput{Name: form.String(r, "name"), Description: form.String(r, "description")}
}

func CreateCategoryCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/categories", false, func(r *http.Request, p access.Principal, _ int64) (string, error) {
		_, err := st.CreateCategory(r.Context(), p, categoryInput(r))
		return "category created", err
	})
}

func UpdateCategoryCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/categories", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		_, err := st.UpdateCategory(r.Context(), p, id, categoryInput(r))
		return "category updated", err
	})
}

func DeleteCategoryCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/categories", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		return "category deleted", st.DeleteCategory(r.Context(), p, id)
	})
}

// SectorsPageQueryHandler lists sectors; stock managers also see inactive ones.
func SectorsPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		canEdit := p.Capabilities().ManageStock
		rows, err := st.ListSectors(r.Context(), canEdit)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Sectors", SectorsPage(rows, canEdit))
	}
}

func sectorInput(r *http.Request) store.SectorInput {
	return store.SectorInput{
		Name:        form.String(r, "name"),
		Description: form.String(r, "description"),
		Responsible: form.String(r, "responsible"),
	}
}

func CreateSectorCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/sectors", false, func(r *http.Request, p access.Principal, _ int64) (string, error) {
		_, err := st.CreateSector(r.Context(), p, sectorInput(r))
		return "sector created", err
	})
}

func UpdateSectorCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/sectors", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		_, err := st.UpdateSector(r.Context(), p, id, sectorInput(r))
		return "sector updated", err
	})
}

func SetSectorActiveCommandHandler(st *store.Store, active bool) http.HandlerFunc {
	return command("/app/sectors", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		if active {
			return "sector activated", st.SetSectorActive(r.Context(), p, id, true)
		}
		return "sector deactivated", st.SetSectorActive(r.Context(), p, id, false)
	})
}

func DeleteSectorCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/sectors", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		return "sector deleted", st.DeleteSector(r.Context(), p, id)
	})
}

// SuppliersPageQueryHandler lists suppliers.
func SuppliersPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		canEdit := p.Capabilities().ManageStock
		rows, err := st.ListSuppliers(r.Context(), canEdit)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Suppliers", SuppliersPage(rows, canEdit))
	}
}

func supplierInput(r *http.Request) store.SupplierInput {
	return store.SupplierInput{
		Name:    form.String(r, "name"),
		TaxID:   form.String(r, "tax_id"),
		Contact: form.String(r, "contact"),
		Phone:   form.String(r, "phone"),
		Email:   form.String(r, "email"),
	}
}

func CreateSupplierCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/suppliers", false, func(r *http.Request, p access.Principal, _ int64) (string, error) {
		_, err := st.CreateSupplier(r.Context(), p, supplierInput(r))
		return "supplier created", err
	})
}

func UpdateSupplierCommandHandler(st *store.Store) http.HandlerFunc {
	return command("/app/suppliers", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		_, err := st.UpdateSupplier(r.Context(), p, id, supplierInput(r))
		return "supplier updated", err
	})
}

func SetSupplierActiveCommandHandler(st *store.Store, active bool) http.HandlerFunc {
	return command("/app/suppliers", true, func(r *http.Request, p access.Principal, id int64) (string, error) {
		if active {
			return "supplier activated", st.SetSupplierActive(r.Context(), p, id, true)
		}
		return "supplier deactivated", st.SetSupplierActive(r.Context(), p, id, false)
	})
}
