package adminusers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/cache"
	"almoxarifado/infrastructure/store"
)

const listPath = "/app/admin/users"

// UsersPageQueryHandler renders the users list page with the create form.
func UsersPageQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data, err := LoadUsersPageData(r.Context(), st, p)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Users", UsersListPage(data))
	}
}

func EditUserPageQueryHandler(st *store.Store) http.HandlerFunc {
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
		u, err := st.GetUser(r.Context(), p, id)
		if err != nil {
			respond.Page(w, err)
			return
		}
		warehouses, err := warehouseOptions(r.Context(), st, p)
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Edit user", UserFormPage(FormPageData{User: u, Warehouses: warehouses, Levels: levelOptions(p)}))
	}
}

func userInput(r *http.Request, errs form.Errors) store.UserInput {
	return store.UserInput{
		Name:        form.String(r, "name"),
		Username:    form.String(r, "username"),
		Email:       form.String(r, "email"),
		AccessLevel: form.String(r, "access_level"),
		WarehouseID: form.OptionalID(r, "warehouse_id", errs),
		Password:    r.FormValue("password"),
	}
}

func CreateUserCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, listPath, "invalid form data")
			return
		}
		errs := form.Errors{}
		in := userInput(r, errs)
		if err := errs.Err(); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		u, err := st.CreateUser(r.Context(), p, in)
		if err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		log.Ctx(r.Context()).Info().Int64("user_id", u.ID).Str("level", u.AccessLevel).Msg("user created")
		respond.WithStatus(w, r, listPath, "user created")
	}
}

func UpdateUserCommandHandler(st *store.Store, sessions *cache.UserSessionCache, users *cache.UserCache) http.HandlerFunc {
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
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, listPath, "invalid form data")
			return
		}
		errs := form.Errors{}
		in := userInput(r, errs)
		if err := errs.Err(); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		if _, err := st.UpdateUser(r.Context(), p, id, in); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		if err := forgetUser(r.Context(), st, sessions, users, id, false); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		respond.WithStatus(w, r, listPath, "user updated")
	}
}

// ResetPasswordCommandHandler sets a new password chosen by an administrator.
func ResetPasswordCommandHandler(st *store.Store, sessions *cache.UserSessionCache, users *cache.UserCache) http.HandlerFunc {
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
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, listPath, "invalid form data")
			return
		}
		if err := st.SetPassword(r.Context(), p, id, r.FormValue("password")); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		if err := forgetUser(r.Context(), st, sessions, users, id, id != p.UserID); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		respond.WithStatus(w, r, listPath, "password reset")
	}
}

func SetUserActiveCommandHandler(st *store.Store, sessions *cache.UserSessionCache, users *cache.UserCache, active bool) http.HandlerFunc {
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
		if err := st.SetUserActive(r.Context(), p, id, active); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		if err := forgetUser(r.Context(), st, sessions, users, id, !active); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		msg := "user blocked"
		if active {
			msg = "user unblocked"
		}
		log.Ctx(r.Context()).Info().Int64("user_id", id).Bool("active", active).Msg("user status changed")
		respond.WithStatus(w, r, listPath, msg)
	}
}

func DeleteUserCommandHandler(st *store.Store, sessions *cache.UserSessionCache, users *cache.UserCache) http.HandlerFunc {
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
		if err := st.DeleteUser(r.Context(), p, id); err != nil {
			respond.WithError(w, r, listPath, err)
			return
		}
		users.Delete(id)
		sessions.DeleteSessionsForUser(id)
		respond.WithStatus(w, r, listPath, "user deleted")
	}
}

// AccountPasswordPageQueryHandler renders the self-service password form.
func AccountPasswordPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := context.GetPrincipalFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		html.Render(w, r, "Change password", AccountPasswordPage())
	}
}

func ChangeOwnPasswordCommandHandler(st *store.Store, users *cache.UserCache) http.HandlerFunc {
	const back = "/app/account/password"
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, back, "invalid form data")
			return
		}
		err := ChangeOwnPassword(r.Context(), st, p, r.FormValue("current"), r.FormValue("password"), r.FormValue("confirm"))
		if err != nil {
			respond.WithError(w, r, back, err)
			return
		}
		users.Delete(p.UserID)
		respond.WithStatus(w, r, back, "password changed")
	}
}
