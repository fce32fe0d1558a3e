package adminusers

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/models"
)

func UsersListPage(d PageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<table class="grid"><thead><tr><th>Name</th><th>Username</th><th>Level</th><th>Warehouse</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, u := range d.Users {
			id := html.ID(u.ID)
			b.Printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>`, u.Name, u.Username, html.LevelLabel(u.AccessLevel), u.WarehouseName)
			if u.Active {
				html.Badge(b, "ok", "Active")
			} else {
				html.Badge(b, "inactive", "Blocked")
			}
			b.Printf(`</td><td class="actions"><a href="/app/admin/users/%s/edit">Edit</a> `, id)
			if u.ID != d.ActorID {
				if u.Active {
					html.PostButton(b, "/app/admin/users/"+id+"/deactivate", "Block", "", "Block this user?")
				} else {
					html.PostButton(b, "/app/admin/users/"+id+"/activate", "Unblock", "", "")
				}
				html.PostButton(b, "/app/admin/users/"+id+"/delete", "Delete", "danger", "Delete this user?")
			}
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)

		b.Raw(`<h2>New user</h2><form method="post" action="/app/admin/users" class="card">`)
		userFields(b, models.User{}, d.Warehouses, d.Levels)
		html.Input(b, "Password", "password", "password", "", true)
		b.Raw(`<button type="submit" class="primary">Create</button></form>`)
	})
}

func UserFormPage(d FormPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		id := html.ID(d.User.ID)
		b.Printf(`<form method="post" action="/app/admin/users/%s" class="card">`, id)
		userFields(b, d.User, d.Warehouses, d.Levels)
		b.Raw(`<button type="submit" class="primary">Save</button> <a href="/app/admin/users">Cancel</a></form>`)

		b.Printf(`<h2>Reset password</h2><form method="post" action="/app/admin/users/%s/password" class="card">`, id)
		html.Input(b, "New password", "password", "password", "", true)
		b.Raw(`<button type="submit">Reset password</button></form>`)
	})
}

func userFields(b *html.Writer, u models.User, warehouses, levels []html.Option) {
	html.Input(b, "Name", "name", "text", u.Name, true)
	html.Input(b, "Username", "username", "text", u.Username, true)
	html.Input(b, "Email", "email", "email", u.Email, false)
	html.Select(b, "Access level", "access_level", "", levels, u.AccessLevel)
	selected := ""
	if u.WarehouseID != nil {
		selected = html.ID(*u.WarehouseID)
	}
	html.Select(b, "Warehouse", "warehouse_id", "(none)", warehouses, selected)
}

func AccountPasswordPage() templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<form method="post" action="/app/account/password" class="card">`)
		html.Input(b, "Current password", "current", "password", "", true)
		html.Input(b, "New password", "password", "password", "", true)
		html.Input(b, "Confirm new password", "confirm", "password", "", true)
		b.Raw(`<p class="hint">At least 8 characters with letters and digits.</p>`)
		b.Raw(`<button type="submit" class="primary">Change password</button></form>`)
	})
}
