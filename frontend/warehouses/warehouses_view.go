package warehouses

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/models"
)

func WarehousesPage(d PageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		if len(d.Warehouses) == 0 {
			b.Raw(`<p class="empty">No warehouses.</p>`)
		} else {
			b.Raw(`<table class="grid"><thead><tr><th>Name</th><th>Address</th><th>Responsible</th><th>Phone</th><th class="num">Users</th><th class="num">Items</th><th>Status</th><th></th></tr></thead><tbody>`)
			for _, wh := range d.Warehouses {
				id := html.ID(wh.ID)
				b.Printf(`<tr><td><a href="/app/items?warehouse_id=%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td>`, id, wh.Name, wh.Address, wh.Responsible, wh.Phone)
				b.Printf(`<td class="num">%d</td><td class="num">%d</td><td>`, wh.UserCount, wh.ItemCount)
				if wh.Active {
					html.Badge(b, "ok", "Active")
				} else {
					html.Badge(b, "inactive", "Inactive")
				}
				b.Raw(`</td><td class="actions">`)
				if d.CanManage {
					b.Printf(`<a href="/app/warehouses/%s/edit">Edit</a> `, id)
				}
				if d.CanActivate {
					if wh.Active {
						html.PostButton(b, "/app/warehouses/"+id+"/deactivate", "Deactivate", "", "Deactivate this warehouse?")
					} else {
						html.PostButton(b, "/app/warehouses/"+id+"/activate", "Activate", "", "")
					}
				}
				if d.CanActivate && wh.UserCount == 0 && wh.ItemCount == 0 {
					html.PostButton(b, "/app/warehouses/"+id+"/delete", "Delete", "danger", "Delete this warehouse?")
				}
				b.Raw(`</td></tr>`)
			}
			b.Raw(`</tbody></table>`)
		}
		if d.CanManage {
			b.Raw(`<h2>New warehouse</h2>`)
			warehouseForm(b, "/app/warehouses", models.Warehouse{})
		}
	})
}

func WarehouseFormPage(wh models.Warehouse) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		warehouseForm(b, "/app/warehouses/"+html.ID(wh.ID), wh)
	})
}

func warehouseForm(b *html.Writer, action string, wh models.Warehouse) {
	b.Printf(`<form method="post" action="%s" class="card">`, action)
	html.Input(b, "Name", "name", "text", wh.Name, true)
	html.TextArea(b, "Description", "description", wh.Description)
	html.Input(b, "Address", "address", "text", wh.Address, false)
	html.Input(b, "Responsible", "responsible", "text", wh.Responsible, false)
	html.Input(b, "Phone", "phone", "tel", wh.Phone, false)
	b.Raw(`<button type="submit" class="primary">Save</button></form>`)
}
