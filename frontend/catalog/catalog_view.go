package catalog

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

// Rows are edited inline: each row is its own form posting to /{id}.

func CategoriesPage(rows []store.CategoryView, canEdit bool) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<table class="grid"><thead><tr><th>Name</th><th>Description</th><th class="num">Items</th><th></th></tr></thead><tbody>`)
		for _, c := range rows {
			id := html.ID(c.ID)
			if !canEdit {
				b.Printf(`<tr><td><a href="/app/items?category_id=%s">%s</a></td><td>%s</td><td class="num">%d</td><td></td></tr>`, id, c.Name, c.Description, c.ItemCount)
				continue
			}
			b.Printf(`<tr><td colspan="2"><form method="post" action="/app/categories/%s" class="inline">`, id)
			b.Printf(`<input name="name" value="%s" required> <input name="description" value="%s"> <button type="submit">Save</button></form></td>`, c.Name, c.Description)
			b.Printf(`<td class="num"><a href="/app/items?category_id=%s">%d</a></td><td>`, id, c.ItemCount)
			if c.ItemCount == 0 {
				html.PostButton(b, "/app/categories/"+id+"/delete", "Delete", "danger", "Delete this category?")
			}
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
		if canEdit {
			b.Raw(`<h2>New category</h2><form method="post" action="/app/categories" class="card">`)
			html.Input(b, "Name", "name", "text", "", true)
			html.Input(b, "Description", "description", "text", "", false)
			b.Raw(`<button type="submit" class="primary">Create</button></form>`)
		}
	})
}

func SectorsPage(rows []models.Sector, canEdit bool) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<table class="grid"><thead><tr><th>Name</th><th>Description</th><th>Responsible</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, s := range rows {
			id := html.ID(s.ID)
			if !canEdit {
				b.Printf(`<tr><td><a href="/app/movements?sector_id=%s">%s</a></td><td>%s</td><td>%s</td><td></td><td></td></tr>`, id, s.Name, s.Description, s.Responsible)
				continue
			}
			b.Printf(`<tr><td colspan="3"><form method="post" action="/app/sectors/%s" class="inline">`, id)
			b.Printf(`<input name="name" value="%s" required> <input name="description" value="%s"> <input name="responsible" value="%s"> <button type="submit">Save</button></form></td><td>`, s.Name, s.Description, s.Responsible)
			activeBadge(b, s.Active)
			b.Raw(`</td><td class="actions">`)
			if s.Active {
				html.PostButton(b, "/app/sectors/"+id+"/deactivate", "Deactivate", "", "")
			} else {
				html.PostButton(b, "/app/sectors/"+id+"/activate", "Activate", "", "")
			}
			html.PostButton(b, "/app/sectors/"+id+"/delete", "Delete", "danger", "Delete this sector?")
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
		if canEdit {
			b.Raw(`<h2>New sector</h2><form method="post" action="/app/sectors" class="card">`)
			html.Input(b, "Name", "name", "text", "", true)
			html.Input(b, "Description", "description", "text", "", false)
			html.Input(b, "Responsible", "responsible", "text", "", false)
			b.Raw(`<button type="submit" class="primary">Create</button></form>`)
		}
	})
}

func SuppliersPage(rows []models.Supplier, canEdit bool) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<table class="grid"><thead><tr><th>Name</th><th>Tax id</th><th>Contact</th><th>Phone</th><th>Email</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, s := range rows {
			id := html.ID(s.ID)
			taxID := ""
			if s.TaxID != nil {
				taxID = *s.TaxID
			}
			if !canEdit {
				b.Printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td></td><td></td></tr>`, s.Name, taxID, s.Contact, s.Phone, s.Email)
				continue
			}
			b.Printf(`<tr><td colspan="5"><form method="post" action="/app/suppliers/%s" class="inline">`, id)
			b.Printf(`<input name="name" value="%s" required> <input name="tax_id" value="%s"> <input name="contact" value="%s"> `, s.Name, taxID, s.Contact)
			b.Printf(`<input name="phone" value="%s"> <input name="email" type="email" value="%s"> <button type="submit">Save</button></form></td><td>`, s.Phone, s.Email)
			activeBadge(b, s.Active)
			b.Raw(`</td><td>`)
			if s.Active {
				html.PostButton(b, "/app/suppliers/"+id+"/deactivate", "Deactivate", "", "")
			} else {
				html.PostButton(b, "/app/suppliers/"+id+"/activate", "Activate", "", "")
			}
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
		if canEdit {
			b.Raw(`<h2>New supplier</h2><form method="post" action="/app/suppliers" class="card">`)
			html.Input(b, "Name", "name", "text", "", true)
			html.Input(b, "Tax id (CNPJ)", "tax_id", "text", "", false)
			html.Input(b, "Contact", "contact", "text", "", false)
			html.Input(b, "Phone", "phone", "tel", "", false)
			html.Input(b, "Email", "email", "email", "", false)
			b.Raw(`<button type="submit" class="primary">Create</button></form>`)
		}
	})
}

func activeBadge(b *html.Writer, active bool) {
	if active {
		html.Badge(b, "ok", "Active")
		return
	}
	html.Badge(b, "inactive", "Inactive")
}
