package items

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
)

func ItemsListPage(d ListPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		q := d.Query
		b.Raw(`<form method="get" action="/app/items" class="filters">`)
		html.Input(b, "Search", "q", "search", q.Get("q"), false)
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "All warehouses", d.Warehouses, q.Get("warehouse_id"))
		}
		html.Select(b, "Category", "category_id", "All categories", d.Categories, q.Get("category_id"))
		html.Checkbox(b, "Below minimum", "below_minimum", q.Get("below_minimum") != "")
		if d.CanEdit {
			html.Checkbox(b, "Include inactive", "inactive", q.Get("inactive") != "")
		}
		b.Raw(`<button type="submit">Filter</button></form>`)

		if d.CanEdit {
			b.Raw(`<p><a class="button primary" href="/app/items/new">New item</a> <a class="button" href="/app/items/import">Import CSV</a></p>`)
		}

		b.Printf(`<p class="muted">%d items</p>`, d.Page.Total)
		if len(d.Page.Rows) == 0 {
			b.Raw(`<p class="empty">No items match.</p>`)
			return
		}
		b.Raw(`<table class="grid">` + html.ItemHeader + `<tbody>`)
		for _, it := range d.Page.Rows {
			html.ItemRow(b, it, it.ExpiryStatus(d.Today))
		}
		b.Raw(`</tbody></table>`)
		html.Pager(b, "/app/items", q, d.Page.Page, d.Page.Pages())
	})
}

func ItemDetailPage(d DetailPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		it := d.Item
		id := html.ID(it.ID)
		b.Raw(`<dl class="details">`)
		b.Printf(`<dt>Barcode</dt><dd>%s</dd><dt>Lot</dt><dd>%s</dd>`, it.Barcode, it.Lot)
		b.Printf(`<dt>Warehouse</dt><dd>%s</dd><dt>Category</dt><dd>%s</dd>`, it.WarehouseName, it.CategoryName)
		b.Printf(`<dt>Brand</dt><dd>%s</dd><dt>Description</dt><dd>%s</dd>`, it.Brand, it.Description)
		b.Printf(`<dt>Balance</dt><dd>%s %s `, html.Qty(it.Balance), it.Unit)
		html.StockBadge(b, it.Status())
		b.Printf(`</dd><dt>Minimum</dt><dd>%s</dd><dt>Expiry</dt><dd>%s `, html.Qty(it.MinStock), html.Date(it.ExpiryDate))
		html.ExpiryBadge(b, it.ExpiryStatus(d.Today))
		b.Raw(`</dd></dl><p class="actions">`)
		b.Printf(`<a class="button" href="/app/items/%s/label.pdf" target="_blank">Print label</a>`, id)
		if d.CanEdit {
			b.Printf(` <a class="button success" href="/app/movements/entry?item_id=%s">Entry</a>`, id)
			b.Printf(` <a class="button" href="/app/movements/exit?item_id=%s">Exit</a>`, id)
			b.Printf(` <a class="button" href="/app/movements/adjustment?item_id=%s">Adjust</a>`, id)
			b.Printf(` <a class="button" href="/app/items/%s/edit">Edit</a> `, id)
			html.PostButton(b, "/app/items/"+id+"/deactivate", "Deactivate", "danger", "Deactivate this item?")
		}
		b.Raw(`</p><h2>Movements</h2>`)
		html.MovementTable(b, d.Movements.Rows)
		html.Pager(b, "/app/items/"+id, d.Query, d.Movements.Page, d.Movements.Pages())
	})
}

func ItemFormPage(d FormPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		in := d.Input
		action := "/app/items"
		if d.ItemID > 0 {
			action = "/app/items/" + html.ID(d.ItemID)
		}
		b.Printf(`<form method="post" action="%s" class="card">`, action)
		html.Input(b, "Barcode", "barcode", "text", in.Barcode, true)
		html.Input(b, "Name", "name", "text", in.Name, true)
		html.TextArea(b, "Description", "description", in.Description)
		html.Input(b, "Brand", "brand", "text", in.Brand, false)
		html.Input(b, "Unit", "unit", "text", in.Unit, true)
		html.Input(b, "Minimum stock", "min_stock", "number", html.Qty(in.MinStock), false)
		html.Input(b, "Lot", "lot", "text", in.Lot, true)
		expiry := ""
		if in.ExpiryDate != nil {
			expiry = in.ExpiryDate.Format("2006-01-02")
		}
		html.Input(b, "Expiry date", "expiry_date", "date", expiry, false)
		html.Select(b, "Category", "category_id", "No category", d.Categories, optionalID(in.CategoryID))
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "Choose a warehouse", d.Warehouses, optionalID(in.WarehouseID))
		}
		b.Raw(`<button type="submit" class="primary">Save</button></form>`)
	})
}

func SearchPage(d SearchPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<form method="get" action="/app/search" class="filters">`)
		html.Input(b, "Barcode, name or lot", "q", "search", d.Term, true)
		b.Raw(`<button type="submit">Search</button></form>`)
		if d.Term == "" {
			return
		}
		if len(d.Items) == 0 {
			b.Printf(`<p class="empty">Nothing found for "%s".</p>`, d.Term)
			return
		}
		b.Raw(`<table class="grid">` + html.ItemHeader + `<tbody>`)
		for _, it := range d.Items {
			html.ItemRow(b, it, it.ExpiryStatus(d.Today))
		}
		b.Raw(`</tbody></table>`)
	})
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return html.ID(*id)
}
