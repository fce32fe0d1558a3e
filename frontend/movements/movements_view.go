package movements

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/models"
)

var kindOptions = []html.Option{
	{Value: models.MovementEntry, Label: "Entry"},
	{Value: models.MovementExit, Label: "Exit"},
	{Value: models.MovementAdjustment, Label: "Adjustment"},
}

func MovementsListPage(d ListPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		q := d.Query
		b.Raw(`<form method="get" action="/app/movements" class="filters">`)
		html.Select(b, "Kind", "kind", "All kinds", kindOptions, q.Get("kind"))
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "All warehouses", d.Warehouses, q.Get("warehouse_id"))
		}
		html.Select(b, "Sector", "sector_id", "All sectors", d.Sectors, q.Get("sector_id"))
		html.Input(b, "From", "from", "date", q.Get("from"), false)
		html.Input(b, "To", "to", "date", q.Get("to"), false)
		if q.Get("item_id") != "" {
			b.Printf(`<input type="hidden" name="item_id" value="%s">`, q.Get("item_id"))
		}
		b.Raw(`<button type="submit">Filter</button></form>`)

		if d.CanRecord {
			b.Raw(`<p class="muted">To record a movement open the item and choose Entry, Exit or Adjust, or <a href="/app/search">search for it</a>.</p>`)
		}
		b.Printf(`<p class="muted">%d movements</p>`, d.Page.Total)
		html.MovementTable(b, d.Page.Rows)
		html.Pager(b, "/app/movements", q, d.Page.Page, d.Page.Pages())
	})
}

func MovementFormPage(d FormPageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		if d.Item == nil {
			b.Raw(`<p>Pick the item first.</p><form method="get" action="/app/search" class="filters">`)
			html.Input(b, "Barcode, name or lot", "q", "search", "", true)
			b.Raw(`<button type="submit">Search</button></form>`)
			return
		}
		it := d.Item
		b.Printf(`<p><strong>%s</strong> lot %s in %s. Current balance <strong>%s %s</strong>.</p>`,
			it.Name, it.Lot, it.WarehouseName, html.Qty(it.Balance), it.Unit)

		b.Printf(`<form method="post" action="/app/movements/%s" class="card">`, d.Kind)
		b.Printf(`<input type="hidden" name="item_id" value="%s">`, html.ID(it.ID))
		switch d.Kind {
		case models.MovementEntry:
			html.Input(b, "Quantity", "quantity", "number", "", true)
			html.Input(b, "Invoice", "invoice_ref", "text", "", false)
		case models.MovementExit:
			html.Input(b, "Quantity", "quantity", "number", "", true)
			html.Select(b, "Sector", "sector_id", "Choose the requesting sector", d.Sectors, "")
		case models.MovementAdjustment:
			html.Input(b, "Counted balance", "new_balance", "number", html.Qty(it.Balance), true)
		}
		html.TextArea(b, "Note", "note", "")
		b.Raw(`<button type="submit" class="primary">Record</button></form>`)
	})
}
