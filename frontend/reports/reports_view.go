package reports

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
)

func ReportsPage(d PageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<section class="split">`)
		b.Raw(`<form method="get" action="/app/reports/stock.pdf" target="_blank" class="card"><h2>Stock report</h2>`)
		b.Raw(`<p class="muted">Every active item with balance, minimum and expiry.</p>`)
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "All warehouses", d.Warehouses, "")
		}
		b.Raw(`<button type="submit" class="primary">Open PDF</button> `)
		b.Raw(`<button type="submit" formaction="/app/reports/stock.csv" formtarget="_self">Download CSV</button></form>`)

		b.Raw(`<form method="get" action="/app/reports/movements.pdf" target="_blank" class="card"><h2>Movement report</h2>`)
		html.Input(b, "From", "from", "date", d.From.Format("2006-01-02"), false)
		html.Input(b, "To", "to", "date", d.To.Format("2006-01-02"), false)
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "All warehouses", d.Warehouses, "")
		}
		b.Raw(`<button type="submit" class="primary">Open PDF</button> `)
		b.Raw(`<button type="submit" formaction="/app/reports/movements.csv" formtarget="_self">Download CSV</button></form>`)
		b.Raw(`</section>`)
	})
}
