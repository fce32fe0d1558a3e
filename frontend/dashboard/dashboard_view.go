package dashboard

import (
	"context"
	"time"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/reporting"
)

func DashboardPage(d reporting.Dashboard, now time.Time) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<section class="cards">`)
		card(b, "Active items", d.TotalItems, "/app/items")
		card(b, "Below minimum", d.Counts.BelowMinimum, "/app/items?below_minimum=1")
		card(b, "Expired", d.Counts.Expired, "/app/reports")
		card(b, "Expiring in 30 days", d.Counts.ExpiringSoon, "/app/reports")
		b.Raw(`</section>`)

		b.Raw(`<section><h2>Low stock</h2>`)
		if len(d.LowStock) == 0 {
			b.Raw(`<p class="empty">Every item is at or above its minimum.</p>`)
		} else {
			b.Raw(`<table class="grid">` + html.ItemHeader + `<tbody>`)
			for _, a := range d.LowStock {
				html.ItemRow(b, a.ItemView, a.ExpiryStatus(now))
			}
			b.Raw(`</tbody></table>`)
		}
		b.Raw(`</section>`)

		expiryTable(b, "Expired", d.Expired, now)
		expiryTable(b, "Expiring soon", d.ExpiringSoon, now)

		b.Raw(`<section><h2>Recent movements</h2>`)
		html.MovementTable(b, d.Recent)
		b.Raw(`</section>`)

		b.Raw(`<section><h2>Last 30 days</h2><div id="stats" data-src="/app/api/dashboard/stats"></div></section>`)
	})
}

func card(b *html.Writer, label string, n int, href string) {
	b.Printf(`<a class="card" href="%s"><span class="value">%d</span><span class="label">%s</span></a>`, href, n, label)
}

func expiryTable(b *html.Writer, title string, rows []reporting.ExpiryAlert, now time.Time) {
	if len(rows) == 0 {
		return
	}
	b.Printf(`<section><h2>%s</h2><table class="grid"><thead><tr><th>Name</th><th>Lot</th><th>Warehouse</th><th>Expiry</th><th class="num">Days</th><th class="num">Balance</th></tr></thead><tbody>`, title)
	for _, a := range rows {
		b.Printf(`<tr><td><a href="/app/items/%d">%s</a></td><td>%s</td><td>%s</td><td>%s `, a.ID, a.Name, a.Lot, a.WarehouseName, html.Date(a.ExpiryDate))
		html.ExpiryBadge(b, a.ExpiryStatus(now))
		b.Printf(`</td><td class="num">%d</td><td class="num">%s %s</td></tr>`, a.DaysLeft, html.Qty(a.Balance), a.Unit)
	}
	b.Raw(`</tbody></table></section>`)
}
