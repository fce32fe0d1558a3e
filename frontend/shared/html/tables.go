package html

import (
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

// MovementTable lists ledger rows. Exits show as negative quantities.
func MovementTable(b *Writer, rows []store.MovementView) {
	if len(rows) == 0 {
		b.Raw(`<p class="empty">No movements.</p>`)
		return
	}
	b.Raw(`<table class="grid"><thead><tr><th>Date</th><th>Kind</th><th>Item</th><th>Lot</th><th>Warehouse</th><th class="num">Quantity</th><th>Sector</th><th>User</th><th>Note</th></tr></thead><tbody>`)
	for _, m := range rows {
		qty := m.Quantity
		if m.Kind == models.MovementExit {
			qty = -qty
		}
		b.Printf(`<tr class="kind-%s"><td>%s</td><td>%s</td>`, m.Kind, DateTime(m.CreatedAt), KindLabel(m.Kind))
		b.Printf(`<td><a href="/app/items/%d">%s</a></td><td>%s</td><td>%s</td>`, m.ItemID, m.ItemName, m.Lot, m.WarehouseName)
		b.Printf(`<td class="num">%s %s</td><td>%s</td><td>%s</td><td>%s</td></tr>`, Qty(qty), m.Unit, m.SectorName, m.UserName, m.Note)
	}
	b.Raw(`</tbody></table>`)
}

// ItemRow renders the common columns of an item listing.
func ItemRow(b *Writer, it store.ItemView, expiryStatus string) {
	b.Printf(`<tr><td><a href="/app/items/%d">%s</a></td><td>%s</td><td>%s</td><td>%s</td>`, it.ID, it.Name, it.Barcode, it.Lot, it.WarehouseName)
	b.Printf(`<td class="num">%s %s</td><td class="num">%s</td><td>`, Qty(it.Balance), it.Unit, Qty(it.MinStock))
	StockBadge(b, it.Status())
	b.Printf(`</td><td>%s `, Date(it.ExpiryDate))
	ExpiryBadge(b, expiryStatus)
	b.Raw(`</td></tr>`)
}

const ItemHeader = `<thead><tr><th>Name</th><th>Barcode</th><th>Lot</th><th>Warehouse</th><th class="num">Balance</th><th class="num">Minimum</th><th>Status</th><th>Expiry</th></tr></thead>`
