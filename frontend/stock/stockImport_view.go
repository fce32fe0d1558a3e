package stock

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
)

func StockImportPage(d PageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<form method="post" action="/app/items/import" enctype="multipart/form-data" class="card">`)
		b.Raw(`<p class="muted">CSV with a header row. Required columns: <code>barcode,name,unit,lot</code>. `)
		b.Raw(`Optional: <code>min_stock,expiry_date,brand,description,category</code>. `)
		b.Raw(`Items already registered with the same barcode and lot are skipped.</p>`)
		if d.ShowWarehouse {
			html.Select(b, "Warehouse", "warehouse_id", "Choose…", d.Warehouses, "")
		}
		b.Raw(`<label>File <input type="file" name="file" accept=".csv,text/csv" required></label>`)
		b.Raw(`<button type="submit" class="primary">Import</button></form>`)
	})
}
