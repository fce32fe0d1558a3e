package stock

import "almoxarifado/frontend/shared/html"

type ImportSummary struct {
	Inserted int
	Skipped  int
	Errors   int
	Messages []string
}

type PageData struct {
	ShowWarehouse bool
	Warehouses    []html.Option
}
