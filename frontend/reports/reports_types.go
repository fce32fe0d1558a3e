package reports

import (
	"time"

	"almoxarifado/frontend/shared/html"
)

type PageData struct {
	ShowWarehouse bool
	Warehouses    []html.Option
	From          time.Time
	To            time.Time
}
