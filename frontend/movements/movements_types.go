package movements

import (
	"net/url"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/store"
)

type ListPageData struct {
	Page          store.Page[store.MovementView]
	Query         url.Values
	Warehouses    []html.Option
	Sectors       []html.Option
	ShowWarehouse bool
	CanRecord     bool
}

type FormPageData struct {
	Kind    string
	Item    *store.ItemView
	Sectors []html.Option
}
