package items

import (
	"net/url"
	"time"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/store"
)

type ListPageData struct {
	Page          store.Page[store.ItemView]
	Query         url.Values
	Warehouses    []html.Option
	Categories    []html.Option
	ShowWarehouse bool
	CanEdit       bool
	Today         time.Time
}

type FormPageData struct {
	ItemID        int64
	Input         store.ItemInput
	Warehouses    []html.Option
	Categories    []html.Option
	ShowWarehouse bool
}

type DetailPageData struct {
	Item      store.ItemView
	Movements store.Page[store.MovementView]
	Query     url.Values
	CanEdit   bool
	Today     time.Time
}

type SearchPageData struct {
	Term  string
	Items []store.ItemView
	Today time.Time
}
