package warehouses

import "almoxarifado/infrastructure/store"

type PageData struct {
	Warehouses []store.WarehouseView
	CanManage  bool
	// CanActivate covers activate, deactivate and delete.
	CanActivate bool
}
