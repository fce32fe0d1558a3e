package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminusers "almoxarifado/frontend/adminUsers"
	auditlog "almoxarifado/frontend/auditLog"
	"almoxarifado/frontend/catalog"
	"almoxarifado/frontend/dashboard"
	"almoxarifado/frontend/exports"
	"almoxarifado/frontend/items"
	"almoxarifado/frontend/login"
	"almoxarifado/frontend/movements"
	"almoxarifado/frontend/reports"
	"almoxarifado/frontend/settings"
	"almoxarifado/frontend/stock"
	"almoxarifado/frontend/warehouses"
	"almoxarifado/infrastructure/access"
	"almoxarifado/models"
)

func (s *Server) loginOptions() login.Options {
	return login.Options{TTL: s.Options.SessionTTL, SecureCookie: s.Options.SecureCookie}
}

// RegisterPublicRoutes registers routes reachable without a session.
func (s *Server) RegisterPublicRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler(s.Store))
	s.router.Post("/login", login.CreateLoginHandler(s.Store, s.SessionCache, s.UserCache, s.loginOptions()))
	s.router.Post("/logout", login.LogoutHandler(s.Store, s.SessionCache, s.loginOptions()))
	s.router.Get("/branding/logo", settings.LogoQueryHandler(s.Store, s.Options.UploadDir))
}

// RegisterFrontendRoutes registers the pages every signed-in level can use.
// Mutations still need the matching capability.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(access.CapAuthenticated, "DASHBOARD_VIEW", http.MethodGet, "/app/dashboard")
	r.Get("/dashboard", dashboard.DashboardPageQueryHandler(s.Projector))

	s.Rbac.Add(access.CapAuthenticated, "ACCOUNT_PASSWORD_VIEW", http.MethodGet, "/app/account/password")
	r.Get("/account/password", adminusers.AccountPasswordPageQueryHandler())
	s.Rbac.Add(access.CapAuthenticated, "ACCOUNT_PASSWORD_EDIT", http.MethodPost, "/app/account/password")
	r.Post("/account/password", adminusers.ChangeOwnPasswordCommandHandler(s.Store, s.UserCache))

	s.RegisterItemRoutes(r)
	s.RegisterMovementRoutes(r)
	s.RegisterWarehouseRoutes(r)
	s.RegisterCatalogRoutes(r)
	s.RegisterReportRoutes(r)
	return r
}

func (s *Server) RegisterItemRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "ITEMS_LIST_VIEW", http.MethodGet, "/app/items")
	r.Get("/items", items.ItemsPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapAuthenticated, "ITEMS_SEARCH", http.MethodGet, "/app/search")
	r.Get("/search", items.SearchPageQueryHandler(s.Store))

	s.Rbac.Add(access.CapManageStock, "ITEMS_NEW_VIEW", http.MethodGet, "/app/items/new")
	r.Get("/items/new", items.NewItemPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_CREATE", http.MethodPost, "/app/items")
	r.Post("/items", items.CreateItemCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_IMPORT_VIEW", http.MethodGet, "/app/items/import")
	r.Get("/items/import", stock.StockImportPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_IMPORT", http.MethodPost, "/app/items/import")
	r.Post("/items/import", stock.StockImportCommandHandler(s.Store))

	s.Rbac.Add(access.CapAuthenticated, "ITEMS_DETAIL_VIEW", http.MethodGet, "/app/items/*")
	r.Get("/items/{id}", items.ItemDetailPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapAuthenticated, "ITEMS_LABEL_PRINT", http.MethodGet, "/app/items/*/label.pdf")
	r.Get("/items/{id}/label.pdf", items.ItemLabelPDFQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_EDIT_VIEW", http.MethodGet, "/app/items/*/edit")
	r.Get("/items/{id}/edit", items.EditItemPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_EDIT", http.MethodPost, "/app/items/*")
	r.Post("/items/{id}", items.UpdateItemCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "ITEMS_DEACTIVATE", http.MethodPost, "/app/items/*/deactivate")
	r.Post("/items/{id}/deactivate", items.DeactivateItemCommandHandler(s.Store))
}

func (s *Server) RegisterMovementRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "MOVEMENTS_LIST_VIEW", http.MethodGet, "/app/movements")
	r.Get("/movements", movements.MovementsPageQueryHandler(s.Store))

	for _, kind := range []string{models.MovementEntry, models.MovementExit, models.MovementAdjustment} {
		s.Rbac.Add(access.CapManageStock, "MOVEMENTS_"+kind+"_VIEW", http.MethodGet, "/app/movements/"+kind)
		r.Get("/movements/"+kind, movements.MovementFormPageQueryHandler(s.Store, kind))
		s.Rbac.Add(access.CapManageStock, "MOVEMENTS_"+kind+"_CREATE", http.MethodPost, "/app/movements/"+kind)
		r.Post("/movements/"+kind, movements.RecordMovementCommandHandler(s.Engine, kind))
	}
}

func (s *Server) RegisterWarehouseRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "WAREHOUSES_LIST_VIEW", http.MethodGet, "/app/warehouses")
	r.Get("/warehouses", warehouses.WarehousesPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_CREATE", http.MethodPost, "/app/warehouses")
	r.Post("/warehouses", warehouses.CreateWarehouseCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_EDIT_VIEW", http.MethodGet, "/app/warehouses/*/edit")
	r.Get("/warehouses/{id}/edit", warehouses.EditWarehousePageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_EDIT", http.MethodPost, "/app/warehouses/*")
	r.Post("/warehouses/{id}", warehouses.UpdateWarehouseCommandHandler(s.Store))
	// The store limits activation and deletion to super_admin.
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_ACTIVATE", http.MethodPost, "/app/warehouses/*/activate")
	r.Post("/warehouses/{id}/activate", warehouses.SetWarehouseActiveCommandHandler(s.Store, true))
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_DEACTIVATE", http.MethodPost, "/app/warehouses/*/deactivate")
	r.Post("/warehouses/{id}/deactivate", warehouses.SetWarehouseActiveCommandHandler(s.Store, false))
	s.Rbac.Add(access.CapManageWarehouses, "WAREHOUSES_DELETE", http.MethodPost, "/app/warehouses/*/delete")
	r.Post("/warehouses/{id}/delete", warehouses.DeleteWarehouseCommandHandler(s.Store))
}

func (s *Server) RegisterCatalogRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "CATEGORIES_LIST_VIEW", http.MethodGet, "/app/categories")
	r.Get("/categories", catalog.CategoriesPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "CATEGORIES_CREATE", http.MethodPost, "/app/categories")
	r.Post("/categories", catalog.CreateCategoryCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "CATEGORIES_EDIT", http.MethodPost, "/app/categories/*")
	r.Post("/categories/{id}", catalog.UpdateCategoryCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "CATEGORIES_DELETE", http.MethodPost, "/app/categories/*/delete")
	r.Post("/categories/{id}/delete", catalog.DeleteCategoryCommandHandler(s.Store))

	s.Rbac.Add(access.CapAuthenticated, "SECTORS_LIST_VIEW", http.MethodGet, "/app/sectors")
	r.Get("/sectors", catalog.SectorsPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SECTORS_CREATE", http.MethodPost, "/app/sectors")
	r.Post("/sectors", catalog.CreateSectorCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SECTORS_EDIT", http.MethodPost, "/app/sectors/*")
	r.Post("/sectors/{id}", catalog.UpdateSectorCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SECTORS_ACTIVATE", http.MethodPost, "/app/sectors/*/activate")
	r.Post("/sectors/{id}/activate", catalog.SetSectorActiveCommandHandler(s.Store, true))
	s.Rbac.Add(access.CapManageStock, "SECTORS_DEACTIVATE", http.MethodPost, "/app/sectors/*/deactivate")
	r.Post("/sectors/{id}/deactivate", catalog.SetSectorActiveCommandHandler(s.Store, false))
	s.Rbac.Add(access.CapManageStock, "SECTORS_DELETE", http.MethodPost, "/app/sectors/*/delete")
	r.Post("/sectors/{id}/delete", catalog.DeleteSectorCommandHandler(s.Store))

	s.Rbac.Add(access.CapAuthenticated, "SUPPLIERS_LIST_VIEW", http.MethodGet, "/app/suppliers")
	r.Get("/suppliers", catalog.SuppliersPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SUPPLIERS_CREATE", http.MethodPost, "/app/suppliers")
	r.Post("/suppliers", catalog.CreateSupplierCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SUPPLIERS_EDIT", http.MethodPost, "/app/suppliers/*")
	r.Post("/suppliers/{id}", catalog.UpdateSupplierCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageStock, "SUPPLIERS_ACTIVATE", http.MethodPost, "/app/suppliers/*/activate")
	r.Post("/suppliers/{id}/activate", catalog.SetSupplierActiveCommandHandler(s.Store, true))
	s.Rbac.Add(access.CapManageStock, "SUPPLIERS_DEACTIVATE", http.MethodPost, "/app/suppliers/*/deactivate")
	r.Post("/suppliers/{id}/deactivate", catalog.SetSupplierActiveCommandHandler(s.Store, false))
}

func (s *Server) RegisterReportRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "REPORTS_VIEW", http.MethodGet, "/app/reports")
	r.Get("/reports", reports.ReportsPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapAuthenticated, "REPORTS_STOCK_PDF", http.MethodGet, "/app/reports/stock.pdf")
	r.Get("/reports/stock.pdf", reports.StockReportPDFQueryHandler(s.Store, s.Projector, s.Options.UploadDir))
	s.Rbac.Add(access.CapAuthenticated, "REPORTS_MOVEMENTS_PDF", http.MethodGet, "/app/reports/movements.pdf")
	r.Get("/reports/movements.pdf", reports.MovementReportPDFQueryHandler(s.Store, s.Projector, s.Options.UploadDir))
	s.Rbac.Add(access.CapAuthenticated, "REPORTS_STOCK_CSV", http.MethodGet, "/app/reports/stock.csv")
	r.Get("/reports/stock.csv", exports.StockCSVQueryHandler(s.Projector))
	s.Rbac.Add(access.CapAuthenticated, "REPORTS_MOVEMENTS_CSV", http.MethodGet, "/app/reports/movements.csv")
	r.Get("/reports/movements.csv", exports.MovementCSVQueryHandler(s.Projector))
}

// RegisterAdminRoutes registers user administration and system settings.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/app/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_CREATE", http.MethodPost, "/app/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_EDIT_VIEW", http.MethodGet, "/app/admin/users/*/edit")
	r.Get("/admin/users/{id}/edit", adminusers.EditUserPageQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_EDIT", http.MethodPost, "/app/admin/users/*")
	r.Post("/admin/users/{id}", adminusers.UpdateUserCommandHandler(s.Store, s.SessionCache, s.UserCache))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_PASSWORD", http.MethodPost, "/app/admin/users/*/password")
	r.Post("/admin/users/{id}/password", adminusers.ResetPasswordCommandHandler(s.Store, s.SessionCache, s.UserCache))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_ACTIVATE", http.MethodPost, "/app/admin/users/*/activate")
	r.Post("/admin/users/{id}/activate", adminusers.SetUserActiveCommandHandler(s.Store, s.SessionCache, s.UserCache, true))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_DEACTIVATE", http.MethodPost, "/app/admin/users/*/deactivate")
	r.Post("/admin/users/{id}/deactivate", adminusers.SetUserActiveCommandHandler(s.Store, s.SessionCache, s.UserCache, false))
	s.Rbac.Add(access.CapManageUsers, "ADMIN_USERS_DELETE", http.MethodPost, "/app/admin/users/*/delete")
	r.Post("/admin/users/{id}/delete", adminusers.DeleteUserCommandHandler(s.Store, s.SessionCache, s.UserCache))

	s.Rbac.Add(access.CapManageSystem, "AUDIT_VIEW", http.MethodGet, "/app/admin/audit")
	r.Get("/admin/audit", auditlog.AuditPageQueryHandler(s.Store.DB(), s.Audit))

	s.Rbac.Add(access.CapManageSystem, "SETTINGS_VIEW", http.MethodGet, "/app/settings")
	r.Get("/settings", settings.SettingsPageQueryHandler(s.Store, s.Backups))
	s.Rbac.Add(access.CapManageSystem, "SETTINGS_EDIT", http.MethodPost, "/app/settings")
	r.Post("/settings", settings.UpdateSettingsCommandHandler(s.Store))
	s.Rbac.Add(access.CapManageSystem, "SETTINGS_LOGO", http.MethodPost, "/app/settings/logo")
	r.Post("/settings/logo", settings.UploadLogoCommandHandler(s.Store, s.Options.UploadDir))
	s.Rbac.Add(access.CapManageSystem, "SETTINGS_BACKUP_RUN", http.MethodPost, "/app/settings/backup")
	r.Post("/settings/backup", settings.RunBackupCommandHandler(s.Backups))
	s.Rbac.Add(access.CapManageSystem, "SETTINGS_BACKUP_DOWNLOAD", http.MethodGet, "/app/settings/backups/*")
	r.Get("/settings/backups/{name}", settings.DownloadBackupQueryHandler(s.Backups))
	return r
}

// RegisterAPIRoutes registers the JSON endpoints.
func (s *Server) RegisterAPIRoutes(r chi.Router) {
	s.Rbac.Add(access.CapAuthenticated, "API_DASHBOARD_STATS", http.MethodGet, "/app/api/dashboard/stats")
	r.Get("/api/dashboard/stats", dashboard.StatsQueryHandler(s.Projector))
	s.Rbac.Add(access.CapAuthenticated, "API_ITEM", http.MethodGet, "/app/api/items/*")
	r.Get("/api/items/{id}", items.ItemJSONQueryHandler(s.Store))
	s.Rbac.Add(access.CapAuthenticated, "API_MOVEMENTS", http.MethodGet, "/app/api/movements")
	r.Get("/api/movements", movements.MovementsJSONQueryHandler(s.Store))
	s.Rbac.Add(access.CapManageSystem, "API_LEDGER_CHECK", http.MethodGet, "/app/api/ledger/check")
	r.Get("/api/ledger/check", movements.LedgerCheckQueryHandler(s.Engine))
}
