package access

import "almoxarifado/models"

// Capability names one permission checked at route and operation level.
type Capability string

const (
	CapViewAll          Capability = "view_all"
	CapManageUsers      Capability = "manage_users"
	CapManageSystem     Capability = "manage_system"
	CapManageStock      Capability = "manage_stock"
	CapManageWarehouses Capability = "manage_warehouses"
	// CapAuthenticated is satisfied by any signed-in user.
	CapAuthenticated Capability = "authenticated"
)

// Capabilities is derived once per request from the access level.
type Capabilities struct {
	ViewAll          bool
	ManageUsers      bool
	ManageSystem     bool
	ManageStock      bool
	ManageWarehouses bool
}

// CapabilitiesFor maps an access level to its capability set.
// Unknown levels get nothing.
func CapabilitiesFor(level string) Capabilities {
	switch level {
	case models.LevelSuperAdmin, models.LevelAdmin:
		return Capabilities{ViewAll: true, ManageUsers: true, ManageSystem: true, ManageStock: true, ManageWarehouses: true}
	case models.LevelLocalAdmin:
		return Capabilities{ManageUsers: true, ManageStock: true}
	case models.LevelStockClerk:
		return Capabilities{ManageStock: true}
	default:
		return Capabilities{}
	}
}

// Capabilities of the principal.
func (p Principal) Capabilities() Capabilities {
	return CapabilitiesFor(p.Level)
}

// Has checks one named capability.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapAuthenticated:
		return true
	case CapViewAll:
		return c.ViewAll
	case CapManageUsers:
		return c.ManageUsers
	case CapManageSystem:
		return c.ManageSystem
	case CapManageStock:
		return c.ManageStock
	case CapManageWarehouses:
		return c.ManageWarehouses
	}
	return false
}

// CanAssignLevel reports whether p may create or edit a user with level.
// Only unrestricted levels may grant unrestricted levels, and only a
// super_admin may mint another super_admin.
func (p Principal) CanAssignLevel(level string) bool {
	if !p.Capabilities().ManageUsers || !ValidLevel(level) {
		return false
	}
	switch level {
	case models.LevelSuperAdmin:
		return p.Level == models.LevelSuperAdmin
	case models.LevelAdmin:
		return Unrestricted(p.Level)
	}
	return true
}

// CanManageUserIn reports whether p may manage users homed in warehouseID.
func (p Principal) CanManageUserIn(warehouseID *int64) bool {
	if !p.Capabilities().ManageUsers {
		return false
	}
	if Unrestricted(p.Level) {
		return true
	}
	if warehouseID == nil {
		return false
	}
	return Resolve(p).Allows(*warehouseID)
}
