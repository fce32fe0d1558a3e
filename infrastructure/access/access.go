// Package access derives what a user may see and do from their access level.
//
// Everything here is pure: a Principal goes in, a Scope or Capabilities value
// comes out, and callers thread those explicitly into store, ledger and
// reporting calls.
package access

import (
	"github.com/uptrace/bun"

	"almoxarifado/models"
)

// Principal is the acting user as seen by the domain layers.
type Principal struct {
	UserID      int64
	Username    string
	Level       string
	WarehouseID *int64
}

// FromUser builds a Principal from a stored user.
func FromUser(u models.User) Principal {
	return Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Level:       u.AccessLevel,
		WarehouseID: u.WarehouseID,
	}
}

// Unrestricted reports whether the level sees every warehouse.
func Unrestricted(level string) bool {
	return level == models.LevelSuperAdmin || level == models.LevelAdmin
}

// ValidLevel reports whether level is one of the known access levels.
func ValidLevel(level string) bool {
	switch level {
	case models.LevelSuperAdmin, models.LevelAdmin, models.LevelLocalAdmin, models.LevelStockClerk, models.LevelViewer:
		return true
	}
	return false
}

// Levels lists access levels from widest to narrowest.
func Levels() []string {
	return []string{
		models.LevelSuperAdmin,
		models.LevelAdmin,
		models.LevelLocalAdmin,
		models.LevelStockClerk,
		models.LevelViewer,
	}
}

// Scope is the warehouse visibility predicate for one request.
type Scope struct {
	all         bool
	warehouseID int64
	hasHome     bool
}

// Resolve computes the visibility scope for p.
// Scoped levels without a home warehouse match nothing.
func Resolve(p Principal) Scope {
	if Unrestricted(p.Level) {
		return Scope{all: true}
	}
	if p.WarehouseID == nil || *p.WarehouseID <= 0 {
		return Scope{}
	}
	return Scope{warehouseID: *p.WarehouseID, hasHome: true}
}

// All is the unrestricted scope, used by system tasks.
func All() Scope {
	return Scope{all: true}
}

// Warehouse is a scope pinned to a single warehouse.
func Warehouse(id int64) Scope {
	if id <= 0 {
		return Scope{}
	}
	return Scope{warehouseID: id, hasHome: true}
}

// Narrow applies an optional warehouse selector. Only unrestricted scopes
// narrow; a restricted scope is returned unchanged.
func (s Scope) Narrow(selector *int64) Scope {
	if !s.all || selector == nil || *selector <= 0 {
		return s
	}
	return Warehouse(*selector)
}

// Unrestricted reports whether the scope matches every warehouse.
func (s Scope) Unrestricted() bool {
	return s.all
}

// WarehouseID returns the pinned warehouse, if any.
func (s Scope) WarehouseID() (int64, bool) {
	return s.warehouseID, s.hasHome
}

// Empty reports whether the scope matches nothing.
func (s Scope) Empty() bool {
	return !s.all && !s.hasHome
}

// Allows checks a single row's warehouse against the scope.
func (s Scope) Allows(warehouseID int64) bool {
	if s.all {
		return true
	}
	return s.hasHome && s.warehouseID == warehouseID
}

// Apply adds the scope predicate on column to q.
func (s Scope) Apply(q *bun.SelectQuery, column string) *bun.SelectQuery {
	switch {
	case s.all:
		return q
	case s.hasHome:
		return q.Where("? = ?", bun.Ident(column), s.warehouseID)
	default:
		return q.Where("1 = 0")
	}
}
