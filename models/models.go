package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Access levels, widest first.
const (
	LevelSuperAdmin = "super_admin"
	LevelAdmin      = "admin"
	LevelLocalAdmin = "local_admin"
	LevelStockClerk = "stock_clerk"
	LevelViewer     = "viewer"
)

// Movement kinds.
const (
	MovementEntry      = "entry"
	MovementExit       = "exit"
	MovementAdjustment = "adjustment"
)

// Warehouse is an inventory location and the unit of visibility scoping.
type Warehouse struct {
	bun.BaseModel `bun:"table:warehouses,alias:w"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	Address     string    `bun:"address"`
	Responsible string    `bun:"responsible"`
	Phone       string    `bun:"phone"`
	Active      bool      `bun:"active,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Email        string    `bun:"email"`
	AccessLevel  string    `bun:"access_level,notnull"`
	WarehouseID  *int64    `bun:"warehouse_id"`
	Active       bool      `bun:"active,notnull,default:true"`
	CreatedAt    time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:"id,pk"`
	UserID    int64     `bun:"user_id,notnull"`
	User      User      `bun:"rel:belongs-to,join:user_id=id"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Category groups items.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Name        string `bun:"name,notnull,unique"`
	Description string `bun:"description"`
}

// Sector is a consuming hospital department referenced by exits.
type Sector struct {
	bun.BaseModel `bun:"table:sectors,alias:sec"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Name        string `bun:"name,notnull,unique"`
	Description string `bun:"description"`
	Responsible string `bun:"responsible"`
	Active      bool   `bun:"active,notnull,default:true"`
}

// Supplier is a material vendor.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:sup"`

	ID      int64   `bun:"id,pk,autoincrement"`
	Name    string  `bun:"name,notnull"`
	TaxID   *string `bun:"tax_id,unique"`
	Contact string  `bun:"contact"`
	Phone   string  `bun:"phone"`
	Email   string  `bun:"email"`
	Active  bool    `bun:"active,notnull,default:true"`
}

// Item is a stock line: one barcode and lot held in one warehouse.
// Balance is a cached projection of the movement ledger.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Barcode     string     `bun:"barcode,notnull"`
	Name        string     `bun:"name,notnull"`
	Description string     `bun:"description"`
	Brand       string     `bun:"brand"`
	Unit        string     `bun:"unit,notnull"`
	MinStock    float64    `bun:"min_stock,notnull,default:0"`
	Balance     float64    `bun:"balance,notnull,default:0"`
	Lot         string     `bun:"lot,notnull"`
	ExpiryDate  *time.Time `bun:"expiry_date"`
	CategoryID  *int64     `bun:"category_id"`
	WarehouseID int64      `bun:"warehouse_id,notnull"`
	Active      bool       `bun:"active,notnull,default:true"`
	CreatedAt   time.Time  `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

// Movement is one append-only ledger entry. Quantity is signed for adjustments.
type Movement struct {
	bun.BaseModel `bun:"table:movements,alias:m"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Kind       string    `bun:"kind,notnull"`
	Quantity   float64   `bun:"quantity,notnull"`
	Note       string    `bun:"note"`
	InvoiceRef string    `bun:"invoice_ref"`
	ItemID     int64     `bun:"item_id,notnull"`
	UserID     int64     `bun:"user_id,notnull"`
	SectorID   *int64    `bun:"sector_id"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

// SignedQuantity is the amount this movement contributes to the item balance.
func (m Movement) SignedQuantity() float64 {
	if m.Kind == MovementExit {
		return -m.Quantity
	}
	return m.Quantity
}

// SystemConfig is the singleton branding and backup settings row.
type SystemConfig struct {
	bun.BaseModel `bun:"table:system_config,alias:sc"`

	ID                  int64      `bun:"id,pk"`
	HospitalName        string     `bun:"hospital_name,notnull"`
	LogoPath            string     `bun:"logo_path"`
	PrimaryColor        string     `bun:"primary_color,notnull"`
	SecondaryColor      string     `bun:"secondary_color,notnull"`
	NavbarColor         string     `bun:"navbar_color,notnull"`
	SuccessColor        string     `bun:"success_color,notnull"`
	FooterText          string     `bun:"footer_text"`
	FooterCompany       string     `bun:"footer_company"`
	FooterContact       string     `bun:"footer_contact"`
	AutoBackup          bool       `bun:"auto_backup,notnull,default:false"`
	BackupFrequencyDays int        `bun:"backup_frequency_days,notnull,default:7"`
	LastBackupAt        *time.Time `bun:"last_backup_at"`
	UpdatedAt           time.Time  `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}
