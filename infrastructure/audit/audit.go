package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"

	"almoxarifado/models"
)

// Audited entity types.
const (
	EntityWarehouse = "warehouse"
	EntityUser      = "user"
	EntityItem      = "item"
	EntityCategory  = "category"
	EntitySector    = "sector"
	EntitySupplier  = "supplier"
	EntityConfig    = "system_config"
)

// Actions.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
	ActionPassword   = "password_change"
	ActionBackup     = "backup"
)

// Service writes audit records inside the caller transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Write records one change. before and after are stored as JSON; nil stays empty.
func (s *Service) Write(ctx context.Context, tx bun.Tx, userID int64, action, entityType string, entityID int64, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	row := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   strconv.FormatInt(entityID, 10),
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("write audit %s %s: %w", action, entityType, err)
	}
	return nil
}

// Filter narrows Recent. Empty fields match everything.
type Filter struct {
	EntityType string
	EntityID   string
	UserID     int64
	Limit      int
}

// Entry is an audit row with the acting username resolved.
type Entry struct {
	models.AuditLog `bun:",extend"`
	Actor           string `bun:"actor"`
}

// Recent returns the newest audit rows matching f.
func (s *Service) Recent(ctx context.Context, db bun.IDB, f Filter) ([]Entry, error) {
	if f.Limit <= 0 {
		f.Limit = 200
	}
	rows := make([]Entry, 0)
	q := db.NewSelect().
		Model(&rows).
		ColumnExpr("al.*").
		ColumnExpr("COALESCE(u.username, '-') AS actor").
		Join("LEFT JOIN users AS u ON u.id = al.user_id").
		OrderExpr("al.created_at DESC, al.id DESC").
		Limit(f.Limit)
	if f.EntityType != "" {
		q = q.Where("al.entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("al.entity_id = ?", f.EntityID)
	}
	if f.UserID > 0 {
		q = q.Where("al.user_id = ?", f.UserID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return rows, nil
}

// EntityTypes lists the audited entity names.
func EntityTypes() []string {
	return []string{EntityWarehouse, EntityUser, EntityItem, EntityCategory, EntitySector, EntitySupplier, EntityConfig}
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal audit payload: %w", err)
	}
	return string(b), nil
}
