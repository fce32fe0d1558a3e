package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// WarehouseInput is the editable part of a warehouse.
type WarehouseInput struct {
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description" validate:"max=500"`
	Address     string `form:"address" validate:"max=255"`
	Responsible string `form:"responsible" validate:"max=120"`
	Phone       string `form:"phone" validate:"max=40"`
}

func (in WarehouseInput) normalize() WarehouseInput {
	in.Name = clean(in.Name)
	in.Description = clean(in.Description)
	in.Address = clean(in.Address)
	in.Responsible = clean(in.Responsible)
	in.Phone = clean(in.Phone)
	return in
}

// WarehouseView adds usage counters for listings.
type WarehouseView struct {
	models.Warehouse `bun:",extend"`

	UserCount int `bun:"user_count"`
	ItemCount int `bun:"item_count"`
}

func (s *Store) CreateWarehouse(ctx context.Context, actor access.Principal, in WarehouseInput) (models.Warehouse, error) {
	if err := requireCap(actor, access.CapManageWarehouses); err != nil {
		return models.Warehouse{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Warehouse{}, err
	}

	w := models.Warehouse{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Responsible: in.Responsible,
		Phone:       in.Phone,
		Active:      true,
		CreatedAt:   s.now().UTC(),
	}
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := duplicateName(ctx, tx, (*models.Warehouse)(nil), "name", w.Name, 0); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&w).Exec(ctx); err != nil {
			return fmt.Errorf("insert warehouse: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntityWarehouse, w.ID, nil, w)
	})
	return w, err
}

func (s *Store) UpdateWarehouse(ctx context.Context, actor access.Principal, id int64, in WarehouseInput) (models.Warehouse, error) {
	if err := requireCap(actor, access.CapManageWarehouses); err != nil {
		return models.Warehouse{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Warehouse{}, err
	}

	var after models.Warehouse
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getWarehouse(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := duplicateName(ctx, tx, (*models.Warehouse)(nil), "name", in.Name, id); err != nil {
			return err
		}
		after = before
		after.Name = in.Name
		after.Description = in.Description
		after.Address = in.Address
		after.Responsible = in.Responsible
		after.Phone = in.Phone
		if _, err := tx.NewUpdate().Model(&after).
			Column("name", "description", "address", "responsible", "phone").
			WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update warehouse: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityWarehouse, id, before, after)
	})
	return after, err
}

// SetWarehouseActive toggles the soft-delete flag. Only super_admin may do this.
func (s *Store) SetWarehouseActive(ctx context.Context, actor access.Principal, id int64, active bool) error {
	if actor.UserID <= 0 || actor.Level != models.LevelSuperAdmin {
		return models.ErrPermissionDenied
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getWarehouse(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*models.Warehouse)(nil)).
			Set("active = ?", active).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("set warehouse active: %w", err)
		}
		after := before
		after.Active = active
		action := audit.ActionDeactivate
		if active {
			action = audit.ActionActivate
		}
		return s.audit.Write(ctx, tx, actor.UserID, action, audit.EntityWarehouse, id, before, after)
	})
}

// DeleteWarehouse removes a warehouse nothing references. Only super_admin
// may do this. The reference check and the delete share one transaction.
func (s *Store) DeleteWarehouse(ctx context.Context, actor access.Principal, id int64) error {
	if actor.UserID <= 0 || actor.Level != models.LevelSuperAdmin {
		return models.ErrPermissionDenied
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getWarehouse(ctx, tx, id)
		if err != nil {
			return err
		}
		users, err := tx.NewSelect().Model((*models.User)(nil)).Where("u.warehouse_id = ?", id).Count(ctx)
		if err != nil {
			return err
		}
		items, err := tx.NewSelect().Model((*models.Item)(nil)).Where("i.warehouse_id = ?", id).Count(ctx)
		if err != nil {
			return err
		}
		if users > 0 || items > 0 {
			return fmt.Errorf("%w: %d users, %d items", models.ErrWarehouseInUse, users, items)
		}
		if _, err := tx.NewDelete().Model((*models.Warehouse)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete warehouse: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionDelete, audit.EntityWarehouse, id, before, nil)
	})
}

// GetWarehouse loads one warehouse visible in scope.
func (s *Store) GetWarehouse(ctx context.Context, scope access.Scope, id int64) (models.Warehouse, error) {
	var w models.Warehouse
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		w, err = getWarehouse(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Warehouse{}, err
	}
	if !scope.Allows(w.ID) {
		return models.Warehouse{}, models.ErrPermissionDenied
	}
	return w, nil
}

// ListWarehouses returns warehouses visible in scope, active only unless includeInactive.
func (s *Store) ListWarehouses(ctx context.Context, scope access.Scope, includeInactive bool) ([]WarehouseView, error) {
	rows := make([]WarehouseView, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			Model(&rows).
			ColumnExpr("w.*").
			ColumnExpr("(SELECT COUNT(*) FROM users u WHERE u.warehouse_id = w.id AND u.active = 1) AS user_count").
			ColumnExpr("(SELECT COUNT(*) FROM items i WHERE i.warehouse_id = w.id AND i.active = 1) AS item_count").
			OrderExpr("w.name ASC")
		if !includeInactive {
			q = q.Where("w.active = ?", true)
		}
		return scope.Apply(q, "w.id").Scan(ctx)
	})
	return rows, err
}

func getWarehouse(ctx context.Context, tx bun.IDB, id int64) (models.Warehouse, error) {
	var w models.Warehouse
	err := tx.NewSelect().Model(&w).Where("w.id = ?", id).Scan(ctx)
	return w, notFound(err, "warehouse")
}
