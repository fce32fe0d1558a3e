package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// ItemInput is the editable part of an item. WarehouseID is only honoured
// for unrestricted actors; scoped actors always write to their home warehouse.
type ItemInput struct {
	Barcode     string     `form:"barcode" validate:"required,max=64"`
	Name        string     `form:"name" validate:"required,max=200"`
	Description string     `form:"description" validate:"max=1000"`
	Brand       string     `form:"brand" validate:"max=120"`
	Unit        string     `form:"unit" validate:"required,max=20"`
	MinStock    float64    `form:"min_stock" validate:"gte=0"`
	Lot         string     `form:"lot" validate:"required,max=64"`
	ExpiryDate  *time.Time `form:"expiry_date"`
	CategoryID  *int64     `form:"category_id"`
	WarehouseID *int64     `form:"warehouse_id"`
}

func (in ItemInput) normalize() ItemInput {
	in.Barcode = clean(in.Barcode)
	in.Name = clean(in.Name)
	in.Description = clean(in.Description)
	in.Brand = clean(in.Brand)
	in.Unit = clean(in.Unit)
	in.Lot = clean(in.Lot)
	if in.ExpiryDate != nil {
		d := models.DateOnly(*in.ExpiryDate)
		in.ExpiryDate = &d
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		in.CategoryID = nil
	}
	if in.WarehouseID != nil && *in.WarehouseID <= 0 {
		in.WarehouseID = nil
	}
	return in
}

// ItemView is an item joined with its category and warehouse names.
type ItemView struct {
	ID            int64      `bun:"id" json:"id"`
	Barcode       string     `bun:"barcode" json:"barcode"`
	Name          string     `bun:"name" json:"name"`
	Description   string     `bun:"description" json:"description"`
	Brand         string     `bun:"brand" json:"brand"`
	Unit          string     `bun:"unit" json:"unit"`
	MinStock      float64    `bun:"min_stock" json:"min_stock"`
	Balance       float64    `bun:"balance" json:"balance"`
	Lot           string     `bun:"lot" json:"lot"`
	ExpiryDate    *time.Time `bun:"expiry_date" json:"expiry_date,omitempty"`
	CategoryID    *int64     `bun:"category_id" json:"category_id,omitempty"`
	CategoryName  string     `bun:"category_name" json:"category_name"`
	WarehouseID   int64      `bun:"warehouse_id" json:"warehouse_id"`
	WarehouseName string     `bun:"warehouse_name" json:"warehouse_name"`
	Active        bool       `bun:"active" json:"active"`
	CreatedAt     time.Time  `bun:"created_at" json:"created_at"`
}

// Status of the item balance against its minimum.
func (v ItemView) Status() string {
	return models.StockStatus(v.Balance, v.MinStock)
}

// ExpiryStatus relative to today.
func (v ItemView) ExpiryStatus(today time.Time) string {
	return models.ExpiryStatus(v.ExpiryDate, today)
}

// ItemFilter narrows ListItems. WarehouseID is a selector applied through
// access.Scope.Narrow, so it cannot widen a scoped user's view.
type ItemFilter struct {
	WarehouseID     *int64
	CategoryID      *int64
	Query           string
	BelowMinimum    bool
	IncludeInactive bool
	Page            int
	PerPage         int
}

// resolveItemWarehouse picks the warehouse an item write goes to.
func resolveItemWarehouse(actor access.Principal, requested *int64) (int64, error) {
	if !access.Unrestricted(actor.Level) {
		if actor.WarehouseID == nil || *actor.WarehouseID <= 0 {
			return 0, models.ErrPermissionDenied
		}
		return *actor.WarehouseID, nil
	}
	if requested == nil {
		return 0, validation.Field("warehouse_id", "is required")
	}
	return *requested, nil
}

func checkItemRefs(ctx context.Context, tx bun.IDB, warehouseID int64, categoryID *int64) error {
	ok, err := exists(ctx, tx, (*models.Warehouse)(nil), "w.id = ? AND w.active = ?", warehouseID, true)
	if err != nil {
		return err
	}
	if !ok {
		return validation.Field("warehouse_id", "does not exist")
	}
	if categoryID != nil {
		ok, err := exists(ctx, tx, (*models.Category)(nil), "c.id = ?", *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return validation.Field("category_id", "does not exist")
		}
	}
	return nil
}

func duplicateItem(ctx context.Context, tx bun.IDB, barcode, lot string, warehouseID, excludeID int64) error {
	q := tx.NewSelect().Model((*models.Item)(nil)).
		Where("i.barcode = ?", barcode).
		Where("i.lot = ?", lot).
		Where("i.warehouse_id = ?", warehouseID)
	if excludeID > 0 {
		q = q.Where("i.id <> ?", excludeID)
	}
	found, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: barcode %q lot %q already registered in this warehouse", models.ErrDuplicate, barcode, lot)
	}
	return nil
}

// CreateItem registers a new stock line with a zero balance. Stock arrives
// through ledger entries.
func (s *Store) CreateItem(ctx context.Context, actor access.Principal, in ItemInput) (models.Item, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Item{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Item{}, err
	}
	warehouseID, err := resolveItemWarehouse(actor, in.WarehouseID)
	if err != nil {
		return models.Item{}, err
	}

	item := models.Item{
		Barcode:     in.Barcode,
		Name:        in.Name,
		Description: in.Description,
		Brand:       in.Brand,
		Unit:        in.Unit,
		MinStock:    in.MinStock,
		Lot:         in.Lot,
		ExpiryDate:  in.ExpiryDate,
		CategoryID:  in.CategoryID,
		WarehouseID: warehouseID,
		Active:      true,
		CreatedAt:   s.now().UTC(),
	}
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := checkItemRefs(ctx, tx, warehouseID, in.CategoryID); err != nil {
			return err
		}
		if err := duplicateItem(ctx, tx, item.Barcode, item.Lot, warehouseID, 0); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntityItem, item.ID, nil, item)
	})
	return item, err
}

// UpdateItem edits descriptive fields. Balance is never touched here.
func (s *Store) UpdateItem(ctx context.Context, actor access.Principal, id int64, in ItemInput) (models.Item, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Item{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Item{}, err
	}

	var after models.Item
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if !access.Resolve(actor).Allows(before.WarehouseID) {
			return models.ErrPermissionDenied
		}
		warehouseID := before.WarehouseID
		if access.Unrestricted(actor.Level) && in.WarehouseID != nil {
			warehouseID = *in.WarehouseID
		}
		if err := checkItemRefs(ctx, tx, warehouseID, in.CategoryID); err != nil {
			return err
		}
		if err := duplicateItem(ctx, tx, in.Barcode, in.Lot, warehouseID, id); err != nil {
			return err
		}
		after = before
		after.Barcode = in.Barcode
		after.Name = in.Name
		after.Description = in.Description
		after.Brand = in.Brand
		after.Unit = in.Unit
		after.MinStock = in.MinStock
		after.Lot = in.Lot
		after.ExpiryDate = in.ExpiryDate
		after.CategoryID = in.CategoryID
		after.WarehouseID = warehouseID
		if _, err := tx.NewUpdate().Model(&after).
			Column("barcode", "name", "description", "brand", "unit", "min_stock", "lot", "expiry_date", "category_id", "warehouse_id").
			WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityItem, id, before, after)
	})
	return after, err
}

// DeactivateItem soft-deletes an item; its movements stay in the ledger.
func (s *Store) DeactivateItem(ctx context.Context, actor access.Principal, id int64) error {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if !access.Resolve(actor).Allows(before.WarehouseID) {
			return models.ErrPermissionDenied
		}
		if _, err := tx.NewUpdate().Model((*models.Item)(nil)).Set("active = ?", false).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("deactivate item: %w", err)
		}
		after := before
		after.Active = false
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionDeactivate, audit.EntityItem, id, before, after)
	})
}

// GetItem loads one active item visible in scope.
func (s *Store) GetItem(ctx context.Context, scope access.Scope, id int64) (ItemView, error) {
	var rows []ItemView
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return ItemViewQuery(tx).Where("i.id = ?", id).Where("i.active = ?", true).Scan(ctx, &rows)
	})
	if err != nil {
		return ItemView{}, err
	}
	if len(rows) == 0 {
		return ItemView{}, models.ErrItemNotFound
	}
	if !scope.Allows(rows[0].WarehouseID) {
		return ItemView{}, models.ErrPermissionDenied
	}
	return rows[0], nil
}

// ListItems returns one page of items visible in scope.
func (s *Store) ListItems(ctx context.Context, scope access.Scope, f ItemFilter) (Page[ItemView], error) {
	page, perPage := normalizePage(f.Page, f.PerPage)
	out := Page[ItemView]{Rows: make([]ItemView, 0), Page: page, PerPage: perPage}
	scope = scope.Narrow(f.WarehouseID)

	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := scope.Apply(ItemViewQuery(tx), "i.warehouse_id")
		if !f.IncludeInactive {
			q = q.Where("i.active = ?", true)
		}
		if f.CategoryID != nil && *f.CategoryID > 0 {
			q = q.Where("i.category_id = ?", *f.CategoryID)
		}
		if f.BelowMinimum {
			q = q.Where("i.balance < i.min_stock")
		}
		if term := clean(f.Query); term != "" {
			pattern := likePattern(term)
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where(`LOWER(i.barcode) LIKE ? ESCAPE '\'`, pattern).
					WhereOr(`LOWER(i.name) LIKE ? ESCAPE '\'`, pattern).
					WhereOr(`LOWER(i.lot) LIKE ? ESCAPE '\'`, pattern)
			})
		}
		total, err := q.Count(ctx)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		out.Total = total
		return q.OrderExpr("i.name ASC, i.lot ASC, i.id ASC").
			Limit(perPage).
			Offset((page-1)*perPage).
			Scan(ctx, &out.Rows)
	})
	return out, err
}

// SearchItems matches barcode, name or lot within scope.
func (s *Store) SearchItems(ctx context.Context, scope access.Scope, term string, limit int) ([]ItemView, error) {
	if clean(term) == "" {
		return []ItemView{}, nil
	}
	page, err := s.ListItems(ctx, scope, ItemFilter{Query: term, PerPage: limit})
	return page.Rows, err
}

// ItemViewQuery selects ItemView columns; callers add scope and filters.
func ItemViewQuery(tx bun.IDB) *bun.SelectQuery {
	return tx.NewSelect().
		TableExpr("items AS i").
		ColumnExpr("i.id, i.barcode, i.name, i.description, i.brand, i.unit, i.min_stock, i.balance, i.lot").
		ColumnExpr("i.expiry_date, i.category_id, i.warehouse_id, i.active, i.created_at").
		ColumnExpr("COALESCE(c.name, '') AS category_name").
		ColumnExpr("w.name AS warehouse_name").
		Join("LEFT JOIN categories AS c ON c.id = i.category_id").
		Join("JOIN warehouses AS w ON w.id = i.warehouse_id")
}

func getItem(ctx context.Context, tx bun.IDB, id int64) (models.Item, error) {
	var item models.Item
	err := tx.NewSelect().Model(&item).Where("i.id = ?", id).Where("i.active = ?", true).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, models.ErrItemNotFound
	}
	return item, err
}
