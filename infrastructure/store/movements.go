package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
)

// MovementView is a ledger row joined with its item, user, sector and warehouse.
type MovementView struct {
	ID            int64     `bun:"id" json:"id"`
	Kind          string    `bun:"kind" json:"kind"`
	Quantity      float64   `bun:"quantity" json:"quantity"`
	Note          string    `bun:"note" json:"note"`
	InvoiceRef    string    `bun:"invoice_ref" json:"invoice_ref"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
	ItemID        int64     `bun:"item_id" json:"item_id"`
	ItemName      string    `bun:"item_name" json:"item_name"`
	Barcode       string    `bun:"barcode" json:"barcode"`
	Lot           string    `bun:"lot" json:"lot"`
	Unit          string    `bun:"unit" json:"unit"`
	WarehouseID   int64     `bun:"warehouse_id" json:"warehouse_id"`
	WarehouseName string    `bun:"warehouse_name" json:"warehouse_name"`
	UserName      string    `bun:"user_name" json:"user_name"`
	SectorName    string    `bun:"sector_name" json:"sector_name"`
}

// MovementFilter narrows ListMovements. From is inclusive, To exclusive.
type MovementFilter struct {
	WarehouseID *int64
	ItemID      int64
	Kind        string
	SectorID    *int64
	From        *time.Time
	To          *time.Time
	Page        int
	PerPage     int
}

// ListMovements returns one page of movements, newest first, visible in scope.
func (s *Store) ListMovements(ctx context.Context, scope access.Scope, f MovementFilter) (Page[MovementView], error) {
	page, perPage := normalizePage(f.Page, f.PerPage)
	out := Page[MovementView]{Rows: make([]MovementView, 0), Page: page, PerPage: perPage}
	scope = scope.Narrow(f.WarehouseID)

	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := scope.Apply(MovementViewQuery(tx), "i.warehouse_id")
		if f.ItemID > 0 {
			q = q.Where("m.item_id = ?", f.ItemID)
		}
		if f.Kind != "" {
			q = q.Where("m.kind = ?", f.Kind)
		}
		if f.SectorID != nil && *f.SectorID > 0 {
			q = q.Where("m.sector_id = ?", *f.SectorID)
		}
		if f.From != nil {
			q = q.Where("julianday(m.created_at) >= julianday(?)", f.From.UTC())
		}
		if f.To != nil {
			q = q.Where("julianday(m.created_at) < julianday(?)", f.To.UTC())
		}
		total, err := q.Count(ctx)
		if err != nil {
			return fmt.Errorf("count movements: %w", err)
		}
		out.Total = total
		return q.OrderExpr("m.created_at DESC, m.id DESC").
			Limit(perPage).
			Offset((page-1)*perPage).
			Scan(ctx, &out.Rows)
	})
	return out, err
}

// MovementViewQuery selects MovementView columns; callers add scope and filters.
func MovementViewQuery(tx bun.IDB) *bun.SelectQuery {
	return tx.NewSelect().
		TableExpr("movements AS m").
		ColumnExpr("m.id, m.kind, m.quantity, m.note, m.invoice_ref, m.created_at, m.item_id").
		ColumnExpr("i.name AS item_name, i.barcode, i.lot, i.unit, i.warehouse_id").
		ColumnExpr("w.name AS warehouse_name, u.name AS user_name").
		ColumnExpr("COALESCE(sec.name, '') AS sector_name").
		Join("JOIN items AS i ON i.id = m.item_id").
		Join("JOIN warehouses AS w ON w.id = i.warehouse_id").
		Join("JOIN users AS u ON u.id = m.user_id").
		Join("LEFT JOIN sectors AS sec ON sec.id = m.sector_id")
}
