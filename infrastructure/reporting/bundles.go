package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

// Dashboard is everything the landing page shows.
type Dashboard struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	TotalItems   int                  `json:"total_items"`
	Counts       AlertCounts          `json:"counts"`
	LowStock     []StockAlert         `json:"low_stock"`
	Expired      []ExpiryAlert        `json:"expired"`
	ExpiringSoon []ExpiryAlert        `json:"expiring_soon"`
	Recent       []store.MovementView `json:"recent"`
}

// Stats is the JSON payload behind the dashboard charts.
type Stats struct {
	ItemsByCategory     []CategoryCount     `json:"items_by_category"`
	MovementsByDay      []DailyMovements    `json:"movements_by_day"`
	MovementsByKind     []KindTotal         `json:"movements_by_kind"`
	ConsumptionBySector []SectorConsumption `json:"consumption_by_sector"`
	ExpiringSoonCount   int                 `json:"expiring_soon_count"`
}

// StockReport is the current stock position.
type StockReport struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	Items        []store.ItemView `json:"items"`
	BelowMinimum int              `json:"below_minimum"`
	Expired      int              `json:"expired"`
}

// MovementReport covers movements in [From, To).
type MovementReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	From        time.Time            `json:"from"`
	To          time.Time            `json:"to"`
	Rows        []store.MovementView `json:"rows"`
	Truncated   bool                 `json:"truncated"`
	Totals      []KindTotal          `json:"totals"`
}

func (p *Projector) Dashboard(ctx context.Context, scope access.Scope, now time.Time) (Dashboard, error) {
	d := Dashboard{GeneratedAt: now}
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		d.TotalItems, err = scope.Apply(tx.NewSelect().TableExpr("items AS i").Where("i.active = ?", true), "i.warehouse_id").Count(ctx)
		return err
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("count items: %w", err)
	}
	if d.Counts, err = p.Alerts(ctx, scope, now); err != nil {
		return Dashboard{}, err
	}
	if d.LowStock, err = p.LowStock(ctx, scope, 0); err != nil {
		return Dashboard{}, err
	}
	if d.Expired, err = p.Expired(ctx, scope, now, 0); err != nil {
		return Dashboard{}, err
	}
	if d.ExpiringSoon, err = p.ExpiringSoon(ctx, scope, now, 0); err != nil {
		return Dashboard{}, err
	}
	if d.Recent, err = p.RecentMovements(ctx, scope, DashboardRecent); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (p *Projector) Stats(ctx context.Context, scope access.Scope, now time.Time) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.ItemsByCategory, err = p.ItemsByCategory(ctx, scope); err != nil {
		return Stats{}, err
	}
	if s.MovementsByDay, err = p.MovementsByDay(ctx, scope, now); err != nil {
		return Stats{}, err
	}
	if s.MovementsByKind, err = p.MovementsByKind(ctx, scope, now); err != nil {
		return Stats{}, err
	}
	if s.ConsumptionBySector, err = p.ConsumptionBySector(ctx, scope, now); err != nil {
		return Stats{}, err
	}
	counts, err := p.Alerts(ctx, scope, now)
	if err != nil {
		return Stats{}, err
	}
	s.ExpiringSoonCount = counts.ExpiringSoon
	return s, nil
}

// StockReport lists every active item in scope ordered by warehouse and name.
func (p *Projector) StockReport(ctx context.Context, scope access.Scope, now time.Time) (StockReport, error) {
	r := StockReport{GeneratedAt: now, Items: make([]store.ItemView, 0)}
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return scope.Apply(store.ItemViewQuery(tx), "i.warehouse_id").
			Where("i.active = ?", true).
			OrderExpr("w.name ASC, i.name ASC, i.lot ASC").
			Scan(ctx, &r.Items)
	})
	if err != nil {
		return StockReport{}, fmt.Errorf("stock report: %w", err)
	}
	for _, it := range r.Items {
		if it.Balance < it.MinStock {
			r.BelowMinimum++
		}
		if it.ExpiryDate != nil && it.ExpiryStatus(now) == models.ExpiryExpired {
			r.Expired++
		}
	}
	return r, nil
}

// MovementReport lists up to ReportRecent movements in [from, to), newest first,
// with per-kind totals over the whole range.
func (p *Projector) MovementReport(ctx context.Context, scope access.Scope, from, to, now time.Time) (MovementReport, error) {
	r := MovementReport{GeneratedAt: now, From: from, To: to, Rows: make([]store.MovementView, 0)}
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rows := scope.Apply(store.MovementViewQuery(tx), "i.warehouse_id").
			Where("julianday(m.created_at) >= julianday(?)", from.UTC()).
			Where("julianday(m.created_at) < julianday(?)", to.UTC()).
			OrderExpr("m.created_at DESC, m.id DESC").
			Limit(ReportRecent + 1)
		if err := rows.Scan(ctx, &r.Rows); err != nil {
			return err
		}
		totals := tx.NewSelect().
			TableExpr("movements AS m").
			ColumnExpr("m.kind AS kind").
			ColumnExpr("COUNT(*) AS count").
			ColumnExpr("SUM(m.quantity) AS quantity").
			Join("JOIN items AS i ON i.id = m.item_id").
			Where("julianday(m.created_at) >= julianday(?)", from.UTC()).
			Where("julianday(m.created_at) < julianday(?)", to.UTC()).
			GroupExpr("m.kind").
			OrderExpr("m.kind ASC")
		return scope.Apply(totals, "i.warehouse_id").Scan(ctx, &r.Totals)
	})
	if err != nil {
		return MovementReport{}, fmt.Errorf("movement report: %w", err)
	}
	if len(r.Rows) > ReportRecent {
		r.Rows = r.Rows[:ReportRecent]
		r.Truncated = true
	}
	return r, nil
}

// MovementsBetween returns every movement in [from, to), oldest first.
func (p *Projector) MovementsBetween(ctx context.Context, scope access.Scope, from, to time.Time) ([]store.MovementView, error) {
	rows := make([]store.MovementView, 0)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return scope.Apply(store.MovementViewQuery(tx), "i.warehouse_id").
			Where("julianday(m.created_at) >= julianday(?)", from.UTC()).
			Where("julianday(m.created_at) < julianday(?)", to.UTC()).
			OrderExpr("m.created_at ASC, m.id ASC").
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("movements between: %w", err)
	}
	return rows, nil
}
