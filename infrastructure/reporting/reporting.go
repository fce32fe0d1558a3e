// Package reporting builds read-only summaries of stock and movements.
// Every query is filtered by the caller's access.Scope.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

const (
	DashboardRecent = 10
	ReportRecent    = 100
	TrailingDays    = 30
	alertLimit      = 50
)

// Projector runs reporting queries on the read pool.
type Projector struct {
	db *sqlite.DB
}

func NewProjector(db *sqlite.DB) *Projector {
	return &Projector{db: db}
}

// StockAlert is an item below its minimum.
type StockAlert struct {
	store.ItemView
	Critical bool `json:"critical"`
}

// ExpiryAlert is an item past or near its expiry date.
type ExpiryAlert struct {
	store.ItemView
	DaysLeft int `json:"days_left"`
}

// CategoryCount is the number of active items per category.
type CategoryCount struct {
	Category string `bun:"category" json:"category"`
	Count    int    `bun:"count" json:"count"`
}

// SectorConsumption is the exit quantity per sector.
type SectorConsumption struct {
	Sector   string  `bun:"sector" json:"sector"`
	Quantity float64 `bun:"quantity" json:"quantity"`
	Count    int     `bun:"count" json:"count"`
}

// KindTotal aggregates movements of one kind.
type KindTotal struct {
	Kind     string  `bun:"kind" json:"kind"`
	Count    int     `bun:"count" json:"count"`
	Quantity float64 `bun:"quantity" json:"quantity"`
}

// DailyMovements counts movements per day and kind.
type DailyMovements struct {
	Day   string `bun:"day" json:"day"`
	Kind  string `bun:"kind" json:"kind"`
	Count int    `bun:"count" json:"count"`
}

func dateParam(t time.Time) string {
	return models.DateOnly(t).Format("2006-01-02")
}

// LowStock lists active items with balance below their minimum, worst first.
func (p *Projector) LowStock(ctx context.Context, scope access.Scope, limit int) ([]StockAlert, error) {
	if limit <= 0 {
		limit = alertLimit
	}
	var rows []store.ItemView
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return scope.Apply(store.ItemViewQuery(tx), "i.warehouse_id").
			Where("i.active = ?", true).
			Apply(belowMinimum).
			OrderExpr("CASE WHEN i.min_stock > 0 THEN i.balance / i.min_stock ELSE 0 END ASC, i.name ASC").
			Limit(limit).
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	out := make([]StockAlert, 0, len(rows))
	for _, r := range rows {
		status := r.Status()
		out = append(out, StockAlert{ItemView: r, Critical: status == models.StockCritical || status == models.StockZero})
	}
	return out, nil
}

// Expired lists active items whose expiry date is before today.
func (p *Projector) Expired(ctx context.Context, scope access.Scope, today time.Time, limit int) ([]ExpiryAlert, error) {
	return p.expiry(ctx, scope, today, limit, expiredBy(today))
}

// ExpiringSoon lists active items expiring between today and today+30 inclusive.
func (p *Projector) ExpiringSoon(ctx context.Context, scope access.Scope, today time.Time, limit int) ([]ExpiryAlert, error) {
	return p.expiry(ctx, scope, today, limit, expiringFrom(today))
}

// AlertCounts are the uncapped totals behind the dashboard alert lists.
type AlertCounts struct {
	BelowMinimum int `json:"below_minimum"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}

// Alerts counts every active item in scope per alert kind.
func (p *Projector) Alerts(ctx context.Context, scope access.Scope, today time.Time) (AlertCounts, error) {
	var c AlertCounts
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		count := func(filter func(*bun.SelectQuery) *bun.SelectQuery) (int, error) {
			q := tx.NewSelect().TableExpr("items AS i").Where("i.active = ?", true)
			return scope.Apply(q, "i.warehouse_id").Apply(filter).Count(ctx)
		}
		var err error
		if c.BelowMinimum, err = count(belowMinimum); err != nil {
			return err
		}
		if c.Expired, err = count(expiredBy(today)); err != nil {
			return err
		}
		c.ExpiringSoon, err = count(expiringFrom(today))
		return err
	})
	if err != nil {
		return AlertCounts{}, fmt.Errorf("alert counts: %w", err)
	}
	return c, nil
}

func belowMinimum(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("i.balance < i.min_stock")
}

func expiredBy(today time.Time) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.expiry_date IS NOT NULL").Where("date(i.expiry_date) < ?", dateParam(today))
	}
}

func expiringFrom(today time.Time) func(*bun.SelectQuery) *bun.SelectQuery {
	until := models.DateOnly(today).AddDate(0, 0, models.ExpiryWarnDays)
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("i.expiry_date IS NOT NULL").
			Where("date(i.expiry_date) >= ?", dateParam(today)).
			Where("date(i.expiry_date) <= ?", dateParam(until))
	}
}

func (p *Projector) expiry(ctx context.Context, scope access.Scope, today time.Time, limit int, window func(*bun.SelectQuery) *bun.SelectQuery) ([]ExpiryAlert, error) {
	if limit <= 0 {
		limit = alertLimit
	}
	var rows []store.ItemView
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := scope.Apply(store.ItemViewQuery(tx), "i.warehouse_id").
			Where("i.active = ?", true)
		return window(q).OrderExpr("i.expiry_date ASC, i.name ASC").Limit(limit).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("expiry alerts: %w", err)
	}
	out := make([]ExpiryAlert, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExpiryAlert{ItemView: r, DaysLeft: models.DaysBetween(today, *r.ExpiryDate)})
	}
	return out, nil
}

// RecentMovements returns the newest n movements in scope.
func (p *Projector) RecentMovements(ctx context.Context, scope access.Scope, n int) ([]store.MovementView, error) {
	if n <= 0 {
		n = DashboardRecent
	}
	rows := make([]store.MovementView, 0, n)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return scope.Apply(store.MovementViewQuery(tx), "i.warehouse_id").
			OrderExpr("m.created_at DESC, m.id DESC").
			Limit(n).
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("recent movements: %w", err)
	}
	return rows, nil
}

// ItemsByCategory counts active items per category; uncategorised items are
// reported under an empty name.
func (p *Projector) ItemsByCategory(ctx context.Context, scope access.Scope) ([]CategoryCount, error) {
	rows := make([]CategoryCount, 0)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			TableExpr("items AS i").
			ColumnExpr("COALESCE(c.name, '') AS category").
			ColumnExpr("COUNT(*) AS count").
			Join("LEFT JOIN categories AS c ON c.id = i.category_id").
			Where("i.active = ?", true).
			GroupExpr("COALESCE(c.name, '')").
			OrderExpr("count DESC, category ASC")
		return scope.Apply(q, "i.warehouse_id").Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("items by category: %w", err)
	}
	return rows, nil
}

// ConsumptionBySector sums exits per sector over the trailing window ending at now.
func (p *Projector) ConsumptionBySector(ctx context.Context, scope access.Scope, now time.Time) ([]SectorConsumption, error) {
	since := now.AddDate(0, 0, -TrailingDays).UTC()
	rows := make([]SectorConsumption, 0)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			TableExpr("movements AS m").
			ColumnExpr("sec.name AS sector").
			ColumnExpr("SUM(m.quantity) AS quantity").
			ColumnExpr("COUNT(*) AS count").
			Join("JOIN items AS i ON i.id = m.item_id").
			Join("JOIN sectors AS sec ON sec.id = m.sector_id").
			Where("m.kind = ?", models.MovementExit).
			Where("julianday(m.created_at) >= julianday(?)", since).
			GroupExpr("sec.id, sec.name").
			OrderExpr("quantity DESC, sector ASC")
		return scope.Apply(q, "i.warehouse_id").Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("consumption by sector: %w", err)
	}
	return rows, nil
}

// MovementsByKind totals movements per kind over the trailing window.
func (p *Projector) MovementsByKind(ctx context.Context, scope access.Scope, now time.Time) ([]KindTotal, error) {
	since := now.AddDate(0, 0, -TrailingDays).UTC()
	rows := make([]KindTotal, 0)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			TableExpr("movements AS m").
			ColumnExpr("m.kind AS kind").
			ColumnExpr("COUNT(*) AS count").
			ColumnExpr("SUM(m.quantity) AS quantity").
			Join("JOIN items AS i ON i.id = m.item_id").
			Where("julianday(m.created_at) >= julianday(?)", since).
			GroupExpr("m.kind").
			OrderExpr("m.kind ASC")
		return scope.Apply(q, "i.warehouse_id").Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("movements by kind: %w", err)
	}
	return rows, nil
}

// MovementsByDay counts movements per calendar day and kind over the trailing window.
func (p *Projector) MovementsByDay(ctx context.Context, scope access.Scope, now time.Time) ([]DailyMovements, error) {
	since := now.AddDate(0, 0, -TrailingDays).UTC()
	rows := make([]DailyMovements, 0)
	err := p.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			TableExpr("movements AS m").
			ColumnExpr("date(m.created_at) AS day").
			ColumnExpr("m.kind AS kind").
			ColumnExpr("COUNT(*) AS count").
			Join("JOIN items AS i ON i.id = m.item_id").
			Where("julianday(m.created_at) >= julianday(?)", since).
			GroupExpr("date(m.created_at), m.kind").
			OrderExpr("day ASC, kind ASC")
		return scope.Apply(q, "i.warehouse_id").Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("movements by day: %w", err)
	}
	return rows, nil
}
