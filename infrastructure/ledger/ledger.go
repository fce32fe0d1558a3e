// Package ledger applies stock movements. Every balance change is written in
// the same transaction as exactly one movement row, so an item's balance
// always equals the signed sum of its movements.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/models"
)

// Observer receives movement outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	MovementRecorded(kind string)
	MovementRejected(kind, reason string)
}

type nopObserver struct{}

func (nopObserver) MovementRecorded(string)         {}
func (nopObserver) MovementRejected(string, string) {}

// Engine records entries, exits and adjustments against the item ledger.
type Engine struct {
	db       *sqlite.DB
	observer Observer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithClock overrides the movement timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(db *sqlite.DB, opts ...Option) *Engine {
	e := &Engine{db: db, observer: nopObserver{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EntryInput adds stock.
type EntryInput struct {
	ItemID     int64
	Quantity   float64
	Actor      access.Principal
	Note       string
	InvoiceRef string
}

// ExitInput removes stock towards a consuming sector.
type ExitInput struct {
	ItemID   int64
	Quantity float64
	Actor    access.Principal
	SectorID *int64
	Note     string
}

// AdjustmentInput sets the balance to an absolute value.
type AdjustmentInput struct {
	ItemID     int64
	NewBalance float64
	Actor      access.Principal
	Note       string
}

// Result describes a committed movement.
type Result struct {
	ItemID          int64
	MovementID      int64
	Kind            string
	Quantity        float64
	PreviousBalance float64
	NewBalance      float64
	Unit            string
}

// RecordEntry adds Quantity to the item balance.
func (e *Engine) RecordEntry(ctx context.Context, in EntryInput) (Result, error) {
	kind := models.MovementEntry
	if !positive(in.Quantity) {
		return e.reject(kind, models.ErrInvalidQuantity)
	}
	if err := authorize(in.Actor); err != nil {
		return e.reject(kind, err)
	}

	var res Result
	err := e.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		item, err := loadItem(ctx, tx, in.ItemID, in.Actor)
		if err != nil {
			return err
		}
		mv := &models.Movement{
			Kind:       kind,
			Quantity:   in.Quantity,
			Note:       strings.TrimSpace(in.Note),
			InvoiceRef: strings.TrimSpace(in.InvoiceRef),
		}
		res, err = e.apply(ctx, tx, item, mv, in.Actor, item.Balance+in.Quantity)
		return err
	})
	if err != nil {
		return e.reject(kind, err)
	}
	e.observer.MovementRecorded(kind)
	return res, nil
}

// RecordExit removes Quantity from the item balance. The balance never goes
// below zero; an oversized exit changes nothing and returns ErrInsufficientStock.
func (e *Engine) RecordExit(ctx context.Context, in ExitInput) (Result, error) {
	kind := models.MovementExit
	if !positive(in.Quantity) {
		return e.reject(kind, models.ErrInvalidQuantity)
	}
	if in.SectorID == nil || *in.SectorID <= 0 {
		return e.reject(kind, models.ErrMissingSector)
	}
	if err := authorize(in.Actor); err != nil {
		return e.reject(kind, err)
	}

	var res Result
	err := e.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		item, err := loadItem(ctx, tx, in.ItemID, in.Actor)
		if err != nil {
			return err
		}
		if err := sectorExists(ctx, tx, *in.SectorID); err != nil {
			return err
		}
		if in.Quantity > item.Balance {
			return fmt.Errorf("%w: requested %v %s, available %v", models.ErrInsufficientStock, in.Quantity, item.Unit, item.Balance)
		}
		mv := &models.Movement{
			Kind:     kind,
			Quantity: in.Quantity,
			Note:     strings.TrimSpace(in.Note),
			SectorID: in.SectorID,
		}
		res, err = e.apply(ctx, tx, item, mv, in.Actor, item.Balance-in.Quantity)
		return err
	})
	if err != nil {
		return e.reject(kind, err)
	}
	e.observer.MovementRecorded(kind)
	return res, nil
}

// RecordAdjustment sets the balance to NewBalance and records the delta.
// Negative targets are accepted for write-off corrections.
func (e *Engine) RecordAdjustment(ctx context.Context, in AdjustmentInput) (Result, error) {
	kind := models.MovementAdjustment
	if math.IsNaN(in.NewBalance) || math.IsInf(in.NewBalance, 0) {
		return e.reject(kind, models.ErrInvalidQuantity)
	}
	if err := authorize(in.Actor); err != nil {
		return e.reject(kind, err)
	}

	var res Result
	err := e.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		item, err := loadItem(ctx, tx, in.ItemID, in.Actor)
		if err != nil {
			return err
		}
		mv := &models.Movement{
			Kind:     kind,
			Quantity: in.NewBalance - item.Balance,
			Note:     strings.TrimSpace(in.Note),
		}
		res, err = e.apply(ctx, tx, item, mv, in.Actor, in.NewBalance)
		return err
	})
	if err != nil {
		return e.reject(kind, err)
	}
	e.observer.MovementRecorded(kind)
	return res, nil
}

func (e *Engine) apply(ctx context.Context, tx bun.Tx, item *models.Item, mv *models.Movement, actor access.Principal, newBalance float64) (Result, error) {
	mv.ItemID = item.ID
	mv.UserID = actor.UserID
	mv.CreatedAt = e.now().UTC()
	if _, err := tx.NewInsert().Model(mv).Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("insert movement: %w", err)
	}
	_, err := tx.NewUpdate().
		Model((*models.Item)(nil)).
		Set("balance = ?", newBalance).
		Where("id = ?", item.ID).
		Exec(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("update balance: %w", err)
	}
	return Result{
		ItemID:          item.ID,
		MovementID:      mv.ID,
		Kind:            mv.Kind,
		Quantity:        mv.Quantity,
		PreviousBalance: item.Balance,
		NewBalance:      newBalance,
		Unit:            item.Unit,
	}, nil
}

func (e *Engine) reject(kind string, err error) (Result, error) {
	e.observer.MovementRejected(kind, Reason(err))
	return Result{}, err
}

// Reason is a short metric label for a movement failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, models.ErrMissingSector):
		return "missing_sector"
	case errors.Is(err, models.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func authorize(actor access.Principal) error {
	if actor.UserID <= 0 || !actor.Capabilities().ManageStock {
		return models.ErrPermissionDenied
	}
	return nil
}

func positive(q float64) bool {
	return q > 0 && !math.IsInf(q, 1)
}

func loadItem(ctx context.Context, tx bun.Tx, id int64, actor access.Principal) (*models.Item, error) {
	item := new(models.Item)
	err := tx.NewSelect().Model(item).Where("i.id = ?", id).Where("i.active = ?", true).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load item %d: %w", id, err)
	}
	if !access.Resolve(actor).Allows(item.WarehouseID) {
		return nil, models.ErrPermissionDenied
	}
	return item, nil
}

func sectorExists(ctx context.Context, tx bun.Tx, id int64) error {
	exists, err := tx.NewSelect().
		Model((*models.Sector)(nil)).
		Where("sec.id = ?", id).
		Where("sec.active = ?", true).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("load sector %d: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("sector %d: %w", id, models.ErrNotFound)
	}
	return nil
}
