package ledger

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/models"
)

type fixture struct {
	db      *sqlite.DB
	engine  *Engine
	main    int64
	other   int64
	sector  int64
	item    int64
	admin   access.Principal
	clerk   access.Principal
	foreign access.Principal
	viewer  access.Principal
}

type recordingObserver struct {
	recorded []string
	rejected []string
}

func (o *recordingObserver) MovementRecorded(kind string) { o.recorded = append(o.recorded, kind) }
func (o *recordingObserver) MovementRejected(kind, reason string) {
	o.rejected = append(o.rejected, kind+":"+reason)
}

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime caller unavailable")
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	require.NoError(t, sqlite.ApplyMigrations(context.Background(), db, migrationsDir))
	return db
}

func insert(t *testing.T, db *sqlite.DB, model any) {
	t.Helper()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(model).Exec(ctx)
		return err
	})
	require.NoError(t, err)
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := openTestDB(t)

	main := &models.Warehouse{Name: "Main", Active: true}
	other := &models.Warehouse{Name: "Annex", Active: true}
	insert(t, db, main)
	insert(t, db, other)

	sector := &models.Sector{Name: "UTI", Active: true}
	insert(t, db, sector)

	users := []*models.User{
		{Name: "Admin", Username: "admin", PasswordHash: "x", AccessLevel: models.LevelAdmin, Active: true},
		{Name: "Clerk", Username: "clerk", PasswordHash: "x", AccessLevel: models.LevelStockClerk, WarehouseID: &main.ID, Active: true},
		{Name: "Foreign", Username: "foreign", PasswordHash: "x", AccessLevel: models.LevelStockClerk, WarehouseID: &other.ID, Active: true},
		{Name: "Viewer", Username: "viewer", PasswordHash: "x", AccessLevel: models.LevelViewer, WarehouseID: &main.ID, Active: true},
	}
	for _, u := range users {
		insert(t, db, u)
	}

	item := &models.Item{Barcode: "123", Name: "Luva", Unit: "CX", Lot: "L1", MinStock: 10, WarehouseID: main.ID, Active: true}
	insert(t, db, item)

	return &fixture{
		db:      db,
		engine:  NewEngine(db, opts...),
		main:    main.ID,
		other:   other.ID,
		sector:  sector.ID,
		item:    item.ID,
		admin:   access.FromUser(*users[0]),
		clerk:   access.FromUser(*users[1]),
		foreign: access.FromUser(*users[2]),
		viewer:  access.FromUser(*users[3]),
	}
}

func (f *fixture) balance(t *testing.T, itemID int64) float64 {
	t.Helper()
	var balance float64
	err := f.db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT balance FROM items WHERE id = ?`, itemID).Scan(ctx, &balance)
	})
	require.NoError(t, err)
	return balance
}

func (f *fixture) movementCount(t *testing.T, itemID int64) int {
	t.Helper()
	var count int
	err := f.db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM movements WHERE item_id = ?`, itemID).Scan(ctx, &count)
	})
	require.NoError(t, err)
	return count
}

func TestEntryThenExitScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 50, Actor: f.clerk, InvoiceRef: "NF-1"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.PreviousBalance)
	assert.Equal(t, 50.0, res.NewBalance)
	assert.Equal(t, "CX", res.Unit)
	assert.Equal(t, 1, f.movementCount(t, f.item))

	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 60, Actor: f.clerk, SectorID: &f.sector})
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 50.0, f.balance(t, f.item))
	assert.Equal(t, 1, f.movementCount(t, f.item))

	res, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 20, Actor: f.clerk, SectorID: &f.sector})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.NewBalance)
	assert.Equal(t, 30.0, f.balance(t, f.item))

	check, err := f.engine.VerifyLedger(ctx, f.item)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, 30.0, check.LedgerSum)
}

func TestExitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 5, Actor: f.clerk})
	require.NoError(t, err)

	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 1, Actor: f.clerk})
	assert.ErrorIs(t, err, models.ErrMissingSector)

	missing := int64(999)
	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 1, Actor: f.clerk, SectorID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 0, Actor: f.clerk, SectorID: &f.sector})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 5, Actor: f.clerk, SectorID: &f.sector})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.balance(t, f.item))
}

func TestEntryRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	for _, q := range []float64{0, -3} {
		_, err := f.engine.RecordEntry(context.Background(), EntryInput{ItemID: f.item, Quantity: q, Actor: f.clerk})
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	}
	assert.Equal(t, 0, f.movementCount(t, f.item))
}

func TestAdjustmentIsIdempotentOnBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 12, Actor: f.clerk})
	require.NoError(t, err)

	first, err := f.engine.RecordAdjustment(ctx, AdjustmentInput{ItemID: f.item, NewBalance: 7, Actor: f.clerk, Note: "inventory count"})
	require.NoError(t, err)
	assert.Equal(t, -5.0, first.Quantity)
	assert.Equal(t, 7.0, f.balance(t, f.item))

	second, err := f.engine.RecordAdjustment(ctx, AdjustmentInput{ItemID: f.item, NewBalance: 7, Actor: f.clerk})
	require.NoError(t, err)
	assert.Equal(t, 0.0, second.Quantity)
	assert.Equal(t, 7.0, f.balance(t, f.item))
	assert.Equal(t, 3, f.movementCount(t, f.item))
}

func TestAdjustmentMayGoNegative(t *testing.T) {
	f := newFixture(t)
	res, err := f.engine.RecordAdjustment(context.Background(), AdjustmentInput{ItemID: f.item, NewBalance: -2, Actor: f.admin})
	require.NoError(t, err)
	assert.Equal(t, -2.0, res.NewBalance)
	check, err := f.engine.VerifyLedger(context.Background(), f.item)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
}

func TestEngineEnforcesScopeAndCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 1, Actor: f.foreign})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 1, Actor: f.viewer})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 1, Actor: f.admin})
	assert.NoError(t, err)

	_, err = f.engine.RecordEntry(ctx, EntryInput{ItemID: 4242, Quantity: 1, Actor: f.admin})
	assert.ErrorIs(t, err, models.ErrItemNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, 1.0, f.balance(t, f.item))
}

func TestInactiveItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE items SET active = 0 WHERE id = ?`, f.item)
		return err
	})
	require.NoError(t, err)

	_, err = f.engine.RecordEntry(context.Background(), EntryInput{ItemID: f.item, Quantity: 1, Actor: f.admin})
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestBalanceMatchesLedgerAfterRandomSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 60; i++ {
		q := float64(rng.Intn(20) + 1)
		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: q, Actor: f.clerk})
		case 1:
			_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: q, Actor: f.clerk, SectorID: &f.sector})
			if errors.Is(err, models.ErrInsufficientStock) {
				err = nil
			}
		case 2:
			_, err = f.engine.RecordAdjustment(ctx, AdjustmentInput{ItemID: f.item, NewBalance: float64(rng.Intn(40)), Actor: f.clerk})
		}
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f.balance(t, f.item), 0.0)
	}

	check, err := f.engine.VerifyLedger(ctx, f.item)
	require.NoError(t, err)
	assert.True(t, check.Consistent, "balance %v ledger %v", check.Balance, check.LedgerSum)

	bad, err := f.engine.Inconsistencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, bad)
}

func TestConcurrentExitsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 50, Actor: f.clerk})
	require.NoError(t, err)

	const workers = 40
	const qty = 2.0
	var ok, insufficient atomic.Int64
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: qty, Actor: f.clerk, SectorID: &f.sector})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected exit error: %v", err)
	}

	assert.Equal(t, int64(25), ok.Load())
	assert.Equal(t, int64(workers-25), insufficient.Load())
	balance := f.balance(t, f.item)
	assert.InDelta(t, 50.0, float64(ok.Load())*qty+balance, 1e-9)
	assert.Equal(t, 1+int(ok.Load()), f.movementCount(t, f.item))

	check, err := f.engine.VerifyLedger(ctx, f.item)
	require.NoError(t, err)
	assert.True(t, check.Consistent, "balance %v ledger %v", check.Balance, check.LedgerSum)
}

func TestConcurrentEntriesAndExitsKeepLedgerConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 100, Actor: f.clerk})
	require.NoError(t, err)

	var exited atomic.Int64
	var failures atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 3, Actor: f.clerk}); err != nil {
				failures.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 5, Actor: f.clerk, SectorID: &f.sector})
			switch {
			case err == nil:
				exited.Add(1)
			case !errors.Is(err, models.ErrInsufficientStock):
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	assert.InDelta(t, 100.0+30*3-float64(exited.Load())*5, f.balance(t, f.item), 1e-9)
	bad, err := f.engine.Inconsistencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, bad)
}

func TestInconsistenciesReportsDrift(t *testing.T) {
	f := newFixture(t)
	err := f.db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE items SET balance = 9 WHERE id = ?`, f.item)
		return err
	})
	require.NoError(t, err)

	bad, err := f.engine.Inconsistencies(context.Background())
	require.NoError(t, err)
	require.Len(t, bad, 1)
	assert.Equal(t, f.item, bad[0].ItemID)
}

func TestObserverAndClock(t *testing.T) {
	obs := &recordingObserver{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := newFixture(t, WithObserver(obs), WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	res, err := f.engine.RecordEntry(ctx, EntryInput{ItemID: f.item, Quantity: 3, Actor: f.clerk})
	require.NoError(t, err)
	_, err = f.engine.RecordExit(ctx, ExitInput{ItemID: f.item, Quantity: 30, Actor: f.clerk, SectorID: &f.sector})
	require.Error(t, err)

	assert.Equal(t, []string{models.MovementEntry}, obs.recorded)
	assert.Equal(t, []string{"exit:insufficient_stock"}, obs.rejected)

	var mv models.Movement
	err = f.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&mv).Where("m.id = ?", res.MovementID).Scan(ctx)
	})
	require.NoError(t, err)
	assert.True(t, fixed.Equal(mv.CreatedAt), "created_at %v", mv.CreatedAt)
	assert.Equal(t, f.clerk.UserID, mv.UserID)
}
