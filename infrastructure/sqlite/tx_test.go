package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"

	"almoxarifado/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	if err := ApplyMigrations(context.Background(), db, filepath.Join(filepath.Dir(file), "migrations")); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func countWarehouses(t *testing.T, db *DB, name string) int {
	t.Helper()
	var count int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM warehouses WHERE name = ?`, name).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count warehouses: %v", err)
	}
	return count
}

func TestWithWriteTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO warehouses (name) VALUES (?)`, "Rollback"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got: %v", err)
	}
	if n := countWarehouses(t, db, "Rollback"); n != 0 {
		t.Fatalf("expected rollback to remove insert, count=%d", n)
	}
}

func TestWithWriteTxCommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO warehouses (name) VALUES (?)`, "Central")
		return err
	})
	if err != nil {
		t.Fatalf("write tx failed: %v", err)
	}
	if n := countWarehouses(t, db, "Central"); n != 1 {
		t.Fatalf("expected committed insert, count=%d", n)
	}
}

func TestWithWriteTxMapsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insert := func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.Warehouse{Name: "Central", Active: true}).Exec(ctx)
		return err
	}
	if err := db.WithWriteTx(ctx, insert); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := db.WithWriteTx(ctx, insert)
	if !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestWithReadTxRejectsWrite(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO warehouses (name) VALUES (?)`, "ReadOnly")
		return err
	})
	if err == nil && countWarehouses(t, db, "ReadOnly") > 0 {
		t.Fatalf("expected write in read tx to be blocked; write succeeded")
	}
}

func TestMovementsAreAppendOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		stmts := []string{
			`INSERT INTO warehouses (id, name) VALUES (1, 'Central')`,
			`INSERT INTO users (id, name, username, password_hash, access_level) VALUES (1, 'Ana', 'ana', 'x', 'admin')`,
			`INSERT INTO items (id, barcode, name, unit, lot, warehouse_id) VALUES (1, '789', 'Luva', 'UN', 'L1', 1)`,
			`INSERT INTO movements (kind, quantity, item_id, user_id, created_at) VALUES ('entry', 5, 1, 1, CURRENT_TIMESTAMP)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE movements SET quantity = 50`)
		return err
	})
	if err == nil {
		t.Fatalf("expected movement update to be rejected")
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM movements`)
		return err
	})
	if err == nil {
		t.Fatalf("expected movement delete to be rejected")
	}
}

func TestExitWithoutSectorRejectedBySchema(t *testing.T) {
	db := openTestDB(t)

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		stmts := []string{
			`INSERT INTO warehouses (id, name) VALUES (1, 'Central')`,
			`INSERT INTO users (id, name, username, password_hash, access_level) VALUES (1, 'Ana', 'ana', 'x', 'admin')`,
			`INSERT INTO items (id, barcode, name, unit, lot, warehouse_id) VALUES (1, '789', 'Luva', 'UN', 'L1', 1)`,
			`INSERT INTO movements (kind, quantity, item_id, user_id, created_at) VALUES ('exit', 1, 1, 1, CURRENT_TIMESTAMP)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		t.Fatalf("expected exit without sector to violate check constraint")
	}
}
