package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/models"
)

func TestApplyEmbeddedMigrations(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "embedded.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply embedded migrations: %v", err)
	}

	var count int64
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'items', 'movements', 'system_config')`,
		).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected core tables after embedded migrations, got %d", count)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := ApplyEmbeddedMigrations(ctx, db); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}

	var applied int
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM schema_migrations`).Scan(ctx, &applied)
	})
	if err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one tracked migration, got %d", applied)
	}

	var cfg models.SystemConfig
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&cfg).Where("id = 1").Scan(ctx)
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PrimaryColor != "#0d6efd" {
		t.Fatalf("expected default primary color, got %q", cfg.PrimaryColor)
	}
}

func TestBackupWritesSnapshot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "backups")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	dest, err := db.Backup(ctx, dir, now)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if filepath.Base(dest) != "backup_almoxarifado_20260304_050607.db" {
		t.Fatalf("unexpected backup name %s", dest)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty backup file")
	}

	snapshot, err := OpenDB(dest)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snapshot.Close()
	var count int
	if err := snapshot.ReadSQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM system_config`).Scan(&count); err != nil {
		t.Fatalf("query snapshot: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected config row in snapshot, got %d", count)
	}

	if _, err := db.Backup(ctx, dir, now); err == nil {
		t.Fatalf("expected second backup with same timestamp to fail")
	}
}
