package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ApplyMigrations executes pending *.sql files in lexical order. Applied file
// names are tracked in schema_migrations so reruns are no-ops.
//
// If migrationsDir is empty, embedded migrations are applied.
func ApplyMigrations(ctx context.Context, db *DB, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return ApplyEmbeddedMigrations(ctx, db)
	}
	return ApplyMigrationsFromDir(ctx, db, migrationsDir)
}

// ApplyEmbeddedMigrations executes embedded migration SQL files in lexical order.
func ApplyEmbeddedMigrations(ctx context.Context, db *DB) error {
	return applyMigrationsFromFS(ctx, db, embeddedMigrations, "migrations")
}

// ApplyMigrationsFromDir executes migration SQL files from a filesystem directory.
func ApplyMigrationsFromDir(ctx context.Context, db *DB, migrationsDir string) error {
	if _, err := os.Stat(migrationsDir); err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	return applyMigrationsFromFS(ctx, db, os.DirFS(migrationsDir), ".")
}

func applyMigrationsFromFS(ctx context.Context, db *DB, migrationsFS fs.FS, root string) error {
	entries, err := fs.ReadDir(migrationsFS, root)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		sqlBytes, err := fs.ReadFile(migrationsFS, path.Join(root, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applySingleMigration(ctx, db, name, sqlBytes); err != nil {
			return err
		}
	}
	return nil
}

func applySingleMigration(ctx context.Context, db *DB, name string, sqlBytes []byte) error {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return err
	}

	applied, err := migrationApplied(ctx, db, name)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	sqlText := string(sqlBytes)
	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "BEGIN TRANSACTION") || strings.Contains(upper, "BEGIN;") {
		if _, err := db.WriteSQL.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.WriteSQL.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, execErr := tx.ExecContext(ctx, sqlText); execErr != nil {
			return execErr
		}
		_, execErr := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, name)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

func ensureMigrationTable(ctx context.Context, db *DB) error {
	_, err := db.WriteSQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func migrationApplied(ctx context.Context, db *DB, name string) (bool, error) {
	var count int
	err := db.WriteSQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}
