package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"almoxarifado/models"
)

// DB wraps split read/write Bun connections over one database file.
// The writer is capped at a single connection so balance updates serialize.
type DB struct {
	Path     string
	WriteSQL *sql.DB
	ReadSQL  *sql.DB
	W        *bun.DB
	R        *bun.DB
}

// OpenDB initializes sqlite handles for immediate writer tx and pooled reads.
func OpenDB(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	wsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(15 * time.Minute)

	// Touch the file through the writer so the read-only pool can open it.
	if err := wsql.Ping(); err != nil {
		wsql.Close()
		return nil, fmt.Errorf("ping write db: %w", err)
	}

	rsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_query_only=1", path))
	if err != nil {
		wsql.Close()
		return nil, fmt.Errorf("open read db: %w", err)
	}
	rsql.SetMaxOpenConns(8)
	rsql.SetConnMaxIdleTime(5 * time.Minute)
	rsql.SetConnMaxLifetime(15 * time.Minute)

	return &DB{
		Path:     path,
		WriteSQL: wsql,
		ReadSQL:  rsql,
		W:        bun.NewDB(wsql, sqlitedialect.New()),
		R:        bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

// Close closes read and write handles.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.W != nil {
		errs = append(errs, db.W.Close())
	}
	if db.R != nil {
		errs = append(errs, db.R.Close())
	}
	return errors.Join(errs...)
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsForeignKeyViolation reports whether err came from a FOREIGN KEY constraint.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// MapConstraint converts constraint failures into domain errors and leaves
// everything else untouched.
func MapConstraint(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", models.ErrInUse, err)
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrNotFound
	default:
		return err
	}
}
