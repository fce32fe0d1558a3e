// Package store persists the master data behind the stock ledger:
// warehouses, categories, sectors, suppliers, items, users and system settings.
//
// Every read takes an access.Scope and every write takes the acting
// access.Principal; nothing here looks at request state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/models"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// Store is the entity store.
type Store struct {
	db         *sqlite.DB
	audit      *audit.Service
	hashParams *argon.Params
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithHashParams sets the argon2id cost used for new password hashes.
func WithHashParams(p *argon.Params) Option {
	return func(s *Store) {
		if p != nil {
			s.hashParams = p
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(db *sqlite.DB, auditService *audit.Service, opts ...Option) *Store {
	if auditService == nil {
		auditService = audit.NewService()
	}
	s := &Store{db: db, audit: auditService, hashParams: argon.DefaultParams, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handles for collaborators sharing transactions.
func (s *Store) DB() *sqlite.DB {
	return s.db
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Rows    []T
	Page    int
	PerPage int
	Total   int
}

// Pages returns the number of pages.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func requireCap(actor access.Principal, c access.Capability) error {
	if actor.UserID <= 0 || !actor.Capabilities().Has(c) {
		return models.ErrPermissionDenied
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}

func exists(ctx context.Context, tx bun.IDB, model any, where string, args ...any) (bool, error) {
	return tx.NewSelect().Model(model).Where(where, args...).Exists(ctx)
}

func duplicateName(ctx context.Context, tx bun.IDB, model any, column, name string, excludeID int64) error {
	q := tx.NewSelect().Model(model).Where("? = ?", bun.Ident(column), name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	found, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s %q", models.ErrDuplicate, column, name)
	}
	return nil
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(clean(term))) + "%"
}
