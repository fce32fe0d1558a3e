package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description" validate:"max=500"`
}

// SectorInput is the editable part of a sector.
type SectorInput struct {
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description" validate:"max=500"`
	Responsible string `form:"responsible" validate:"max=120"`
}

// CategoryView carries the number of items filed under a category.
type CategoryView struct {
	models.Category `bun:",extend"`

	ItemCount int `bun:"item_count"`
}

func (s *Store) CreateCategory(ctx context.Context, actor access.Principal, in CategoryInput) (models.Category, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Category{}, err
	}
	in.Name, in.Description = clean(in.Name), clean(in.Description)
	if err := validation.Struct(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{Name: in.Name, Description: in.Description}
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := duplicateName(ctx, tx, (*models.Category)(nil), "name", c.Name, 0); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&c).Exec(ctx); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntityCategory, c.ID, nil, c)
	})
	return c, err
}

func (s *Store) UpdateCategory(ctx context.Context, actor access.Principal, id int64, in CategoryInput) (models.Category, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Category{}, err
	}
	in.Name, in.Description = clean(in.Name), clean(in.Description)
	if err := validation.Struct(in); err != nil {
		return models.Category{}, err
	}
	var after models.Category
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Category
		if err := tx.NewSelect().Model(&before).Where("c.id = ?", id).Scan(ctx); err != nil {
			return notFound(err, "category")
		}
		if err := duplicateName(ctx, tx, (*models.Category)(nil), "name", in.Name, id); err != nil {
			return err
		}
		after = models.Category{ID: id, Name: in.Name, Description: in.Description}
		if _, err := tx.NewUpdate().Model(&after).Column("name", "description").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityCategory, id, before, after)
	})
	return after, err
}

// DeleteCategory refuses while any item, active or not, is filed under it.
func (s *Store) DeleteCategory(ctx context.Context, actor access.Principal, id int64) error {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Category
		if err := tx.NewSelect().Model(&before).Where("c.id = ?", id).Scan(ctx); err != nil {
			return notFound(err, "category")
		}
		used, err := exists(ctx, tx, (*models.Item)(nil), "i.category_id = ?", id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("category %q: %w", before.Name, models.ErrInUse)
		}
		if _, err := tx.NewDelete().Model((*models.Category)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionDelete, audit.EntityCategory, id, before, nil)
	})
}

func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&c).Where("c.id = ?", id).Scan(ctx)
	})
	return c, notFound(err, "category")
}

// ListCategories counts only items visible in scope.
func (s *Store) ListCategories(ctx context.Context, scope access.Scope) ([]CategoryView, error) {
	rows := make([]CategoryView, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		counted := scope.Apply(tx.NewSelect().
			TableExpr("items AS i").
			ColumnExpr("COUNT(*)").
			Where("i.category_id = c.id").
			Where("i.active = ?", true), "i.warehouse_id")
		return tx.NewSelect().
			Model(&rows).
			ColumnExpr("c.*").
			ColumnExpr("(?) AS item_count", counted).
			OrderExpr("c.name ASC").
			Scan(ctx)
	})
	return rows, err
}

func (s *Store) CreateSector(ctx context.Context, actor access.Principal, in SectorInput) (models.Sector, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Sector{}, err
	}
	in.Name, in.Description, in.Responsible = clean(in.Name), clean(in.Description), clean(in.Responsible)
	if err := validation.Struct(in); err != nil {
		return models.Sector{}, err
	}
	sec := models.Sector{Name: in.Name, Description: in.Description, Responsible: in.Responsible, Active: true}
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := duplicateName(ctx, tx, (*models.Sector)(nil), "name", sec.Name, 0); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&sec).Exec(ctx); err != nil {
			return fmt.Errorf("insert sector: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntitySector, sec.ID, nil, sec)
	})
	return sec, err
}

func (s *Store) UpdateSector(ctx context.Context, actor access.Principal, id int64, in SectorInput) (models.Sector, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Sector{}, err
	}
	in.Name, in.Description, in.Responsible = clean(in.Name), clean(in.Description), clean(in.Responsible)
	if err := validation.Struct(in); err != nil {
		return models.Sector{}, err
	}
	var after models.Sector
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Sector
		if err := tx.NewSelect().Model(&before).Where("sec.id = ?", id).Scan(ctx); err != nil {
			return notFound(err, "sector")
		}
		if err := duplicateName(ctx, tx, (*models.Sector)(nil), "name", in.Name, id); err != nil {
			return err
		}
		after = before
		after.Name, after.Description, after.Responsible = in.Name, in.Description, in.Responsible
		if _, err := tx.NewUpdate().Model(&after).Column("name", "description", "responsible").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update sector: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntitySector, id, before, after)
	})
	return after, err
}

func (s *Store) SetSectorActive(ctx context.Context, actor access.Principal, id int64, active bool) error {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*models.Sector)(nil)).Set("active = ?", active).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("set sector active: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("sector: %w", models.ErrNotFound)
		}
		action := audit.ActionDeactivate
		if active {
			action = audit.ActionActivate
		}
		return s.audit.Write(ctx, tx, actor.UserID, action, audit.EntitySector, id, nil, map[string]bool{"active": active})
	})
}

// DeleteSector refuses once any exit references the sector; deactivate it instead.
func (s *Store) DeleteSector(ctx context.Context, actor access.Principal, id int64) error {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Sector
		if err := tx.NewSelect().Model(&before).Where("sec.id = ?", id).Scan(ctx); err != nil {
			return notFound(err, "sector")
		}
		used, err := exists(ctx, tx, (*models.Movement)(nil), "m.sector_id = ?", id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("sector %q: %w", before.Name, models.ErrInUse)
		}
		if _, err := tx.NewDelete().Model((*models.Sector)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete sector: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionDelete, audit.EntitySector, id, before, nil)
	})
}

func (s *Store) GetSector(ctx context.Context, id int64) (models.Sector, error) {
	var sec models.Sector
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&sec).Where("sec.id = ?", id).Scan(ctx)
	})
	return sec, notFound(err, "sector")
}

func (s *Store) ListSectors(ctx context.Context, includeInactive bool) ([]models.Sector, error) {
	rows := make([]models.Sector, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&rows).OrderExpr("sec.name ASC")
		if !includeInactive {
			q = q.Where("sec.active = ?", true)
		}
		return q.Scan(ctx)
	})
	return rows, err
}
