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

// SupplierInput is the editable part of a supplier. TaxID is the CNPJ.
type SupplierInput struct {
	Name    string `form:"name" validate:"required,max=160"`
	TaxID   string `form:"tax_id" validate:"max=32"`
	Contact string `form:"contact" validate:"max=120"`
	Phone   string `form:"phone" validate:"max=40"`
	Email   string `form:"email" validate:"omitempty,email,max=160"`
}

func (in SupplierInput) normalize() SupplierInput {
	in.Name = clean(in.Name)
	in.TaxID = clean(in.TaxID)
	in.Contact = clean(in.Contact)
	in.Phone = clean(in.Phone)
	in.Email = clean(in.Email)
	return in
}

func (in SupplierInput) taxID() *string {
	if in.TaxID == "" {
		return nil
	}
	v := in.TaxID
	return &v
}

func (s *Store) CreateSupplier(ctx context.Context, actor access.Principal, in SupplierInput) (models.Supplier, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Supplier{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Supplier{}, err
	}
	sup := models.Supplier{
		Name:    in.Name,
		TaxID:   in.taxID(),
		Contact: in.Contact,
		Phone:   in.Phone,
		Email:   in.Email,
		Active:  true,
	}
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if sup.TaxID != nil {
			if err := duplicateName(ctx, tx, (*models.Supplier)(nil), "tax_id", *sup.TaxID, 0); err != nil {
				return err
			}
		}
		if _, err := tx.NewInsert().Model(&sup).Exec(ctx); err != nil {
			return fmt.Errorf("insert supplier: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntitySupplier, sup.ID, nil, sup)
	})
	return sup, err
}

func (s *Store) UpdateSupplier(ctx context.Context, actor access.Principal, id int64, in SupplierInput) (models.Supplier, error) {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return models.Supplier{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.Supplier{}, err
	}
	var after models.Supplier
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Supplier
		if err := tx.NewSelect().Model(&before).Where("sup.id = ?", id).Scan(ctx); err != nil {
			return notFound(err, "supplier")
		}
		if tax := in.taxID(); tax != nil {
			if err := duplicateName(ctx, tx, (*models.Supplier)(nil), "tax_id", *tax, id); err != nil {
				return err
			}
		}
		after = before
		after.Name, after.TaxID, after.Contact, after.Phone, after.Email = in.Name, in.taxID(), in.Contact, in.Phone, in.Email
		if _, err := tx.NewUpdate().Model(&after).
			Column("name", "tax_id", "contact", "phone", "email").
			WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update supplier: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntitySupplier, id, before, after)
	})
	return after, err
}

func (s *Store) SetSupplierActive(ctx context.Context, actor access.Principal, id int64, active bool) error {
	if err := requireCap(actor, access.CapManageStock); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*models.Supplier)(nil)).Set("active = ?", active).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("set supplier active: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("supplier: %w", models.ErrNotFound)
		}
		action := audit.ActionDeactivate
		if active {
			action = audit.ActionActivate
		}
		return s.audit.Write(ctx, tx, actor.UserID, action, audit.EntitySupplier, id, nil, map[string]bool{"active": active})
	})
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (models.Supplier, error) {
	var sup models.Supplier
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&sup).Where("sup.id = ?", id).Scan(ctx)
	})
	return sup, notFound(err, "supplier")
}

func (s *Store) ListSuppliers(ctx context.Context, includeInactive bool) ([]models.Supplier, error) {
	rows := make([]models.Supplier, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&rows).OrderExpr("sup.name ASC")
		if !includeInactive {
			q = q.Where("sup.active = ?", true)
		}
		return q.Scan(ctx)
	})
	return rows, err
}
