package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// UserInput is the editable part of a user. Password is only read on create.
type UserInput struct {
	Name        string `form:"name" validate:"required,max=120"`
	Username    string `form:"username" validate:"required,min=3,max=50"`
	Email       string `form:"email" validate:"omitempty,email,max=160"`
	AccessLevel string `form:"access_level" validate:"access_level"`
	WarehouseID *int64 `form:"warehouse_id"`
	Password    string `form:"password" validate:"-"`
}

func (in UserInput) normalize() UserInput {
	in.Name = clean(in.Name)
	in.Username = clean(in.Username)
	in.Email = clean(in.Email)
	in.AccessLevel = clean(in.AccessLevel)
	if in.WarehouseID != nil && *in.WarehouseID <= 0 {
		in.WarehouseID = nil
	}
	return in
}

// UserView is a user joined with its home warehouse name.
type UserView struct {
	ID            int64     `bun:"id"`
	Name          string    `bun:"name"`
	Username      string    `bun:"username"`
	Email         string    `bun:"email"`
	AccessLevel   string    `bun:"access_level"`
	WarehouseID   *int64    `bun:"warehouse_id"`
	WarehouseName string    `bun:"warehouse_name"`
	Active        bool      `bun:"active"`
	CreatedAt     time.Time `bun:"created_at"`
}

// checkUserTarget validates level and home warehouse for a user the actor
// wants to write, and the actor's right to do so.
func checkUserTarget(ctx context.Context, tx bun.IDB, actor access.Principal, in UserInput) error {
	if !actor.CanAssignLevel(in.AccessLevel) {
		return fmt.Errorf("%w: cannot assign level %s", models.ErrPermissionDenied, in.AccessLevel)
	}
	if !access.Unrestricted(in.AccessLevel) && in.WarehouseID == nil {
		return validation.Field("warehouse_id", "is required for this access level")
	}
	if !actor.CanManageUserIn(in.WarehouseID) {
		return fmt.Errorf("%w: warehouse outside your scope", models.ErrPermissionDenied)
	}
	if in.WarehouseID != nil {
		ok, err := exists(ctx, tx, (*models.Warehouse)(nil), "w.id = ?", *in.WarehouseID)
		if err != nil {
			return err
		}
		if !ok {
			return validation.Field("warehouse_id", "does not exist")
		}
	}
	return nil
}

func duplicateUsername(ctx context.Context, tx bun.IDB, username string, excludeID int64) error {
	q := tx.NewSelect().Model((*models.User)(nil)).Where("LOWER(u.username) = ?", strings.ToLower(username))
	if excludeID > 0 {
		q = q.Where("u.id <> ?", excludeID)
	}
	found, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: username %q", models.ErrDuplicate, username)
	}
	return nil
}

// loadManagedUser fetches a user the actor is allowed to manage.
func loadManagedUser(ctx context.Context, tx bun.IDB, actor access.Principal, id int64) (models.User, error) {
	var u models.User
	if err := tx.NewSelect().Model(&u).Where("u.id = ?", id).Scan(ctx); err != nil {
		return models.User{}, notFound(err, "user")
	}
	if !actor.CanManageUserIn(u.WarehouseID) {
		return models.User{}, models.ErrPermissionDenied
	}
	if access.Unrestricted(u.AccessLevel) && !actor.CanAssignLevel(u.AccessLevel) {
		return models.User{}, models.ErrPermissionDenied
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, actor access.Principal, in UserInput) (models.User, error) {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return models.User{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}
	if err := validation.PasswordPolicy(in.Password); err != nil {
		return models.User{}, validation.Field("password", strings.TrimPrefix(err.Error(), "password "))
	}
	hash, err := argon.CreateHash(in.Password, s.hashParams)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := models.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		AccessLevel:  in.AccessLevel,
		WarehouseID:  in.WarehouseID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := checkUserTarget(ctx, tx, actor, in); err != nil {
			return err
		}
		if err := duplicateUsername(ctx, tx, u.Username, 0); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&u).Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionCreate, audit.EntityUser, u.ID, nil, u)
	})
	return u, err
}

func (s *Store) UpdateUser(ctx context.Context, actor access.Principal, id int64, in UserInput) (models.User, error) {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return models.User{}, err
	}
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}
	var after models.User
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadManagedUser(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if id == actor.UserID && in.AccessLevel != before.AccessLevel {
			return fmt.Errorf("%w: cannot change your own access level", models.ErrSelfModification)
		}
		if err := checkUserTarget(ctx, tx, actor, in); err != nil {
			return err
		}
		if err := duplicateUsername(ctx, tx, in.Username, id); err != nil {
			return err
		}
		after = before
		after.Name = in.Name
		after.Username = in.Username
		after.Email = in.Email
		after.AccessLevel = in.AccessLevel
		after.WarehouseID = in.WarehouseID
		after.UpdatedAt = s.now().UTC()
		if _, err := tx.NewUpdate().Model(&after).
			Column("name", "username", "email", "access_level", "warehouse_id", "updated_at").
			WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityUser, id, before, after)
	})
	return after, err
}

// SetPassword replaces a user's password. Users may always change their own.
func (s *Store) SetPassword(ctx context.Context, actor access.Principal, id int64, password string) error {
	if id != actor.UserID {
		if err := requireCap(actor, access.CapManageUsers); err != nil {
			return err
		}
	}
	if err := validation.PasswordPolicy(password); err != nil {
		return validation.Field("password", strings.TrimPrefix(err.Error(), "password "))
	}
	hash, err := argon.CreateHash(password, s.hashParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if id != actor.UserID {
			if _, err := loadManagedUser(ctx, tx, actor, id); err != nil {
				return err
			}
		}
		res, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("password_hash = ?", hash).
			Set("updated_at = ?", s.now().UTC()).
			Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("user: %w", models.ErrNotFound)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionPassword, audit.EntityUser, id, nil, nil)
	})
}

// SetUserActive blocks or unblocks a user. Blocking also drops their sessions.
func (s *Store) SetUserActive(ctx context.Context, actor access.Principal, id int64, active bool) error {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return err
	}
	if id == actor.UserID {
		return models.ErrSelfModification
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadManagedUser(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("active = ?", active).
			Set("updated_at = ?", s.now().UTC()).
			Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("set user active: %w", err)
		}
		if !active {
			if _, err := tx.NewDelete().Model((*models.Session)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("drop sessions: %w", err)
			}
		}
		after := before
		after.Active = active
		action := audit.ActionDeactivate
		if active {
			action = audit.ActionActivate
		}
		return s.audit.Write(ctx, tx, actor.UserID, action, audit.EntityUser, id, before, after)
	})
}

// DeleteUser removes a user with no recorded movements.
func (s *Store) DeleteUser(ctx context.Context, actor access.Principal, id int64) error {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return err
	}
	if id == actor.UserID {
		return models.ErrSelfModification
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := loadManagedUser(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		moved, err := exists(ctx, tx, (*models.Movement)(nil), "m.user_id = ?", id)
		if err != nil {
			return err
		}
		if moved {
			return models.ErrUserHasHistory
		}
		if _, err := tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionDelete, audit.EntityUser, id, before, nil)
	})
}

// GetUser loads a user the actor may manage.
func (s *Store) GetUser(ctx context.Context, actor access.Principal, id int64) (models.User, error) {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return models.User{}, err
	}
	var u models.User
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		u, err = loadManagedUser(ctx, tx, actor, id)
		return err
	})
	return u, err
}

// ListUsers returns users the actor may manage: everyone for unrestricted
// levels, the home warehouse's users for local admins.
func (s *Store) ListUsers(ctx context.Context, actor access.Principal) ([]UserView, error) {
	if err := requireCap(actor, access.CapManageUsers); err != nil {
		return nil, err
	}
	rows := make([]UserView, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			TableExpr("users AS u").
			ColumnExpr("u.id, u.name, u.username, u.email, u.access_level, u.warehouse_id, u.active, u.created_at").
			ColumnExpr("COALESCE(w.name, '') AS warehouse_name").
			Join("LEFT JOIN warehouses AS w ON w.id = u.warehouse_id").
			OrderExpr("u.name ASC, u.id ASC")
		return access.Resolve(actor).Apply(q, "u.warehouse_id").Scan(ctx, &rows)
	})
	return rows, err
}

// FindLoginUser loads an active user by case-insensitive username.
func (s *Store) FindLoginUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&u).
			Where("LOWER(u.username) = ?", strings.ToLower(clean(username))).
			Where("u.active = ?", true).
			Scan(ctx)
	})
	return u, notFound(err, "user")
}

// CountUsers is used by bootstrap code to detect an empty install.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		n, err = tx.NewSelect().Model((*models.User)(nil)).Count(ctx)
		return err
	})
	return n, err
}

// BootstrapSuperAdmin creates the first super_admin when no user with that
// username exists yet. It reports whether a user was created.
func (s *Store) BootstrapSuperAdmin(ctx context.Context, name, username, password string) (bool, error) {
	username = clean(username)
	if username == "" {
		return false, validation.Field("username", "is required")
	}
	if err := validation.PasswordPolicy(password); err != nil {
		return false, validation.Field("password", strings.TrimPrefix(err.Error(), "password "))
	}
	hash, err := argon.CreateHash(password, s.hashParams)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	created := false
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := duplicateUsername(ctx, tx, username, 0); err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				return nil
			}
			return err
		}
		now := s.now().UTC()
		u := models.User{
			Name:         clean(name),
			Username:     username,
			PasswordHash: hash,
			AccessLevel:  models.LevelSuperAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if u.Name == "" {
			u.Name = username
		}
		if _, err := tx.NewInsert().Model(&u).Exec(ctx); err != nil {
			return fmt.Errorf("insert super admin: %w", err)
		}
		created = true
		return s.audit.Write(ctx, tx, u.ID, audit.ActionCreate, audit.EntityUser, u.ID, nil, u)
	})
	return created, err
}
