package login

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

func authenticateUser(ctx context.Context, st *store.Store, username, password string) (models.User, error) {
	user, err := st.FindLoginUser(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	ok, err := argon.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// PersistSession stores a new session row.
func PersistSession(ctx context.Context, db *sqlite.DB, session models.Session) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models.Session{
			ID:        session.ID,
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt,
		}).Exec(ctx)
		return err
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

// DeleteSessionsForUser signs a user out everywhere.
func DeleteSessionsForUser(ctx context.Context, db *sqlite.DB, userID int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("user_id = ?", userID).Exec(ctx)
		return err
	})
}

// LoadSessionByToken returns a live session. Expired rows are removed and
// reported as models.ErrNotFound.
func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var session models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&session).Where("s.id = ?", token).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired() {
		_ = DeleteSessionByToken(ctx, db, token)
		return models.Session{}, models.ErrNotFound
	}
	return session, nil
}

// LoadActiveUser reads the session owner. Inactive users count as missing.
func LoadActiveUser(ctx context.Context, db *sqlite.DB, id int64) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&user).Where("u.id = ?", id).Where("u.active = ?", true).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	return user, err
}
