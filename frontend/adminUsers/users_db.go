package adminusers

import (
	"context"
	"fmt"

	"almoxarifado/frontend/login"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/cache"
	"almoxarifado/infrastructure/store"
	"almoxarifado/infrastructure/validation"
)

// levelOptions lists only the access levels the actor may assign.
func levelOptions(actor access.Principal) []html.Option {
	opts := make([]html.Option, 0, 5)
	for _, level := range access.Levels() {
		if actor.CanAssignLevel(level) {
			opts = append(opts, html.Option{Value: level, Label: html.LevelLabel(level)})
		}
	}
	return opts
}

func warehouseOptions(ctx context.Context, st *store.Store, actor access.Principal) ([]html.Option, error) {
	rows, err := st.ListWarehouses(ctx, access.Resolve(actor), false)
	if err != nil {
		return nil, err
	}
	opts := make([]html.Option, 0, len(rows))
	for _, w := range rows {
		opts = append(opts, html.Option{Value: html.ID(w.ID), Label: w.Name})
	}
	return opts, nil
}

func LoadUsersPageData(ctx context.Context, st *store.Store, actor access.Principal) (PageData, error) {
	users, err := st.ListUsers(ctx, actor)
	if err != nil {
		return PageData{}, err
	}
	warehouses, err := warehouseOptions(ctx, st, actor)
	if err != nil {
		return PageData{}, err
	}
	return PageData{Users: users, Warehouses: warehouses, Levels: levelOptions(actor), ActorID: actor.UserID}, nil
}

// forgetUser drops the cached user so the next request reloads it.
// When revoke is set every session of the user is ended as well.
func forgetUser(ctx context.Context, st *store.Store, sessions *cache.UserSessionCache, users *cache.UserCache, id int64, revoke bool) error {
	users.Delete(id)
	if !revoke {
		return nil
	}
	sessions.DeleteSessionsForUser(id)
	return login.DeleteSessionsForUser(ctx, st.DB(), id)
}

// ChangeOwnPassword verifies the current password before replacing it.
func ChangeOwnPassword(ctx context.Context, st *store.Store, actor access.Principal, current, next, confirm string) error {
	if next != confirm {
		return validation.Field("confirm", "does not match the new password")
	}
	u, err := login.LoadActiveUser(ctx, st.DB(), actor.UserID)
	if err != nil {
		return err
	}
	ok, err := argon.ComparePasswordAndHash(current, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return validation.Field("current", "is incorrect")
	}
	return st.SetPassword(ctx, actor, actor.UserID, next)
}
