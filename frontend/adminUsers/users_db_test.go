package adminusers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/frontend/login"
	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/cache"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func openAdminUsersTestStore(t *testing.T) (*store.Store, access.Principal) {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "admin-users-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyEmbeddedMigrations(context.Background(), db))

	st := store.New(db, nil, store.WithHashParams(argon.FastParams))
	_, err = st.BootstrapSuperAdmin(context.Background(), "Root", "root", "Root12345")
	require.NoError(t, err)
	root, err := st.FindLoginUser(context.Background(), "root")
	require.NoError(t, err)
	return st, access.FromUser(root)
}

func createClerk(t *testing.T, st *store.Store, super access.Principal) models.User {
	t.Helper()
	ctx := context.Background()
	w, err := st.CreateWarehouse(ctx, super, store.WarehouseInput{Name: "Central"})
	require.NoError(t, err)
	clerk, err := st.CreateUser(ctx, super, store.UserInput{
		Name: "Clerk", Username: "clerk", AccessLevel: models.LevelStockClerk, WarehouseID: &w.ID, Password: "Clerk1234",
	})
	require.NoError(t, err)
	return clerk
}

func TestLevelOptionsFollowActor(t *testing.T) {
	wid := int64(3)
	local := access.Principal{UserID: 2, Level: models.LevelLocalAdmin, WarehouseID: &wid}
	values := func(p access.Principal) []string {
		out := []string{}
		for _, o := range levelOptions(p) {
			out = append(out, o.Value)
		}
		return out
	}
	assert.NotContains(t, values(local), models.LevelSuperAdmin)
	assert.NotContains(t, values(local), models.LevelAdmin)
	assert.Contains(t, values(local), models.LevelStockClerk)

	super := access.Principal{UserID: 1, Level: models.LevelSuperAdmin}
	assert.Contains(t, values(super), models.LevelSuperAdmin)
}

func TestLoadUsersPageData(t *testing.T) {
	ctx := context.Background()
	st, super := openAdminUsersTestStore(t)
	createClerk(t, st, super)

	data, err := LoadUsersPageData(ctx, st, super)
	require.NoError(t, err)
	assert.Len(t, data.Users, 2)
	assert.Equal(t, super.UserID, data.ActorID)
	assert.NotEmpty(t, data.Levels)
}

func TestChangeOwnPassword(t *testing.T) {
	ctx := context.Background()
	st, super := openAdminUsersTestStore(t)

	err := ChangeOwnPassword(ctx, st, super, "wrong1234", "Fresh1234", "Fresh1234")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = ChangeOwnPassword(ctx, st, super, "Root12345", "Fresh1234", "Other1234")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = ChangeOwnPassword(ctx, st, super, "Root12345", "short", "short")
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, ChangeOwnPassword(ctx, st, super, "Root12345", "Fresh1234", "Fresh1234"))
	u, err := st.FindLoginUser(ctx, "root")
	require.NoError(t, err)
	ok, err := argon.ComparePasswordAndHash("Fresh1234", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestForgetUserRevokesSessions(t *testing.T) {
	ctx := context.Background()
	st, super := openAdminUsersTestStore(t)
	clerk := createClerk(t, st, super)

	sessions := cache.NewUserSessionCache()
	users := cache.NewUserCache()
	session := models.Session{ID: "tok", UserID: clerk.ID, ExpiresAt: time.Now().Add(time.Hour)}
	sessions.AddSession(session)
	users.Add(clerk)

	require.NoError(t, login.PersistSession(ctx, st.DB(), session))
	require.NoError(t, forgetUser(ctx, st, sessions, users, clerk.ID, false))
	_, cached := users.Get(clerk.ID)
	assert.False(t, cached)
	_, live := sessions.FindSessionBySessionToken("tok")
	assert.True(t, live)

	require.NoError(t, forgetUser(ctx, st, sessions, users, clerk.ID, true))
	_, live = sessions.FindSessionBySessionToken("tok")
	assert.False(t, live)
	_, err := login.LoadSessionByToken(ctx, st.DB(), "tok")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
