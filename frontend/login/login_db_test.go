package login

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "login.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyEmbeddedMigrations(context.Background(), db))
	return store.New(db, nil, store.WithHashParams(argon.FastParams))
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	created, err := st.BootstrapSuperAdmin(ctx, "Root", "root", "abc12345")
	require.NoError(t, err)
	require.True(t, created)

	user, err := authenticateUser(ctx, st, "ROOT", "abc12345")
	require.NoError(t, err)
	assert.Equal(t, models.LevelSuperAdmin, user.AccessLevel)

	_, err = authenticateUser(ctx, st, "root", "wrong-pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authenticateUser(ctx, st, "nobody", "abc12345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, err := st.BootstrapSuperAdmin(ctx, "Root", "root", "abc12345")
	require.NoError(t, err)
	user, err := st.FindLoginUser(ctx, "root")
	require.NoError(t, err)

	live := models.Session{ID: "live-token", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	stale := models.Session{ID: "stale-token", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, PersistSession(ctx, st.DB(), live))
	require.NoError(t, PersistSession(ctx, st.DB(), stale))

	got, err := LoadSessionByToken(ctx, st.DB(), "live-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = LoadSessionByToken(ctx, st.DB(), "stale-token")
	assert.ErrorIs(t, err, models.ErrNotFound)

	loaded, err := LoadActiveUser(ctx, st.DB(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", loaded.Username)

	require.NoError(t, DeleteSessionsForUser(ctx, st.DB(), user.ID))
	_, err = LoadSessionByToken(ctx, st.DB(), "live-token")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
