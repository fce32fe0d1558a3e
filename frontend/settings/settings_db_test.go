package settings

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func openSettingsTestStore(t *testing.T) (*store.Store, access.Principal) {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "settings-test.db"))
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

func TestSaveLogoReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	st, super := openSettingsTestStore(t)
	dir := t.TempDir()

	name, err := SaveLogo(ctx, st, super, dir, "Hospital.PNG", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "logo.png", name)

	name, err = SaveLogo(ctx, st, super, dir, "new.svg", strings.NewReader("<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, "logo.svg", name)
	_, err = os.Stat(filepath.Join(dir, "logo.png"))
	assert.True(t, os.IsNotExist(err))

	cfg, err := st.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "logo.svg", cfg.LogoPath)
	assert.Equal(t, filepath.Join(dir, "logo.svg"), LogoFile(dir, cfg))
}

func TestSaveLogoRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	st, super := openSettingsTestStore(t)
	dir := t.TempDir()

	_, err := SaveLogo(ctx, st, super, dir, "logo.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SaveLogo(ctx, st, super, dir, "logo.png", strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SaveLogo(ctx, st, super, dir, "logo.png", bytes.NewReader(make([]byte, MaxLogoBytes+1)))
	assert.ErrorIs(t, err, models.ErrValidation)

	wid := int64(1)
	clerk := access.Principal{UserID: 9, Level: models.LevelStockClerk, WarehouseID: &wid}
	_, err = SaveLogo(ctx, st, clerk, dir, "logo.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogoFileIgnoresUnsafePaths(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, LogoFile(dir, models.SystemConfig{}))
	assert.Empty(t, LogoFile(dir, models.SystemConfig{LogoPath: "../etc/passwd"}))
	assert.Empty(t, LogoFile(dir, models.SystemConfig{LogoPath: "logo.png"}))
}

func TestFileSize(t *testing.T) {
	assert.Equal(t, "512 B", fileSize(512))
	assert.Equal(t, "2.0 KB", fileSize(2048))
	assert.Equal(t, "1.5 MB", fileSize(3<<19))
}
