package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almoxarifado/infrastructure/argon"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/config"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func TestResolveMigrationsDir_FromRepoRoot(t *testing.T) {
	_, repoRoot := testPaths(t)
	withWorkingDir(t, repoRoot)

	dir, err := resolveMigrationsDir()
	if err != nil {
		t.Fatalf("resolve migrations dir from repo root: %v", err)
	}

	assertMigrationsDir(t, dir)
}

func TestResolveMigrationsDir_FromSeedAdminDir(t *testing.T) {
	cmdDir, _ := testPaths(t)
	withWorkingDir(t, cmdDir)

	dir, err := resolveMigrationsDir()
	if err != nil {
		t.Fatalf("resolve migrations dir from cmd/seedAdmin: %v", err)
	}

	assertMigrationsDir(t, dir)
}

func testPaths(t *testing.T) (cmdDir string, repoRoot string) {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	cmdDir = filepath.Dir(file)
	repoRoot = filepath.Clean(filepath.Join(cmdDir, "..", ".."))
	return cmdDir, repoRoot
}

func withWorkingDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func assertMigrationsDir(t *testing.T, dir string) {
	t.Helper()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat migrations dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected directory, got file: %s", dir)
	}
	if !strings.HasSuffix(filepath.ToSlash(dir), "infrastructure/sqlite/migrations") {
		t.Fatalf("unexpected migrations path: %s", dir)
	}
}

func TestSeedCreatesThenResetsSuperAdmin(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate(ctx, db, ""))

	st := store.New(db, audit.NewService(), store.WithHashParams(argon.FastParams))
	cfg := &config.Config{AdminName: "Root", AdminUsername: "root", AdminPassword: "Primeira1"}

	require.NoError(t, seed(ctx, st, cfg, false))
	u, err := st.FindLoginUser(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, models.LevelSuperAdmin, u.AccessLevel)
	first := u.PasswordHash

	cfg.AdminPassword = "Segunda22"
	require.NoError(t, seed(ctx, st, cfg, false))
	u, err = st.FindLoginUser(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, first, u.PasswordHash, "existing admin is left alone without -reset")

	require.NoError(t, seed(ctx, st, cfg, true))
	u, err = st.FindLoginUser(ctx, "root")
	require.NoError(t, err)
	assert.NotEqual(t, first, u.PasswordHash)
}

func TestSeedRejectsWeakPassword(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplyEmbeddedMigrations(ctx, db))

	st := store.New(db, audit.NewService(), store.WithHashParams(argon.FastParams))
	err = seed(ctx, st, &config.Config{AdminName: "Root", AdminUsername: "root", AdminPassword: "short"}, false)
	assert.ErrorIs(t, err, models.ErrValidation)
}
