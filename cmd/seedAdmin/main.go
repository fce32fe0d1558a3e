// Command seedAdmin creates the first super administrator, or resets its
// password when -reset is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/config"
	"almoxarifado/infrastructure/logger"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

func main() {
	reset := flag.Bool("reset", false, "reset the password of an existing super admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.New(logger.Config{Env: config.AppEnvDev, Level: cfg.LogLevel})

	if cfg.AdminPassword == "" {
		log.Fatal().Msgf("%s_ADMIN_PASSWORD is required", config.EnvPrefix)
	}

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrate(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	st := store.New(db, audit.NewService())
	if err := seed(ctx, st, cfg, *reset); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}
}

func seed(ctx context.Context, st *store.Store, cfg *config.Config, reset bool) error {
	created, err := st.BootstrapSuperAdmin(ctx, cfg.AdminName, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("seeded super admin (username=%s)\n", cfg.AdminUsername)
		return nil
	}
	if !reset {
		fmt.Printf("user %s already exists; pass -reset to change its password\n", cfg.AdminUsername)
		return nil
	}

	u, err := st.FindLoginUser(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if u.AccessLevel != models.LevelSuperAdmin {
		return errors.New("refusing to reset a user that is not a super admin")
	}
	if err := st.SetPassword(ctx, access.FromUser(u), u.ID, cfg.AdminPassword); err != nil {
		return err
	}
	fmt.Printf("password reset for %s\n", cfg.AdminUsername)
	return nil
}

// migrate prefers an explicit directory, then the source tree, then the
// migrations embedded in the binary.
func migrate(ctx context.Context, db *sqlite.DB, explicit string) error {
	if explicit != "" {
		return sqlite.ApplyMigrationsFromDir(ctx, db, explicit)
	}
	if dir, err := resolveMigrationsDir(); err == nil {
		return sqlite.ApplyMigrationsFromDir(ctx, db, dir)
	}
	return sqlite.ApplyEmbeddedMigrations(ctx, db)
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		filepath.Join("infrastructure", "sqlite", "migrations"),
		filepath.Join("..", "..", "infrastructure", "sqlite", "migrations"),
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations"))
	}

	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		tried = append(tried, absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			return absPath, nil
		}
	}

	return "", fmt.Errorf("migrations dir not found; tried: %s", strings.Join(tried, ", "))
}
