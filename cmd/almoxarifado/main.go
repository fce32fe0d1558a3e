package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/backup"
	"almoxarifado/infrastructure/cache"
	"almoxarifado/infrastructure/config"
	httpserver "almoxarifado/infrastructure/http"
	"almoxarifado/infrastructure/ledger"
	"almoxarifado/infrastructure/logger"
	"almoxarifado/infrastructure/metrics"
	"almoxarifado/infrastructure/rbac"
	"almoxarifado/infrastructure/reporting"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	_, logCloser := logger.New(logger.Config{
		Env:        cfg.Env,
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("open db")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	auditSvc := audit.NewService()
	st := store.New(db, auditSvc)
	if cfg.AdminPassword != "" {
		created, err := st.BootstrapSuperAdmin(ctx, cfg.AdminName, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap super admin")
		}
		if created {
			log.Info().Str("username", cfg.AdminUsername).Msg("super admin created")
		}
	} else if n, err := st.CountUsers(ctx); err == nil && n == 0 {
		log.Warn().Msg("no users yet; set ALMOX_ADMIN_PASSWORD or run seedAdmin")
	}

	backups := backup.NewService(db, st, m, cfg.BackupDir)
	go backups.Schedule(ctx, cfg.BackupCheckInterval)

	sessionCache := cache.NewUserSessionCache()
	go sweepSessions(ctx, sessionCache)

	server := httpserver.NewServer(cfg.Addr, httpserver.Deps{
		Store:        st,
		Audit:        auditSvc,
		Engine:       ledger.NewEngine(db, ledger.WithObserver(m)),
		Projector:    reporting.NewProjector(db),
		Backups:      backups,
		Metrics:      m,
		Gatherer:     reg,
		SessionCache: sessionCache,
		UserCache:    cache.NewUserCache(),
		Rbac:         rbac.New(cache.NewRouteCapabilityCache()),
	}, httpserver.Options{
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.SecureCookie,
		UploadDir:    cfg.UploadDir,
	})
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("start server")
	}
	log.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("almoxarifado listening")

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("stopped")
}

func sweepSessions(ctx context.Context, c *cache.UserSessionCache) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := c.Sweep(now); n > 0 {
				log.Debug().Int("sessions", n).Msg("expired sessions evicted")
			}
		}
	}
}
